package cli

import (
	"context"
	"strconv"
)

func (a *App) ListItems(ctx context.Context) error {
	if err := a.items.Load(ctx); err != nil {
		return err
	}
	return a.printItems()
}

// printItems shows items grouped by category. The number before each item
// is its position in the saved order, as used by moveitem.
func (a *App) printItems() error {
	pos := make(map[int64]int)
	for i, it := range a.items.Cache().Snapshot() {
		pos[it.ID] = i + 1
	}
	groups := a.items.Groups()
	if len(groups) == 0 {
		a.printf("No favourite items yet.\n")
		return nil
	}
	st := a.style()
	for _, g := range groups {
		a.printf("%s\n", st.Title.Render(string(g.Category)))
		for _, it := range g.Items {
			line := it.Title
			if it.Subtitle != "" {
				line += " " + st.Muted.Render(it.Subtitle)
			}
			a.printf("  %2d. #%-5d %s\n", pos[it.ID], it.ID, line)
		}
	}
	return nil
}

// AddItem searches category and adds the chosen result. Results already
// among the user's items are not offered.
func (a *App) AddItem(ctx context.Context, args []string) error {
	cat, err := a.categoryArg(args)
	if err != nil {
		return err
	}
	if !a.items.Cache().Loaded() {
		if err := a.items.Load(ctx); err != nil {
			return err
		}
	}
	r, ok, err := a.picker.Pick(ctx, cat, a.today(), a.items.Owned())
	if err != nil {
		return err
	}
	if !ok {
		a.printf("Nothing added.\n")
		return nil
	}
	it, err := a.items.AddResult(ctx, r)
	if err != nil {
		return err
	}
	a.printf("Added #%d %s (%s)\n", it.ID, it.Title, a.catalogue.LabelFor(it.Category))
	return nil
}

func (a *App) DeleteItem(ctx context.Context, args []string) error {
	id, err := idArg(args, "delitem <id>")
	if err != nil {
		return err
	}
	removed, err := a.items.Remove(ctx, id, a.confirmer())
	if err != nil {
		return err
	}
	if removed {
		a.printf("Removed item #%d.\n", id)
	}
	return nil
}

// MoveItem puts an item at a 1-based position and saves the new order.
func (a *App) MoveItem(ctx context.Context, args []string) error {
	const form = "moveitem <id> <position>"
	id, err := idArg(args, form)
	if err != nil {
		return err
	}
	if len(args) < 2 {
		return usage(form)
	}
	pos, err := strconv.Atoi(args[1])
	if err != nil {
		return usage(form)
	}
	if err := a.items.Move(ctx, id, pos-1); err != nil {
		return err
	}
	a.printf("Moved.\n")
	return a.printItems()
}

func (a *App) SaveItems(ctx context.Context) error {
	if err := a.items.SaveAll(ctx); err != nil {
		return err
	}
	a.printf("Items saved.\n")
	return nil
}

package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/dmara/internal/client/models"
)

const helpText = `Account:   login [token], logout, whoami, profile, editprofile, theme [#RRGGBB]
Posts:     posts [my|all], post <id>, like <id>, addpost [category], editpost <id>, delpost <id>
Calendar:  calendar [YYYY-MM], day <YYYY-MM-DD>
Hobbies:   items, additem <category>, delitem <id>, moveitem <id> <position>, saveitems
People:    following, followers, follow <user id>, unfollower <user id>, users <name>
Inbox:     notifications, read [id]
           help, exit`

func (a *App) Help() string {
	return helpText + "\nCategories: " + categoryList()
}

func categoryList() string {
	names := make([]string, len(models.Categories))
	for i, c := range models.Categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

// Exec runs one REPL command.
func (a *App) Exec(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "login":
		return a.Login(ctx, args)
	case "logout":
		return a.Logout(ctx)
	case "whoami":
		return a.WhoAmI(ctx)
	case "profile":
		return a.ShowProfile(ctx)
	case "editprofile":
		return a.EditProfile(ctx)
	case "theme":
		return a.Theme(ctx, args)

	case "posts":
		return a.ListPosts(ctx, args)
	case "post":
		return a.ShowPost(ctx, args)
	case "like":
		return a.LikePost(ctx, args)
	case "addpost":
		return a.AddPost(ctx, args)
	case "editpost":
		return a.EditPost(ctx, args)
	case "delpost":
		return a.DeletePost(ctx, args)
	case "calendar":
		return a.Calendar(ctx, args)
	case "day":
		return a.Day(ctx, args)

	case "items":
		return a.ListItems(ctx)
	case "additem":
		return a.AddItem(ctx, args)
	case "delitem":
		return a.DeleteItem(ctx, args)
	case "moveitem":
		return a.MoveItem(ctx, args)
	case "saveitems":
		return a.SaveItems(ctx)

	case "following":
		return a.ListFollowing(ctx)
	case "followers":
		return a.ListFollowers(ctx)
	case "follow":
		return a.Follow(ctx, args)
	case "unfollower":
		return a.RemoveFollower(ctx, args)
	case "users":
		return a.SearchUsers(ctx, args)

	case "notifications":
		return a.Notifications(ctx)
	case "read":
		return a.MarkRead(ctx, args)
	}
	return errUnknownCommand
}

func usage(s string) error { return fmt.Errorf("usage: %s", s) }

// idArg parses args[0] as a record id.
func idArg(args []string, form string) (int64, error) {
	if len(args) < 1 {
		return 0, usage(form)
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(args[0], "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, usage(form)
	}
	return id, nil
}

// categoryArg takes the category from args or asks for it.
func (a *App) categoryArg(args []string) (models.Category, error) {
	raw := strings.Join(args, " ")
	if raw == "" {
		s, err := GetSimpleText(a.in, "Category ("+categoryList()+")", a.out)
		if err != nil {
			return "", err
		}
		raw = s
	}
	return models.ParseCategory(raw)
}

func (a *App) confirmer() lineConfirmer {
	return lineConfirmer{in: a.in, out: a.out}
}

func (a *App) today() string {
	return a.now().Format(models.DateLayout)
}

package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dmitrijs2005/dmara/internal/client/models"
	"github.com/dmitrijs2005/dmara/internal/client/search"
	"github.com/dmitrijs2005/dmara/internal/client/services"
)

func (a *App) postLine(p models.Post) string {
	st := a.style()
	heart := "♡"
	if p.IsLiked {
		heart = "♥"
	}
	author := p.Nickname
	if author == "" {
		author = p.User.Username
	}
	return fmt.Sprintf("#%-5d %s %s %s %s",
		p.ID,
		st.Badge.Render("["+a.catalogue.LabelFor(p.Category)+"]"),
		st.Title.Render(p.Title),
		st.Muted.Render(p.Date+" by "+author),
		fmt.Sprintf("%s %d", heart, p.LikesCount))
}

// ListPosts loads and prints the feed; "my" limits it to the user's posts.
func (a *App) ListPosts(ctx context.Context, args []string) error {
	mode := services.PostsAll
	if len(args) > 0 && args[0] == services.PostsMine {
		mode = services.PostsMine
	}
	if err := a.posts.Load(ctx, mode); err != nil {
		return err
	}
	list := a.posts.Cache().Snapshot()
	if len(list) == 0 {
		a.printf("No posts yet.\n")
		return nil
	}
	for _, p := range list {
		a.printf("%s\n", a.postLine(p))
	}
	return nil
}

func (a *App) ShowPost(ctx context.Context, args []string) error {
	id, err := idArg(args, "post <id>")
	if err != nil {
		return err
	}
	p, err := a.posts.Get(ctx, id)
	if err != nil {
		return err
	}
	a.printf("%s\n", a.postLine(p))
	if p.Content != "" {
		a.printf("\n%s\n", p.Content)
	}
	if p.PosterURL != "" {
		a.printf("%s\n", a.style().Muted.Render(p.PosterURL))
	}
	return nil
}

func (a *App) LikePost(ctx context.Context, args []string) error {
	id, err := idArg(args, "like <id>")
	if err != nil {
		return err
	}
	if err := a.posts.Like(ctx, id); err != nil {
		return err
	}
	if p, ok := a.posts.Cache().Get(id); ok {
		a.printf("%s\n", a.postLine(p))
	}
	return nil
}

// AddPost drafts a post, optionally from a search result, and lets the user
// fill in the rest.
func (a *App) AddPost(ctx context.Context, args []string) error {
	cat, err := a.categoryArg(args)
	if err != nil {
		return err
	}
	draft := models.PostInput{Category: a.catalogue.PostCode(cat), Date: a.today()}

	if a.confirmer().Confirm(ctx, "Search for the title?") {
		r, ok, err := a.picker.Pick(ctx, cat, a.today(), nil)
		if err != nil {
			return err
		}
		if !ok {
			a.printf("Nothing selected.\n")
			return nil
		}
		draft = search.ToPost(r, a.catalogue, a.now())
	}

	in, err := a.promptPost(draft)
	if err != nil {
		return err
	}
	p, err := a.posts.Create(ctx, in)
	if err != nil {
		return err
	}
	a.printf("Created %s\n", a.postLine(p))
	return nil
}

func (a *App) EditPost(ctx context.Context, args []string) error {
	id, err := idArg(args, "editpost <id>")
	if err != nil {
		return err
	}
	cur, err := a.posts.Get(ctx, id)
	if err != nil {
		return err
	}
	in, err := a.promptPost(models.PostInput{
		Category:   cur.Category,
		Title:      cur.Title,
		Date:       cur.Date,
		Content:    cur.Content,
		PosterURL:  cur.PosterURL,
		Visibility: cur.Visibility,
	})
	if err != nil {
		return err
	}
	p, err := a.posts.Update(ctx, id, in)
	if err != nil {
		return err
	}
	a.printf("Saved %s\n", a.postLine(p))
	return nil
}

func (a *App) promptPost(d models.PostInput) (models.PostInput, error) {
	var err error
	if d.Title, err = GetDefault(a.in, "Title", d.Title, a.out); err != nil {
		return d, err
	}
	if d.Date, err = GetDefault(a.in, "Date (YYYY-MM-DD)", d.Date, a.out); err != nil {
		return d, err
	}
	content, err := GetMultiline(a.in, "Comment", a.out)
	if err != nil {
		return d, err
	}
	if content != "" {
		d.Content = content
	}
	vis, err := GetDefault(a.in, "Visibility (PUBLIC, FRIENDS, PRIVATE)", string(d.Visibility), a.out)
	if err != nil {
		return d, err
	}
	d.Visibility = models.Visibility(strings.ToUpper(vis))
	if d.ImagePath, err = GetSimpleText(a.in, "Image file (blank for none)", a.out); err != nil {
		return d, err
	}
	return d, nil
}

func (a *App) DeletePost(ctx context.Context, args []string) error {
	id, err := idArg(args, "delpost <id>")
	if err != nil {
		return err
	}
	removed, err := a.posts.Delete(ctx, id, a.confirmer())
	if err != nil {
		return err
	}
	if removed {
		a.printf("Deleted post #%d.\n", id)
	}
	return nil
}

// loadMine refreshes the user's own posts. A failed refresh still lets the
// calendar show what is cached.
func (a *App) loadMine(ctx context.Context) {
	if err := a.posts.Load(ctx, services.PostsMine); err != nil {
		a.logger.Warn(ctx, "showing cached posts", "error", err)
	}
}

func (a *App) Calendar(ctx context.Context, args []string) error {
	month := a.now()
	if len(args) > 0 {
		m, err := time.Parse("2006-01", args[0])
		if err != nil {
			return usage("calendar [YYYY-MM]")
		}
		month = m
	}
	a.loadMine(ctx)

	days := a.posts.Calendar(month)
	st := a.style()
	a.printf("%s\n", st.Title.Render(month.Format("January 2006")))
	if len(days) == 0 {
		a.printf("No posts this month.\n")
		return nil
	}
	keys := make([]int, 0, len(days))
	for d := range days {
		keys = append(keys, d)
	}
	sort.Ints(keys)
	for _, d := range keys {
		titles := make([]string, 0, len(days[d]))
		for _, p := range days[d] {
			titles = append(titles, p.Title)
		}
		a.printf("%2d  %s\n", d, strings.Join(titles, ", "))
	}
	return nil
}

func (a *App) Day(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return usage("day <YYYY-MM-DD>")
	}
	day, err := time.Parse(models.DateLayout, args[0])
	if err != nil {
		return usage("day <YYYY-MM-DD>")
	}
	a.loadMine(ctx)

	list := a.posts.Day(day)
	if len(list) == 0 {
		a.printf("No posts on %s.\n", args[0])
		return nil
	}
	for _, p := range list {
		a.printf("%s\n", a.postLine(p))
	}
	return nil
}

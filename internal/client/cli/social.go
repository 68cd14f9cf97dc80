package cli

import (
	"context"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/dmara/internal/client/models"
)

func (a *App) userLine(u models.UserSummary) string {
	st := a.style()
	mark := ""
	if u.IsFollowing {
		mark = " " + st.Badge.Render("following")
	}
	return "#" + strconv.FormatInt(u.ID, 10) + " " + st.Title.Render(u.Name()) + " " + st.Muted.Render("@"+u.Username) + mark
}

func (a *App) printUsers(list []models.UserSummary, empty string) {
	if len(list) == 0 {
		a.printf("%s\n", empty)
		return
	}
	for _, u := range list {
		a.printf("%s\n", a.userLine(u))
	}
}

func (a *App) ListFollowing(ctx context.Context) error {
	if err := a.social.Following().Load(ctx); err != nil {
		return err
	}
	a.printUsers(a.social.Following().Snapshot(), "You are not following anyone.")
	return nil
}

func (a *App) ListFollowers(ctx context.Context) error {
	if err := a.social.Followers().Load(ctx); err != nil {
		return err
	}
	a.printUsers(a.social.Followers().Snapshot(), "No followers yet.")
	return nil
}

// Follow toggles following the user.
func (a *App) Follow(ctx context.Context, args []string) error {
	id, err := idArg(args, "follow <user id>")
	if err != nil {
		return err
	}
	if err := a.social.ToggleFollow(ctx, id); err != nil {
		return err
	}
	for _, c := range []interface {
		Get(int64) (models.UserSummary, bool)
	}{a.social.Followers(), a.social.Following()} {
		if u, ok := c.Get(id); ok {
			a.printf("%s\n", a.userLine(u))
			return nil
		}
	}
	a.printf("Done.\n")
	return nil
}

func (a *App) RemoveFollower(ctx context.Context, args []string) error {
	id, err := idArg(args, "unfollower <user id>")
	if err != nil {
		return err
	}
	removed, err := a.social.RemoveFollower(ctx, id, a.confirmer())
	if err != nil {
		return err
	}
	if removed {
		a.printf("Follower removed.\n")
	}
	return nil
}

func (a *App) SearchUsers(ctx context.Context, args []string) error {
	users, err := a.social.SearchUsers(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	a.printUsers(users, "No users found.")
	return nil
}

func (a *App) Notifications(ctx context.Context) error {
	if err := a.notes.Load(ctx); err != nil {
		return err
	}
	list := a.notes.Cache().Snapshot()
	if len(list) == 0 {
		a.printf("No notifications.\n")
		return nil
	}
	st := a.style()
	for _, n := range list {
		who := n.Sender.Nickname
		if who == "" {
			who = n.Sender.Username
		}
		var text string
		switch n.Type {
		case models.NotificationFollow:
			text = who + " started following you"
		case models.NotificationLike:
			text = who + " liked your post #" + strconv.FormatInt(n.RelatedID, 10)
		default:
			text = who + ": " + string(n.Type)
		}
		dot := "  "
		if !n.IsRead {
			dot = st.Badge.Render("● ")
		}
		a.printf("%s#%-5d %s %s\n", dot, n.ID, text, st.Muted.Render(n.CreatedAt.Format("2006-01-02 15:04")))
	}
	a.printf("%d unread\n", a.notes.Unread())
	return nil
}

// MarkRead marks one notification read, or all of them without an id.
func (a *App) MarkRead(ctx context.Context, args []string) error {
	if len(args) == 0 {
		if err := a.notes.MarkAllRead(ctx); err != nil {
			return err
		}
		a.printf("All notifications read.\n")
		return nil
	}
	id, err := idArg(args, "read [id]")
	if err != nil {
		return err
	}
	return a.notes.MarkRead(ctx, id)
}

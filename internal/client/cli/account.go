package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/dmara/internal/client/models"
	"github.com/dmitrijs2005/dmara/internal/client/services"
)

// Login signs in with Google when it is configured, else with an API key.
// "login token" always asks for the key.
func (a *App) Login(ctx context.Context, args []string) error {
	var (
		id  *models.Identity
		err error
	)
	useToken := len(args) > 0 && args[0] == "token"
	if !useToken {
		id, err = a.auth.LoginWithGoogle(ctx, func(url string) {
			a.printf("Open this address to sign in with Google:\n  %s\n", url)
		})
		if errors.Is(err, services.ErrGoogleUnavailable) {
			useToken = true
		} else if err != nil {
			return err
		}
	}
	if useToken {
		key, err := getSecret("API key", a.out)
		if err != nil {
			return err
		}
		if id, err = a.auth.LoginWithToken(ctx, key); err != nil {
			return err
		}
	}
	a.printf("Logged in as %s.\n", a.style().Title.Render(id.Username))
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	a.printf("Logged out.\n")
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	id, err := a.auth.WhoAmI(ctx)
	if err != nil {
		return err
	}
	a.printf("%s <%s> (id %d)\n", id.Username, id.Email, id.PK)
	return nil
}

func (a *App) ShowProfile(ctx context.Context) error {
	p, err := a.profile.Get(ctx)
	if err != nil {
		return err
	}
	st := a.style()
	a.printf("%s\n", st.Title.Render(p.Nickname))
	if p.Bio != "" {
		a.printf("%s\n", p.Bio)
	}
	if u := a.profile.ImageURL(p); u != "" {
		a.printf("%s\n", st.Muted.Render(u))
	}
	return nil
}

// EditProfile asks for each field with the current value as default and
// sends only the fields that changed.
func (a *App) EditProfile(ctx context.Context) error {
	cur, err := a.profile.Get(ctx)
	if err != nil {
		return err
	}
	nick, err := GetDefault(a.in, "Nickname", cur.Nickname, a.out)
	if err != nil {
		return err
	}
	bio, err := GetDefault(a.in, "Bio", cur.Bio, a.out)
	if err != nil {
		return err
	}
	img, err := GetSimpleText(a.in, "Profile image file (blank to keep)", a.out)
	if err != nil {
		return err
	}

	var in models.ProfileInput
	if nick != cur.Nickname {
		in.Nickname = &nick
	}
	if bio != cur.Bio {
		in.Bio = &bio
	}
	in.ImagePath = img

	p, err := a.profile.Update(ctx, in)
	if err != nil {
		return err
	}
	a.printf("Profile saved: %s\n", p.Nickname)
	return nil
}

func (a *App) Theme(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.printf("Theme colour: %s\n", a.style().Title.Render(a.session.Theme(ctx)))
		return nil
	}
	if err := a.session.SetTheme(ctx, args[0]); err != nil {
		return err
	}
	a.printf("Theme colour set to %s\n", a.style().Title.Render(a.session.Theme(ctx)))
	return nil
}

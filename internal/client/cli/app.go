package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/term"

	"github.com/dmitrijs2005/dmara/internal/client/cache"
	"github.com/dmitrijs2005/dmara/internal/client/client"
	"github.com/dmitrijs2005/dmara/internal/client/config"
	"github.com/dmitrijs2005/dmara/internal/client/models"
	"github.com/dmitrijs2005/dmara/internal/client/oauth"
	"github.com/dmitrijs2005/dmara/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/dmara/internal/client/services"
	"github.com/dmitrijs2005/dmara/internal/client/session"
	"github.com/dmitrijs2005/dmara/internal/filex"
	"github.com/dmitrijs2005/dmara/internal/logging"
)

type Mode string

const (
	ModeUnknown Mode = ""
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	cfg    *config.Config
	logger logging.Logger
	in     *bufio.Reader
	rawIn  io.Reader
	out    io.Writer
	tty    bool
	now    func() time.Time

	session   *session.Holder
	catalogue models.Catalogue
	auth      services.AuthService
	profile   services.ProfileService
	posts     services.PostService
	items     services.ItemService
	social    services.SocialService
	notes     services.NotificationService
	picker    Picker

	modeMu sync.Mutex
	mode   Mode

	closers []func() error
}

// NewApp wires storage, the backend client and the services from cfg.
func NewApp(ctx context.Context, cfg *config.Config, logger logging.Logger, in io.Reader, out io.Writer) (*App, error) {
	a := &App{
		cfg:       cfg,
		logger:    logger,
		in:        bufio.NewReader(in),
		rawIn:     in,
		out:       out,
		tty:       in == io.Reader(os.Stdin) && term.IsTerminal(int(os.Stdin.Fd())),
		now:       time.Now,
		catalogue: cfg.Catalogue(),
	}

	repo, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}
	a.session = session.NewHolder(repo, logger)

	routes := client.DefaultRoutes()
	routes.GoogleLogin = cfg.GoogleLoginPath()
	api, err := client.NewHTTPClient(cfg.ServerURL, a.session,
		client.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout}),
		client.WithRoutes(routes),
		client.WithLogger(logger),
	)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	var google services.GoogleTokens
	if cfg.Auth.GoogleClientID != "" {
		google = oauth.NewGoogleProvider(cfg.Auth.GoogleClientID, cfg.Auth.GoogleClientSecret, cfg.Auth.RedirectAddr,
			oauth.WithLogger(logger))
	}

	a.auth = services.NewAuthService(api, a.session, google, logger)
	a.profile = services.NewProfileService(api)
	a.posts = services.NewPostService(api, a.session, logger)
	a.items = services.NewItemService(api, a.session, a.catalogue, logger)
	a.social = services.NewSocialService(api, a.session, logger)
	a.notes = services.NewNotificationService(api, a.session, logger)
	a.picker = newPicker(a, api)
	a.closers = append(a.closers, func() error { return a.auth.Close(context.Background()) })

	a.watchNotices()
	return a, nil
}

func (a *App) openStore(ctx context.Context) (metadata.Repository, error) {
	switch a.cfg.Storage.Driver {
	case "redis":
		rdb := redis.NewClient(&redis.Options{Addr: a.cfg.Storage.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("connect redis %s: %w", a.cfg.Storage.RedisAddr, err)
		}
		a.closers = append(a.closers, rdb.Close)
		return metadata.NewRedisRepository(rdb, ""), nil
	default:
		if _, err := filex.EnsureDirFor(a.cfg.DBPath); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		db, err := client.InitDatabase(ctx, a.cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("error initializing database: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		return metadata.NewSQLiteRepository(db), nil
	}
}

// watchNotices prints rollback notices as they happen.
func (a *App) watchNotices() {
	show := func(n cache.Notice) { a.printf("! %s\n", n) }
	a.posts.Cache().OnNotice(show)
	a.items.Cache().OnNotice(show)
	a.social.Following().OnNotice(show)
	a.social.Followers().OnNotice(show)
	a.notes.Cache().OnNotice(show)
}

// Close releases storage and the HTTP client, newest first.
func (a *App) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}

func (a *App) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(a.out, format, args...)
}

func (a *App) Mode() Mode {
	a.modeMu.Lock()
	defer a.modeMu.Unlock()
	return a.mode
}

func (a *App) setMode(mode Mode) {
	a.modeMu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.modeMu.Unlock()
	if changed {
		a.logger.Info(context.Background(), "connectivity changed", "mode", string(mode))
	}
}

func (a *App) probe(ctx context.Context) {
	pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := a.auth.Ping(pctx); err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}

// StartOnlineStatusWatcher pings the backend every interval until ctx ends.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	a.probe(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.probe(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) status(ctx context.Context) string {
	s := ""
	if _, ok := a.session.Token(ctx); ok {
		s = a.session.Username(ctx)
	}
	if m := a.Mode(); m != ModeUnknown {
		if s != "" {
			s += " "
		}
		s += string(m)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

package cli

import (
	"context"
)

// Root runs the REPL until the user exits or ctx ends. The connectivity
// watcher runs alongside it.
func (a *App) Root(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.printf("Welcome to dmara (type 'help' for commands)\n")
	go a.StartOnlineStatusWatcher(ctx, a.cfg.OnlineCheckInterval)

	runREPL(ctx, a, func() string { return a.status(ctx) }, a.in, a.out)
}

// Package cli is the interactive dmara terminal client.
//
// NewRootCommand builds the cobra command tree. Every command loads the
// layered configuration, opens the session store (SQLite or Redis) and
// wires the backend services into an App. Without a subcommand App.Root
// starts a REPL with a background connectivity watcher.
//
// Searches for new items and post titles go through a Picker: a bubbletea
// screen on a terminal, a numbered line prompt otherwise. Both drive the
// debounced search aggregator.
package cli

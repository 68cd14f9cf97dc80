package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/dmara/internal/client/client"
)

var errUnknownCommand = errors.New("unknown command")

// execIface is the command surface the REPL drives. App implements it.
type execIface interface {
	Exec(ctx context.Context, cmd string, args []string) error
	Help() string
}

// runREPL reads commands from in until EOF, "exit" or "quit". Command
// errors are printed and never end the loop. Commands that prompt read from
// the same reader.
func runREPL(ctx context.Context, a execIface, statusFn func() string, in *bufio.Reader, out io.Writer) {
	for {
		fmt.Fprintf(out, "dmara %s> ", statusFn())
		line, err := in.ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintln(out)
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := strings.ToLower(parts[0]), parts[1:]

		switch cmd {
		case "help", "?":
			fmt.Fprintln(out, a.Help())
		case "exit", "quit":
			fmt.Fprintln(out, "Bye!")
			return
		default:
			err := a.Exec(ctx, cmd, args)
			switch {
			case err == nil:
			case errors.Is(err, errUnknownCommand):
				fmt.Fprintln(out, "Unknown command:", cmd)
			case errors.Is(err, context.Canceled):
				fmt.Fprintln(out, "Cancelled.")
			default:
				fmt.Fprintln(out, "Error:", client.Reason(err))
			}
		}
		if ctx.Err() != nil {
			return
		}
	}
}

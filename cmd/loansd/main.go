// Command loansd serves the library loans API and manages its database.
//
//	loansd migrate --store=postgres --dsn=postgres://...
//	loansd seed --store=sqlite --sqlite-path=loans.db
//	loansd create-admin --email=admin@example.com
//	loansd serve --listen=:8080 --metrics-listen=:9090
//
// Every flag can also be set as LOANS_<FLAG> (dashes become underscores) or in the file named by --config.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

var version = "dev"

func main() {
	os.Exit(submain(context.Background()))
}

func submain(ctx context.Context) int {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintf(os.Stderr, "%s\n", err)
		}

		return 1
	}

	return 0
}

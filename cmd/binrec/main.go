package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/chaisql/binrec"
	"github.com/chaisql/binrec/cmd/binrec/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := commands.NewApp()

	err := app.Run(ctx, os.Args)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: %v\n", err)
		if hints := binrec.Hints(err); hints != "" {
			_, _ = fmt.Fprintf(os.Stderr, "hint: %s\n", hints)
		}
		stop()
		os.Exit(2)
	}
}

package commands

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/urfave/cli/v3"
)

// NewVersionCommand returns a cli.Command for "binrec version".
func NewVersionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Shows binrec CLI version",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			info, ok := debug.ReadBuildInfo()
			if !ok {
				fmt.Println(`version not available in GOPATH mode; use "go install" with Go modules enabled`)
				return nil
			}

			fmt.Printf("binrec %v\n", info.Main.Version)
			return nil
		},
	}
}

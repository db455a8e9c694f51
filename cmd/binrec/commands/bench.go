package commands

import (
	"context"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/chaisql/binrec"
	"github.com/chaisql/binrec/cmd/binrec/dbutil"
	"github.com/cockroachdb/errors"
	"github.com/urfave/cli/v3"
)

// NewBenchCommand returns a cli.Command for "binrec bench".
func NewBenchCommand() *cli.Command {
	cmd := cli.Command{
		Name:      "bench",
		Usage:     "Simple load testing command",
		UsageText: `binrec bench [options] json`,
		Description: `The bench command builds and parses a record repeatedly from several goroutines
(one per CPU by default, -w option) and outputs the average durations.

$ binrec bench -s schema.json -r Person -n 100000 '{"name": "Bob", "age": 25, "id": 69696969}'
{
  "totalRecords": 800000,
  "recordSize": 13,
  ...
}

Each parsed record is compared with the input record.`,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "number",
				Aliases: []string{"n"},
				Value:   10000,
				Usage:   "Number of records built and parsed by each worker.",
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"w"},
				Value:   runtime.GOMAXPROCS(0),
				Usage:   "Number of concurrent workers.",
			},
		},
	}

	cmd.Action = func(ctx context.Context, cmd *cli.Command) error {
		if !cmd.Args().Present() {
			return errors.New(cmd.UsageText)
		}

		e, s, err := loadRecord(cmd)
		if err != nil {
			return err
		}

		var rec *binrec.Record
		err = dbutil.ReadRecords(e, s, strings.NewReader(cmd.Args().First()), func(r *binrec.Record) error {
			rec = r
			return io.EOF
		})
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		if rec == nil {
			return errors.New("no record to benchmark")
		}

		_, err = dbutil.Bench(ctx, rec, os.Stdout, dbutil.BenchOptions{
			N:       cmd.Int("number"),
			Workers: cmd.Int("workers"),
		})
		return err
	}

	return &cmd
}

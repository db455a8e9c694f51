package commands

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/chaisql/binrec/cmd/binrec/dbutil"
	"github.com/cockroachdb/errors"
	"github.com/urfave/cli/v3"
)

// NewPutCommand returns a cli.Command for "binrec put".
func NewPutCommand() *cli.Command {
	cmd := cli.Command{
		Name:      "put",
		Usage:     "Store json objects as binary records",
		UsageText: `binrec put [options] [json]`,
		Description: `The put command encodes json objects and stores them in a database.
The objects are read from the argument if any, or from STDIN otherwise.
All the objects are stored atomically and the id of each record is printed.

$ binrec put -s schema.json -r Person -p my.db '{"name": "Bob", "age": 25, "id": 69696969}'
2QhSMTqQZ1nFXbvQ8GnQLTPdV1E`,
		Flags: []cli.Flag{
			newPathFlag(),
		},
	}

	cmd.Action = func(ctx context.Context, cmd *cli.Command) error {
		e, s, err := loadRecord(cmd)
		if err != nil {
			return err
		}

		db, err := dbutil.OpenDB(e, cmd.String("path"))
		if err != nil {
			return err
		}
		defer db.Close()

		var r io.Reader = os.Stdin
		if cmd.Args().Present() {
			r = strings.NewReader(cmd.Args().First())
		}

		return dbutil.InsertJSON(e, db, s, r, os.Stdout)
	}

	return &cmd
}

// NewGetCommand returns a cli.Command for "binrec get".
func NewGetCommand() *cli.Command {
	cmd := cli.Command{
		Name:      "get",
		Usage:     "Print a stored record as json",
		UsageText: `binrec get [options] id`,
		Flags: []cli.Flag{
			newPathFlag(),
		},
	}

	cmd.Action = func(ctx context.Context, cmd *cli.Command) error {
		id := cmd.Args().First()
		if id == "" {
			return errors.New(cmd.UsageText)
		}

		e, s, err := loadRecord(cmd)
		if err != nil {
			return err
		}

		db, err := dbutil.OpenDB(e, cmd.String("path"))
		if err != nil {
			return err
		}
		defer db.Close()

		return dbutil.Get(db, s, id, os.Stdout)
	}

	return &cmd
}

// NewDumpCommand returns a cli.Command for "binrec dump".
func NewDumpCommand() *cli.Command {
	cmd := cli.Command{
		Name:      "dump",
		Usage:     "Dump the records of a database as json",
		UsageText: `binrec dump [options]`,
		Description: `The dump command writes the records of a database as json, one object per line.

By default, every record type of the schema file is dumped to the standard output:

$ binrec dump -s schema.json -p my.db
{"id":"2QhSMTqQZ1nFXbvQ8GnQLTPdV1E","record":"Person","value":{"name":"Bob","age":25,"id":69696969}}

It is possible to select record types:

$ binrec dump -s schema.json -p my.db -t Pet -t Person

The dump command can also write directly into a file:

$ binrec dump -s schema.json -p my.db -f dump.jsonl`,
		Flags: []cli.Flag{
			newPathFlag(),
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "name of the file to output to. Defaults to STDOUT.",
			},
			&cli.StringSliceFlag{
				Name:    "type",
				Aliases: []string{"t"},
				Usage:   "name of a record type to dump. Defaults to all record types.",
			},
		},
	}

	cmd.Action = func(ctx context.Context, cmd *cli.Command) error {
		e, err := loadEnv(cmd)
		if err != nil {
			return err
		}

		schemas, err := e.Records(cmd.StringSlice("type")...)
		if err != nil {
			return err
		}

		db, err := dbutil.OpenDB(e, cmd.String("path"))
		if err != nil {
			return err
		}
		defer db.Close()

		var w io.Writer = os.Stdout

		if f := cmd.String("file"); f != "" {
			file, err := os.Create(f)
			if err != nil {
				return err
			}
			defer file.Close()

			w = file
		}

		return dbutil.Dump(ctx, db, w, schemas...)
	}

	return &cmd
}

package commands

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/chaisql/binrec/cmd/binrec/dbutil"
	"github.com/urfave/cli/v3"
)

// NewEncodeCommand returns a cli.Command for "binrec encode".
func NewEncodeCommand() *cli.Command {
	cmd := cli.Command{
		Name:      "encode",
		Usage:     "Encode json objects as binary records",
		UsageText: `binrec encode [options] [json]`,
		Description: `The encode command reads json objects and writes their binary encoding.
The objects are read from the argument if any, or from STDIN otherwise. STDIN can be either
a stream of objects or an array of objects.

$ binrec encode -s schema.json -r Person --hex '{"name": "Bob", "age": 25, "id": 69696969}'
03426f6219c97d270400000000

Without --hex, records are written back to back as raw bytes.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "hex",
				Usage: "Write each record as a line of hexadecimal.",
			},
		},
	}

	cmd.Action = func(ctx context.Context, cmd *cli.Command) error {
		e, s, err := loadRecord(cmd)
		if err != nil {
			return err
		}

		var r io.Reader = os.Stdin
		if cmd.Args().Present() {
			r = strings.NewReader(cmd.Args().First())
		}

		return dbutil.Encode(e, s, r, os.Stdout, cmd.Bool("hex"))
	}

	return &cmd
}

// NewDecodeCommand returns a cli.Command for "binrec decode".
func NewDecodeCommand() *cli.Command {
	cmd := cli.Command{
		Name:      "decode",
		Usage:     "Decode binary records as json objects",
		UsageText: `binrec decode [options] [file]`,
		Description: `The decode command reads binary records and writes them as json, one object per line.
The records are read from the file if any, or from STDIN otherwise.

$ echo 03426f6219c97d270400000000 | binrec decode -s schema.json -r Person --hex
{"name":"Bob","age":25,"id":69696969}`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "hex",
				Usage: "Read one record in hexadecimal per line.",
			},
		},
	}

	cmd.Action = func(ctx context.Context, cmd *cli.Command) error {
		_, s, err := loadRecord(cmd)
		if err != nil {
			return err
		}

		var r io.Reader = os.Stdin
		if cmd.Args().Present() {
			f, err := os.Open(cmd.Args().First())
			if err != nil {
				return err
			}
			defer f.Close()

			r = f
		}

		return dbutil.Decode(s, r, os.Stdout, cmd.Bool("hex"))
	}

	return &cmd
}

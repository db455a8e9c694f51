package commands

import (
	"github.com/chaisql/binrec"
	"github.com/chaisql/binrec/cmd/binrec/dbutil"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// NewApp creates the binrec CLI app.
func NewApp() *cli.Command {
	return &cli.Command{
		Name:                  "binrec",
		Usage:                 "Encode, decode and store binary records",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "schema",
				Aliases: []string{"s"},
				Usage:   "Path of the JSON schema file defining the records.",
				Sources: cli.EnvVars("BINREC_SCHEMA"),
			},
			&cli.StringFlag{
				Name:    "record",
				Aliases: []string{"r"},
				Usage:   "Name of the record. Defaults to the last record of the schema file.",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Log registry and storage events to STDERR.",
			},
		},
		Commands: []*cli.Command{
			NewEncodeCommand(),
			NewDecodeCommand(),
			NewPutCommand(),
			NewGetCommand(),
			NewDumpCommand(),
			NewBenchCommand(),
			NewVersionCommand(),
		},
	}
}

func newPathFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "path",
		Aliases: []string{"p"},
		Usage:   "Path of the database to open or create. If not specified, the database will be in-memory.",
		Sources: cli.EnvVars("BINREC_PATH"),
	}
}

// loadEnv loads the schema file selected by the flags of cmd.
func loadEnv(cmd *cli.Command) (*dbutil.Env, error) {
	logger := zap.NewNop()
	if cmd.Bool("verbose") {
		var err error
		logger, err = zap.NewDevelopment()
		if err != nil {
			return nil, err
		}
	}

	return dbutil.LoadEnv(cmd.String("schema"), logger)
}

// loadRecord loads the schema file and returns the schema of the selected record.
func loadRecord(cmd *cli.Command) (*dbutil.Env, *binrec.Schema, error) {
	e, err := loadEnv(cmd)
	if err != nil {
		return nil, nil, err
	}

	s, err := e.Record(cmd.String("record"))
	if err != nil {
		return nil, nil, err
	}

	return e, s, nil
}

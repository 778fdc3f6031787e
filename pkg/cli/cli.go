package cli

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/omnix/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

type Error struct {
	Code    int
	Message string
}

func Run(ctx context.Context, argv []string) *Error {
	if err := newApp(os.Stdout, os.Stderr).Run(ctx, argv); err != nil {
		logging.Default().Error("command failed", "error", err)
		return &Error{
			Code:    1,
			Message: err.Error(),
		}
	}

	return nil
}

func newApp(w, logOutput io.Writer) *cli.Command {
	var (
		logLevel  string
		logFormat string
	)

	return &cli.Command{
		Name:   "omnix",
		Usage:  "Evidence research and eco-score for electronic products",
		Writer: w,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Aliases:     []string{"l"},
				Usage:       "Log level (debug, info, warn, error)",
				Value:       "info",
				Sources:     cli.EnvVars("OMNIX_LOG_LEVEL"),
				Destination: &logLevel,
			},
			&cli.StringFlag{
				Name:        "log-format",
				Usage:       "Log format (console, json)",
				Value:       string(logging.FormatConsole),
				Sources:     cli.EnvVars("OMNIX_LOG_FORMAT"),
				Destination: &logFormat,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			logger := logging.New(logLevel, logOutput, logging.WithFormat(logging.Format(logFormat)))
			logging.SetDefault(logger)
			return logging.With(ctx, logger), nil
		},
		Commands: []*cli.Command{
			researchCommand(),
			scoreCommand(),
			originsCommand(),
			serveCommand(),
		},
	}
}

// readJSON decodes a JSON file into v. Path "-" reads from stdin.
func readJSON(path string, v any) error {
	if path == "" {
		return goerr.New("input file path is required")
	}

	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return goerr.Wrap(err, "failed to read input file", goerr.V("path", path))
	}

	if err := json.Unmarshal(data, v); err != nil {
		return goerr.Wrap(err, "failed to parse JSON", goerr.V("path", path))
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return goerr.Wrap(err, "failed to write output")
	}
	return nil
}

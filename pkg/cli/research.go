package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/omnix/pkg/model"
	"github.com/m-mizutani/omnix/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func researchCommand() *cli.Command {
	var (
		cfg       config
		inputPath string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "input",
			Aliases:     []string{"i"},
			Usage:       "Path to JSON file containing the detected product (- for stdin)",
			Sources:     cli.EnvVars("OMNIX_INPUT"),
			Destination: &inputPath,
		},
	}
	flags = append(flags, cacheFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)
	flags = append(flags, researchFlags(&cfg)...)
	flags = append(flags, originFlags(&cfg)...)

	return &cli.Command{
		Name:  "research",
		Usage: "Build the evidence pack and origin pins of a product",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			var product model.DetectedProduct
			if err := readJSON(inputPath, &product); err != nil {
				return err
			}
			if err := product.Validate(); err != nil {
				return goerr.Wrap(err, "invalid product")
			}

			// Initialize dependencies
			cache, closer, err := cfg.newCache(ctx)
			if err != nil {
				return err
			}
			defer func() {
				if err := closer.Close(); err != nil {
					logging.From(ctx).Warn("failed to close cache", "error", err)
				}
			}()

			gemini, err := cfg.newGemini(ctx)
			if err != nil {
				return err
			}

			uc, err := cfg.newResearch(ctx, cache, gemini)
			if err != nil {
				return err
			}

			result, err := uc.Research(ctx, &product)
			if err != nil {
				return goerr.Wrap(err, "failed to research product")
			}

			return writeJSON(c.Root().Writer, result)
		},
	}
}

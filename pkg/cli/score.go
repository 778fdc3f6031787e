package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/omnix/pkg/adapter"
	"github.com/m-mizutani/omnix/pkg/model"
	"github.com/urfave/cli/v3"
)

func scoreCommand() *cli.Command {
	var (
		cfg       config
		inputPath string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "input",
			Aliases:     []string{"i"},
			Usage:       "Path to JSON file containing detectedProduct, evidencePack and originPins (- for stdin)",
			Sources:     cli.EnvVars("OMNIX_INPUT"),
			Destination: &inputPath,
		},
	}
	flags = append(flags, llmFlags(&cfg)...)

	return &cli.Command{
		Name:  "score",
		Usage: "Calculate the eco-score of a product from its evidence",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			var req model.ScoreRequest
			if err := readJSON(inputPath, &req); err != nil {
				return err
			}

			var gemini *adapter.GeminiClient
			if cfg.geminiProject != "" {
				client, err := cfg.newGemini(ctx)
				if err != nil {
					return err
				}
				gemini = client
			}

			uc, err := cfg.newEcoScore(ctx, gemini)
			if err != nil {
				return err
			}

			score, err := uc.Score(ctx, &req)
			if err != nil {
				return goerr.Wrap(err, "failed to calculate eco score")
			}

			return writeJSON(c.Root().Writer, score)
		},
	}
}

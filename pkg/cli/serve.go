package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/m-mizutani/omnix/pkg/server"
	"github.com/m-mizutani/omnix/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func serveCommand() *cli.Command {
	var (
		cfg  config
		addr string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "Listen address",
			Value:       ":8080",
			Sources:     cli.EnvVars("OMNIX_ADDR"),
			Destination: &addr,
		},
	}
	flags = append(flags, cacheFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)
	flags = append(flags, researchFlags(&cfg)...)
	flags = append(flags, originFlags(&cfg)...)

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve research and eco-score over HTTP",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

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

			researchUC, err := cfg.newResearch(ctx, cache, gemini)
			if err != nil {
				return err
			}

			scoreUC, err := cfg.newEcoScore(ctx, gemini)
			if err != nil {
				return err
			}

			return server.New(researchUC, scoreUC).ListenAndServe(ctx, addr)
		},
	}
}

package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

func originsCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:      "origins",
		Usage:     "Show known origins of a material, or list all known materials",
		ArgsUsage: "[material]",
		Flags:     originFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			index, err := cfg.newOriginIndex()
			if err != nil {
				return err
			}

			w := c.Root().Writer
			if c.NArg() == 0 {
				for _, m := range index.Materials() {
					fmt.Fprintln(w, m)
				}
				return nil
			}

			material := c.Args().First()
			origins := index.Lookup(material)
			if len(origins) == 0 {
				fmt.Fprintf(w, "No known origins for %q\n", material)
				return nil
			}

			for _, o := range origins {
				fmt.Fprintf(w, "%-32s %8.2f %8.2f  %s\n", o.Place, o.Lat, o.Lng, o.Description)
			}
			return nil
		},
	}
}

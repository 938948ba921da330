package commands

import (
	"github.com/spf13/cobra"
	"github.com/walteh/cardsync/cmd/cardsync/opts"
	"github.com/walteh/cardsync/pkg/synctool"
)

// NewCleanCmd creates a new clean command
func NewCleanCmd(opts *opts.RootOpts) *cobra.Command {
	var flags siteFlags

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove published health cards and the sites index",
		Long: `Clean empties the healthcards folder of the site clone, keeping its
placeholder file, and deletes the sites index. Anything that cannot be
removed is left in place.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := opts.LoadConfig(ctx, flags.overrides(cmd))
			if err != nil {
				return err
			}

			_, err = synctool.Clean(ctx, cfg)
			return err
		},
	}

	flags.addRepo(cmd)

	return cmd
}

package commands

import (
	"github.com/spf13/cobra"
	"github.com/walteh/cardsync/cmd/cardsync/opts"
	"github.com/walteh/cardsync/pkg/config"
	"github.com/walteh/cardsync/pkg/synctool"
)

// NewSyncCmd creates a new sync command
func NewSyncCmd(opts *opts.RootOpts) *cobra.Command {
	var flags siteFlags

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Publish an export folder into the site repository",
		Long: `Sync publishes a health card export into the site clone.
It will:
1. Classify the export (one report, or many pages)
2. Write the report as <SITE_ID>.html with flattened image links
3. Copy images, the landing page and the sites index
4. Optionally stage, commit and push with git`,
		Example: `  cardsync sync --src ~/Exports/LMON-345 --repo ~/src/mbss-healthcards --clean --commit --push
  cardsync sync --src export --lon -77.3092 --lat 39.35986`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := opts.LoadConfig(ctx, flags.overrides(cmd))
			if err != nil {
				return err
			}

			res, err := synctool.Sync(ctx, cfg, synctool.Options{})
			if err != nil {
				return err
			}

			if res.Pushed {
				printPagesHint(cmd, cfg)
			}
			return nil
		},
	}

	flags.addSource(cmd)
	flags.addRepo(cmd)
	flags.addCoordinates(cmd)
	cmd.Flags().BoolVar(&flags.clean, "clean", false, "empty the healthcards folder and remove sites.geojson before copying")
	cmd.Flags().BoolVar(&flags.commit, "commit", false, "git commit after copying")
	cmd.Flags().BoolVar(&flags.push, "push", false, "git push after copying")
	cmd.Flags().StringVarP(&flags.message, "message", "m", config.DefaultMessage, "commit message")

	return cmd
}

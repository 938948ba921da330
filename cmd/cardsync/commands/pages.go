package commands

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/cardsync/cmd/cardsync/opts"
	"github.com/walteh/cardsync/pkg/config"
	"github.com/walteh/cardsync/pkg/git"
	"github.com/walteh/cardsync/pkg/pages"
)

// NewPagesCmd creates a new pages command
func NewPagesCmd(opts *opts.RootOpts) *cobra.Command {
	var flags siteFlags
	var remote string

	cmd := &cobra.Command{
		Use:   "pages",
		Short: "Print the GitHub Pages address of the site repository",
		Long: `Pages looks up where GitHub Pages serves the site clone's remote.
GITHUB_TOKEN, from the environment or a .env file, is used when set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := opts.LoadConfig(ctx, flags.overrides(cmd))
			if err != nil {
				return err
			}

			site, err := resolvePages(cmd, cfg, remote)
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), pterm.Success.Sprintfln("%s/%s is served at %s", site.Owner, site.Repo, site.URL))
			if !site.FromAPI {
				fmt.Fprint(cmd.OutOrStdout(), pterm.Info.Sprintln("address derived from the remote name, the API did not confirm it"))
			}
			return nil
		},
	}

	flags.addRepo(cmd)
	cmd.Flags().StringVar(&remote, "remote", "origin", "git remote to look up")

	return cmd
}

func resolvePages(cmd *cobra.Command, cfg *config.Config, remote string) (*pages.Site, error) {
	ctx := cmd.Context()

	repo, err := git.Open(cfg.Destination)
	if err != nil {
		return nil, err
	}
	url, err := repo.RemoteURL(ctx, remote)
	if err != nil {
		return nil, err
	}
	return pages.NewResolver(ctx, os.Getenv("GITHUB_TOKEN")).Resolve(ctx, url)
}

// printPagesHint tells the user where to check a pushed site, best effort
func printPagesHint(cmd *cobra.Command, cfg *config.Config) {
	site, err := resolvePages(cmd, cfg, "origin")
	if err != nil {
		zerolog.Ctx(cmd.Context()).Debug().Err(err).Msg("no pages address for the pushed site")
		return
	}
	out := cmd.OutOrStdout()
	fmt.Fprint(out, pterm.Info.Sprintfln("Next check: open %s", site.URL))
	fmt.Fprint(out, pterm.Info.Sprintln("If the update does not show, hard refresh the page (Ctrl+F5)."))
}

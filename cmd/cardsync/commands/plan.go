package commands

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/walteh/cardsync/cmd/cardsync/opts"
	"github.com/walteh/cardsync/pkg/extract"
	"github.com/walteh/cardsync/pkg/synctool"
	"gitlab.com/tozd/go/errors"
)

// NewPlanCmd creates a new plan command
func NewPlanCmd(opts *opts.RootOpts) *cobra.Command {
	var flags siteFlags

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show what sync would publish without writing anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := opts.LoadConfig(ctx, flags.overrides(cmd))
			if err != nil {
				return err
			}

			p, err := synctool.Plan(ctx, cfg, synctool.Options{})
			if err != nil {
				return err
			}

			table, err := renderPlan(p)
			if err != nil {
				return errors.Errorf("rendering plan: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), table)

			for _, w := range p.Bundle.Warnings {
				fmt.Fprint(cmd.OutOrStdout(), pterm.Warning.Sprintln(w))
			}
			return nil
		},
	}

	flags.addSource(cmd)
	flags.addRepo(cmd)
	flags.addCoordinates(cmd)

	return cmd
}

func renderPlan(p *synctool.Preview) (string, error) {
	data := pterm.TableData{
		{"Item", "Value"},
		{"Export", p.Bundle.Root},
		{"Mode", p.Mode.String()},
	}
	if p.Report != "" {
		data = append(data,
			[]string{"Report", p.Report},
			[]string{"Publish as", p.Target},
			[]string{"Image links rewritten", fmt.Sprint(p.Rewritten)},
		)
	}
	data = append(data,
		[]string{"HTML files", fmt.Sprint(p.HTML)},
		[]string{"Images", fmt.Sprint(p.Images)},
		[]string{"Sites index", p.Sites.String()},
	)
	for _, f := range extract.Fields {
		if v, ok := p.Metadata[f]; ok {
			data = append(data, []string{f.String(), fmt.Sprint(v)})
		}
	}
	if names := p.ImageNames(); len(names) > 0 {
		data = append(data, []string{"Image names", strings.Join(names, ", ")})
	}

	return pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
}

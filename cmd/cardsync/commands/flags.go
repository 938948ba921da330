package commands

import (
	"github.com/spf13/cobra"
	"github.com/walteh/cardsync/pkg/config"
)

// siteFlags are the command line values that can override the config file
type siteFlags struct {
	src     string
	repo    string
	message string
	clean   bool
	commit  bool
	push    bool
	lon     float64
	lat     float64
}

func (f *siteFlags) addSource(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.src, "src", "", "export folder holding the health card (and usually index.html)")
}

func (f *siteFlags) addRepo(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.repo, "repo", ".", "site repository clone to publish into")
}

func (f *siteFlags) addCoordinates(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.lon, "lon", 0, "site longitude, used to build sites.geojson when the export has none")
	cmd.Flags().Float64Var(&f.lat, "lat", 0, "site latitude, used to build sites.geojson when the export has none")
}

// overrides returns only the flags the user actually typed
func (f *siteFlags) overrides(cmd *cobra.Command) config.Overrides {
	var o config.Overrides
	changed := cmd.Flags().Changed
	if changed("src") {
		o.Source = &f.src
	}
	if changed("repo") {
		o.Destination = &f.repo
	}
	if changed("message") {
		o.Message = &f.message
	}
	if changed("clean") {
		o.Clean = &f.clean
	}
	if changed("commit") {
		o.Commit = &f.commit
	}
	if changed("push") {
		o.Push = &f.push
	}
	if changed("lon") {
		o.Lon = &f.lon
	}
	if changed("lat") {
		o.Lat = &f.lat
	}
	return o
}

// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package materialize writes a classified export into the destination site:
// the landing page, the flattened healthcards folder and the sites index.
package materialize

import (
	"path"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// 🗂️ Layout is where things land inside the destination site. All paths are
// slash separated and relative to the destination root.
type Layout struct {
	LandingPage    string `json:"landing_page" yaml:"landing_page" hcl:"landing_page,optional"`
	HealthcardsDir string `json:"healthcards_dir" yaml:"healthcards_dir" hcl:"healthcards_dir,optional"`
	SitesFile      string `json:"sites_file" yaml:"sites_file" hcl:"sites_file,optional"`
	Placeholder    string `json:"placeholder" yaml:"placeholder" hcl:"placeholder,optional"`
}

// DefaultLayout is the layout the map front end reads
func DefaultLayout() Layout {
	return Layout{
		LandingPage:    "index.html",
		HealthcardsDir: "data/healthcards",
		SitesFile:      "data/sites.geojson",
		Placeholder:    ".gitkeep",
	}
}

// WithDefaults fills empty fields from DefaultLayout
func (l Layout) WithDefaults() Layout {
	def := DefaultLayout()
	if l.LandingPage == "" {
		l.LandingPage = def.LandingPage
	}
	if l.HealthcardsDir == "" {
		l.HealthcardsDir = def.HealthcardsDir
	}
	if l.SitesFile == "" {
		l.SitesFile = def.SitesFile
	}
	if l.Placeholder == "" {
		l.Placeholder = def.Placeholder
	}
	return l
}

// Validate rejects paths that would escape the destination
func (l Layout) Validate() error {
	for name, p := range map[string]string{
		"landing_page":    l.LandingPage,
		"healthcards_dir": l.HealthcardsDir,
		"sites_file":      l.SitesFile,
	} {
		if p == "" {
			return errors.Errorf("layout %s is empty", name)
		}
		if path.IsAbs(p) || strings.Contains(p, "\\") || strings.HasPrefix(path.Clean(p), "..") {
			return errors.Errorf("layout %s must be a relative slash path inside the site: %q", name, p)
		}
	}
	if strings.ContainsAny(l.Placeholder, "/\\") {
		return errors.Errorf("layout placeholder must be a file name: %q", l.Placeholder)
	}
	return nil
}

// Card returns the destination relative path of a file in the healthcards folder
func (l Layout) Card(name string) string {
	return path.Join(l.HealthcardsDir, name)
}

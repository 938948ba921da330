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

package synctool

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/walteh/cardsync/pkg/config"
	"github.com/walteh/cardsync/pkg/discover"
	"github.com/walteh/cardsync/pkg/extract"
	"github.com/walteh/cardsync/pkg/geo"
	"github.com/walteh/cardsync/pkg/materialize"
	"github.com/walteh/cardsync/pkg/precondition"
	"github.com/walteh/cardsync/pkg/transform"
	"gitlab.com/tozd/go/errors"
)

// 🗺️ Preview is what a sync would publish, computed without writing
type Preview struct {
	Bundle *discover.Bundle
	Mode   discover.Mode
	// Report is the source report relative to the export root, single mode only
	Report string
	// Target is the destination relative path the report would get
	Target    string
	Metadata  extract.Metadata
	Rewritten int
	HTML      int
	Images    int
	// Sites says where the sites index would come from
	Sites materialize.SitesSource
}

// 🔍 Plan runs discovery, extraction and transformation and reports the result
func Plan(ctx context.Context, cfg *config.Config, opts Options) (*Preview, error) {
	ctx, _ = WithRunID(ctx)

	if cfg.Source == "" {
		return nil, precondition.Errorf("no source folder given, pass --src")
	}

	bundle, err := discover.Discover(ctx, cfg.Source, cfg.DiscoverOptions())
	if err != nil {
		return nil, err
	}

	p := &Preview{
		Bundle: bundle,
		Mode:   bundle.Plan.Mode(),
		Images: len(bundle.Plan.Assets()),
		Sites:  materialize.SitesEmpty,
	}

	switch plan := bundle.Plan.(type) {
	case *discover.SingleReport:
		raw, err := os.ReadFile(plan.Report)
		if err != nil {
			return nil, errors.Errorf("reading report: %w", err)
		}
		now := time.Now
		if opts.Now != nil {
			now = opts.Now
		}
		doc := extract.Parse(plan.Report, raw)
		res := transform.Transform(doc, now())

		p.Report = bundle.Rel(plan.Report)
		p.Target = cfg.Layout.Card(res.FileName)
		p.Metadata = doc.Fields
		p.Rewritten = res.Rewritten
		p.HTML = 1
		if cfg.Coordinates != nil {
			p.Sites = materialize.SitesSynthesized
		}
	case *discover.MultiReport:
		p.HTML = len(plan.HTML)
	}

	if bundle.Sites != "" {
		data, err := os.ReadFile(bundle.Sites)
		if err == nil {
			if _, err := geo.Validate(data); err == nil {
				p.Sites = materialize.SitesCopied
			}
		}
	}

	return p, nil
}

// ImageNames lists the flattened names the plan's images would be published under
func (p *Preview) ImageNames() []string {
	names := make([]string, 0, p.Images)
	for _, img := range p.Bundle.Plan.Assets() {
		names = append(names, filepath.Base(img))
	}
	return names
}

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

package materialize

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/walteh/cardsync/pkg/discover"
	"github.com/walteh/cardsync/pkg/extract"
	"github.com/walteh/cardsync/pkg/geo"
	"github.com/walteh/cardsync/pkg/log"
	"github.com/walteh/cardsync/pkg/precondition"
	"github.com/walteh/cardsync/pkg/status"
	"github.com/walteh/cardsync/pkg/transform"
	"gitlab.com/tozd/go/errors"
)

// 🔧 Options controls a materialization run
type Options struct {
	Layout Layout
	// Clean empties the healthcards folder and sites index before writing
	Clean bool
	// Coordinates, when set, let a missing sites index be synthesized
	Coordinates *geo.Coordinates
	Retries     int
	Delay       time.Duration
	// Now stamps reports that carry no site identifier
	Now func() time.Time
}

// 🌍 SitesSource says where the published sites index came from
type SitesSource int

const (
	SitesNone SitesSource = iota
	SitesCopied
	SitesSynthesized
	SitesEmpty
)

func (s SitesSource) String() string {
	switch s {
	case SitesCopied:
		return "export"
	case SitesSynthesized:
		return "synthesized"
	case SitesEmpty:
		return "empty"
	default:
		return "none"
	}
}

// 📊 Summary is what a run published
type Summary struct {
	Mode discover.Mode
	// Report is the destination relative path of the published report, single mode only
	Report    string
	Metadata  extract.Metadata
	Rewritten int
	HTML      int
	Images    int
	Sites     SitesSource
	Features  int
	Cleaned   int
	Warnings  []string
}

// 🏗️ Materializer writes exports into one destination site
type Materializer struct {
	opts   Options
	status *status.Manager
	copier *Copier
}

// 🏭 New creates a materializer for the destination root
func New(destination string, opts Options, logger *zerolog.Logger) *Materializer {
	opts.Layout = opts.Layout.WithDefaults()
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Materializer{
		opts:   opts,
		status: status.New(destination, logger),
		copier: NewCopier(opts.Retries, opts.Delay),
	}
}

// Status exposes the per file record of what this materializer did
func (m *Materializer) Status() *status.Manager {
	return m.status
}

// Copier exposes the copy policy, mostly so tests can stub the file system
func (m *Materializer) Copier() *Copier {
	return m.copier
}

// prepared holds everything read from the export before the destination is touched
type prepared struct {
	report *transform.Result
	doc    *extract.Document
	sites  []byte
}

// 🚀 Run publishes the bundle. Every precondition is checked and every source
// file that needs parsing is read before the destination changes.
func (m *Materializer) Run(ctx context.Context, b *discover.Bundle) (*Summary, error) {
	logger := zerolog.Ctx(ctx)
	sum := &Summary{Mode: b.Plan.Mode()}

	if b.Landing == "" {
		ok, err := m.status.Exists(ctx, m.opts.Layout.LandingPage)
		if err != nil {
			return nil, errors.Errorf("checking destination landing page: %w", err)
		}
		if !ok {
			return nil, precondition.Errorf("the export has no %s and the destination has none to keep: %s",
				discover.LandingPage, m.status.Abs(m.opts.Layout.LandingPage))
		}
		logger.Debug().Msg("export has no landing page, keeping the destination's")
	}

	prep, err := m.prepare(ctx, b, sum)
	if err != nil {
		return nil, err
	}

	if m.opts.Clean {
		sum.Cleaned = m.Clean(ctx)
	}

	if b.Landing != "" {
		if err := m.publishFile(ctx, b.Landing, m.opts.Layout.LandingPage, "landing"); err != nil {
			return nil, err
		}
	}

	switch plan := b.Plan.(type) {
	case *discover.SingleReport:
		if err := m.publishSingle(ctx, plan, prep, sum); err != nil {
			return nil, err
		}
	case *discover.MultiReport:
		if err := m.publishMulti(ctx, plan, sum); err != nil {
			return nil, err
		}
	default:
		return nil, errors.Errorf("unsupported plan %T", b.Plan)
	}

	if err := m.publishSites(ctx, prep, sum); err != nil {
		return nil, err
	}

	return sum, nil
}

func (m *Materializer) prepare(ctx context.Context, b *discover.Bundle, sum *Summary) (*prepared, error) {
	logger := zerolog.Ctx(ctx)
	prep := &prepared{}

	if single, ok := b.Plan.(*discover.SingleReport); ok {
		raw, err := os.ReadFile(single.Report)
		if err != nil {
			return nil, precondition.Errorf("reading report %s: %v", single.Report, err)
		}
		prep.doc = extract.Parse(single.Report, raw)
		prep.report = transform.Transform(prep.doc, m.opts.Now())
		sum.Metadata = prep.doc.Fields
		sum.Rewritten = prep.report.Rewritten

		if prep.doc.SiteID == "" {
			m.warn(ctx, sum, "report %s carries no site identifier, publishing as %s", b.Rel(single.Report), prep.report.FileName)
		}

		have := make(map[string]bool, len(single.Images))
		for _, img := range single.Images {
			have[filepath.Base(img)] = true
		}
		for _, ref := range prep.doc.Assets {
			if extract.IsExternal(ref) {
				continue
			}
			if name := transform.Basename(ref); !have[name] {
				m.warn(ctx, sum, "report references %s but the export has no image named %s", ref, name)
			}
		}
	}

	if b.Sites != "" {
		data, err := os.ReadFile(b.Sites)
		if err != nil {
			m.warn(ctx, sum, "could not read %s: %v", b.Rel(b.Sites), err)
		} else if _, err := geo.Validate(data); err != nil {
			m.warn(ctx, sum, "ignoring malformed %s: %v", b.Rel(b.Sites), err)
		} else {
			prep.sites = data
		}
	}

	logger.Debug().Bool("report", prep.report != nil).Bool("sites", prep.sites != nil).Msg("export prepared")
	return prep, nil
}

func (m *Materializer) publishSingle(ctx context.Context, plan *discover.SingleReport, prep *prepared, sum *Summary) error {
	sum.Report = m.opts.Layout.Card(prep.report.FileName)
	if err := m.publishContent(ctx, sum.Report, "report", prep.report.Content); err != nil {
		return err
	}
	sum.HTML = 1

	n, err := m.publishFlat(ctx, plan.Images, "image", sum)
	if err != nil {
		return err
	}
	sum.Images = n
	return nil
}

func (m *Materializer) publishMulti(ctx context.Context, plan *discover.MultiReport, sum *Summary) error {
	n, err := m.publishFlat(ctx, plan.HTML, "html", sum)
	if err != nil {
		return err
	}
	sum.HTML = n

	n, err = m.publishFlat(ctx, plan.Images, "image", sum)
	if err != nil {
		return err
	}
	sum.Images = n
	return nil
}

// publishFlat copies files into the healthcards folder by base name, a later
// file with a name already published replaces the earlier one
func (m *Materializer) publishFlat(ctx context.Context, files []string, kind string, sum *Summary) (int, error) {
	seen := make(map[string]string, len(files))
	m.status.StartOperation(ctx, len(files))
	for i, src := range files {
		name := filepath.Base(src)
		if prev, ok := seen[name]; ok {
			m.warn(ctx, sum, "%s %s replaces %s (same name)", kind, src, prev)
		}
		seen[name] = src
		if err := m.publishFile(ctx, src, m.opts.Layout.Card(name), kind); err != nil {
			return i, err
		}
		m.status.UpdateProgress(ctx, i+1)
	}
	m.status.FinishOperation(ctx)
	return len(files), nil
}

func (m *Materializer) publishSites(ctx context.Context, prep *prepared, sum *Summary) error {
	dst := m.opts.Layout.SitesFile

	if prep.sites != nil {
		n, _ := geo.Validate(prep.sites)
		sum.Sites, sum.Features = SitesCopied, n
		return m.publishContent(ctx, dst, "sites", prep.sites)
	}

	fc := geo.Empty()
	switch {
	case m.opts.Coordinates != nil && prep.report != nil:
		fc = geo.Synthesize(*m.opts.Coordinates, prep.doc.Fields, geo.ReportURL(m.opts.Layout.HealthcardsDir, prep.report.FileName))
		sum.Sites = SitesSynthesized
	case m.opts.Coordinates != nil:
		m.warn(ctx, sum, "coordinates were given but the export has no single report to attach them to, writing an empty %s", dst)
		sum.Sites = SitesEmpty
	default:
		m.warn(ctx, sum, "the export has no %s and no coordinates were given, writing an empty %s", discover.SitesFile, dst)
		sum.Sites = SitesEmpty
	}
	sum.Features = len(fc.Features)

	data, err := geo.Encode(fc)
	if err != nil {
		return err
	}
	return m.publishContent(ctx, dst, "sites", data)
}

// publishFile copies src into the destination unless it is already there
func (m *Materializer) publishFile(ctx context.Context, src, rel, kind string) error {
	checksum, err := status.ChecksumFile(src)
	if err != nil {
		return errors.Errorf("reading %s: %w", src, err)
	}
	st := m.status.Compare(ctx, rel, checksum)
	if st != status.StatusUnchanged {
		copied, err := m.copier.Copy(ctx, src, m.status.Abs(rel))
		if err != nil {
			return errors.Errorf("publishing %s: %w", rel, err)
		}
		if !copied {
			st = status.StatusUnchanged
		}
	}

	var size int64
	if info, err := os.Stat(src); err == nil {
		size = info.Size()
	}
	m.track(ctx, rel, kind, st, checksum, size)
	return nil
}

// publishContent atomically writes generated content into the destination
func (m *Materializer) publishContent(ctx context.Context, rel, kind string, content []byte) error {
	checksum := status.Checksum(content)
	st := m.status.Compare(ctx, rel, checksum)
	if st != status.StatusUnchanged {
		err := m.copier.Do(ctx, m.status.Abs(rel), func() error {
			return m.status.WriteFileAtomic(ctx, rel, content)
		})
		if err != nil {
			return errors.Errorf("publishing %s: %w", rel, err)
		}
	}
	m.track(ctx, rel, kind, st, checksum, int64(len(content)))
	return nil
}

func (m *Materializer) track(ctx context.Context, rel, kind string, st status.FileStatus, checksum string, size int64) {
	m.status.Track(ctx, rel, status.FileInfo{
		Kind:     kind,
		Status:   st,
		Size:     size,
		Checksum: checksum,
	})
	log.FromContext(ctx).LogFileOperation(ctx, log.FileOperation{
		Path:       rel,
		Kind:       kind,
		Status:     st.String(),
		IsNew:      st == status.StatusNew,
		IsModified: st == status.StatusModified,
	})
}

func (m *Materializer) warn(ctx context.Context, sum *Summary, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	zerolog.Ctx(ctx).Warn().Msg(msg)
	sum.Warnings = append(sum.Warnings, msg)
}

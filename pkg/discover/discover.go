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

// Package discover classifies an arbitrarily shaped export folder into the
// pieces the publisher knows how to place: one report (or many), images, the
// sites index and the landing page. Absences are never errors here.
package discover

import (
	"context"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/cardsync/pkg/precondition"
	"gitlab.com/tozd/go/errors"
)

const (
	// LandingPage is the site entry point expected at the export root
	LandingPage = "index.html"
	// SitesFile is the geospatial index name searched for in the export
	SitesFile = "sites.geojson"
)

// 🔧 Options tunes how an export is classified
type Options struct {
	// ReportNames are canonical report file names matched case-insensitively at the root
	ReportNames []string
	// TitleMarker must appear (case-insensitively) in a report found by content
	TitleMarker string
	// SignatureTokens must all appear in a report found by content
	SignatureTokens []string
	// ImagePatterns are doublestar patterns matched against relative paths, ignoring case
	ImagePatterns []string
	// IgnorePatterns exclude files from every classification
	IgnorePatterns []string
}

// DefaultOptions returns the classification used for MBSS health card exports
func DefaultOptions() Options {
	return Options{
		ReportNames:     []string{"HealthCard.html", "HealthCard.htm"},
		TitleMarker:     "Health Card",
		SignatureTokens: []string{"BIBI", "FIBI"},
		ImagePatterns:   []string{"**/*.{png,jpg,jpeg,gif,svg,webp,bmp}"},
		IgnorePatterns:  []string{"**/.DS_Store", "**/Thumbs.db", "**/~$*"},
	}
}

// 📦 Bundle is a classified export folder. Paths are absolute.
type Bundle struct {
	Root string
	// Files holds every non ignored file, slash separated and relative to Root, in walk order
	Files   []string
	Landing string
	Sites   string
	Plan    Plan
	// Warnings describe layout problems worth telling the user about
	Warnings []string
}

// Rel returns a path relative to the bundle root for display
func (b *Bundle) Rel(p string) string {
	rel, err := filepath.Rel(b.Root, p)
	if err != nil {
		return p
	}
	return filepath.ToSlash(rel)
}

// 🔍 Discover walks root and classifies what it finds
func Discover(ctx context.Context, root string, opts Options) (*Bundle, error) {
	logger := zerolog.Ctx(ctx)

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Errorf("resolving source path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return nil, precondition.Errorf("source is not a folder: %s", abs)
	}

	b := &Bundle{Root: abs}
	if err := b.walk(ctx, opts); err != nil {
		return nil, errors.Errorf("walking source %s: %w", abs, err)
	}
	logger.Debug().Str("root", abs).Int("files", len(b.Files)).Msg("enumerated export")

	b.Landing = b.findLanding()
	b.Sites = b.findSites()

	images := b.match(func(rel string) bool { return isImage(rel, opts.ImagePatterns) })

	report := b.findReportByName(opts.ReportNames)
	if report == "" {
		report = b.findReportBySignature(ctx, opts)
	}

	if report != "" {
		logger.Debug().Str("report", b.Rel(report)).Int("images", len(images)).Msg("single report export")
		b.Plan = &SingleReport{Report: report, Images: images}
	} else {
		html := b.match(func(rel string) bool { return isHTML(rel) && rel != LandingPage })
		logger.Debug().Int("html", len(html)).Int("images", len(images)).Msg("no canonical report, multi report export")
		b.Plan = &MultiReport{HTML: html, Images: images}
	}

	b.checkLayout()
	return b, nil
}

// walk lists every readable file under the root, entries that cannot be read
// are left out of the bundle
func (b *Bundle) walk(ctx context.Context, opts Options) error {
	logger := zerolog.Ctx(ctx)
	return filepath.WalkDir(b.Root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == b.Root {
				return err
			}
			logger.Debug().Err(err).Str("path", p).Msg("skipping unreadable entry")
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(b.Root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if matchAny(opts.IgnorePatterns, rel) {
			return nil
		}
		b.Files = append(b.Files, rel)
		return nil
	})
}

func (b *Bundle) abs(rel string) string {
	return filepath.Join(b.Root, filepath.FromSlash(rel))
}

func (b *Bundle) has(rel string) bool {
	for _, f := range b.Files {
		if f == rel {
			return true
		}
	}
	return false
}

func (b *Bundle) match(keep func(rel string) bool) []string {
	var out []string
	for _, rel := range b.Files {
		if keep(rel) {
			out = append(out, b.abs(rel))
		}
	}
	return out
}

func (b *Bundle) findLanding() string {
	if b.has(LandingPage) {
		return b.abs(LandingPage)
	}
	return ""
}

// findSites prefers the root, then data/, then the first match anywhere
func (b *Bundle) findSites() string {
	for _, rel := range []string{SitesFile, "data/" + SitesFile} {
		if b.has(rel) {
			return b.abs(rel)
		}
	}
	for _, rel := range b.Files {
		if path.Base(rel) == SitesFile {
			return b.abs(rel)
		}
	}
	return ""
}

func (b *Bundle) findReportByName(names []string) string {
	for _, name := range names {
		for _, rel := range b.Files {
			if !strings.Contains(rel, "/") && strings.EqualFold(rel, name) {
				return b.abs(rel)
			}
		}
	}
	return ""
}

func (b *Bundle) findReportBySignature(ctx context.Context, opts Options) string {
	if opts.TitleMarker == "" && len(opts.SignatureTokens) == 0 {
		return ""
	}
	for _, rel := range b.Files {
		if !isHTML(rel) || rel == LandingPage {
			continue
		}
		data, err := os.ReadFile(b.abs(rel))
		if err != nil {
			zerolog.Ctx(ctx).Debug().Err(err).Str("file", rel).Msg("skipping unreadable html")
			continue
		}
		if HasSignature(string(data), opts.TitleMarker, opts.SignatureTokens) {
			return b.abs(rel)
		}
	}
	return ""
}

// checkLayout notes the export layout problems the map page will trip over
func (b *Bundle) checkLayout() {
	if b.Landing == "" {
		b.Warnings = append(b.Warnings, "index.html not found at the export root, the destination's landing page will be kept")
	}
	if b.Sites == "" {
		b.Warnings = append(b.Warnings, "sites.geojson not found in the export, the map may show a data load error unless coordinates are supplied")
	}
	if m, ok := b.Plan.(*MultiReport); ok && len(m.HTML) == 0 {
		b.Warnings = append(b.Warnings, "no health card html found in the export")
	}
}

// HasSignature reports whether text looks like a health card: the title
// marker (any case) and every token (exact case) must be present.
func HasSignature(text, titleMarker string, tokens []string) bool {
	if titleMarker != "" && !strings.Contains(strings.ToLower(text), strings.ToLower(titleMarker)) {
		return false
	}
	for _, tok := range tokens {
		if !strings.Contains(text, tok) {
			return false
		}
	}
	return true
}

func isHTML(rel string) bool {
	switch strings.ToLower(path.Ext(rel)) {
	case ".html", ".htm":
		return true
	}
	return false
}

func isImage(rel string, patterns []string) bool {
	return matchAny(patterns, rel)
}

func matchAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		if ok, err := doublestar.Match(strings.ToLower(p), strings.ToLower(rel)); err == nil && ok {
			return true
		}
	}
	return false
}

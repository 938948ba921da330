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
	"os"

	"github.com/rs/zerolog"
	"github.com/walteh/cardsync/pkg/status"
)

// 🧹 Clean empties the healthcards folder, keeping the placeholder, and
// removes the sites index. It is best effort: anything that cannot be
// removed is logged and left behind. It returns how many entries went away.
func (m *Materializer) Clean(ctx context.Context) int {
	logger := zerolog.Ctx(ctx)
	removed := 0

	dir := m.status.Abs(m.opts.Layout.HealthcardsDir)
	entries, err := os.ReadDir(dir)
	if err != nil && !os.IsNotExist(err) {
		logger.Debug().Err(err).Str("dir", dir).Msg("reading healthcards folder for clean")
	}
	for _, e := range entries {
		if e.Name() == m.opts.Layout.Placeholder {
			continue
		}
		rel := m.opts.Layout.Card(e.Name())
		if err := m.status.RemoveDir(ctx, rel); err != nil {
			logger.Debug().Err(err).Str("path", rel).Msg("clean could not remove entry")
			continue
		}
		m.status.Track(ctx, rel, status.FileInfo{Kind: "clean", Status: status.StatusDeleted})
		removed++
	}

	if ok, _ := m.status.Exists(ctx, m.opts.Layout.SitesFile); ok {
		if err := m.status.DeleteFile(ctx, m.opts.Layout.SitesFile); err != nil {
			logger.Debug().Err(err).Str("path", m.opts.Layout.SitesFile).Msg("clean could not remove sites index")
		} else {
			m.status.Track(ctx, m.opts.Layout.SitesFile, status.FileInfo{Kind: "clean", Status: status.StatusDeleted})
			removed++
		}
	}

	logger.Debug().Int("removed", removed).Msg("cleaned destination")
	return removed
}

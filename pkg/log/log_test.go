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

package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pad(s string, width int) string {
	return fmt.Sprintf("%-*s", width, s)
}

func TestLogger(t *testing.T) {
	// Disable color for testing
	color.NoColor = true
	defer func() { color.NoColor = false }()

	tests := []struct {
		name     string
		op       func(t *testing.T, logger *Logger)
		wantLogs []string
	}{
		{
			name: "start_sync",
			op: func(t *testing.T, logger *Logger) {
				logger.StartSync(context.Background(), SyncOperation{
					Source:      "/exports/2016",
					Destination: "/repo",
					Mode:        "single-report",
				})
			},
			wantLogs: []string{
				"[publishing /repo]",
				"◆ /exports/2016 • single-report",
			},
		},
		{
			name: "log_messages",
			op: func(t *testing.T, logger *Logger) {
				logger.Info("info message")
				logger.Warning("warning message")
				logger.Error("error message")
				logger.Success("success message")
			},
			wantLogs: []string{
				"ℹ️  info message",
				"⚠️  warning message",
				"❌ error message",
				"✅ success message",
			},
		},
		{
			name: "log_formatted_messages",
			op: func(t *testing.T, logger *Logger) {
				logger.Infof("info %s", "test")
				logger.Warningf("warning %d", 2)
				logger.Successf("copied %d files", 3)
			},
			wantLogs: []string{
				"ℹ️  info test",
				"⚠️  warning 2",
				"✅ copied 3 files",
			},
		},
		{
			name: "log_header",
			op: func(t *testing.T, logger *Logger) {
				logger.Header("publishing health cards")
			},
			wantLogs: []string{
				"cardsync • publishing health cards",
			},
		},
		{
			name: "log_block",
			op: func(t *testing.T, logger *Logger) {
				logger.Block("git status", "On branch main\nnothing to commit\n")
			},
			wantLogs: []string{
				"git status",
				"On branch main",
				"nothing to commit",
			},
		},
		{
			name: "log_newline",
			op: func(t *testing.T, logger *Logger) {
				logger.Info("first")
				logger.LogNewline()
				logger.Info("second")
			},
			wantLogs: []string{
				"ℹ️  first",
				"",
				"ℹ️  second",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := New(buf, zerolog.New(zerolog.NewTestWriter(t)))

			tt.op(t, logger)

			output := strings.TrimSpace(buf.String())
			lines := strings.Split(output, "\n")

			require.Equal(t, len(tt.wantLogs), len(lines), "number of log lines should match")
			for i, want := range tt.wantLogs {
				assert.Equal(t, want, strings.TrimSpace(lines[i]), "log line %d should match", i)
			}
		})
	}
}

func TestLoggerContext(t *testing.T) {
	logger := New(io.Discard, zerolog.Nop())

	ctx := NewContext(context.Background(), logger)
	assert.Same(t, logger, FromContext(ctx), "logger from context should be the same instance")

	fallback := FromContext(context.Background())
	require.NotNil(t, fallback, "missing logger should fall back to a silent one")
	assert.NotPanics(t, func() { fallback.Info("dropped") })
}

func TestFileOperationFormatting(t *testing.T) {
	// Disable color for testing
	color.NoColor = true
	defer func() { color.NoColor = false }()

	tests := []struct {
		name string
		op   FileOperation
		want string
	}{
		{
			name: "new_image",
			op:   FileOperation{Path: "data/healthcards/a.png", Kind: "image", Status: "new", IsNew: true},
			want: "    ✓ " + pad("data/healthcards/a.png", 35) + " " + pad("image", 10) + " " + pad("new", 12),
		},
		{
			name: "modified_report",
			op:   FileOperation{Path: "data/healthcards/X.html", Kind: "report", Status: "modified", IsModified: true},
			want: "    ⟳ " + pad("data/healthcards/X.html", 35) + " " + pad("report", 10) + " " + pad("modified", 12),
		},
		{
			name: "removed_file",
			op:   FileOperation{Path: "data/sites.geojson", Kind: "sites", Status: "deleted", IsRemoved: true},
			want: "    ✗ " + pad("data/sites.geojson", 35) + " " + pad("sites", 10) + " " + pad("deleted", 12),
		},
		{
			name: "unchanged_file",
			op:   FileOperation{Path: "index.html", Kind: "landing", Status: "unchanged"},
			want: "    • " + pad("index.html", 35) + " " + pad("landing", 10) + " " + pad("unchanged", 12),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := New(buf, zerolog.Nop())

			logger.LogFileOperation(context.Background(), tt.op)

			assert.Equal(t, tt.want+"\n", buf.String(), "formatted output should match")
		})
	}
}

func TestEndSync(t *testing.T) {
	logger := New(io.Discard, zerolog.Nop())
	ctx := context.Background()

	assert.Equal(t, 0, logger.EndSync(ctx), "ending without a run should report nothing")

	logger.StartSync(ctx, SyncOperation{Source: "src", Destination: "dst", Mode: "multi-report"})
	logger.LogFileOperation(ctx, FileOperation{Path: "a.html", Kind: "html", Status: "new", IsNew: true})
	logger.LogFileOperation(ctx, FileOperation{Path: "b.png", Kind: "image", Status: "new", IsNew: true})

	assert.Equal(t, 2, logger.EndSync(ctx))
	assert.Equal(t, 0, logger.EndSync(ctx), "second end should be a no-op")
}

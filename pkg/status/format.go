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

package status

import (
	"fmt"
	"strings"
)

// FileFormatter defines how tracked files and progress are described
type FileFormatter interface {
	FormatFileOperation(path, kind, status string, isNew, isModified, isRemoved bool) string
	FormatProgress(current, total int) string
	FormatError(err error) string
	FormatSummary(counts map[FileStatus]int) string
}

// DefaultFileFormatter describes files with an emoji and their kind
type DefaultFileFormatter struct{}

// NewDefaultFileFormatter creates a new DefaultFileFormatter
func NewDefaultFileFormatter() *DefaultFileFormatter {
	return &DefaultFileFormatter{}
}

func (f *DefaultFileFormatter) FormatFileOperation(path, kind, status string, isNew, isModified, isRemoved bool) string {
	subject := path
	if kind != "" {
		subject = kind + " " + path
	}
	switch {
	case isNew:
		return fmt.Sprintf("✨ Created %s", subject)
	case isModified:
		return fmt.Sprintf("📝 Updated %s", subject)
	case isRemoved:
		return fmt.Sprintf("🗑️  Removed %s", subject)
	case status == "error":
		return fmt.Sprintf("❌ Failed %s", subject)
	default:
		return fmt.Sprintf("👍 Unchanged %s", subject)
	}
}

func (f *DefaultFileFormatter) FormatProgress(current, total int) string {
	var percentage float64
	if total == 0 {
		if current > 0 {
			percentage = 100
		}
	} else {
		percentage = float64(current) / float64(total) * 100
	}

	if current >= total {
		return fmt.Sprintf("✅ Copied %d/%d (%.0f%%)", current, total, percentage)
	}
	return fmt.Sprintf("⏳ Copying %d/%d (%.0f%%)", current, total, percentage)
}

func (f *DefaultFileFormatter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("❌ Error: %v", err)
}

// FormatSummary lists the non zero counts in a fixed order
func (f *DefaultFileFormatter) FormatSummary(counts map[FileStatus]int) string {
	var parts []string
	for _, s := range []FileStatus{StatusNew, StatusModified, StatusUnchanged, StatusDeleted} {
		if n := counts[s]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, s))
		}
	}
	if len(parts) == 0 {
		return "no files touched"
	}
	return strings.Join(parts, ", ")
}

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

package extract

// 📄 Document is a parsed health card report
type Document struct {
	// Path is where the report was read from, empty for in-memory documents
	Path   string
	Raw    []byte
	SiteID string
	Fields Metadata
	Assets []string
}

// 🔍 Parse extracts everything the later stages need from a report
func Parse(path string, raw []byte) *Document {
	meta := Extract(string(raw))
	doc := &Document{
		Path:   path,
		Raw:    raw,
		Fields: meta,
		Assets: AssetRefs(raw),
	}
	if id, ok := meta.String(SiteID); ok {
		doc.SiteID = id
	}
	return doc
}

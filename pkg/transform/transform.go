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

// Package transform rewrites a report so it resolves from the flattened
// healthcards folder and picks the name it is published under.
package transform

import (
	"bytes"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/walteh/cardsync/pkg/extract"
	"golang.org/x/net/html"
)

// TimestampLayout is the sortable, second resolution fallback name suffix
const TimestampLayout = "20060102-150405"

// 📄 Result is a report ready to be materialized
type Result struct {
	FileName  string
	Content   []byte
	Rewritten int
}

// 🔄 Transform names the report and flattens its image references
func Transform(doc *extract.Document, now time.Time) *Result {
	content, n := RewriteAssets(doc.Raw)
	return &Result{
		FileName:  FileName(doc.Fields, now),
		Content:   content,
		Rewritten: n,
	}
}

// 🏷️ FileName returns "<SITE_ID>.html", or a timestamped fallback when the
// report carries no site identifier. Two unnamed reports written within the
// same second share a name and the later one wins.
func FileName(meta extract.Metadata, now time.Time) string {
	if id, ok := meta.String(extract.SiteID); ok && id != "" {
		return id + ".html"
	}
	return "SITE-" + now.UTC().Format(TimestampLayout) + ".html"
}

// Basename flattens a local image reference to its file name, accepting both
// slash and backslash separators.
func Basename(src string) string {
	return path.Base(strings.ReplaceAll(src, `\`, "/"))
}

// attrPattern consumes one whole attribute, quoted values included, so text
// inside a value is never read as another attribute
var attrPattern = regexp.MustCompile(`([^\s"'<>/=]+)(?:\s*=\s*(?:"([^"]*)"|'([^']*)'|([^\s"'>]+)))?`)

// ✂️ RewriteAssets replaces every local <img src> value with its basename.
// Everything else in the markup is copied through byte for byte, and running
// it over already flattened markup changes nothing.
func RewriteAssets(text []byte) ([]byte, int) {
	var out bytes.Buffer
	out.Grow(len(text))
	count := 0

	z := html.NewTokenizer(bytes.NewReader(text))
	for {
		tt := z.Next()
		raw := append([]byte(nil), z.Raw()...)
		if tt == html.ErrorToken {
			out.Write(raw)
			return out.Bytes(), count
		}
		if tt == html.StartTagToken || tt == html.SelfClosingTagToken {
			if name, _ := z.TagName(); string(name) == "img" {
				var changed bool
				raw, changed = rewriteTag(raw)
				if changed {
					count++
				}
			}
		}
		out.Write(raw)
	}
}

// rewriteTag swaps the value of the first src attribute inside a raw img tag,
// keeping its quoting
func rewriteTag(raw []byte) ([]byte, bool) {
	start, end, ok := srcValue(raw)
	if !ok {
		return raw, false
	}

	value := string(raw[start:end])
	src := html.UnescapeString(strings.TrimSpace(value))
	if src == "" || extract.IsExternal(src) {
		return raw, false
	}
	flat := Basename(src)
	if flat == src {
		return raw, false
	}

	var buf bytes.Buffer
	buf.Grow(len(raw))
	buf.Write(raw[:start])
	buf.WriteString(html.EscapeString(flat))
	buf.Write(raw[end:])
	return buf.Bytes(), true
}

// srcValue locates the value of the first src attribute of a raw start tag
func srcValue(raw []byte) (start, end int, ok bool) {
	// skip "<" and the tag name
	offset := 1
	for offset < len(raw) && !isTagNameEnd(raw[offset]) {
		offset++
	}

	for _, loc := range attrPattern.FindAllSubmatchIndex(raw[offset:], -1) {
		if !strings.EqualFold(string(raw[offset+loc[2]:offset+loc[3]]), "src") {
			continue
		}
		// exactly one of the three value groups matched, none for a bare src
		for g := 2; g <= 4; g++ {
			if loc[2*g] >= 0 {
				return offset + loc[2*g], offset + loc[2*g+1], true
			}
		}
		return 0, 0, false
	}
	return 0, 0, false
}

func isTagNameEnd(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', '/', '>':
		return true
	}
	return false
}

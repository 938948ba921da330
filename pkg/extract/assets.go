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

import (
	"bytes"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var schemePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]+:`)

// 🌐 IsExternal reports whether an image source must be left alone: absolute
// URLs, protocol relative and rooted paths, and embedded data URIs. A single
// letter "scheme" is a Windows drive and counts as local.
func IsExternal(src string) bool {
	src = strings.TrimSpace(src)
	switch {
	case src == "":
		return true
	case strings.HasPrefix(strings.ToLower(src), "data:"):
		return true
	case strings.HasPrefix(src, "//"), strings.HasPrefix(src, "/"):
		return true
	case schemePattern.MatchString(src):
		return true
	}
	return false
}

// 🖼️ AssetRefs returns the relative image sources referenced by the markup in
// document order, duplicates removed.
func AssetRefs(text []byte) []string {
	var refs []string
	seen := map[string]bool{}

	z := html.NewTokenizer(bytes.NewReader(text))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			// io.EOF or a read error, either way the scan is over
			return refs
		}
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			continue
		}
		name, hasAttr := z.TagName()
		if string(name) != "img" || !hasAttr {
			continue
		}
		for {
			key, val, more := z.TagAttr()
			if string(key) == "src" {
				src := strings.TrimSpace(string(val))
				if !IsExternal(src) && !seen[src] {
					seen[src] = true
					refs = append(refs, src)
				}
				break
			}
			if !more {
				break
			}
		}
	}
}

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

package transform

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/cardsync/pkg/extract"
)

func TestFileName(t *testing.T) {
	now := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)

	tests := []struct {
		name string
		meta extract.Metadata
		want string
	}{
		{
			name: "site_id",
			meta: extract.Metadata{extract.SiteID: "LMON-345-R-2016"},
			want: "LMON-345-R-2016.html",
		},
		{
			name: "no_site_id",
			meta: extract.Metadata{extract.BIBIIndex: 2.0},
			want: "SITE-20240309-140507.html",
		},
		{
			name: "empty_site_id",
			meta: extract.Metadata{extract.SiteID: ""},
			want: "SITE-20240309-140507.html",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FileName(tt.meta, now))
		})
	}
}

func TestFileName_FallbackIsValidName(t *testing.T) {
	local := time.Date(2023, 12, 31, 23, 59, 59, 0, time.FixedZone("EST", -5*3600))

	name := FileName(extract.Metadata{}, local)

	assert.Regexp(t, regexp.MustCompile(`^SITE-\d{8}-\d{6}\.html$`), name)
	assert.Equal(t, "SITE-20240101-045959.html", name, "timestamp should be UTC")
	assert.NotContains(t, name, ":", "name should be usable on every filesystem")
}

func TestBasename(t *testing.T) {
	assert.Equal(t, "a.png", Basename("images/a.png"))
	assert.Equal(t, "map.jpg", Basename(`..\shared\map.jpg`))
	assert.Equal(t, "chart.png", Basename(`C:\exports\deep/chart.png`))
	assert.Equal(t, "flat.gif", Basename("flat.gif"))
}

func TestRewriteAssets(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		want      string
		wantCount int
	}{
		{
			name:      "relative_path",
			input:     `<p>x</p><img class="c" src="images/sub/a.png" alt="A">`,
			want:      `<p>x</p><img class="c" src="a.png" alt="A">`,
			wantCount: 1,
		},
		{
			name:      "single_quotes_and_self_closing",
			input:     `<IMG SRC='../shared/b.jpg' />`,
			want:      `<IMG SRC='b.jpg' />`,
			wantCount: 1,
		},
		{
			name:      "unquoted",
			input:     `<img src=pics/c.gif width=10>`,
			want:      `<img src=c.gif width=10>`,
			wantCount: 1,
		},
		{
			name:      "windows_separators",
			input:     `<img src="figs\d.png">`,
			want:      `<img src="d.png">`,
			wantCount: 1,
		},
		{
			name:      "external_untouched",
			input:     `<img src="https://example.com/x/logo.png"><img src="data:image/png;base64,AA/BB">`,
			want:      `<img src="https://example.com/x/logo.png"><img src="data:image/png;base64,AA/BB">`,
			wantCount: 0,
		},
		{
			name:      "alt_contains_src",
			input:     `<img alt="see src=old/x.png" src="imgs/a.png">`,
			want:      `<img alt="see src=old/x.png" src="a.png">`,
			wantCount: 1,
		},
		{
			name:      "title_contains_quoted_src",
			input:     `<img title='x src="q/r.png"' SRC=imgs/b.png>`,
			want:      `<img title='x src="q/r.png"' SRC=b.png>`,
			wantCount: 1,
		},
		{
			name:      "empty_src_untouched",
			input:     `<img src="" alt="none">`,
			want:      `<img src="" alt="none">`,
			wantCount: 0,
		},
		{
			name:      "data_src_untouched",
			input:     `<img data-src="lazy/e.png">`,
			want:      `<img data-src="lazy/e.png">`,
			wantCount: 0,
		},
		{
			name:      "comments_and_other_tags_untouched",
			input:     "<!-- <img src=\"old/f.png\"> -->\n<script src=\"js/app.js\"></script>\n<IMG  src = \"x/g.png\" >",
			want:      "<!-- <img src=\"old/f.png\"> -->\n<script src=\"js/app.js\"></script>\n<IMG  src = \"g.png\" >",
			wantCount: 1,
		},
		{
			name:      "no_images",
			input:     "<!DOCTYPE html>\n<html><body>\r\n  plain &amp; simple\n</body></html>",
			want:      "<!DOCTYPE html>\n<html><body>\r\n  plain &amp; simple\n</body></html>",
			wantCount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, n := RewriteAssets([]byte(tt.input))
			assert.Equal(t, tt.want, string(got), "rewritten markup should match")
			assert.Equal(t, tt.wantCount, n, "rewrite count should match")
		})
	}
}

func TestRewriteAssets_Idempotent(t *testing.T) {
	input := []byte(`<html><body><img src="a/b/one.png"><img src='two.jpg'><img src="https://x/y.png"></body></html>`)

	once, n := RewriteAssets(input)
	require.Equal(t, 1, n)

	twice, n := RewriteAssets(once)
	assert.Equal(t, 0, n, "second pass should rewrite nothing")
	assert.Equal(t, string(once), string(twice), "second pass should be byte identical")
}

func TestTransform(t *testing.T) {
	raw := []byte(`<h1>Site LMON-345-R-2016</h1><img src="images/chart.png">`)
	doc := extract.Parse("HealthCard.html", raw)

	res := Transform(doc, time.Now())

	assert.Equal(t, "LMON-345-R-2016.html", res.FileName)
	assert.Equal(t, `<h1>Site LMON-345-R-2016</h1><img src="chart.png">`, string(res.Content))
	assert.Equal(t, 1, res.Rewritten)
	assert.Equal(t, string(raw), string(doc.Raw), "source document should not be modified")
}

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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const healthCardFixture = `<html><head><title>MBSS Health Card - LMON-345-R-2016</title></head>
<body>
<h1>Stream Health Card</h1>
<table>
<tr><th>Site</th><td>LMON-345-R-2016</td></tr>
<tr><th>Stream Name</th><td>Little Monocacy River</td></tr>
<tr><th>Province</th><td>Piedmont</td></tr>
<tr><th>Region Code 7</th><td>0214030</td></tr>
<tr><th>Region Code 12</th><td>021403020101</td></tr>
<tr><th>BIBI</th><td>3.25</td></tr>
<tr><th>FIBI</th><td>4.11</td></tr>
<tr><th>Year</th><td>2016</td></tr>
</table>
<img src="images/bibi_chart.png">
<img src="https://example.com/logo.png">
<img src="data:image/png;base64,AAAA">
</body></html>
`

func TestExtract_FullCard(t *testing.T) {
	meta := Extract(healthCardFixture)

	assert.Equal(t, "LMON-345-R-2016", meta[SiteID], "site id should match")
	assert.Equal(t, "Little Monocacy River", meta[StreamName], "stream name should match")
	assert.Equal(t, "Piedmont", meta[Province], "province should match")
	assert.Equal(t, "0214030", meta[RegionCode7], "7 digit region code should match")
	assert.Equal(t, "021403020101", meta[RegionCode12], "12 digit region code should match")
	assert.Equal(t, 3.25, meta[BIBIIndex], "bibi should match")
	assert.Equal(t, 4.11, meta[FIBIIndex], "fibi should match")
	assert.Equal(t, 2016, meta[SurveyYear], "year should match")
	assert.Len(t, meta, len(Fields), "every field should be found")
}

func TestExtract_Rules(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		field  Field
		want   any
		absent bool
	}{
		{name: "site_id_in_text", markup: "<p>Site LMON-345-R-2016 sampled</p>", field: SiteID, want: "LMON-345-R-2016"},
		{name: "site_id_first_wins", markup: "AB-1-C-2001 then XY-2-Z-2002", field: SiteID, want: "AB-1-C-2001"},
		{name: "site_id_lowercase", markup: "lmon-345-r-2016", field: SiteID, absent: true},
		{name: "site_id_short_year", markup: "LMON-345-R-16", field: SiteID, absent: true},
		{name: "bibi_colon", markup: "<p>BIBI: 2.5</p>", field: BIBIIndex, want: 2.5},
		{name: "fibi_equals", markup: "FIBI = 3", field: FIBIIndex, want: 3.0},
		{name: "bibi_closing_tag", markup: "<b>BIBI</b> 1.75", field: BIBIIndex, want: 1.75},
		{name: "bibi_score_label", markup: "<td>BIBI Score</td><td>4.0</td>", field: BIBIIndex, want: 4.0},
		{name: "bibi_malformed", markup: "<p>BIBI: 3.2.1</p>", field: BIBIIndex, absent: true},
		{name: "bibi_not_a_number", markup: "<td>BIBI</td><td>n/a</td>", field: BIBIIndex, absent: true},
		{name: "bibi_sentence_end", markup: "BIBI: 3.5.", field: BIBIIndex, want: 3.5},
		{name: "bibi_decimal_comma", markup: "<p>BIBI: 3,5</p>", field: BIBIIndex, absent: true},
		{name: "fibi_before_list_comma", markup: "FIBI: 4, BIBI: 2", field: FIBIIndex, want: 4.0},
		{name: "year_colon", markup: "Survey Year: 1999", field: SurveyYear, want: 1999},
		{name: "year_out_of_range", markup: "Year: 3016", field: SurveyYear, absent: true},
		{name: "year_missing_label", markup: "sampled in 2016", field: SurveyYear, absent: true},
		{name: "region_7_too_long", markup: "RC7: 12345678", field: RegionCode7, absent: true},
		{name: "region_12_huc", markup: "HUC12: 021403020101", field: RegionCode12, want: "021403020101"},
		{name: "stream_colon_unescaped", markup: "<p>Stream: Bear Creek &amp; Tributaries</p>", field: StreamName, want: "Bear Creek & Tributaries"},
		{name: "stream_blank", markup: "<td>Stream</td><td> </td>", field: StreamName, absent: true},
		{name: "province_physiographic", markup: "Physiographic Province: Coastal Plain\n", field: Province, want: "Coastal Plain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := Extract(tt.markup)
			if tt.absent {
				assert.False(t, meta.Has(tt.field), "%s should be absent, got %v", tt.field, meta[tt.field])
				return
			}
			require.True(t, meta.Has(tt.field), "%s should be present", tt.field)
			assert.Equal(t, tt.want, meta[tt.field], "%s should match", tt.field)
		})
	}
}

func TestExtract_FieldsAreIndependent(t *testing.T) {
	meta := Extract("<td>FIBI</td><td>2.2</td><td>BIBI</td><td>oops</td>")

	assert.Equal(t, Metadata{FIBIIndex: 2.2}, meta, "a failed field should not block the others")
	assert.Empty(t, Extract(""), "empty markup should yield empty metadata")
}

func TestMetadata_Properties(t *testing.T) {
	meta := Metadata{SiteID: "LMON-345-R-2016", BIBIIndex: 3.25, SurveyYear: 2016}

	assert.Equal(t, map[string]any{
		"site_id": "LMON-345-R-2016",
		"bibi":    3.25,
		"year":    2016,
	}, meta.Properties())

	id, ok := meta.String(SiteID)
	assert.True(t, ok)
	assert.Equal(t, "LMON-345-R-2016", id)
	_, ok = meta.Float(FIBIIndex)
	assert.False(t, ok, "missing float should report absent")
	year, ok := meta.Int(SurveyYear)
	assert.True(t, ok)
	assert.Equal(t, 2016, year)
}

func TestIsExternal(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{"images/a.png", false},
		{"../shared/map.jpg", false},
		{`C:\exports\chart.png`, false},
		{"http://example.com/a.png", true},
		{"HTTPS://example.com/a.png", true},
		{"//cdn.example.com/a.png", true},
		{"/static/a.png", true},
		{"data:image/png;base64,AAAA", true},
		{"DATA:image/gif;base64,R0", true},
		{"mailto:someone@example.com", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assert.Equal(t, tt.want, IsExternal(tt.src))
		})
	}
}

func TestAssetRefs(t *testing.T) {
	markup := `<div>
<img src="images/bibi_chart.png">
<!-- <img src="hidden.png"> -->
<IMG ALT="map" SRC='..\shared\map.jpg'/>
<img src="images/bibi_chart.png">
<img alt="no source">
<img src="https://example.com/logo.png">
<img src="data:image/png;base64,AAAA">
</div>`

	refs := AssetRefs([]byte(markup))

	assert.Equal(t, []string{"images/bibi_chart.png", `..\shared\map.jpg`}, refs, "only local image sources should be listed once")
	assert.Empty(t, AssetRefs(nil), "empty markup has no refs")
}

func TestParse(t *testing.T) {
	doc := Parse("export/HealthCard.html", []byte(healthCardFixture))

	assert.Equal(t, "export/HealthCard.html", doc.Path)
	assert.Equal(t, "LMON-345-R-2016", doc.SiteID)
	assert.Equal(t, []string{"images/bibi_chart.png"}, doc.Assets)
	assert.Equal(t, 3.25, doc.Fields[BIBIIndex])

	bare := Parse("", []byte("<p>nothing to see</p>"))
	assert.Empty(t, bare.SiteID, "site id should be empty when missing")
	assert.Empty(t, bare.Fields)
	assert.Nil(t, bare.Assets)
}

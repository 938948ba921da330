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

// Package extract scrapes site metadata and image references out of exported
// health card markup. Extraction is pure: it never touches the filesystem and
// never fails, absent fields are simply missing from the result.
package extract

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// 🏷️ Field is one of the metadata values a health card can carry
type Field int

const (
	SiteID Field = iota
	StreamName
	Province
	RegionCode7
	RegionCode12
	BIBIIndex
	FIBIIndex
	SurveyYear
)

// Fields lists every field in extraction order
var Fields = []Field{SiteID, StreamName, Province, RegionCode7, RegionCode12, BIBIIndex, FIBIIndex, SurveyYear}

func (f Field) String() string {
	switch f {
	case SiteID:
		return "SITE_ID"
	case StreamName:
		return "STREAM_NAME"
	case Province:
		return "PROVINCE"
	case RegionCode7:
		return "REGION_CODE_7"
	case RegionCode12:
		return "REGION_CODE_12"
	case BIBIIndex:
		return "BIBI_INDEX"
	case FIBIIndex:
		return "FIBI_INDEX"
	case SurveyYear:
		return "SURVEY_YEAR"
	default:
		return "UNKNOWN"
	}
}

// Key is the property name used for the field in the sites index
func (f Field) Key() string {
	switch f {
	case SiteID:
		return "site_id"
	case StreamName:
		return "stream_name"
	case Province:
		return "province"
	case RegionCode7:
		return "region_code_7"
	case RegionCode12:
		return "region_code_12"
	case BIBIIndex:
		return "bibi"
	case FIBIIndex:
		return "fibi"
	case SurveyYear:
		return "year"
	default:
		return "unknown"
	}
}

// 📋 Metadata maps a field to its extracted value (string, float64 or int)
type Metadata map[Field]any

// Has reports whether the field was found
func (m Metadata) Has(f Field) bool {
	_, ok := m[f]
	return ok
}

// String returns a string valued field
func (m Metadata) String(f Field) (string, bool) {
	v, ok := m[f].(string)
	return v, ok
}

// Float returns a float valued field
func (m Metadata) Float(f Field) (float64, bool) {
	v, ok := m[f].(float64)
	return v, ok
}

// Int returns an integer valued field
func (m Metadata) Int(f Field) (int, bool) {
	v, ok := m[f].(int)
	return v, ok
}

// Properties converts the metadata into index property names
func (m Metadata) Properties() map[string]any {
	props := make(map[string]any, len(m))
	for _, f := range Fields {
		if v, ok := m[f]; ok {
			props[f.Key()] = v
		}
	}
	return props
}

// parser turns a raw capture into a typed value, false means absent
type parser func(string) (any, bool)

// rule is one row of the extraction table
type rule struct {
	field    Field
	patterns []*regexp.Regexp
	parse    parser
}

const (
	// label followed by a closing tag and any tags in between
	afterCloseTag = `\s*:?\s*</[a-zA-Z0-9]+\s*>(?:\s|<[^>]*>)*`
	// label followed by a colon or equals sign
	afterColon = `\s*[:=]\s*(?:<[^>]*>\s*)*`
	// a short stretch of markup or non digit text between a label and its value
	near   = `(?:<[^>]*>|[^0-9<]){0,60}?`
	// commas are captured so a decimal comma fails to parse instead of truncating
	number = `([-+]?[0-9][0-9.,]*)`
	text   = `([^<\n]+)`
)

func labelled(label, value string) []*regexp.Regexp {
	return []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b` + label + afterCloseTag + value),
		regexp.MustCompile(`(?i)\b` + label + afterColon + value),
	}
}

func nearLabel(label, value string) []*regexp.Regexp {
	return []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b` + label + `\b` + near + value + `(?:[^0-9]|$)`),
	}
}

var siteIDPattern = regexp.MustCompile(`\b([A-Z0-9]{2,}-[0-9]+-[A-Z]-[0-9]{4})\b`)

var rules = []rule{
	{field: SiteID, patterns: []*regexp.Regexp{siteIDPattern}, parse: parseText},
	{field: StreamName, patterns: labelled(`Stream(?:\s*Name)?`, text), parse: parseText},
	{field: Province, patterns: labelled(`(?:Physiographic\s+)?Province`, text), parse: parseText},
	{field: RegionCode7, patterns: nearLabel(`(?:Region[\s_-]*Code[\s_-]*7|RC7)`, `([0-9]{7})`), parse: parseText},
	{field: RegionCode12, patterns: nearLabel(`(?:Region[\s_-]*Code[\s_-]*12|RC12|HUC[\s_-]*12)`, `([0-9]{12})`), parse: parseText},
	{field: BIBIIndex, patterns: labelled(`BIBI(?:\s+Score)?`, number), parse: parseFloat},
	{field: FIBIIndex, patterns: labelled(`FIBI(?:\s+Score)?`, number), parse: parseFloat},
	{field: SurveyYear, patterns: nearLabel(`(?:Survey\s+)?Year`, `([12][0-9]{3})`), parse: parseInt},
}

// 🔍 Extract applies every rule to the markup independently
func Extract(text string) Metadata {
	meta := Metadata{}
	for _, r := range rules {
		if v, ok := r.apply(text); ok {
			meta[r.field] = v
		}
	}
	return meta
}

// apply tries the pattern alternatives in order, the first parsable match wins
func (r rule) apply(text string) (any, bool) {
	for _, re := range r.patterns {
		m := re.FindStringSubmatch(text)
		if len(m) < 2 {
			continue
		}
		if v, ok := r.parse(m[1]); ok {
			return v, true
		}
	}
	return nil, false
}

func parseText(s string) (any, bool) {
	s = strings.TrimSpace(html.UnescapeString(s))
	if s == "" {
		return nil, false
	}
	return s, true
}

func parseFloat(s string) (any, bool) {
	f, err := strconv.ParseFloat(strings.TrimRight(s, ".,"), 64)
	if err != nil {
		return nil, false
	}
	return f, true
}

func parseInt(s string) (any, bool) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return nil, false
	}
	return i, true
}

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

// Package geo builds and checks the sites index the map front end reads: a
// GeoJSON FeatureCollection with one point feature per surveyed site.
package geo

import (
	"encoding/json"
	"path"
	"path/filepath"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/walteh/cardsync/pkg/extract"
	"gitlab.com/tozd/go/errors"
)

// ReportURLKey is the feature property linking a site to its health card
const ReportURLKey = "report_url"

// 📍 Coordinates is an externally supplied site location
type Coordinates struct {
	Lon float64 `json:"lon" yaml:"lon" hcl:"lon"`
	Lat float64 `json:"lat" yaml:"lat" hcl:"lat"`
}

// Validate checks the coordinates are on the globe
func (c Coordinates) Validate() error {
	if c.Lon < -180 || c.Lon > 180 {
		return errors.Errorf("longitude %v out of range [-180, 180]", c.Lon)
	}
	if c.Lat < -90 || c.Lat > 90 {
		return errors.Errorf("latitude %v out of range [-90, 90]", c.Lat)
	}
	return nil
}

// 🔗 ReportURL is the site relative link to a published report
func ReportURL(healthcardsDir, fileName string) string {
	return path.Join(filepath.ToSlash(healthcardsDir), fileName)
}

// 📭 Empty returns a valid collection with no sites
func Empty() *geojson.FeatureCollection {
	return geojson.NewFeatureCollection()
}

// 🧩 Synthesize builds a one site stub collection from a report's metadata
func Synthesize(at Coordinates, meta extract.Metadata, reportURL string) *geojson.FeatureCollection {
	f := geojson.NewFeature(orb.Point{at.Lon, at.Lat})
	for k, v := range meta.Properties() {
		f.Properties[k] = v
	}
	f.Properties[ReportURLKey] = reportURL

	fc := geojson.NewFeatureCollection()
	fc.Append(f)
	return fc
}

// 📝 Encode renders a collection as indented JSON ending in a newline
func Encode(fc *geojson.FeatureCollection) ([]byte, error) {
	data, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return nil, errors.Errorf("encoding feature collection: %w", err)
	}
	return append(data, '\n'), nil
}

// ✅ Validate parses data as a FeatureCollection and returns the number of
// features. Features with a null geometry are valid and counted.
func Validate(data []byte) (int, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return 0, errors.Errorf("parsing feature collection: %w", err)
	}
	for i, f := range fc.Features {
		if f == nil {
			return 0, errors.Errorf("feature %d is null", i)
		}
	}
	return len(fc.Features), nil
}

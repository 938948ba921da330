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

package discover

// 🎛️ Mode says how an export will be published
type Mode int

const (
	// ModeSingle publishes one rewritten, renamed report
	ModeSingle Mode = iota
	// ModeMulti copies every html and image file as is
	ModeMulti
)

func (m Mode) String() string {
	switch m {
	case ModeSingle:
		return "single-report"
	case ModeMulti:
		return "multi-report"
	default:
		return "unknown"
	}
}

// 🗺️ Plan is the tagged result of classification, either *SingleReport or *MultiReport
type Plan interface {
	Mode() Mode
	// Assets are the image files to flatten into the healthcards folder
	Assets() []string
}

// SingleReport is an export with one canonical health card
type SingleReport struct {
	Report string
	Images []string
}

func (p *SingleReport) Mode() Mode       { return ModeSingle }
func (p *SingleReport) Assets() []string { return p.Images }

// MultiReport is an export without a canonical card, every page is published as is
type MultiReport struct {
	HTML   []string
	Images []string
}

func (p *MultiReport) Mode() Mode       { return ModeMulti }
func (p *MultiReport) Assets() []string { return p.Images }

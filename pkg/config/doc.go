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

/*
Package config loads cardsync settings.

🎯 Purpose:
- Reads an optional settings file in YAML, HCL or JSON
- Fills defaults for everything left out
- Lays command line flags over the file

🔄 Flow:
1. LoadOrDefault picks a parser by file extension, or returns defaults
2. Validate cleans paths, fills defaults and checks ranges
3. Apply overrides values the user typed on the command line

Example .cardsync.yaml:

	source: ~/Exports/HealthCard
	destination: .
	clean: true
	coordinates:
	  lon: -77.3092
	  lat: 39.35986
	layout:
	  healthcards_dir: data/healthcards
	retry:
	  attempts: 5
	  delay_ms: 500

The same settings in HCL use blocks for the nested groups:

	source = "~/Exports/HealthCard"
	coordinates {
	  lon = -77.3092
	  lat = 39.35986
	}
*/
package config

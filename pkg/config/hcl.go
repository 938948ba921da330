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

package config

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/walteh/cardsync/pkg/geo"
	"github.com/walteh/cardsync/pkg/materialize"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL files
type HCLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return strings.ToLower(filepath.Ext(filename)) == ".hcl"
}

// hclConfig is the HCL shape of Config, nested settings are blocks
type hclConfig struct {
	Source      string              `hcl:"source,optional"`
	Destination string              `hcl:"destination,optional"`
	Clean       bool                `hcl:"clean,optional"`
	Commit      bool                `hcl:"commit,optional"`
	Push        bool                `hcl:"push,optional"`
	Message     string              `hcl:"message,optional"`
	Coordinates *geo.Coordinates    `hcl:"coordinates,block"`
	Layout      *materialize.Layout `hcl:"layout,block"`
	Report      *ReportArgs         `hcl:"report,block"`
	Retry       *RetryArgs          `hcl:"retry,block"`
}

// 📝 Parse parses the config from HCL
func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "config.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	// Create evaluation context
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{},
	}

	// Decode HCL
	var hclCfg hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &hclCfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	// Convert to model
	cfg := &Config{
		Source:      hclCfg.Source,
		Destination: hclCfg.Destination,
		Clean:       hclCfg.Clean,
		Commit:      hclCfg.Commit,
		Push:        hclCfg.Push,
		Message:     hclCfg.Message,
		Coordinates: hclCfg.Coordinates,
	}
	if hclCfg.Layout != nil {
		cfg.Layout = *hclCfg.Layout
	}
	if hclCfg.Report != nil {
		cfg.Report = *hclCfg.Report
	}
	if hclCfg.Retry != nil {
		cfg.Retry = *hclCfg.Retry
	}

	return cfg, nil
}

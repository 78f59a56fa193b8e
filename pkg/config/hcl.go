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
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
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
	return strings.HasSuffix(strings.ToLower(filename), ".hcl")
}

// 📝 Parse parses the config from HCL
func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "config.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	// Environment variables are available as env.NAME,
	// e.g. input = "${env.DATA_DIR}/in".
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": environment(),
		},
	}

	// Define HCL schema
	type hclConfig struct {
		Input          string   `hcl:"input"`
		Target         string   `hcl:"target"`
		Backup         string   `hcl:"backup"`
		Pattern        string   `hcl:"pattern"`
		IgnorePatterns []string `hcl:"ignore_patterns,optional"`
		InitialDelay   string   `hcl:"initial_delay,optional"`
		Interval       string   `hcl:"interval,optional"`
	}

	var hclCfg hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &hclCfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	// Convert to model
	cfg := &Config{
		Input:          hclCfg.Input,
		Target:         hclCfg.Target,
		Backup:         hclCfg.Backup,
		Pattern:        hclCfg.Pattern,
		IgnorePatterns: hclCfg.IgnorePatterns,
	}
	if hclCfg.InitialDelay != "" {
		if err := cfg.InitialDelay.UnmarshalText([]byte(hclCfg.InitialDelay)); err != nil {
			return nil, errors.Errorf("decoding initial_delay: %w", err)
		}
	}
	if hclCfg.Interval != "" {
		if err := cfg.Interval.UnmarshalText([]byte(hclCfg.Interval)); err != nil {
			return nil, errors.Errorf("decoding interval: %w", err)
		}
	}

	return cfg, nil
}

// environment returns the process environment as a cty object
func environment() cty.Value {
	vars := map[string]cty.Value{}
	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			continue
		}
		vars[key] = cty.StringVal(value)
	}
	return cty.ObjectVal(vars)
}

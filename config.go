// SGI FREE SOFTWARE LICENSE B (Version 2.0, Sept. 18, 2008)
// Copyright (C) [dates of first publication] Silicon Graphics, Inc.
// All Rights Reserved.
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies
// of the Software, and to permit persons to whom the Software is furnished to do so,
// subject to the following conditions:
//
// The above copyright notice including the dates of first publication and either this
// permission notice or a reference to http://oss.sgi.com/projects/FreeB/ shall be
// included in all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR IMPLIED,
// INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY, FITNESS FOR A
// PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL SILICON GRAPHICS, INC.
// BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER IN AN ACTION OF CONTRACT,
// TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE
// OR OTHER DEALINGS IN THE SOFTWARE.
//
// Except as contained in this notice, the name of Silicon Graphics, Inc. shall not
// be used in advertising or otherwise to promote the sale, use or other dealings in
// this Software without prior written authorization from Silicon Graphics, Inc.

package wildmesh

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PassConfig is the serialized form of the scheduling knobs of a Pass.
type PassConfig struct {
	Name           string `yaml:"name"`
	Operation      string `yaml:"operation"`
	Policy         string `yaml:"policy"`
	Threads        int    `yaml:"threads"`
	MaxIterations  int    `yaml:"max_iterations"`
	MaxRetries     int    `yaml:"max_retries"`
	StopCheckEvery int    `yaml:"stop_check_every"`
}

// RemeshConfig describes an isotropic remeshing run: a target edge length
// and the passes of one round, repeated Rounds times.
type RemeshConfig struct {
	TargetEdgeLength float64      `yaml:"target_edge_length"`
	Rounds           int          `yaml:"rounds"`
	Passes           []PassConfig `yaml:"passes"`
}

// DefaultRemeshConfig returns a sequential split, collapse, swap and smooth
// round.
func DefaultRemeshConfig() *RemeshConfig {
	return &RemeshConfig{
		TargetEdgeLength: 0.1,
		Rounds:           3,
		Passes: []PassConfig{
			{Name: "split", Operation: "split", Policy: "sequential"},
			{Name: "collapse", Operation: "collapse", Policy: "sequential"},
			{Name: "swap", Operation: "swap", Policy: "sequential"},
			{Name: "smooth", Operation: "smooth", Policy: "sequential"},
		},
	}
}

func parsePolicy(s string) (ExecutionPolicy, error) {
	switch s {
	case "", "sequential":
		return Sequential, nil
	case "partitioned", "parallel":
		return Partitioned, nil
	}
	return 0, fmt.Errorf("%w: unknown policy %q", ErrConfig, s)
}

// Validate checks the values of c.
func (c PassConfig) Validate() error {
	if _, err := parsePolicy(c.Policy); err != nil {
		return err
	}
	switch {
	case c.Threads < 0:
		return fmt.Errorf("%w: pass %q: negative threads", ErrConfig, c.Name)
	case c.MaxIterations < 0:
		return fmt.Errorf("%w: pass %q: negative max_iterations", ErrConfig, c.Name)
	case c.MaxRetries < 0:
		return fmt.Errorf("%w: pass %q: negative max_retries", ErrConfig, c.Name)
	case c.StopCheckEvery < 0:
		return fmt.Errorf("%w: pass %q: negative stop_check_every", ErrConfig, c.Name)
	}
	return nil
}

// Apply copies the scheduling knobs of c into p.
func (c PassConfig) Apply(p *Pass) error {
	policy, err := parsePolicy(c.Policy)
	if err != nil {
		return err
	}
	if c.Name != "" {
		p.Name = c.Name
	}
	p.Policy = policy
	p.Threads = c.Threads
	p.MaxIterations = c.MaxIterations
	p.MaxRetries = c.MaxRetries
	p.StopCheckEvery = c.StopCheckEvery
	return nil
}

// ParsePassConfig decodes one pass configuration from YAML.
func ParsePassConfig(data []byte) (PassConfig, error) {
	var c PassConfig
	if err := yaml.Unmarshal(data, &c); err != nil {
		return PassConfig{}, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	if err := c.Validate(); err != nil {
		return PassConfig{}, err
	}
	return c, nil
}

// LoadPassConfig reads one pass configuration from a YAML file.
func LoadPassConfig(path string) (PassConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return PassConfig{}, err
	}
	return ParsePassConfig(data)
}

// ParseRemeshConfig decodes a remeshing configuration from YAML. Missing
// fields keep the values of DefaultRemeshConfig.
func ParseRemeshConfig(data []byte) (*RemeshConfig, error) {
	c := DefaultRemeshConfig()
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	if c.TargetEdgeLength <= 0 {
		return nil, fmt.Errorf("%w: target_edge_length must be positive", ErrConfig)
	}
	if c.Rounds < 0 {
		return nil, fmt.Errorf("%w: negative rounds", ErrConfig)
	}
	for _, p := range c.Passes {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		switch p.Operation {
		case "split", "collapse", "swap", "smooth":
		default:
			return nil, fmt.Errorf("%w: pass %q: unknown operation %q", ErrConfig, p.Name, p.Operation)
		}
	}
	return c, nil
}

// LoadRemeshConfig reads a remeshing configuration from a YAML file.
func LoadRemeshConfig(path string) (*RemeshConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseRemeshConfig(data)
}

// Package config loads the species-wide scalar parameters that drive
// the flocking simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ScalarParams holds the species-wide scalar parameters shared by
// every particle in a run. The per-individual weight matrix W is not
// config-file material: it depends on N and is built by the scenario
// package.
type ScalarParams struct {
	VMax   float64 `yaml:"v_max"`
	VDecay float64 `yaml:"v_decay"`
	AMax   float64 `yaml:"a_max"`
	DMax   float64 `yaml:"d_max"`
	UMax   float64 `yaml:"u_max"`
	U1P    float64 `yaml:"u1_p"`
	U2P    float64 `yaml:"u2_p"`
	U2Dopt float64 `yaml:"u2_dopt"`
	U3P    float64 `yaml:"u3_p"`
	U3Dmax float64 `yaml:"u3_dmax"`

	// Derived holds values computed once after loading.
	Derived DerivedParams `yaml:"-"`
}

// DerivedParams holds values computed from a loaded ScalarParams.
// Mirrors the teacher's DerivedConfig / computeDerived split so
// derived values are never hand-recomputed at call sites.
type DerivedParams struct {
	AccelScale float64 // a_max / u_max, the urgency-to-acceleration scale factor
}

// Load loads scalar parameters from a YAML file, merging on top of
// the embedded defaults. If path is empty, only the embedded defaults
// are used.
func Load(path string) (ScalarParams, error) {
	p := ScalarParams{}
	if err := yaml.Unmarshal(defaultsYAML, &p); err != nil {
		return ScalarParams{}, fmt.Errorf("config: parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return ScalarParams{}, fmt.Errorf("config: reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &p); err != nil {
			return ScalarParams{}, fmt.Errorf("config: parsing config file: %w", err)
		}
	}

	if err := p.Prepare(); err != nil {
		return ScalarParams{}, err
	}
	return p, nil
}

// MustLoad is like Load but panics on error, for callers (tests,
// scenario mains) with no sensible recovery path.
func MustLoad(path string) ScalarParams {
	p, err := Load(path)
	if err != nil {
		panic(fmt.Sprintf("config: failed to load: %v", err))
	}
	return p
}

// Validate checks the invariants spec.md §4/§7 require of a Config.
// v_max, a_max, u_max and the three urgency linear parameters must be
// strictly positive; v_decay must be in (0,1]. The three distance
// thresholds (d_max, u2_dopt, u3_dmax) are allowed to be zero, which
// disables the corresponding urgency component entirely (its in_range
// mask requires distance > 0, so a zero threshold is never satisfied)
// — scenarios that want to isolate a single urgency component rely on
// this.
func (p ScalarParams) Validate() error {
	positive := map[string]float64{
		"v_max": p.VMax, "a_max": p.AMax, "u_max": p.UMax,
		"u1_p": p.U1P, "u2_p": p.U2P, "u3_p": p.U3P,
	}
	for name, v := range positive {
		if v <= 0 {
			return fmt.Errorf("config: %s must be strictly positive, got %v", name, v)
		}
	}
	nonNegative := map[string]float64{
		"d_max": p.DMax, "u2_dopt": p.U2Dopt, "u3_dmax": p.U3Dmax,
	}
	for name, v := range nonNegative {
		if v < 0 {
			return fmt.Errorf("config: %s must be non-negative, got %v", name, v)
		}
	}
	if p.VDecay <= 0 || p.VDecay > 1 {
		return fmt.Errorf("config: v_decay must be in (0,1], got %v", p.VDecay)
	}
	return nil
}

// Prepare validates p and populates Derived in place. Load calls it,
// and flock.NewConfig calls it on its own copy, so a ScalarParams
// built outside of Load (tests, scenario code) is prepared there.
func (p *ScalarParams) Prepare() error {
	if err := p.Validate(); err != nil {
		return err
	}
	p.Derived.AccelScale = p.AMax / p.UMax
	return nil
}

// WriteYAML saves the scalar parameters to path, for cmd/sweep to
// record the exact parameters a run used alongside its CSV summary.
func (p ScalarParams) WriteYAML(path string) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("config: marshaling: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

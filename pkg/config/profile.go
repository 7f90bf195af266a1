package config

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/damiendr/cura-nozzlewipe/pkg/errors"
	"github.com/damiendr/cura-nozzlewipe/pkg/wipe"
)

// profileSection is the ini section holding the wipe parameters.
const profileSection = "nozzle_wipe"

// profile mirrors wipe.Options for YAML decoding. Pointer fields distinguish
// "absent" from zero so that defaults survive a partial file.
type profile struct {
	TakeoffDist *float64 `yaml:"takeoff_dist"`
	LandingDist *float64 `yaml:"landing_dist"`
	ZHopPerMM   *float64 `yaml:"z_hop_per_mm"`
	ZRelief     *float64 `yaml:"z_relief"`
	SameType    *bool    `yaml:"same_type"`
	HalfTrace   *bool    `yaml:"half_trace"`
}

// LoadProfile reads wipe options from a profile file, starting from the
// defaults. The format is chosen by extension: ".yaml"/".yml" decodes a YAML
// mapping, anything else parses as an ini file with a [nozzle_wipe] section.
func LoadProfile(path string) (wipe.Options, error) {
	opts := wipe.DefaultOptions()
	ext := strings.ToLower(filepath.Ext(path))
	var err error
	if ext == ".yaml" || ext == ".yml" {
		err = loadYAMLProfile(path, &opts)
	} else {
		err = loadIniProfile(path, &opts)
	}
	if err != nil {
		return wipe.Options{}, err
	}
	if err := opts.Validate(); err != nil {
		return wipe.Options{}, err
	}
	return opts, nil
}

func loadYAMLProfile(path string, opts *wipe.Options) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.ProfileLoadError(path, err)
	}
	var p profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return errors.ProfileLoadError(path, err)
	}
	if p.TakeoffDist != nil {
		opts.TakeoffDist = *p.TakeoffDist
	}
	if p.LandingDist != nil {
		opts.LandingDist = *p.LandingDist
	}
	if p.ZHopPerMM != nil {
		opts.ZHopPerMM = *p.ZHopPerMM
	}
	if p.ZRelief != nil {
		opts.ZRelief = *p.ZRelief
	}
	if p.SameType != nil {
		opts.SameType = *p.SameType
	}
	if p.HalfTrace != nil {
		opts.HalfTrace = *p.HalfTrace
	}
	return nil
}

func loadIniProfile(path string, opts *wipe.Options) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	section, err := cfg.GetSection(profileSection)
	if err != nil {
		return err
	}
	if opts.TakeoffDist, err = section.GetFloat("takeoff_dist", opts.TakeoffDist); err != nil {
		return err
	}
	if opts.LandingDist, err = section.GetFloat("landing_dist", opts.LandingDist); err != nil {
		return err
	}
	if opts.ZHopPerMM, err = section.GetFloat("z_hop_per_mm", opts.ZHopPerMM); err != nil {
		return err
	}
	if opts.ZRelief, err = section.GetFloat("z_relief", opts.ZRelief); err != nil {
		return err
	}
	if opts.SameType, err = section.GetBoolean("same_type", opts.SameType); err != nil {
		return err
	}
	if opts.HalfTrace, err = section.GetBoolean("half_trace", opts.HalfTrace); err != nil {
		return err
	}
	return nil
}

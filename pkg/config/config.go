// This file may be distributed under the terms of the GNU GPLv3 license.

// Package config loads nozzle wipe profiles from ini-style or YAML files.
//
// The ini format follows the printer-config convention: "[section]" headers,
// "key: value" or "key = value" options, comments introduced by '#'.
package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/damiendr/cura-nozzlewipe/pkg/errors"
)

// Config provides access to a parsed ini-style configuration file.
type Config struct {
	sections map[string]*Section
	order    []string // maintains section order
}

// Section provides typed access to one config section.
type Section struct {
	name    string
	options map[string]string
}

// Load reads a configuration file and returns a Config.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.ProfileLoadError(path, err)
	}
	defer f.Close()
	return parse(f, path)
}

// LoadString parses ini-style configuration from a string.
func LoadString(data string) (*Config, error) {
	return parse(strings.NewReader(data), "<string>")
}

func parse(r io.Reader, path string) (*Config, error) {
	c := &Config{sections: make(map[string]*Section)}
	var current *Section

	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			line = strings.TrimSpace(line[:idx])
			if line == "" {
				continue
			}
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			header := strings.TrimSpace(line[1 : len(line)-1])
			if header == "" {
				return nil, errors.ProfileLoadError(path,
					fmt.Errorf("empty section header at line %d", lineNum))
			}
			current = c.addSection(header)
			continue
		}

		sep := strings.IndexAny(line, ":=")
		if sep < 0 {
			return nil, errors.ProfileLoadError(path,
				fmt.Errorf("malformed option at line %d: %q", lineNum, line))
		}
		if current == nil {
			return nil, errors.ProfileLoadError(path,
				fmt.Errorf("option outside any section at line %d", lineNum))
		}
		key := strings.ToLower(strings.TrimSpace(line[:sep]))
		value := strings.TrimSpace(line[sep+1:])
		current.options[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.ProfileLoadError(path, err)
	}
	return c, nil
}

func (c *Config) addSection(name string) *Section {
	key := strings.ToLower(name)
	if s, ok := c.sections[key]; ok {
		return s
	}
	s := &Section{name: name, options: make(map[string]string)}
	c.sections[key] = s
	c.order = append(c.order, key)
	return s
}

// HasSection checks if a section exists.
func (c *Config) HasSection(name string) bool {
	_, ok := c.sections[strings.ToLower(name)]
	return ok
}

// GetSection returns a section by name.
func (c *Config) GetSection(name string) (*Section, error) {
	s, ok := c.sections[strings.ToLower(name)]
	if !ok {
		return nil, errors.ConfigSectionError(name)
	}
	return s, nil
}

// SectionNames returns all section names in file order.
func (c *Config) SectionNames() []string {
	return append([]string(nil), c.order...)
}

// GetName returns the section name.
func (s *Section) GetName() string {
	return s.name
}

// HasOption checks if an option exists in this section.
func (s *Section) HasOption(option string) bool {
	_, ok := s.options[strings.ToLower(option)]
	return ok
}

// Get returns a string option value, or the fallback if absent.
func (s *Section) Get(option string, fallback ...string) (string, error) {
	if v, ok := s.options[strings.ToLower(option)]; ok {
		return v, nil
	}
	if len(fallback) > 0 {
		return fallback[0], nil
	}
	return "", errors.ConfigOptionError(s.name, option)
}

// GetFloat returns a float option value, or the fallback if absent.
func (s *Section) GetFloat(option string, fallback ...float64) (float64, error) {
	if v, ok := s.options[strings.ToLower(option)]; ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, errors.ConfigValueError(s.name, option, v, "not a number")
		}
		return f, nil
	}
	if len(fallback) > 0 {
		return fallback[0], nil
	}
	return 0, errors.ConfigOptionError(s.name, option)
}

// GetBoolean returns a boolean option value, or the fallback if absent.
// Accepts true/false, yes/no, on/off, 1/0.
func (s *Section) GetBoolean(option string, fallback ...bool) (bool, error) {
	v, ok := s.options[strings.ToLower(option)]
	if !ok {
		if len(fallback) > 0 {
			return fallback[0], nil
		}
		return false, errors.ConfigOptionError(s.name, option)
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "yes", "on", "1":
		return true, nil
	case "false", "no", "off", "0":
		return false, nil
	}
	return false, errors.ConfigValueError(s.name, option, v, "not a boolean")
}

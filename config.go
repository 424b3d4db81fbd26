// Copyright 2023 nbiotcloud
// Licensed under the MIT license.

package ucdp

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// A Config is one selectable variant of a configurable module spec. Values
// hold constant expression text consumed by the build hooks.
type Config struct {
	Name   string            `yaml:"name"`
	Title  string            `yaml:"title,omitempty"`
	Values map[string]string `yaml:"values,omitempty"`
}

// Int evaluates the named config value as a constant expression.
func (c *Config) Int(name string) (int64, error) {
	text, ok := c.Values[name]
	if !ok {
		var known []string
		for k := range c.Values {
			known = append(known, k)
		}
		return 0, unknownNameErr(name, known)
	}
	e, err := ParseConst(text)
	if err != nil {
		return 0, err
	}
	return e.Int()
}

// MustInt is Int, panicking on error.
func (c *Config) MustInt(name string) int64 {
	v, err := c.Int(name)
	must(err)
	return v
}

// Expr evaluates the named config value as a constant expression.
func (c *Config) Expr(name string) (Expr, error) {
	text, ok := c.Values[name]
	if !ok {
		var known []string
		for k := range c.Values {
			known = append(known, k)
		}
		return nil, unknownNameErr(name, known)
	}
	return ParseConst(text)
}

func (c *Config) validate() error {
	if err := ValidateIdentifier(c.Name); err != nil {
		return errors.Wrap(err, "config name")
	}
	for name, text := range c.Values {
		if err := ValidateIdentifier(name); err != nil {
			return errors.Wrapf(err, "config %q", c.Name)
		}
		if _, err := ParseConst(text); err != nil {
			return errors.Wrapf(err, "config %q value %q", c.Name, name)
		}
	}
	return nil
}

// LoadConfigs reads a YAML config list.
func LoadConfigs(r io.Reader) ([]*Config, error) {
	var configs []*Config
	if err := yaml.NewDecoder(r).Decode(&configs); err != nil {
		return nil, errors.Wrap(err, "decoding configs")
	}
	seen := make(map[string]bool)
	for _, c := range configs {
		if err := c.validate(); err != nil {
			return nil, err
		}
		if seen[c.Name] {
			return nil, duplicateErrf("config %q already exists", c.Name)
		}
		seen[c.Name] = true
	}
	return configs, nil
}

// LoadConfigFile reads a YAML config list from path.
func LoadConfigFile(path string) ([]*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()
	configs, err := LoadConfigs(f)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return configs, nil
}

// Copyright 2024 The go-pco Authors. All rights reserved.
// Use of this source code is governed by the Apache License Version 2.0;
// see the LICENSE file for further details.

package main

import (
	"errors"
	"fmt"
	"io/ioutil"
	"os"

	yaml "gopkg.in/yaml.v2"
)

type Config struct {
	OutputDir string `yaml:"output-dir"`
	Format    string `yaml:"format"`
	Prefix    string `yaml:"prefix"`
	StampDirs bool   `yaml:"stamp-dirs"`
	Shift     bool   `yaml:"shift"`
}

var formatExts = map[string]string{
	"tiff": ".tiff",
	"png":  ".png",
	"fits": ".fits",
	"b16":  ".b16",
}

func (conf *Config) Validate() error {
	if conf.OutputDir == "" {
		return errors.New("output-dir must be set")
	}
	if _, ok := formatExts[conf.Format]; !ok {
		return fmt.Errorf("unsupported format: %q", conf.Format)
	}
	return nil
}

// Ext returns the file extension for the configured output format.
func (conf *Config) Ext() string {
	return formatExts[conf.Format]
}

var defaultConfig = Config{
	OutputDir: ".",
	Format:    "tiff",
	Prefix:    "img",
	StampDirs: false,
	Shift:     true,
}

// ParseConfigFile loads the configuration, falling back to the
// defaults when the file doesn't exist.
func ParseConfigFile(filename string) (*Config, error) {
	buf, err := ioutil.ReadFile(filename)
	if os.IsNotExist(err) {
		conf := defaultConfig
		return &conf, nil
	}
	if err != nil {
		return nil, err
	}
	return ParseConfig(buf)
}

func ParseConfig(buf []byte) (*Config, error) {
	conf := defaultConfig
	if err := yaml.Unmarshal(buf, &conf); err != nil {
		return nil, err
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return &conf, nil
}

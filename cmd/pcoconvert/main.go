// Copyright 2024 The go-pco Authors. All rights reserved.
// Use of this source code is governed by the Apache License Version 2.0;
// see the LICENSE file for further details.

// pcoconvert batch converts PCO B16 camera files to tiff, png, fits or
// b16, naming the output by frame counter and optionally grouping it
// into folders by capture date.
package main

import (
	"log"
	"time"

	arg "github.com/alexflint/go-arg"

	pco "github.com/pco-imaging/go-pco"
	"github.com/pco-imaging/go-pco/loglimiter"
	"github.com/pco-imaging/go-pco/output"
)

const warnInterval = 10 * time.Second

var version = "<not set>"

type Args struct {
	Files      []string `arg:"positional,required" help:"camera image files to convert"`
	ConfigFile string   `arg:"-c,--config" help:"path to configuration file"`
	Timestamps bool     `arg:"-t,--timestamps" help:"include timestamps in log output"`
}

func (Args) Version() string {
	return version
}

func procArgs() Args {
	var args Args
	args.ConfigFile = "pcoconvert.yaml"
	arg.MustParse(&args)
	return args
}

func main() {
	err := runMain()
	if err != nil {
		log.Fatal(err)
	}
}

func runMain() error {
	args := procArgs()
	if !args.Timestamps {
		log.SetFlags(0) // Removes default timestamp flag
	}

	log.Printf("version: %s", version)
	conf, err := ParseConfigFile(args.ConfigFile)
	if err != nil {
		return err
	}
	logConfig(conf)

	rec := output.NewRecorder(conf.OutputDir, conf.Prefix, conf.Ext(), conf.StampDirs)
	limiter := loglimiter.New(warnInterval)

	converted := 0
	for _, filename := range args.Files {
		im, err := pco.Open(filename)
		if err != nil {
			return err
		}

		// An unreadable stamp isn't fatal; the file still converts,
		// it just can't be dated.
		captured := time.Time{}
		s, err := im.Stamp(conf.Shift)
		if err != nil {
			limiter.Printf("stamp decode failed: %v", err)
		} else {
			captured = s.Timestamp
		}

		outPath, err := rec.NextPath(captured)
		if err != nil {
			return err
		}
		if err := im.Write(outPath); err != nil {
			return err
		}
		log.Printf("%s -> %s", filename, outPath)
		converted++
	}

	log.Printf("converted %d of %d files", converted, len(args.Files))
	return nil
}

func logConfig(conf *Config) {
	log.Printf("output dir: %s", conf.OutputDir)
	log.Printf("format: %s", conf.Format)
	log.Printf("prefix: %s", conf.Prefix)
	log.Printf("date folders: %v", conf.StampDirs)
	log.Printf("shift correction: %v", conf.Shift)
}

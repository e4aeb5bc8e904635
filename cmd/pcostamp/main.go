// Copyright 2023 The go-pco Authors. All rights reserved.
// Use of this source code is governed by the Apache License Version 2.0;
// see the LICENSE file for further details.

// pcostamp prints the frame index and capture timestamp embedded in
// PCO camera images.
package main

import (
	"fmt"
	"log"
	"os"

	arg "github.com/alexflint/go-arg"

	pco "github.com/pco-imaging/go-pco"
	"github.com/pco-imaging/go-pco/b16"
	"github.com/pco-imaging/go-pco/stamp"
)

var version = "<not set>"

type Args struct {
	Files      []string `arg:"positional,required" help:"camera image files (.b16, .tif, .tiff)"`
	NoShift    bool     `arg:"--no-shift" help:"pixel values hold digits directly (no 2 bit packing correction)"`
	Raw        bool     `arg:"--raw" help:"print raw digit strings without calendar interpretation"`
	Header     bool     `arg:"--header" help:"also print B16 header details"`
	Timestamps bool     `arg:"-t,--timestamps" help:"include timestamps in log output"`
}

func (Args) Version() string {
	return version
}

func procArgs() Args {
	var args Args
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
	shift := !args.NoShift

	for _, filename := range args.Files {
		if len(args.Files) > 1 {
			fmt.Printf("%s:\n", filename)
		}
		if err := printStamp(filename, shift, args.Raw); err != nil {
			return fmt.Errorf("%s: %v", filename, err)
		}
		if args.Header {
			if err := printHeader(filename); err != nil {
				return fmt.Errorf("%s: %v", filename, err)
			}
		}
	}
	return nil
}

func printStamp(filename string, shift, raw bool) error {
	im, err := pco.Open(filename)
	if err != nil {
		return err
	}

	if raw {
		row, err := im.StampRow()
		if err != nil {
			return err
		}
		index, timestamp, err := stamp.DecodeRaw(row, shift)
		if err != nil {
			return err
		}
		fmt.Println("Index digits:     ", index)
		fmt.Println("Timestamp digits: ", timestamp)
		return nil
	}

	s, err := im.Stamp(shift)
	if err != nil {
		return err
	}
	fmt.Println("Index:     ", s.Index)
	fmt.Println("Timestamp: ", s.Timestamp.Format("2006-01-02 15:04:05.000000"))
	return nil
}

func printHeader(filename string) error {
	f, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	hdr, err := b16.DecodeHeader(f)
	if err != nil {
		return err
	}
	fmt.Printf("Size:       %dx%d\n", hdr.Width, hdr.Height)
	fmt.Printf("File size:  %d\n", hdr.FileSize)
	fmt.Printf("Header:     %d bytes\n", hdr.HeaderSize)
	fmt.Printf("Extended:   %v\n", hdr.Extended)
	if hdr.Extended {
		fmt.Printf("Display:    %d - %d\n", hdr.BWDisplayMin, hdr.BWDisplayMax)
	}
	return nil
}

// Copyright 2024 The go-pco Authors. All rights reserved.
// Use of this source code is governed by the Apache License Version 2.0;
// see the LICENSE file for further details.

// Package output names and places converted image files: incrementing
// counters in the filename, optionally grouped into date subfolders
// taken from each image's decoded capture time.
package output

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Recorder produces paths of the form <root>[/yyyy-mm-dd]/<prefix>NNNNNN<ext>.
// Counters resume from whatever is already on disk, per directory, so
// interrupted conversion runs can be repeated without clobbering
// earlier output. A Recorder is not safe for concurrent use.
type Recorder struct {
	root      string
	prefix    string
	ext       string
	stampDirs bool
	counters  map[string]int
}

// NewRecorder returns a Recorder writing under root. With stampDirs
// set, files are grouped into yyyy-mm-dd subfolders derived from the
// capture time passed to NextPath; this is the camera's clock, not the
// conversion host's.
func NewRecorder(root, prefix, ext string, stampDirs bool) *Recorder {
	return &Recorder{
		root:      root,
		prefix:    prefix,
		ext:       ext,
		stampDirs: stampDirs,
		counters:  make(map[string]int),
	}
}

// NextPath returns the path the next converted file should be written
// to, creating its directory if needed and advancing that directory's
// counter. captured is ignored unless the Recorder groups by date.
func (r *Recorder) NextPath(captured time.Time) (string, error) {
	dir := r.root
	if r.stampDirs {
		dir = filepath.Join(r.root, captured.Format("2006-01-02"))
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	count, known := r.counters[dir]
	if !known {
		count = r.scan(dir)
	}
	count++
	r.counters[dir] = count

	return filepath.Join(dir, fmt.Sprintf("%s%06d%s", r.prefix, count, r.ext)), nil
}

// scan finds the highest counter already present in dir so numbering
// resumes instead of restarting.
func (r *Recorder) scan(dir string) int {
	files, err := ioutil.ReadDir(dir)
	if err != nil {
		return 0
	}
	max := 0
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		name := file.Name()
		if !strings.HasPrefix(name, r.prefix) || !strings.HasSuffix(name, r.ext) {
			continue
		}
		numPart := name[len(r.prefix) : len(name)-len(r.ext)]
		n, err := strconv.Atoi(numPart)
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return max
}

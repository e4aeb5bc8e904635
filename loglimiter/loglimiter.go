// Copyright 2024 The go-pco Authors. All rights reserved.
// Use of this source code is governed by the Apache License Version 2.0;
// see the LICENSE file for further details.

// Package loglimiter suppresses runs of identical log messages, as
// produced by batch conversions where every frame in a broken capture
// fails the same way.
package loglimiter

import (
	"fmt"
	"log"
	"time"
)

// New returns a LogLimiter with the given minimum interval between
// repeats of the same message.
func New(interval time.Duration) *LogLimiter {
	return &LogLimiter{
		interval: interval,
		nowFunc:  time.Now,
	}
}

// LogLimiter drops a log message if the same message was logged within
// the configured interval. When a message finally gets through again,
// the number of drops is reported so the log still accounts for every
// event.
type LogLimiter struct {
	interval      time.Duration
	nowFunc       func() time.Time
	previousEntry string
	previousTime  time.Time
	suppressed    int
}

func (limiter *LogLimiter) Printf(format string, v ...interface{}) {
	limiter.Print(fmt.Sprintf(format, v...))
}

func (limiter *LogLimiter) Print(s string) {
	now := limiter.nowFunc()
	if s == limiter.previousEntry && now.Sub(limiter.previousTime) < limiter.interval {
		limiter.suppressed++
		return
	}

	if limiter.suppressed > 0 {
		log.Printf("(previous message repeated %d more times)", limiter.suppressed)
		limiter.suppressed = 0
	}
	log.Print(s)
	limiter.previousTime = now
	limiter.previousEntry = s
}

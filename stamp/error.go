// Copyright 2023 The go-pco Authors. All rights reserved.
// Use of this source code is governed by the Apache License Version 2.0;
// see the LICENSE file for further details.

package stamp

import "fmt"

// DecodeError reports a pixel row that does not hold a valid binary
// timestamp. Field names the part that failed ("length", "digit" or a
// calendar field such as "month"), Pixel is the offset of the first
// offending pixel in the row (-1 when not pixel specific) and Value is
// the rejected value.
type DecodeError struct {
	Field string
	Pixel int
	Value int
}

func (e *DecodeError) Error() string {
	switch e.Field {
	case "length":
		return fmt.Sprintf("stamp: row has %d pixels, need %d", e.Value, RowPixels)
	case "digit":
		return fmt.Sprintf("stamp: pixel %d is not a decimal digit: %d", e.Pixel, e.Value)
	}
	return fmt.Sprintf("stamp: invalid %s: %d", e.Field, e.Value)
}

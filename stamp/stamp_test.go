// Copyright 2023 The go-pco Authors. All rights reserved.
// Use of this source code is governed by the Apache License Version 2.0;
// see the LICENSE file for further details.

package stamp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Frame 1 captured at 2023-01-20 18:21:53.096300, digit per pixel.
var refRow = []uint16{
	0, 0, 0, 1, // index
	2, 3, // year
	0, 1, // month
	2, 0, // day
	1, 8, // hour
	2, 1, // minute
	5, 3, // second
	0, 9, 6, 3, 0, 0, // microseconds
}

var refStamp = Stamp{
	Index:     1,
	Timestamp: time.Date(2023, 1, 20, 18, 21, 53, 96300*1000, time.UTC),
}

func shiftRow(row []uint16) []uint16 {
	out := make([]uint16, len(row))
	for i, px := range row {
		out[i] = px << 2
	}
	return out
}

func TestDecode(t *testing.T) {
	s, err := Decode(refRow, false)
	require.NoError(t, err)
	assert.Equal(t, refStamp, s)
}

func TestDecodeShifted(t *testing.T) {
	s, err := Decode(shiftRow(refRow), true)
	require.NoError(t, err)
	assert.Equal(t, refStamp, s)
}

func TestDecodeIgnoresTrailingPixels(t *testing.T) {
	row := append(append([]uint16{}, refRow...), 1043, 992, 1011)
	s, err := Decode(row, false)
	require.NoError(t, err)
	assert.Equal(t, refStamp, s)
}

func TestDecodeIdempotent(t *testing.T) {
	s1, err := Decode(refRow, false)
	require.NoError(t, err)
	s2, err := Decode(refRow, false)
	require.NoError(t, err)
	assert.Equal(t, s1, s2)
}

func TestDecodeShortRow(t *testing.T) {
	_, err := Decode(refRow[:RowPixels-1], false)
	require.Error(t, err)
	decErr, ok := err.(*DecodeError)
	require.True(t, ok)
	assert.Equal(t, "length", decErr.Field)
	assert.Equal(t, RowPixels-1, decErr.Value)

	_, err = Decode(nil, true)
	require.Error(t, err)
}

func TestDecodeNonDigitPixel(t *testing.T) {
	row := append([]uint16{}, refRow...)
	row[7] = 14
	_, err := Decode(row, false)
	require.Error(t, err)
	decErr, ok := err.(*DecodeError)
	require.True(t, ok)
	assert.Equal(t, "digit", decErr.Field)
	assert.Equal(t, 7, decErr.Pixel)
	assert.Equal(t, 14, decErr.Value)
}

func TestDecodeInvalidCalendarFields(t *testing.T) {
	tests := []struct {
		field string
		off   int
		ds    [2]uint16
	}{
		{"month", 6, [2]uint16{1, 3}},
		{"month", 6, [2]uint16{0, 0}},
		{"day", 8, [2]uint16{3, 2}},
		{"day", 8, [2]uint16{0, 0}},
		{"hour", 10, [2]uint16{2, 4}},
		{"minute", 12, [2]uint16{6, 0}},
		{"second", 14, [2]uint16{7, 7}},
	}
	for _, x := range tests {
		row := append([]uint16{}, refRow...)
		row[x.off] = x.ds[0]
		row[x.off+1] = x.ds[1]
		_, err := Decode(row, false)
		require.Error(t, err, "field %s", x.field)
		decErr, ok := err.(*DecodeError)
		require.True(t, ok)
		assert.Equal(t, x.field, decErr.Field)
		assert.Equal(t, x.off, decErr.Pixel)
	}
}

func TestDecodeShortMonths(t *testing.T) {
	// 2023-02-29 doesn't exist; 2024-02-29 does.
	row := append([]uint16{}, refRow...)
	row[6], row[7] = 0, 2
	row[8], row[9] = 2, 9
	_, err := Decode(row, false)
	require.Error(t, err)

	row[4], row[5] = 2, 4
	s, err := Decode(row, false)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 29, 18, 21, 53, 96300*1000, time.UTC), s.Timestamp)
}

func TestDecodeWrongShiftMode(t *testing.T) {
	// A row encoded for shift mode either fails digit validation or
	// decodes to something different when read unshifted.
	s, err := Decode(shiftRow(refRow), false)
	if err == nil {
		assert.NotEqual(t, refStamp, s)
	}

	// The reference row read as shifted drops every digit to zero,
	// which is not a valid date.
	_, err = Decode(refRow, true)
	require.Error(t, err)
}

func TestDecodeRaw(t *testing.T) {
	index, timestamp, err := DecodeRaw(refRow, false)
	require.NoError(t, err)
	assert.Equal(t, "0001", index)
	assert.Equal(t, "230120182153096300", timestamp)

	index, timestamp, err = DecodeRaw(shiftRow(refRow), true)
	require.NoError(t, err)
	assert.Equal(t, "0001", index)
	assert.Equal(t, "230120182153096300", timestamp)
}

func TestDecodeRawSkipsCalendarChecks(t *testing.T) {
	row := append([]uint16{}, refRow...)
	row[6], row[7] = 9, 9 // month 99
	_, timestamp, err := DecodeRaw(row, false)
	require.NoError(t, err)
	assert.Equal(t, "239920182153096300", timestamp)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	stamps := []Stamp{
		refStamp,
		{Index: 0, Timestamp: time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)},
		{Index: 9999, Timestamp: time.Date(2099, 12, 31, 23, 59, 59, 999999000, time.UTC)},
		{Index: 42, Timestamp: time.Date(2024, 2, 29, 6, 7, 8, 1000, time.UTC)},
	}
	for _, want := range stamps {
		for _, shift := range []bool{false, true} {
			row, err := Encode(want, shift)
			require.NoError(t, err)
			assert.Len(t, row, RowPixels)
			got, err := Decode(row, shift)
			require.NoError(t, err)
			assert.Equal(t, want, got, "shift=%v", shift)
		}
	}
}

func TestEncodeReference(t *testing.T) {
	row, err := Encode(refStamp, false)
	require.NoError(t, err)
	assert.Equal(t, refRow, row)

	row, err = Encode(refStamp, true)
	require.NoError(t, err)
	assert.Equal(t, shiftRow(refRow), row)
}

func TestEncodeOutOfRange(t *testing.T) {
	_, err := Encode(Stamp{Index: 10000, Timestamp: refStamp.Timestamp}, false)
	assert.Error(t, err)

	_, err = Encode(Stamp{Index: -1, Timestamp: refStamp.Timestamp}, false)
	assert.Error(t, err)

	_, err = Encode(Stamp{Index: 1, Timestamp: time.Date(1999, 12, 31, 23, 59, 59, 0, time.UTC)}, false)
	assert.Error(t, err)

	_, err = Encode(Stamp{Index: 1, Timestamp: time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC)}, false)
	assert.Error(t, err)
}

func TestEncodeTruncatesToMicroseconds(t *testing.T) {
	s := refStamp
	s.Timestamp = s.Timestamp.Add(400 * time.Nanosecond)
	row, err := Encode(s, false)
	require.NoError(t, err)
	got, err := Decode(row, false)
	require.NoError(t, err)
	assert.Equal(t, refStamp, got)
}

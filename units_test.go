package rml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLength(t *testing.T) {
	cases := map[string]float64{
		"72":     72,
		"12pt":   12,
		"1in":    72,
		"0.5 in": 36,
		"2i":     144,
		"2.54cm": 72,
		"25.4mm": 72,
		"-3":     -3,
		" 1IN ":  72,
	}
	for in, want := range cases {
		got, err := ParseLength(in)
		require.NoError(t, err, in)
		assert.InDelta(t, want, got, 1e-9, in)
	}
	for _, bad := range []string{"", "cm", "abc", "1 2", "NaN", "nan", "Inf", "-inf", "+Infinity", "1e400", "1e400pt"} {
		_, err := ParseLength(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseLengths(t *testing.T) {
	got, err := ParseLengths("[1in, *, 20, None]")
	require.NoError(t, err)
	assert.Equal(t, []float64{72, 0, 20, 0}, got)

	got, err = ParseLengths("(10,20)")
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 20}, got)

	got, err = ParseLengths("  ")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = ParseLengths("1in,wide")
	assert.Error(t, err)
}

func TestParsePageSize(t *testing.T) {
	a4, err := ParsePageSize("A4")
	require.NoError(t, err)
	assert.Equal(t, Size{Width: 595.28, Height: 841.89}, a4)

	land, err := ParsePageSize("letter landscape")
	require.NoError(t, err)
	assert.Equal(t, Size{Width: 792, Height: 612}, land)

	port, err := ParsePageSize("legal Portrait")
	require.NoError(t, err)
	assert.Equal(t, Size{Width: 612, Height: 1008}, port)

	tuple, err := ParsePageSize("(8.5in, 11in)")
	require.NoError(t, err)
	assert.Equal(t, Size{Width: 612, Height: 792}, tuple)

	for _, bad := range []string{"", "a4 sideways", "(1in)", "(0, 10)", "huge"} {
		_, err := ParsePageSize(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseBool(t *testing.T) {
	for _, v := range []string{"1", "true", "Yes", "ON"} {
		b, err := ParseBool(v)
		require.NoError(t, err)
		assert.True(t, b, v)
	}
	for _, v := range []string{"0", "false", "no", "off", ""} {
		b, err := ParseBool(v)
		require.NoError(t, err)
		assert.False(t, b, v)
	}
	_, err := ParseBool("maybe")
	assert.Error(t, err)
}

func TestParseAlignment(t *testing.T) {
	cases := map[string]Alignment{
		"":          AlignLeft,
		"LEFT":      AlignLeft,
		"centre":    AlignCenter,
		"TA_CENTER": AlignCenter,
		"right":     AlignRight,
		"2":         AlignRight,
		"justify":   AlignJustify,
		"4":         AlignJustify,
	}
	for in, want := range cases {
		got, err := ParseAlignment(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseAlignment("3")
	assert.Error(t, err)
	assert.Equal(t, "justify", AlignJustify.String())
	assert.Equal(t, "left", Alignment(9).String())
}

func TestParseVAlign(t *testing.T) {
	v, err := ParseVAlign("MIDDLE")
	require.NoError(t, err)
	assert.Equal(t, VAlignMiddle, v)
	v, err = ParseVAlign("bottom")
	require.NoError(t, err)
	assert.Equal(t, VAlignBottom, v)
	_, err = ParseVAlign("baseline")
	assert.Error(t, err)
}

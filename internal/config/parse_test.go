package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLiteralScalars(t *testing.T) {
	v, err := ParseLiteral("True")
	require.NoError(t, err)
	b, ok := v.Bool()
	assert.True(t, ok)
	assert.True(t, b)

	v, err = ParseLiteral("None")
	require.NoError(t, err)
	assert.True(t, v.IsNone())

	v, err = ParseLiteral("42")
	require.NoError(t, err)
	i, ok := v.Int()
	assert.True(t, ok)
	assert.Equal(t, 42, i)

	v, err = ParseLiteral("3.5")
	require.NoError(t, err)
	f, ok := v.Float()
	assert.True(t, ok)
	assert.Equal(t, 3.5, f)
}

func TestParseLiteralList(t *testing.T) {
	v, err := ParseLiteral("[1, 2, 3]")
	require.NoError(t, err)
	list, ok := v.List()
	require.True(t, ok)
	require.Len(t, list, 3)
	i, _ := list[1].Int()
	assert.Equal(t, 2, i)
}

func TestParseLiteralMapPreservesOrder(t *testing.T) {
	v, err := ParseLiteral("{'O3': 1001, 'NO': 1003, 'NO2': 1005}")
	require.NoError(t, err)
	entries, ok := v.Map()
	require.True(t, ok)
	require.Len(t, entries, 3)
	assert.Equal(t, "O3", entries[0].key)
	assert.Equal(t, "NO", entries[1].key)
	assert.Equal(t, "NO2", entries[2].key)
}

func TestParseLiteralNestedCollections(t *testing.T) {
	v, err := ParseLiteral("{'Port': 'COM3', 'Addresses': [1, 2]}")
	require.NoError(t, err)
	entries, ok := v.Map()
	require.True(t, ok)
	require.Len(t, entries, 2)
	addrs, ok := entries[1].val.List()
	require.True(t, ok)
	assert.Len(t, addrs, 2)
}

func TestParseLiteralUnrecognizedSyntax(t *testing.T) {
	_, err := ParseLiteral("not_a_literal(")
	assert.Error(t, err)
}

func TestRawStringKeepsWhitespaceVerbatim(t *testing.T) {
	v := RawString(" G2401 ")
	s, ok := v.String()
	require.True(t, ok)
	assert.Equal(t, " G2401 ", s)
}

func TestRegisterAddressAndScaleDefaultsToOne(t *testing.T) {
	v, err := ParseLiteral("1000")
	require.NoError(t, err)
	addr, scale := registerAddressAndScale(v)
	assert.Equal(t, 1000, addr)
	assert.Equal(t, 1.0, scale)
}

func TestRegisterAddressAndScaleReadsPair(t *testing.T) {
	v, err := ParseLiteral("[1000, 0.1]")
	require.NoError(t, err)
	addr, scale := registerAddressAndScale(v)
	assert.Equal(t, 1000, addr)
	assert.Equal(t, 0.1, scale)
}

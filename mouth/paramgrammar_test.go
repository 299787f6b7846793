package mouth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnieh/toolxit-tex/position"
	"github.com/gnieh/toolxit-tex/token"
)

var pgPos = position.Start("test")

func TestParseParamPartsDelimiterOnly(t *testing.T) {
	toks := []token.Token{
		token.Character('A', token.Letter, pgPos),
		token.Character('B', token.Letter, pgPos),
	}
	parts, count, err := parseParamParts(toks)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	require.Len(t, parts, 1)
	assert.False(t, parts[0].IsParam)
	assert.Len(t, parts[0].Delim, 2)
}

func TestParseParamPartsMixedParamsAndDelimiters(t *testing.T) {
	// Mirrors \def\cs AB#1#2C$#3\$ {...}: "AB" #1 #2 "C$" #3 "\$"
	toks := []token.Token{
		token.Character('A', token.Letter, pgPos),
		token.Character('B', token.Letter, pgPos),
		token.Param(1, pgPos),
		token.Param(2, pgPos),
		token.Character('C', token.Letter, pgPos),
		token.Character('$', token.Other, pgPos),
		token.Param(3, pgPos),
		token.ControlSequence("$", false, pgPos),
	}
	parts, count, err := parseParamParts(toks)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	require.Len(t, parts, 6)
	assert.False(t, parts[0].IsParam)
	assert.Len(t, parts[0].Delim, 2)
	assert.True(t, parts[1].IsParam)
	assert.Equal(t, 1, parts[1].ParamNumber)
	assert.True(t, parts[2].IsParam)
	assert.Equal(t, 2, parts[2].ParamNumber)
	assert.False(t, parts[3].IsParam)
	assert.Len(t, parts[3].Delim, 2)
	assert.True(t, parts[4].IsParam)
	assert.Equal(t, 3, parts[4].ParamNumber)
	assert.False(t, parts[5].IsParam)
	assert.Len(t, parts[5].Delim, 1)
}

func TestParseParamPartsRejectsNonConsecutiveNumbering(t *testing.T) {
	toks := []token.Token{
		token.Param(1, pgPos),
		token.Param(3, pgPos),
	}
	_, _, err := parseParamParts(toks)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "consecutively")
}

func TestParseParamPartsEmpty(t *testing.T) {
	parts, count, err := parseParamParts(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Empty(t, parts)
}

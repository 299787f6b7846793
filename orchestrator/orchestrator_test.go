package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnieh/toolxit-tex/token"
)

func TestEngineExpandsSimpleMacro(t *testing.T) {
	e := NewFromString("inline", `\def\greet{hi}\greet`, nil)
	toks, err := e.Tokens()
	require.NoError(t, err)
	require.Len(t, toks, 2)
	assert.Equal(t, 'h', toks[0].Char)
	assert.Equal(t, 'i', toks[1].Char)
}

func TestJobnameDerivedFromPath(t *testing.T) {
	assert.Equal(t, "report", jobnameFor("/tmp/some/dir/report.tex"))
	assert.Equal(t, "report", jobnameFor("report"))
}

func TestEngineReportsUserErrors(t *testing.T) {
	e := NewFromString("inline", `\def\toto{#1}`, nil)
	_, err := e.Tokens()
	assert.Error(t, err)
}

func TestJobnamePrimitiveReflectsSourceName(t *testing.T) {
	e := NewFromString("report.tex", `\jobname`, nil)
	toks, err := e.Tokens()
	require.NoError(t, err)
	var out []rune
	for _, tk := range toks {
		require.Equal(t, token.KindCharacter, tk.Kind)
		out = append(out, tk.Char)
	}
	assert.Equal(t, "report", string(out))
}

package mouth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnieh/toolxit-tex/environment"
	"github.com/gnieh/toolxit-tex/eyes"
	"github.com/gnieh/toolxit-tex/source"
	"github.com/gnieh/toolxit-tex/token"
)

func newMouth(t *testing.T, input string) *Mouth {
	t.Helper()
	env := environment.New(PrimitiveNames)
	lx := eyes.New(source.NewString("test.tex", input), env)
	return New(env, lx, nil, "test")
}

func collectChars(t *testing.T, m *Mouth) string {
	t.Helper()
	var out []rune
	for {
		tok, ok, err := m.NextExpanded()
		require.NoError(t, err)
		if !ok {
			break
		}
		require.Equal(t, token.KindCharacter, tok.Kind, "unexpected token %v", tok)
		out = append(out, tok.Char)
	}
	return string(out)
}

func TestSimpleMacroExpansion(t *testing.T) {
	m := newMouth(t, `\def\test{}\test`)
	tok, ok, err := m.NextExpanded()
	require.NoError(t, err)
	require.False(t, ok)
	_ = tok
}

func TestMacroWithArgument(t *testing.T) {
	m := newMouth(t, `\def\greet#1{hello #1!}\greet{world}`)
	assert.Equal(t, "hello world!", collectChars(t, m))
}

func TestMacroParameterAndDelimiterGrammar(t *testing.T) {
	// \def\cs AB#1#2C$#3\$ {#3#2#1} then call it.
	m := newMouth(t, `\def\cs AB#1#2C$#3\$ {#3#2#1}\cs ABxyC$z\$ `)
	assert.Equal(t, "zyx", collectChars(t, m))
}

func TestDoubleHashCollapsesToSingleParameterChar(t *testing.T) {
	// scenario 5: ##1 inside replacement text of a one-parameter macro
	// keeps the literal '#' and the digit '1' as two separate
	// characters rather than a fused parameter reference.
	m := newMouth(t, `\def\test#1{##1}\test{x}`)
	assert.Equal(t, "#1", collectChars(t, m))
}

func TestUndefinedParameterReferenceIsAnError(t *testing.T) {
	m := newMouth(t, `\def\toto{#1}`)
	_, _, err := m.NextExpanded()
	assert.Error(t, err)
}

func TestStrayParameterTokenIsAnError(t *testing.T) {
	// outside of a macro's parameter/replacement text, a lexed #<digit>
	// must never reach the external interface as a token.
	m := newMouth(t, `#1`)
	_, _, err := m.NextExpanded()
	assert.Error(t, err)
}

func TestIfnumBranching(t *testing.T) {
	m := newMouth(t, `\ifnum 1<2 yes\else no\fi`)
	assert.Equal(t, "yes", collectChars(t, m))

	m2 := newMouth(t, `\ifnum 2<1 yes\else no\fi`)
	assert.Equal(t, "no", collectChars(t, m2))
}

func TestIfcaseBranching(t *testing.T) {
	m := newMouth(t, `\ifcase 2 zero\or one\or two\or three\fi`)
	assert.Equal(t, "two", collectChars(t, m))
}

func TestIfcaseWithElseDefault(t *testing.T) {
	// selecting an earlier numbered arm must skip through every
	// remaining \or arm *and* the trailing \else default down to \fi.
	m := newMouth(t, `\ifcase 0 a\or b\else c\fi`)
	assert.Equal(t, "a", collectChars(t, m))

	m2 := newMouth(t, `\ifcase 1 a\or b\else c\fi`)
	assert.Equal(t, "b", collectChars(t, m2))

	// out-of-range selector falls through to the \else default.
	m3 := newMouth(t, `\ifcase 5 a\or b\else c\fi`)
	assert.Equal(t, "c", collectChars(t, m3))
}

func TestNoexpandPassesTokenThroughOnce(t *testing.T) {
	m := newMouth(t, `\def\test{EXPANDED}\noexpand\test\test`)
	tok, ok, err := m.NextExpanded()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, token.KindControlSequence, tok.Kind)
	assert.Equal(t, "test", tok.Name)
	assert.False(t, tok.Frozen)

	// a second read of the same macro (now unguarded) must expand
	// normally: Frozen only ever suppresses one expansion attempt.
	tok2, ok2, err2 := m.NextExpanded()
	require.NoError(t, err2)
	require.True(t, ok2)
	assert.Equal(t, token.KindCharacter, tok2.Kind)
}

func TestNoexpandOnNonExpandablePrimitiveIsHarmless(t *testing.T) {
	// \relax never expands on its own, so \noexpand guarding it must
	// still just pass the control sequence through unchanged.
	m := newMouth(t, `\noexpand\relax`)
	tok, ok, err := m.NextExpanded()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, token.KindControlSequence, tok.Kind)
	assert.Equal(t, "relax", tok.Name)
	assert.False(t, tok.Frozen)
}

func TestExpandafterDelaysOneStep(t *testing.T) {
	m := newMouth(t, `\def\a{X}\def\b{\a}\expandafter\a\b`)
	assert.Equal(t, "XX", collectChars(t, m))
}

func TestCsnameBuildsControlSequence(t *testing.T) {
	m := newMouth(t, `\def\foo{FOUND}\csname foo\endcsname`)
	assert.Equal(t, "FOUND", collectChars(t, m))
}

func TestCsnameUnboundBindsRelax(t *testing.T) {
	m := newMouth(t, `\csname brandnew\endcsname`)
	tok, ok, err := m.NextExpanded()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, token.KindControlSequence, tok.Kind)
	assert.Equal(t, "brandnew", tok.Name)
	cs, bound := m.env.Lookup("brandnew")
	require.True(t, bound)
	assert.Equal(t, "relax", cs.Name)
}

func TestMeaningOfMacro(t *testing.T) {
	m := newMouth(t, `\def\test#1{x#1y}\meaning\test`)
	assert.Equal(t, "macro:#1->x#1y", collectChars(t, m))
}

func TestMeaningOfCharacter(t *testing.T) {
	m := newMouth(t, `\meaning a`)
	assert.Equal(t, "the letter character 97", collectChars(t, m))
}

func TestNumberPrimitive(t *testing.T) {
	m := newMouth(t, `\number 42`)
	assert.Equal(t, "42", collectChars(t, m))
}

func TestRomannumeralPrimitive(t *testing.T) {
	m := newMouth(t, `\romannumeral 1984`)
	assert.Equal(t, "mcmlxxxiv", collectChars(t, m))
}

func TestEdefPreExpandsBasic(t *testing.T) {
	m := newMouth(t, `\def\a{A}\edef\b{\a\a}\b`)
	assert.Equal(t, "AA", collectChars(t, m))
}

func TestLocalDefIsDiscardedWhenGroupCloses(t *testing.T) {
	m := newMouth(t, `\def\test{OUTER}{\def\test{LOCAL}}\test`)
	assert.Equal(t, "{}OUTER", collectChars(t, m))
}

func TestGlobalDefSurvivesGroupClose(t *testing.T) {
	m := newMouth(t, `\def\test{OUTER}{\global\def\test{G}}\test`)
	assert.Equal(t, "{}G", collectChars(t, m))
}

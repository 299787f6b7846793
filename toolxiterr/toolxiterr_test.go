package toolxiterr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnieh/toolxit-tex/position"
	"github.com/gnieh/toolxit-tex/token"
)

func TestUserfFormatsPositionAndMessage(t *testing.T) {
	pos := position.Start("test")
	err := Userf(pos, "missing %s", "number")
	assert.Contains(t, err.Error(), "missing number")
	assert.Equal(t, User, err.Kind)
}

func TestUserExpectedIncludesFoundToken(t *testing.T) {
	pos := position.Start("test")
	tok := token.Character('x', token.Other, pos)
	err := UserExpected(pos, []string{"digit", "sign"}, &tok, "bad constant")
	msg := err.Error()
	assert.Contains(t, msg, "expected digit or sign")
	assert.Contains(t, msg, "found")
}

func TestBugPanicsWithInternalError(t *testing.T) {
	defer func() {
		r := recover()
		require.NotNil(t, r)
		err, ok := r.(*Error)
		require.True(t, ok)
		assert.Equal(t, Internal, err.Kind)
	}()
	Bug("invariant broken: %d", 5)
}

func TestWrapReturnsNilForNilError(t *testing.T) {
	assert.Nil(t, Wrap(nil))
}

func TestWrapPreservesUnderlyingError(t *testing.T) {
	base := errors.New("disk exploded")
	err := Wrap(base)
	assert.Equal(t, IO, err.Kind)
	assert.ErrorIs(t, err, base)
}

func TestMergeCombinesExpectations(t *testing.T) {
	pos := position.Start("test")
	a := UserExpected(pos, []string{"a"}, nil, "")
	b := UserExpected(pos, []string{"b"}, nil, "fallback")
	merged := Merge(a, b)
	assert.Equal(t, []string{"a", "b"}, merged.Expected)
	assert.Equal(t, "fallback", merged.Message)
}

func TestMergeHandlesNils(t *testing.T) {
	pos := position.Start("test")
	a := Userf(pos, "only a")
	assert.Equal(t, a, Merge(a, nil))
	assert.Equal(t, a, Merge(nil, a))
}

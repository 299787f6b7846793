package combinator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isLetter(t Token) bool {
	r, ok := t.(rune)
	return ok && r >= 'a' && r <= 'z'
}

func stateOf(s string) State[struct{}] {
	toks := make([]Token, len(s))
	for i, r := range s {
		toks[i] = r
	}
	return State[struct{}]{Tokens: toks}
}

func TestAnyConsumesOneToken(t *testing.T) {
	r := Any[struct{}]()(stateOf("ab"))
	require.True(t, r.Success)
	assert.True(t, r.Consumed)
	assert.Equal(t, rune('a'), r.Value)
	assert.Equal(t, 1, r.State.Pos)
}

func TestAnyFailsAtEndWithoutConsuming(t *testing.T) {
	r := Any[struct{}]()(stateOf(""))
	assert.False(t, r.Success)
	assert.False(t, r.Consumed)
}

func TestSatisfyRejectsNonMatch(t *testing.T) {
	r := Satisfy[struct{}](isLetter, "letter")(stateOf("1"))
	assert.False(t, r.Success)
	assert.False(t, r.Consumed)
	assert.Equal(t, 0, r.State.Pos)
}

func TestOrTriesSecondOnlyOnEmptyFailure(t *testing.T) {
	digit := Satisfy[struct{}](func(t Token) bool {
		r, ok := t.(rune)
		return ok && r >= '0' && r <= '9'
	}, "digit")
	letter := Satisfy[struct{}](isLetter, "letter")
	p := Or(digit, letter)
	r := p(stateOf("a"))
	require.True(t, r.Success)
	assert.Equal(t, rune('a'), r.Value)
}

func TestOrDoesNotTrySecondAfterConsumedFailure(t *testing.T) {
	// p consumes one token then fails; q must not be attempted.
	consumeThenFail := Then(Any[struct{}](), func(Token) Parser[struct{}, Token] {
		return Fail[struct{}, Token]("deliberate")
	})
	q := Success[struct{}, Token](rune('Q'))
	r := Or(consumeThenFail, q)(stateOf("x"))
	assert.False(t, r.Success)
	assert.True(t, r.Consumed)
}

func TestAttemptConvertsConsumedFailureToEmpty(t *testing.T) {
	consumeThenFail := Then(Any[struct{}](), func(Token) Parser[struct{}, Token] {
		return Fail[struct{}, Token]("deliberate")
	})
	r := Attempt(consumeThenFail)(stateOf("x"))
	assert.False(t, r.Success)
	assert.False(t, r.Consumed)
	assert.Equal(t, 0, r.State.Pos)
}

func TestManyCollectsZeroOrMore(t *testing.T) {
	p := Many[struct{}](Satisfy[struct{}](isLetter, "letter"))
	r := p(stateOf("abc1"))
	require.True(t, r.Success)
	assert.Equal(t, []Token{rune('a'), rune('b'), rune('c')}, r.Value)
	assert.Equal(t, 3, r.State.Pos)
}

func TestMany1RequiresAtLeastOne(t *testing.T) {
	p := Many1[struct{}](Satisfy[struct{}](isLetter, "letter"))
	r := p(stateOf("1"))
	assert.False(t, r.Success)
	assert.False(t, r.Consumed)
}

func TestUntilStopsBeforeEndMarker(t *testing.T) {
	isSemi := func(t Token) bool { r, ok := t.(rune); return ok && r == ';' }
	end := Satisfy[struct{}](isSemi, ";")
	elem := Satisfy[struct{}](isLetter, "letter")
	p := Until[struct{}, Token](elem, end)
	r := p(stateOf("abc;"))
	require.True(t, r.Success)
	assert.Equal(t, []Token{rune('a'), rune('b'), rune('c')}, r.Value)
	assert.Equal(t, 3, r.State.Pos)
}

func TestLookAheadNeverAdvances(t *testing.T) {
	r := LookAhead[struct{}, Token](Any[struct{}]())(stateOf("ab"))
	require.True(t, r.Success)
	assert.Equal(t, 0, r.State.Pos)
	assert.False(t, r.Consumed)
}

func TestNotSucceedsWhenInnerFails(t *testing.T) {
	r := Not[struct{}, Token](Satisfy[struct{}](isLetter, "letter"))(stateOf("1"))
	assert.True(t, r.Success)
}

func TestStateThreading(t *testing.T) {
	p := Then(GetState[int](), func(n int) Parser[int, struct{}] {
		return SetState(n + 1)
	})
	full := Then(p, func(struct{}) Parser[int, int] {
		return GetState[int]()
	})
	st := State[int]{User: 41}
	r := full(st)
	require.True(t, r.Success)
	assert.Equal(t, 42, r.Value)
}

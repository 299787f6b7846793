package mouth

import (
	"fmt"

	"github.com/gnieh/toolxit-tex/combinator"
	"github.com/gnieh/toolxit-tex/environment"
	"github.com/gnieh/toolxit-tex/position"
	"github.com/gnieh/toolxit-tex/token"
	"github.com/gnieh/toolxit-tex/toolxiterr"
)

// paramCounter threads the next expected parameter number through the
// grammar below via the combinator core's withState/updateState idiom,
// so "parameters must be numbered consecutively" is enforced as part
// of the parse itself rather than by a separate pass.
type paramCounter struct {
	next int
}

func isParamRef(t combinator.Token) bool {
	tok, ok := t.(token.Token)
	return ok && tok.Kind == token.KindParameter
}

func isPlainToken(t combinator.Token) bool {
	tok, ok := t.(token.Token)
	return ok && tok.Kind != token.KindParameter
}

// paramRefParser matches a single already-lexed parameter-reference
// token (e.g. the #1 in \def\cs#1{...}) and checks it against the
// counter threaded in State.User, advancing the counter on success.
func paramRefParser() combinator.Parser[paramCounter, environment.ParamPart] {
	satisfied := combinator.Satisfy[paramCounter](isParamRef, "parameter reference")
	return func(s combinator.State[paramCounter]) combinator.Reply[paramCounter, environment.ParamPart] {
		r := satisfied(s)
		if !r.Success {
			return combinator.Reply[paramCounter, environment.ParamPart]{
				Consumed: r.Consumed, State: r.State, Expected: r.Expected, Message: r.Message,
			}
		}
		tok := r.Value.(token.Token)
		want := r.State.User.next
		if tok.ParamNumber != want {
			return combinator.Reply[paramCounter, environment.ParamPart]{
				Consumed: true,
				State:    s,
				Message: fmt.Sprintf(
					"Parameters must be numbered consecutively. The next parameter number should be %d and not %d",
					want, tok.ParamNumber),
			}
		}
		next := r.State
		next.User = paramCounter{next: want + 1}
		return combinator.Reply[paramCounter, environment.ParamPart]{
			Consumed: true, Success: true,
			Value: environment.ParamPart{IsParam: true, ParamNumber: tok.ParamNumber},
			State: next,
		}
	}
}

// delimRunParser collects a maximal run of non-parameter tokens into a
// single literal-delimiter ParamPart.
func delimRunParser() combinator.Parser[paramCounter, environment.ParamPart] {
	run := combinator.Many1[paramCounter](combinator.Satisfy[paramCounter](isPlainToken, "delimiter token"))
	return combinator.Map(run, func(ts []combinator.Token) environment.ParamPart {
		toks := make([]token.Token, len(ts))
		for i, x := range ts {
			toks[i] = x.(token.Token)
		}
		return environment.ParamPart{Delim: toks}
	})
}

// parseParamParts folds an already-lexed, finite run of parameter-text
// content tokens (with the terminating '{' excluded by the caller)
// into the []environment.ParamPart / parameter-count pair that
// environment.MacroDef expects, validating consecutive numbering as it
// goes. This is the one place in the implementation where the
// parameter text is short, finite, and fully buffered ahead of time,
// which is exactly the shape the combinator core's State[U] is built
// for.
func parseParamParts(toks []token.Token) ([]environment.ParamPart, int, error) {
	anyToks := make([]combinator.Token, len(toks))
	for i, t := range toks {
		anyToks[i] = t
	}
	grammar := combinator.Many(combinator.Or(paramRefParser(), delimRunParser()))
	st := combinator.State[paramCounter]{Tokens: anyToks, User: paramCounter{next: 1}}
	reply := grammar(st)
	if !reply.Success {
		var pos position.Position
		if reply.State.Pos < len(toks) {
			pos = toks[reply.State.Pos].Pos
		}
		msg := reply.Message
		if msg == "" {
			msg = "malformed parameter text"
		}
		return nil, 0, toolxiterr.Userf(pos, "%s", msg)
	}
	return reply.Value, reply.State.User.next - 1, nil
}

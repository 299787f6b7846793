// Package eyes implements TeX's character-to-token lexer: the `^^`
// preprocessor and the N/M/S reading-state automaton. Its shape is a
// hand-written rune-at-a-time lexer - next/peek/backup over a rune
// source, position bookkeeping alongside the cursor, one Next() call
// per emitted token - generalised from a fixed token grammar to a
// category-code-driven one: every branch consults
// environment.Environment.Category instead of a hardcoded switch, and
// categories can be mutated by a token the lexer itself just emitted.
package eyes

import (
	"github.com/gnieh/toolxit-tex/environment"
	"github.com/gnieh/toolxit-tex/position"
	"github.com/gnieh/toolxit-tex/source"
	"github.com/gnieh/toolxit-tex/token"
	"github.com/gnieh/toolxit-tex/toolxiterr"
)

// ReadingState is the eyes' own state machine position.
type ReadingState int

const (
	StateN ReadingState = iota // new line
	StateM                     // middle of line
	StateS                     // skipping blanks
)

// runeBuf is a tiny pushback buffer of (rune, position) pairs used by
// the `^^` preprocessor and by backup/peek, since a Source is strictly
// forward-only.
type runeBuf struct {
	r   rune
	pos position.Position
}

// Lexer turns a character Source into a stream of tokens, consulting
// env for the current category table. It is not safe for concurrent
// use.
type Lexer struct {
	src   source.Source
	env   *environment.Environment
	state ReadingState

	pending []runeBuf // pushed-back runes, most-recently-pushed last
}

// New creates a Lexer reading from src under env, starting in state N
// at start-of-file.
func New(src source.Source, env *environment.Environment) *Lexer {
	return &Lexer{src: src, env: env, state: StateN}
}

func (l *Lexer) rawNext() (rune, position.Position, bool, error) {
	if n := len(l.pending); n > 0 {
		rb := l.pending[n-1]
		l.pending = l.pending[:n-1]
		return rb.r, rb.pos, true, nil
	}
	return l.src.Next()
}

func (l *Lexer) pushback(r rune, pos position.Position) {
	l.pending = append(l.pending, runeBuf{r, pos})
}

// nextRaw returns the next raw character after applying the `^^`
// preprocessor, recursively: the replacement character is itself
// subject to preprocessing.
func (l *Lexer) nextRaw() (rune, position.Position, bool, error) {
	r, pos, ok, err := l.rawNext()
	if err != nil || !ok {
		return r, pos, ok, err
	}
	if l.env.Category(r) != token.Superscript {
		return r, pos, true, nil
	}
	r2, pos2, ok2, err2 := l.rawNext()
	if err2 != nil {
		return 0, pos, false, err2
	}
	if !ok2 || r2 != r {
		if ok2 {
			l.pushback(r2, pos2)
		}
		return r, pos, true, nil
	}
	// "XX" seen with matching Superscript category; need a third
	// character to decide between the hex form and the XOR-64 form.
	r3, pos3, ok3, err3 := l.rawNext()
	if err3 != nil {
		return 0, pos, false, err3
	}
	if !ok3 {
		l.pushback(r2, pos2)
		return r, pos, true, nil
	}
	if isLowerHex(r3) && r3 < 128 {
		r4, pos4, ok4, err4 := l.rawNext()
		if err4 != nil {
			return 0, pos, false, err4
		}
		if ok4 && isLowerHex(r4) {
			h1 := hexVal(r3)
			h2 := hexVal(r4)
			replaced := rune(h1*16 + h2) // (h1*16)+h2, not h1<<(4+h2)
			l.pushback(replaced, pos)
			return l.nextRaw()
		}
		if ok4 {
			l.pushback(r4, pos4)
		}
	}
	if r3 < 128 {
		var replaced rune
		if r3 < 64 {
			replaced = r3 + 64
		} else {
			replaced = r3 - 64
		}
		l.pushback(replaced, pos)
		return l.nextRaw()
	}
	l.pushback(r3, pos3)
	l.pushback(r2, pos2)
	return r, pos, true, nil
}

func isLowerHex(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f')
}

func hexVal(r rune) int {
	if r >= '0' && r <= '9' {
		return int(r - '0')
	}
	return int(r-'a') + 10
}

// Next produces the next token, running the reading-state automaton
// until a token is emitted or the source is exhausted (reported by
// ok=false).
func (l *Lexer) Next() (token.Token, bool, error) {
	for {
		r, pos, has, err := l.nextRaw()
		if err != nil {
			return token.Token{}, false, err
		}
		if !has {
			return token.Token{}, false, nil
		}
		cat := l.env.Category(r)
		switch cat {
		case token.Space:
			switch l.state {
			case StateM:
				l.state = StateS
				return token.Character(' ', token.Space, pos), true, nil
			default:
				continue
			}
		case token.EndOfLine:
			switch l.state {
			case StateN:
				return token.ControlSequence("par", false, pos), true, nil
			case StateM:
				l.state = StateN
				return token.Character(' ', token.Space, pos), true, nil
			default: // StateS
				l.state = StateN
				continue
			}
		case token.Ignored:
			continue
		case token.Comment:
			l.discardLine()
			l.state = StateN
			continue
		case token.Escape:
			name, namePos := l.readControlSequenceName()
			l.state = StateS
			return token.ControlSequence(name, false, namePos), true, nil
		case token.Active:
			l.state = StateS
			return token.ControlSequence(string(r), true, pos), true, nil
		case token.Parameter:
			if d, dpos, ok, derr := l.nextRaw(); derr == nil && ok && isDigit(d) {
				l.state = StateM
				return token.Param(int(d-'0'), pos), true, nil
			} else if derr != nil {
				return token.Token{}, false, derr
			} else if ok {
				l.pushback(d, dpos)
			}
			l.state = StateM
			return token.Character(r, cat, pos), true, nil
		case token.Invalid:
			l.state = StateM
			return token.Token{}, false, toolxiterr.Userf(pos, "invalid character found: %q", r)
		default:
			l.state = StateM
			return token.Character(r, cat, pos), true, nil
		}
	}
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

// discardLine consumes through end-of-line inclusive (comment
// handling).
func (l *Lexer) discardLine() {
	for {
		r, _, ok, err := l.nextRaw()
		if err != nil || !ok {
			return
		}
		if l.env.Category(r) == token.EndOfLine {
			return
		}
	}
}

// readControlSequenceName reads either a maximal run of Letter
// characters, or exactly one non-letter character. Exiting always
// puts the eyes in state S (handled by the caller).
func (l *Lexer) readControlSequenceName() (string, position.Position) {
	r, pos, ok, err := l.nextRaw()
	if err != nil || !ok {
		return "", pos
	}
	if l.env.Category(r) != token.Letter {
		return string(r), pos
	}
	name := []rune{r}
	for {
		next, npos, ok, err := l.nextRaw()
		if err != nil || !ok {
			break
		}
		if l.env.Category(next) != token.Letter {
			l.pushback(next, npos)
			break
		}
		name = append(name, next)
	}
	return string(name), pos
}

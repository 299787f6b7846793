// Package mouth implements the token expander: macro invocation, the
// primitive dispatch table, and the \input/\endinput file-stack
// boundary, sitting on top of package eyes and package environment.
//
// The shape follows the common pattern of pulling tokens off a peeking
// cursor and dispatching by keyword into per-construct handlers; here
// the "keyword" is a control-sequence name, the per-construct handlers
// push replacement tokens back onto an input deque instead of building
// an AST node, and the cursor is Mouth.pending plus the *eyes.Lexer it
// falls back to once pending is drained.
package mouth

import (
	"github.com/gnieh/toolxit-tex/environment"
	"github.com/gnieh/toolxit-tex/eyes"
	"github.com/gnieh/toolxit-tex/source"
	"github.com/gnieh/toolxit-tex/token"
	"github.com/gnieh/toolxit-tex/toolxiterr"
)

// condFrame tracks one open conditional. mode distinguishes a plain
// \if.../\else/\fi conditional from an \ifcase arm, since \or only
// closes the latter.
type condFrame struct {
	mode        string // "else" or "case"
	pendingSkip bool   // true: the next \else/\or at this level must skip to \fi
}

// snapshot captures everything \input needs to restore when the
// included file's source is exhausted.
type snapshot struct {
	lexer        *eyes.Lexer
	pending      []token.Token
	endInput     bool
	endInputLine int
}

// Mouth is the expander's mutable state: the active lexer plus an
// arbitrary-lookahead pushback deque, the environment it expands
// against, the \input file stack, the \endinput boundary, and the
// open-conditional stack.
type Mouth struct {
	env      *environment.Environment
	lexer    *eyes.Lexer
	pending  []token.Token
	resolver source.Resolver
	jobname  string

	including    []snapshot
	endInput     bool
	endInputLine int

	condStack []condFrame
}

// New creates a Mouth reading from lx under env, expanding against env,
// resolving \input file names through resolver (nil disables \input).
func New(env *environment.Environment, lx *eyes.Lexer, resolver source.Resolver, jobname string) *Mouth {
	return &Mouth{env: env, lexer: lx, resolver: resolver, jobname: jobname}
}

// Next is the external interface's single primitive: with expand true
// it fully expands (macro calls and expandable primitives disappear
// into their result); with expand false it returns raw tokens, as used
// internally while scanning macro arguments and definitions.
func (m *Mouth) Next(expand bool) (token.Token, bool, error) {
	if expand {
		return m.NextExpanded()
	}
	return m.rawNext()
}

func (m *Mouth) pushbackOne(t token.Token) {
	m.pending = append([]token.Token{t}, m.pending...)
}

func (m *Mouth) pushbackAll(ts []token.Token) {
	if len(ts) == 0 {
		return
	}
	m.pending = append(append([]token.Token{}, ts...), m.pending...)
}

// rawNext pops the next token with no expansion, draining the pushback
// deque first, then the active lexer, handling both the \input file
// stack and the \endinput line boundary.
func (m *Mouth) rawNext() (token.Token, bool, error) {
	for {
		if len(m.pending) > 0 {
			t := m.pending[0]
			m.pending = m.pending[1:]
			return t, true, nil
		}
		if m.lexer == nil {
			return token.Token{}, false, nil
		}
		t, ok, err := m.lexer.Next()
		if err != nil {
			return token.Token{}, false, err
		}
		if !ok {
			if len(m.including) > 0 {
				m.popIncluding()
				continue
			}
			return token.Token{}, false, nil
		}
		if m.endInput && t.Pos.Line != m.endInputLine {
			m.endInput = false
			if len(m.including) > 0 {
				m.popIncluding()
				continue
			}
			return token.Token{}, false, nil
		}
		return t, true, nil
	}
}

func (m *Mouth) popIncluding() {
	n := len(m.including)
	snap := m.including[n-1]
	m.including = m.including[:n-1]
	m.lexer = snap.lexer
	m.pending = snap.pending
	m.endInput = snap.endInput
	m.endInputLine = snap.endInputLine
}

// NextExpanded implements the repeated-rewrite loop: pull a raw token;
// if it is a bound macro, substitute and retry; if it is a bound,
// expandable primitive, run its effect and retry; otherwise return it
// unchanged. A Parameter token reaching here (a stray #n outside of a
// macro's parameter or replacement text) is always an error: parameter
// tokens never leave the mouth in normal operation.
func (m *Mouth) NextExpanded() (token.Token, bool, error) {
	for {
		t, ok, err := m.rawNext()
		if err != nil || !ok {
			return t, ok, err
		}
		if t.Kind == token.KindControlSequence && !t.Frozen {
			cs, bound := m.env.Lookup(t.Name)
			if bound {
				switch cs.Kind {
				case environment.CSMacro:
					if err := m.expandMacroInvocation(cs.Macro); err != nil {
						return token.Token{}, false, err
					}
					continue
				case environment.CSPrimitive:
					handled, err := m.expandPrimitive(cs.Name, t)
					if err != nil {
						return token.Token{}, false, err
					}
					if handled {
						continue
					}
					return t, true, nil
				default:
					return t, true, nil
				}
			}
			return t, true, nil
		}
		clean := t
		clean.Frozen = false
		if clean.Kind == token.KindParameter {
			return token.Token{}, false, toolxiterr.Userf(clean.Pos, "You can't use macro parameter character # here")
		}
		if clean.Kind == token.KindCharacter {
			switch clean.Category {
			case token.BeginGroup:
				m.env.EnterGroup()
			case token.EndGroup:
				if m.env.Depth() <= 1 {
					return token.Token{}, false, toolxiterr.Userf(clean.Pos, "Too many }'s")
				}
				m.env.LeaveGroup()
			}
		}
		return clean, true, nil
	}
}

// expandOnce performs exactly one rewrite step on the next raw token,
// used by \expandafter: unlike NextExpanded it does not loop, so a
// macro call's substitution is left unexpanded in the pushback deque
// rather than being expanded further.
func (m *Mouth) expandOnce() error {
	y, ok, err := m.rawNext()
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	if y.Kind != token.KindControlSequence || y.Frozen {
		m.pushbackOne(y)
		return nil
	}
	cs, bound := m.env.Lookup(y.Name)
	if !bound {
		m.pushbackOne(y)
		return nil
	}
	switch cs.Kind {
	case environment.CSMacro:
		return m.expandMacroInvocation(cs.Macro)
	case environment.CSPrimitive:
		handled, err := m.expandPrimitive(cs.Name, y)
		if err != nil {
			return err
		}
		if !handled {
			m.pushbackOne(y)
		}
		return nil
	default:
		m.pushbackOne(y)
		return nil
	}
}

// expandPrimitive dispatches a bound primitive name to its handler,
// reporting handled=false for the handful of primitives that pass
// through unexpanded (\relax, \par, \endcsname, a stray \fi/\else/\or
// with nothing open is instead reported as an error, not passed
// through, since it always indicates malformed input).
func (m *Mouth) expandPrimitive(name string, tok token.Token) (bool, error) {
	switch name {
	case "global", "long", "outer":
		return true, m.handleModifiersAndDef(name)
	case "def", "edef", "gdef", "xdef":
		return true, m.handleDefPrimitive(name, 0)
	case "number":
		return true, m.expandNumber(tok)
	case "romannumeral":
		return true, m.expandRomanNumeral(tok)
	case "the":
		return true, m.expandThe(tok)
	case "string":
		return true, m.expandString(tok)
	case "jobname":
		return true, m.expandJobname(tok)
	case "fontname":
		return true, m.expandFontname(tok)
	case "meaning":
		return true, m.expandMeaning(tok)
	case "csname":
		return true, m.expandCsname(tok)
	case "expandafter":
		return true, m.expandExpandafter(tok)
	case "noexpand":
		return true, m.expandNoexpand(tok)
	case "input":
		return true, m.expandInput(tok)
	case "endinput":
		m.endInput = true
		m.endInputLine = tok.Pos.Line
		return true, nil
	case "ifnum", "ifdim", "ifodd", "ifvmode", "ifhmode", "ifmmode", "ifinner",
		"if", "ifcat", "ifx", "ifcase", "unless":
		return true, m.expandConditional(name, tok)
	case "else", "or", "fi":
		return true, m.handleDelimiter(name)
	default:
		return false, nil
	}
}

func (m *Mouth) expandExpandafter(tok token.Token) error {
	t, ok, err := m.rawNext()
	if err != nil {
		return err
	}
	if !ok {
		return toolxiterr.Userf(tok.Pos, "file ended after \\expandafter")
	}
	if err := m.expandOnce(); err != nil {
		return err
	}
	m.pushbackOne(t)
	return nil
}

func (m *Mouth) expandNoexpand(tok token.Token) error {
	t, ok, err := m.rawNext()
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	if m.wouldExpand(t) {
		t.Frozen = true
	}
	m.pushbackOne(t)
	return nil
}

// wouldExpand reports whether t, left unguarded, would be rewritten by
// NextExpanded: a bound macro, or a primitive whose name is in the
// expandable set rather than one that only passes through or acts as
// a delimiter recognised elsewhere.
func (m *Mouth) wouldExpand(t token.Token) bool {
	if t.Kind != token.KindControlSequence {
		return false
	}
	cs, bound := m.env.Lookup(t.Name)
	if !bound {
		return false
	}
	switch cs.Kind {
	case environment.CSMacro:
		return true
	case environment.CSPrimitive:
		return isExpandablePrimitive(cs.Name)
	default:
		return false
	}
}

func (m *Mouth) expandInput(tok token.Token) error {
	if err := m.skipSpaces(); err != nil {
		return err
	}
	var name []rune
	for {
		t, ok, err := m.NextExpanded()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		if t.Kind == token.KindCharacter && t.Category != token.Space {
			name = append(name, t.Char)
			continue
		}
		m.pushbackOne(t)
		break
	}
	if len(name) == 0 {
		return toolxiterr.Userf(tok.Pos, "Missing filename after \\input")
	}
	if m.resolver == nil {
		return toolxiterr.Userf(tok.Pos, "cannot resolve \\input %s: no resolver configured", string(name))
	}
	src, found, err := m.resolver.Resolve(string(name))
	if err != nil {
		return err
	}
	if !found {
		return toolxiterr.Userf(tok.Pos, "I can't find file `%s'", string(name))
	}
	m.including = append(m.including, snapshot{
		lexer:        m.lexer,
		pending:      m.pending,
		endInput:     m.endInput,
		endInputLine: m.endInputLine,
	})
	m.lexer = eyes.New(src, m.env)
	m.pending = nil
	m.endInput = false
	return nil
}

func containsPar(toks []token.Token) bool {
	for _, t := range toks {
		if t.Kind == token.KindControlSequence && !t.Active && t.Name == "par" {
			return true
		}
	}
	return false
}

package mouth

import (
	"github.com/gnieh/toolxit-tex/environment"
	"github.com/gnieh/toolxit-tex/position"
	"github.com/gnieh/toolxit-tex/token"
	"github.com/gnieh/toolxit-tex/toolxiterr"
)

// expandConditional evaluates a conditional's predicate and selects a
// branch. \ifcase gets its own branch-selection logic; every other
// conditional, including one negated by \unless, goes through the
// shared branch/skipThen machinery.
func (m *Mouth) expandConditional(name string, tok token.Token) error {
	if name == "unless" {
		inner, ok, err := m.rawNext()
		if err != nil {
			return err
		}
		if !ok || inner.Kind != token.KindControlSequence {
			return toolxiterr.Userf(inner.Pos, "Missing \\if after \\unless")
		}
		cs, bound := m.env.Lookup(inner.Name)
		if !bound || cs.Kind != environment.CSPrimitive || !isConditionalName(cs.Name) || cs.Name == "ifcase" {
			return toolxiterr.Userf(inner.Pos, "Missing \\if after \\unless, found \\%s", inner.Name)
		}
		pred, err := m.evaluatePredicate(cs.Name)
		if err != nil {
			return err
		}
		return m.branch(!pred)
	}
	if name == "ifcase" {
		return m.expandIfcase()
	}
	pred, err := m.evaluatePredicate(name)
	if err != nil {
		return err
	}
	return m.branch(pred)
}

func (m *Mouth) branch(pred bool) error {
	if pred {
		m.condStack = append(m.condStack, condFrame{mode: "else", pendingSkip: true})
		return nil
	}
	return m.skipThen()
}

// skipThen scans (without expanding) past a false predicate's
// then-branch, either finishing the conditional (\fi) or transitioning
// into normal expansion of the else-branch (\else).
func (m *Mouth) skipThen() error {
	which, err := m.skipToDelimiterOrFi()
	if err != nil {
		return err
	}
	switch which {
	case "fi":
		return nil
	case "else":
		m.condStack = append(m.condStack, condFrame{mode: "else", pendingSkip: false})
		return nil
	default: // "or" reaching a plain \if's skip is malformed
		return toolxiterr.Userf(position.Position{}, "extra \\or")
	}
}

func (m *Mouth) expandIfcase() error {
	n, err := m.scanNumber()
	if err != nil {
		return err
	}
	for i := int64(0); i < n; i++ {
		which, err := m.skipToDelimiterOrFi()
		if err != nil {
			return err
		}
		switch which {
		case "fi":
			return nil
		case "else":
			m.condStack = append(m.condStack, condFrame{mode: "case", pendingSkip: true})
			return nil
		case "or":
			continue
		}
	}
	m.condStack = append(m.condStack, condFrame{mode: "case", pendingSkip: true})
	return nil
}

// handleDelimiter processes \else/\or/\fi encountered during normal
// (non-skipping) expansion, i.e. at the boundary of whichever branch
// is currently being expanded. Reaching \else or \or here means the
// branch just finished isn't necessarily the last one available (an
// \ifcase can still have further \or arms and a trailing \else
// default ahead), so the tail of the conditional must be discarded by
// skipping through any remaining \or/\else at this level down to the
// matching \fi, not by stopping at the first one found.
func (m *Mouth) handleDelimiter(name string) error {
	if len(m.condStack) == 0 {
		return toolxiterr.Userf(position.Position{}, "extra \\%s", name)
	}
	top := m.condStack[len(m.condStack)-1]
	switch name {
	case "fi":
		m.condStack = m.condStack[:len(m.condStack)-1]
		return nil
	case "else":
		if !top.pendingSkip {
			return toolxiterr.Userf(position.Position{}, "extra \\else")
		}
		m.condStack = m.condStack[:len(m.condStack)-1]
		return m.skipToFi()
	case "or":
		if !top.pendingSkip || top.mode != "case" {
			return toolxiterr.Userf(position.Position{}, "extra \\or")
		}
		m.condStack = m.condStack[:len(m.condStack)-1]
		return m.skipToFi()
	}
	return nil
}

// skipToDelimiterOrFi scans raw tokens (no expansion), nesting-aware
// over inner conditionals, stopping at the first \else, \or or \fi
// belonging to the current level.
func (m *Mouth) skipToDelimiterOrFi() (string, error) {
	depth := 0
	for {
		t, ok, err := m.rawNext()
		if err != nil {
			return "", err
		}
		if !ok {
			return "", toolxiterr.Userf(t.Pos, "file ended while scanning conditional")
		}
		if t.Kind != token.KindControlSequence {
			continue
		}
		cs, bound := m.env.Lookup(t.Name)
		if !bound || cs.Kind != environment.CSPrimitive {
			continue
		}
		if isConditionalName(cs.Name) {
			depth++
			continue
		}
		if cs.Name == "fi" {
			if depth == 0 {
				return "fi", nil
			}
			depth--
			continue
		}
		if depth == 0 && (cs.Name == "else" || cs.Name == "or") {
			return cs.Name, nil
		}
	}
}

// skipToFi scans raw tokens (no expansion), nesting-aware over inner
// conditionals, discarding any \else/\or reached at the current level
// and stopping only once the matching \fi is found. Used to discard
// the unselected tail of a conditional once the branch actually being
// expanded has finished, where that tail may itself contain further
// \or/\else delimiters (an \ifcase arm followed by more \or arms and a
// trailing \else).
func (m *Mouth) skipToFi() error {
	depth := 0
	for {
		t, ok, err := m.rawNext()
		if err != nil {
			return err
		}
		if !ok {
			return toolxiterr.Userf(t.Pos, "file ended while scanning conditional")
		}
		if t.Kind != token.KindControlSequence {
			continue
		}
		cs, bound := m.env.Lookup(t.Name)
		if !bound || cs.Kind != environment.CSPrimitive {
			continue
		}
		if isConditionalName(cs.Name) {
			depth++
			continue
		}
		if cs.Name == "fi" {
			if depth == 0 {
				return nil
			}
			depth--
		}
	}
}

func (m *Mouth) evaluatePredicate(name string) (bool, error) {
	switch name {
	case "ifnum":
		a, err := m.scanNumber()
		if err != nil {
			return false, err
		}
		rel, err := m.scanRelation()
		if err != nil {
			return false, err
		}
		b, err := m.scanNumber()
		if err != nil {
			return false, err
		}
		return applyRelation(a, rel, b), nil
	case "ifdim":
		a, err := m.scanDimen()
		if err != nil {
			return false, err
		}
		rel, err := m.scanRelation()
		if err != nil {
			return false, err
		}
		b, err := m.scanDimen()
		if err != nil {
			return false, err
		}
		return applyRelation(a, rel, b), nil
	case "ifodd":
		a, err := m.scanNumber()
		if err != nil {
			return false, err
		}
		return a%2 != 0, nil
	case "ifvmode":
		return m.env.Mode.IsVertical(), nil
	case "ifhmode":
		return m.env.Mode.IsHorizontal(), nil
	case "ifmmode":
		return m.env.Mode.IsMath(), nil
	case "ifinner":
		return m.env.Mode.IsInner(), nil
	case "if":
		t1, err := m.nextExpandedOperand()
		if err != nil {
			return false, err
		}
		t2, err := m.nextExpandedOperand()
		if err != nil {
			return false, err
		}
		return token.CharCode(t1) == token.CharCode(t2), nil
	case "ifcat":
		t1, err := m.nextExpandedOperand()
		if err != nil {
			return false, err
		}
		t2, err := m.nextExpandedOperand()
		if err != nil {
			return false, err
		}
		return token.SameCategory(t1, t2), nil
	case "ifx":
		t1, ok1, err := m.rawNext()
		if err != nil {
			return false, err
		}
		t2, ok2, err := m.rawNext()
		if err != nil {
			return false, err
		}
		if !ok1 || !ok2 {
			return false, toolxiterr.Userf(position.Position{}, "file ended while scanning \\ifx")
		}
		return m.ifxEqual(t1, t2), nil
	}
	return false, toolxiterr.Userf(position.Position{}, "unknown conditional \\%s", name)
}

func (m *Mouth) nextExpandedOperand() (token.Token, error) {
	t, ok, err := m.NextExpanded()
	if err != nil {
		return token.Token{}, err
	}
	if !ok {
		return token.Token{}, toolxiterr.Userf(position.Position{}, "file ended while scanning conditional operand")
	}
	return t, nil
}

func (m *Mouth) ifxEqual(a, b token.Token) bool {
	if a.Kind != b.Kind {
		return false
	}
	if a.Kind == token.KindControlSequence {
		ca, boundA := m.env.Lookup(a.Name)
		cb, boundB := m.env.Lookup(b.Name)
		if !boundA || !boundB {
			return !boundA && !boundB
		}
		return sameMeaning(ca, cb)
	}
	return token.Equal(a, b)
}

func sameMeaning(a, b *environment.ControlSequence) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case environment.CSPrimitive:
		return a.Name == b.Name
	case environment.CSMacro:
		return renderMacroMeaning(a.Macro) == renderMacroMeaning(b.Macro)
	case environment.CSCharDef, environment.CSMathCharDef:
		return a.CodePoint == b.CodePoint
	case environment.CSFont:
		return a.FontHandle == b.FontHandle
	default:
		return a.RegisterIndex == b.RegisterIndex
	}
}

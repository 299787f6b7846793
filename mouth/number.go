package mouth

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/gnieh/toolxit-tex/environment"
	"github.com/gnieh/toolxit-tex/numeral"
	"github.com/gnieh/toolxit-tex/position"
	"github.com/gnieh/toolxit-tex/token"
	"github.com/gnieh/toolxit-tex/toolxiterr"
)

// Relation is one of the three comparisons \ifnum/\ifdim accept.
type Relation int

const (
	Lt Relation = iota
	Eq
	Gt
)

func applyRelation(a int64, rel Relation, b int64) bool {
	switch rel {
	case Lt:
		return a < b
	case Eq:
		return a == b
	case Gt:
		return a > b
	}
	return false
}

// scanNumber implements the <number> grammar: optional signs, then a
// decimal/octal/hex/char-token constant or an internal quantity,
// followed by one optional space.
func (m *Mouth) scanNumber() (int64, error) {
	if err := m.skipSpaces(); err != nil {
		return 0, err
	}
	sign := int64(1)
	for {
		t, ok, err := m.NextExpanded()
		if err != nil {
			return 0, err
		}
		if !ok {
			break
		}
		if t.Kind == token.KindCharacter && (t.Char == '+' || t.Char == '-') {
			if t.Char == '-' {
				sign = -sign
			}
			if err := m.skipSpaces(); err != nil {
				return 0, err
			}
			continue
		}
		m.pushbackOne(t)
		break
	}

	t, ok, err := m.NextExpanded()
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, toolxiterr.Userf(position.Position{}, "Missing number, treated as zero")
	}

	var value int64
	switch {
	case t.Kind == token.KindCharacter && t.Char == '`':
		ct, ok, err := m.NextExpanded()
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, toolxiterr.Userf(t.Pos, "Missing character after `")
		}
		value = int64(token.CharCode(ct))
	case t.Kind == token.KindCharacter && t.Char == '\'':
		digits, err := m.scanDigitRun(isOctalDigit)
		if err != nil {
			return 0, err
		}
		value, err = numeral.Octal(digits)
		if err != nil {
			return 0, err
		}
	case t.Kind == token.KindCharacter && t.Char == '"':
		digits, err := m.scanDigitRun(isHexDigitChar)
		if err != nil {
			return 0, err
		}
		value, err = numeral.Hex(digits)
		if err != nil {
			return 0, err
		}
	case t.Kind == token.KindCharacter && isDecimalDigit(t.Char):
		m.pushbackOne(t)
		digits, err := m.scanDigitRun(isDecimalDigit)
		if err != nil {
			return 0, err
		}
		value, err = numeral.Decimal(digits)
		if err != nil {
			return 0, err
		}
	case t.Kind == token.KindControlSequence:
		v, known, err := m.internalQuantity(t)
		if err != nil {
			return 0, err
		}
		if !known {
			return 0, toolxiterr.Userf(t.Pos, "Missing number, treated as zero")
		}
		value = v
	default:
		return 0, toolxiterr.Userf(t.Pos, "Missing number, treated as zero")
	}

	if err := m.skipOneOptionalSpace(); err != nil {
		return 0, err
	}
	return sign * value, nil
}

func (m *Mouth) skipSpaces() error {
	for {
		t, ok, err := m.NextExpanded()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if t.Kind == token.KindCharacter && t.Category == token.Space {
			continue
		}
		m.pushbackOne(t)
		return nil
	}
}

func (m *Mouth) skipOneOptionalSpace() error {
	t, ok, err := m.NextExpanded()
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	if t.Kind == token.KindCharacter && t.Category == token.Space {
		return nil
	}
	m.pushbackOne(t)
	return nil
}

func (m *Mouth) scanDigitRun(pred func(rune) bool) (string, error) {
	var b strings.Builder
	for {
		t, ok, err := m.NextExpanded()
		if err != nil {
			return "", err
		}
		if !ok {
			break
		}
		if t.Kind == token.KindCharacter && pred(t.Char) {
			b.WriteRune(t.Char)
			continue
		}
		m.pushbackOne(t)
		break
	}
	if b.Len() == 0 {
		return "", toolxiterr.Userf(position.Position{}, "Missing number, treated as zero")
	}
	return b.String(), nil
}

func isDecimalDigit(r rune) bool { return r >= '0' && r <= '9' }
func isOctalDigit(r rune) bool   { return r >= '0' && r <= '7' }
func isHexDigitChar(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'A' && r <= 'F')
}

// internalQuantity reads the integer value of a bound internal
// quantity: a register-family alias (from a \xxxdef-style binding), a
// \chardef/\mathchardef codepoint, or the \escapechar parameter.
func (m *Mouth) internalQuantity(t token.Token) (int64, bool, error) {
	cs, bound := m.env.Lookup(t.Name)
	if !bound {
		return 0, false, nil
	}
	switch cs.Kind {
	case environment.CSCountDef:
		return m.env.Register(environment.Count, cs.RegisterIndex), true, nil
	case environment.CSDimenDef:
		return m.env.Register(environment.Dimen, cs.RegisterIndex), true, nil
	case environment.CSSkipDef:
		return m.env.Register(environment.Skip, cs.RegisterIndex), true, nil
	case environment.CSMuskipDef:
		return m.env.Register(environment.Muskip, cs.RegisterIndex), true, nil
	case environment.CSCharDef, environment.CSMathCharDef:
		return int64(cs.CodePoint), true, nil
	case environment.CSPrimitive:
		if cs.Name == "escapechar" {
			return int64(m.env.EscapeChar()), true, nil
		}
	}
	return 0, false, nil
}

func (m *Mouth) scanRelation() (Relation, error) {
	if err := m.skipSpaces(); err != nil {
		return 0, err
	}
	t, ok, err := m.NextExpanded()
	if err != nil {
		return 0, err
	}
	if !ok || t.Kind != token.KindCharacter {
		return 0, toolxiterr.Userf(t.Pos, "Missing = inserted for relation")
	}
	switch t.Char {
	case '<':
		return Lt, nil
	case '=':
		return Eq, nil
	case '>':
		return Gt, nil
	}
	return 0, toolxiterr.Userf(t.Pos, "Missing = inserted for relation")
}

// Dimensions are stored in scaled points (1pt = 65536sp), the same
// representation real TeX uses; unit conversions below are
// approximations sufficient for \ifdim comparisons - full glue/box
// arithmetic is out of scope, this exists only so \ifdim has something
// to compare.
var unitFactors = map[string]int64{
	"pt": 65536,
	"in": 65536 * 7227 / 100,
	"pc": 65536 * 12,
	"cm": 65536 * 7227 / 254,
	"mm": 65536 * 7227 / 2540,
	"bp": 65536 * 7227 / 7200,
	"dd": 65536 * 1238 / 1157,
	"cc": 65536 * 14856 / 1157,
	"sp": 1,
}

const (
	fil1 = int64(1) << 48
	fil2 = int64(2) << 48
	fil3 = int64(3) << 48
)

func unitFactorFor(unit string) (int64, bool) {
	switch unit {
	case "fil":
		return fil1, true
	case "fill":
		return fil2, true
	case "filll":
		return fil3, true
	}
	f, ok := unitFactors[unit]
	return f, ok
}

func (m *Mouth) scanDimen() (int64, error) {
	if err := m.skipSpaces(); err != nil {
		return 0, err
	}
	sign := int64(1)
	for {
		t, ok, err := m.NextExpanded()
		if err != nil {
			return 0, err
		}
		if !ok {
			break
		}
		if t.Kind == token.KindCharacter && (t.Char == '+' || t.Char == '-') {
			if t.Char == '-' {
				sign = -sign
			}
			if err := m.skipSpaces(); err != nil {
				return 0, err
			}
			continue
		}
		m.pushbackOne(t)
		break
	}
	digits, err := m.scanDigitRun(isDecimalDigit)
	if err != nil {
		return 0, err
	}
	whole, err := numeral.Decimal(digits)
	if err != nil {
		return 0, err
	}
	if err := m.skipSpaces(); err != nil {
		return 0, err
	}
	unit, err := m.scanUnitKeyword()
	if err != nil {
		return 0, err
	}
	factor, ok := unitFactorFor(unit)
	if !ok && strings.HasPrefix(unit, "true") {
		factor, ok = unitFactorFor(strings.TrimPrefix(unit, "true"))
	}
	if !ok {
		return 0, toolxiterr.Userf(position.Position{}, "Illegal unit of measure (%s)", unit)
	}
	if err := m.skipOneOptionalSpace(); err != nil {
		return 0, err
	}
	return sign * whole * factor, nil
}

func (m *Mouth) scanUnitKeyword() (string, error) {
	var b strings.Builder
	for i := 0; i < 8; i++ {
		t, ok, err := m.NextExpanded()
		if err != nil {
			return "", err
		}
		if !ok {
			break
		}
		if t.Kind == token.KindCharacter && t.Category == token.Letter {
			b.WriteRune(unicode.ToLower(t.Char))
			continue
		}
		m.pushbackOne(t)
		break
	}
	return b.String(), nil
}

// expandNumber implements \number: scan a number and push its decimal
// rendering back as character tokens.
func (m *Mouth) expandNumber(tok token.Token) error {
	v, err := m.scanNumber()
	if err != nil {
		return err
	}
	m.pushbackAll(digitsToTokens(strconv.FormatInt(v, 10), tok.Pos))
	return nil
}

func (m *Mouth) expandRomanNumeral(tok token.Token) error {
	v, err := m.scanNumber()
	if err != nil {
		return err
	}
	m.pushbackAll(digitsToTokens(numeral.Roman(v), tok.Pos))
	return nil
}

// expandThe implements \the over the internal-quantity subset in
// scope.
func (m *Mouth) expandThe(tok token.Token) error {
	t, ok, err := m.NextExpanded()
	if err != nil {
		return err
	}
	if !ok || t.Kind != token.KindControlSequence {
		return toolxiterr.Userf(tok.Pos, "You can't use `\\the' here except with an internal quantity")
	}
	v, known, err := m.internalQuantity(t)
	if err != nil {
		return err
	}
	if !known {
		return toolxiterr.Userf(t.Pos, "You can't use `\\the' here except with an internal quantity")
	}
	m.pushbackAll(digitsToTokens(strconv.FormatInt(v, 10), tok.Pos))
	return nil
}

func digitsToTokens(s string, pos position.Position) []token.Token {
	out := make([]token.Token, 0, len(s))
	for _, r := range s {
		out = append(out, token.Character(r, token.Other, pos))
	}
	return out
}

// Package token defines the tagged-variant Token type shared by the
// eyes and the mouth, and the fixed Category enumeration that drives
// lexing.
package token

import (
	"fmt"

	"github.com/gnieh/toolxit-tex/position"
)

// Category is one of TeX's sixteen fixed category codes.
type Category int

const (
	Escape Category = iota
	BeginGroup
	EndGroup
	MathShift
	AlignTab
	EndOfLine
	Parameter
	Superscript
	Subscript
	Ignored
	Space
	Letter
	Other
	Active
	Comment
	Invalid
)

var categoryNames = [...]string{
	"escape", "begin-group", "end-group", "math shift", "alignment tab",
	"end-of-line", "macro parameter character", "superscript", "subscript",
	"ignored", "space", "the letter", "the character", "active", "comment",
	"invalid",
}

// String renders the category the way \meaning spells it out for
// character tokens.
func (c Category) String() string {
	if c < Escape || c > Invalid {
		return fmt.Sprintf("category(%d)", int(c))
	}
	return categoryNames[c]
}

// Kind discriminates the four Token variants.
type Kind int

const (
	KindCharacter Kind = iota
	KindControlSequence
	KindParameter
	KindGroup
)

// Token is a tagged union over four variants. Only the fields relevant
// to Kind are meaningful; callers should switch on Kind before reading
// the rest.
type Token struct {
	Kind Kind
	Pos  position.Position

	// KindCharacter
	Char     rune
	Category Category

	// KindControlSequence
	Name   string
	Active bool

	// KindParameter
	ParamNumber int

	// KindGroup - only synthesised while binding macro arguments.
	Open  *Token
	Body  []Token
	Close *Token

	// Frozen marks a control sequence that \noexpand has decided must
	// pass through this one time even though it would normally expand.
	// It is never part of token identity (Equal ignores it) and is
	// cleared the moment the mouth returns the token from NextExpanded.
	Frozen bool
}

// Character builds a KindCharacter token.
func Character(r rune, cat Category, pos position.Position) Token {
	return Token{Kind: KindCharacter, Char: r, Category: cat, Pos: pos}
}

// ControlSequence builds a KindControlSequence token. active is true
// for a promoted active character, false for an escape-introduced name.
func ControlSequence(name string, active bool, pos position.Position) Token {
	return Token{Kind: KindControlSequence, Name: name, Active: active, Pos: pos}
}

// Param builds a KindParameter token referencing parameter n (1..9).
func Param(n int, pos position.Position) Token {
	return Token{Kind: KindParameter, ParamNumber: n, Pos: pos}
}

// Group builds a KindGroup token. Only ever synthesised by the mouth
// while binding a macro argument delimited by braces; the eyes never
// emit one.
func Group(open Token, body []Token, close Token) Token {
	return Token{Kind: KindGroup, Open: &open, Body: body, Close: &close, Pos: open.Pos}
}

// Equal compares two tokens the way \ifx does: same kind, and same
// category+codepoint for characters, same name+active for control
// sequences. Position is never part of token identity.
func Equal(a, b Token) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindCharacter:
		return a.Char == b.Char && a.Category == b.Category
	case KindControlSequence:
		return a.Name == b.Name && a.Active == b.Active
	case KindParameter:
		return a.ParamNumber == b.ParamNumber
	case KindGroup:
		if len(a.Body) != len(b.Body) {
			return false
		}
		for i := range a.Body {
			if !Equal(a.Body[i], b.Body[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// SameCategory implements \ifcat: character tokens compare by
// category only; control sequences are considered one shared
// "category" distinct from every character category (TeX assigns
// control sequences category 16 for this purpose).
func SameCategory(a, b Token) bool {
	ac, aCS := catClass(a)
	bc, bCS := catClass(b)
	if aCS != bCS {
		return false
	}
	return ac == bc
}

func catClass(t Token) (Category, bool) {
	if t.Kind == KindCharacter {
		return t.Category, false
	}
	return -1, true
}

// CharCode implements \if: the "meaning" of a token reduced to a
// single comparable character code. Character tokens use their
// codepoint and active control sequences the first rune of their name;
// every plain control sequence (and any other token) gets code 256, so
// any two plain control sequences compare equal under \if, and a
// Character token matches them only if its codepoint is also 256.
func CharCode(t Token) rune {
	switch t.Kind {
	case KindCharacter:
		return t.Char
	case KindControlSequence:
		if t.Active {
			return rune(t.Name[0])
		}
		return 256
	default:
		return 256
	}
}

// String renders a token for diagnostics (not the \meaning format,
// which lives in package mouth since it depends on environment
// bindings).
func (t Token) String() string {
	switch t.Kind {
	case KindCharacter:
		return fmt.Sprintf("Character(%q, %s)", t.Char, t.Category)
	case KindControlSequence:
		if t.Active {
			return fmt.Sprintf("ActiveCS(%q)", t.Name)
		}
		return fmt.Sprintf("CS(%q)", t.Name)
	case KindParameter:
		return fmt.Sprintf("Param(%d)", t.ParamNumber)
	case KindGroup:
		return fmt.Sprintf("Group(%d tokens)", len(t.Body))
	default:
		return "Token(?)"
	}
}

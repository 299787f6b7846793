// Package environment implements the scoped table of category codes,
// control-sequence bindings and registers that the eyes and the mouth
// share, including the bootstrap of TeX's built-in root frame.
package environment

import (
	"github.com/gnieh/toolxit-tex/token"
)

// Mode is TeX's current typesetting mode. The core never builds boxes,
// but conditionals like \ifvmode/\ifhmode/\ifmmode/\ifinner need to
// read it.
type Mode int

const (
	Vertical Mode = iota
	Horizontal
	Math
	InternalVertical
	InternalHorizontal
	DisplayMath
)

// IsInner reports whether the mode is one of the "internal" modes,
// the predicate \ifinner reads.
func (m Mode) IsInner() bool {
	return m == InternalVertical || m == InternalHorizontal
}

func (m Mode) IsVertical() bool  { return m == Vertical || m == InternalVertical }
func (m Mode) IsHorizontal() bool {
	return m == Horizontal || m == InternalHorizontal
}
func (m Mode) IsMath() bool { return m == Math || m == DisplayMath }

// Modifier bits attached to a macro definition.
type Modifier int

const (
	Global Modifier = 1 << iota
	Long
	Outer
)

func (m Modifier) Has(f Modifier) bool { return m&f != 0 }

// ParamPart is one element of a parameter-text: either a numbered
// parameter slot, a literal delimiter run, or the special brace-
// trigger `#{`.
type ParamPart struct {
	IsParam      bool
	ParamNumber  int
	Delim        []token.Token
	BraceTrigger bool
}

// MacroDef is a user \def/\edef/\gdef/\xdef definition.
type MacroDef struct {
	Name        string
	Modifiers   Modifier
	ParamText   []ParamPart
	ParamCount  int
	Replacement []token.Token
	ExpandNow   bool // true for \edef/\xdef
}

// CSKind discriminates the ControlSequence variants.
type CSKind int

const (
	CSPrimitive CSKind = iota
	CSMacro
	CSCountDef
	CSDimenDef
	CSSkipDef
	CSMuskipDef
	CSCharDef
	CSMathCharDef
	CSTokenList
	CSFont
)

// ControlSequence is the binding a name resolves to.
type ControlSequence struct {
	Kind CSKind
	Name string // primitive name, for CSPrimitive

	Macro *MacroDef // for CSMacro

	RegisterIndex int  // for CSCountDef/CSDimenDef/CSSkipDef/CSMuskipDef/CSTokenList
	CodePoint     rune // for CSCharDef/CSMathCharDef
	FontHandle    string
}

// RegisterFamily distinguishes TeX's four numeric register families.
type RegisterFamily int

const (
	Count RegisterFamily = iota
	Dimen
	Skip
	Muskip
)

func (f RegisterFamily) String() string {
	switch f {
	case Count:
		return "count"
	case Dimen:
		return "dimen"
	case Skip:
		return "skip"
	case Muskip:
		return "muskip"
	default:
		return "register"
	}
}

// Frame is one scope level: a group's local bindings. A register
// family's values are int64; dimensions are stored in scaled points,
// skip/muskip store only their natural width (glue's stretch and
// shrink components are out of scope).
type Frame struct {
	Categories       map[rune]token.Category
	ControlSequences map[string]*ControlSequence
	Registers        [4]map[int]int64
	EscapeChar       rune
}

func newFrame() *Frame {
	f := &Frame{
		Categories:       map[rune]token.Category{},
		ControlSequences: map[string]*ControlSequence{},
	}
	for i := range f.Registers {
		f.Registers[i] = map[int]int64{}
	}
	return f
}

// Environment is the stack of frames a group enter/leave pushes and
// pops.
type Environment struct {
	frames []*Frame
	Mode   Mode
}

// New builds an Environment with a single root frame pre-populated with
// TeX's built-in categories and one binding per primitive name.
func New(primitives []string) *Environment {
	root := newFrame()
	root.EscapeChar = '\\'
	root.Categories['\\'] = token.Escape
	root.Categories['\n'] = token.EndOfLine
	root.Categories['\r'] = token.EndOfLine
	root.Categories[' '] = token.Space
	root.Categories['%'] = token.Comment
	root.Categories[0] = token.Invalid
	root.Categories['{'] = token.BeginGroup
	root.Categories['}'] = token.EndGroup
	root.Categories['$'] = token.MathShift
	root.Categories['&'] = token.AlignTab
	root.Categories['#'] = token.Parameter
	root.Categories['_'] = token.Subscript
	for r := 'a'; r <= 'z'; r++ {
		root.Categories[r] = token.Letter
	}
	for r := 'A'; r <= 'Z'; r++ {
		root.Categories[r] = token.Letter
	}
	for _, name := range primitives {
		root.ControlSequences[name] = &ControlSequence{Kind: CSPrimitive, Name: name}
	}
	return &Environment{frames: []*Frame{root}, Mode: Vertical}
}

// EnterGroup pushes a fresh frame.
func (e *Environment) EnterGroup() {
	e.frames = append(e.frames, newFrame())
}

// LeaveGroup pops the current frame. Calling it on the root frame is
// an internal error: group enter/leave must always balance.
func (e *Environment) LeaveGroup() {
	if len(e.frames) <= 1 {
		panic("environment: LeaveGroup called with no open group")
	}
	e.frames = e.frames[:len(e.frames)-1]
}

// Depth reports the current nesting depth (1 = root frame only).
func (e *Environment) Depth() int { return len(e.frames) }

func (e *Environment) top() *Frame { return e.frames[len(e.frames)-1] }
func (e *Environment) root() *Frame { return e.frames[0] }

// Category looks up r's current category, walking the stack toward
// the root.
func (e *Environment) Category(r rune) token.Category {
	for i := len(e.frames) - 1; i >= 0; i-- {
		if cat, ok := e.frames[i].Categories[r]; ok {
			return cat
		}
	}
	return token.Other
}

// SetCategory writes r's category into the current frame, or the root
// frame if global is true.
func (e *Environment) SetCategory(r rune, cat token.Category, global bool) {
	if global {
		e.root().Categories[r] = cat
		return
	}
	e.top().Categories[r] = cat
}

// EscapeChar returns the currently active \escapechar.
func (e *Environment) EscapeChar() rune {
	for i := len(e.frames) - 1; i >= 0; i-- {
		if e.frames[i].EscapeChar != 0 {
			return e.frames[i].EscapeChar
		}
	}
	return '\\'
}

// SetEscapeChar writes \escapechar.
func (e *Environment) SetEscapeChar(r rune, global bool) {
	if global {
		e.root().EscapeChar = r
		return
	}
	e.top().EscapeChar = r
}

// Lookup resolves a control sequence name, walking the stack toward
// the root. ok is false if the name is unbound.
func (e *Environment) Lookup(name string) (*ControlSequence, bool) {
	for i := len(e.frames) - 1; i >= 0; i-- {
		if cs, ok := e.frames[i].ControlSequences[name]; ok {
			return cs, true
		}
	}
	return nil, false
}

// Bind installs a control sequence binding into the current frame, or
// the root frame if global is true.
func (e *Environment) Bind(name string, cs *ControlSequence, global bool) {
	if global {
		e.root().ControlSequences[name] = cs
		return
	}
	e.top().ControlSequences[name] = cs
}

// Register reads a numeric register, walking the stack toward the
// root, defaulting to zero if unset anywhere.
func (e *Environment) Register(fam RegisterFamily, index int) int64 {
	for i := len(e.frames) - 1; i >= 0; i-- {
		if v, ok := e.frames[i].Registers[fam][index]; ok {
			return v
		}
	}
	return 0
}

// SetRegister writes a numeric register into the current frame, or
// the root frame if global is true.
func (e *Environment) SetRegister(fam RegisterFamily, index int, value int64, global bool) {
	if global {
		e.root().Registers[fam][index] = value
		return
	}
	e.top().Registers[fam][index] = value
}

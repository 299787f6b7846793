package mouth

import (
	"fmt"
	"strings"

	"github.com/gnieh/toolxit-tex/environment"
	"github.com/gnieh/toolxit-tex/token"
	"github.com/gnieh/toolxit-tex/toolxiterr"
)

// expandString implements \string: consume the next raw token and
// push its textual rendering.
func (m *Mouth) expandString(tok token.Token) error {
	t, ok, err := m.rawNext()
	if err != nil {
		return err
	}
	if !ok {
		return toolxiterr.Userf(tok.Pos, "file ended after \\string")
	}
	m.pushbackAll(digitsToTokens(m.stringify(t), tok.Pos))
	return nil
}

func (m *Mouth) stringify(t token.Token) string {
	switch t.Kind {
	case token.KindControlSequence:
		if t.Active {
			return t.Name
		}
		return string(m.env.EscapeChar()) + t.Name
	case token.KindCharacter:
		return string(t.Char)
	default:
		return ""
	}
}

func (m *Mouth) expandJobname(tok token.Token) error {
	m.pushbackAll(digitsToTokens(m.jobname, tok.Pos))
	return nil
}

// expandFontname implements \fontname over the minimal font model in
// scope: no real metrics are loaded, so the reported size is always
// the nominal design size.
func (m *Mouth) expandFontname(tok token.Token) error {
	t, ok, err := m.rawNext()
	if err != nil {
		return err
	}
	if !ok || t.Kind != token.KindControlSequence {
		return toolxiterr.Userf(tok.Pos, "Missing font identifier after \\fontname")
	}
	cs, bound := m.env.Lookup(t.Name)
	if !bound || cs.Kind != environment.CSFont {
		return toolxiterr.Userf(t.Pos, "\\%s is not a font", t.Name)
	}
	m.pushbackAll(digitsToTokens(fmt.Sprintf("%s at 10.0pt", cs.FontHandle), tok.Pos))
	return nil
}

func (m *Mouth) expandMeaning(tok token.Token) error {
	t, ok, err := m.rawNext()
	if err != nil {
		return err
	}
	if !ok {
		return toolxiterr.Userf(tok.Pos, "file ended after \\meaning")
	}
	m.pushbackAll(digitsToTokens(m.RenderMeaning(t), tok.Pos))
	return nil
}

// expandCsname implements \csname...\endcsname: repeatedly expand
// until \endcsname is consumed,
// concatenating the expanded characters into a name, then push a
// control-sequence token for it (binding it to \relax first if it was
// unbound, as real TeX does).
func (m *Mouth) expandCsname(tok token.Token) error {
	var b strings.Builder
	for {
		t, ok, err := m.NextExpanded()
		if err != nil {
			return err
		}
		if !ok {
			return toolxiterr.Userf(tok.Pos, "file ended while scanning \\csname")
		}
		if t.Kind == token.KindControlSequence && !t.Active {
			cs, bound := m.env.Lookup(t.Name)
			if bound && cs.Kind == environment.CSPrimitive && cs.Name == "endcsname" {
				break
			}
		}
		if t.Kind != token.KindCharacter {
			return toolxiterr.Userf(t.Pos, "Missing \\endcsname inserted")
		}
		b.WriteRune(t.Char)
	}
	name := b.String()
	if _, bound := m.env.Lookup(name); !bound {
		m.env.Bind(name, &environment.ControlSequence{Kind: environment.CSPrimitive, Name: "relax"}, false)
	}
	m.pushbackOne(token.ControlSequence(name, false, tok.Pos))
	return nil
}

// RenderMeaning implements the \meaning text format describing a
// token's current binding: "<category name> character <code>" for a
// character, the escape character plus the name for a primitive, and
// "macro:<parameter text>-><replacement text>" for a macro.
func (m *Mouth) RenderMeaning(t token.Token) string {
	switch t.Kind {
	case token.KindCharacter:
		return fmt.Sprintf("%s character %d", t.Category, t.Char)
	case token.KindParameter:
		return fmt.Sprintf("macro parameter character #%d", t.ParamNumber)
	case token.KindControlSequence:
		cs, bound := m.env.Lookup(t.Name)
		if !bound {
			return "undefined"
		}
		return m.renderCSMeaning(cs)
	}
	return "undefined"
}

func (m *Mouth) renderCSMeaning(cs *environment.ControlSequence) string {
	esc := string(m.env.EscapeChar())
	switch cs.Kind {
	case environment.CSPrimitive:
		return esc + cs.Name
	case environment.CSMacro:
		return renderMacroMeaning(cs.Macro)
	case environment.CSCountDef:
		return fmt.Sprintf("%scount%d", esc, cs.RegisterIndex)
	case environment.CSDimenDef:
		return fmt.Sprintf("%sdimen%d", esc, cs.RegisterIndex)
	case environment.CSSkipDef:
		return fmt.Sprintf("%sskip%d", esc, cs.RegisterIndex)
	case environment.CSMuskipDef:
		return fmt.Sprintf("%smuskip%d", esc, cs.RegisterIndex)
	case environment.CSCharDef:
		return fmt.Sprintf("%schar\"%X", esc, cs.CodePoint)
	case environment.CSMathCharDef:
		return fmt.Sprintf("%smathchar\"%X", esc, cs.CodePoint)
	case environment.CSTokenList:
		return fmt.Sprintf("%stoks%d", esc, cs.RegisterIndex)
	case environment.CSFont:
		return cs.FontHandle
	}
	return "undefined"
}

func renderMacroMeaning(macro *environment.MacroDef) string {
	var b strings.Builder
	if macro.Modifiers.Has(environment.Long) {
		b.WriteString("\\long")
	}
	if macro.Modifiers.Has(environment.Outer) {
		b.WriteString("\\outer")
	}
	b.WriteString("macro:")
	for _, part := range macro.ParamText {
		if part.IsParam {
			fmt.Fprintf(&b, "#%d", part.ParamNumber)
			continue
		}
		for _, t := range part.Delim {
			b.WriteString(renderTokenText(t))
		}
	}
	b.WriteString("->")
	for _, t := range macro.Replacement {
		b.WriteString(renderTokenText(t))
	}
	return b.String()
}

func renderTokenText(t token.Token) string {
	switch t.Kind {
	case token.KindCharacter:
		return string(t.Char)
	case token.KindParameter:
		return fmt.Sprintf("#%d", t.ParamNumber)
	case token.KindControlSequence:
		if t.Active {
			return t.Name
		}
		return "\\" + t.Name + " "
	case token.KindGroup:
		var b strings.Builder
		b.WriteString(renderTokenText(*t.Open))
		for _, bt := range t.Body {
			b.WriteString(renderTokenText(bt))
		}
		b.WriteString(renderTokenText(*t.Close))
		return b.String()
	}
	return ""
}

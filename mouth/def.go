package mouth

import (
	"github.com/gnieh/toolxit-tex/environment"
	"github.com/gnieh/toolxit-tex/position"
	"github.com/gnieh/toolxit-tex/token"
	"github.com/gnieh/toolxit-tex/toolxiterr"
)

// handleModifiersAndDef consumes a run of \global/\long/\outer
// prefixes (without expansion) and dispatches the \def-family
// primitive they modify.
func (m *Mouth) handleModifiersAndDef(first string) error {
	mods := environment.Modifier(0)
	name := first
	for {
		switch name {
		case "global":
			mods |= environment.Global
		case "long":
			mods |= environment.Long
		case "outer":
			mods |= environment.Outer
		case "def", "edef", "gdef", "xdef":
			return m.handleDefPrimitive(name, mods)
		default:
			return toolxiterr.Userf(position.Position{}, "Missing \\def-like primitive after \\global/\\long/\\outer, found \\%s", name)
		}
		t, ok, err := m.rawNext()
		if err != nil {
			return err
		}
		if !ok || t.Kind != token.KindControlSequence {
			return toolxiterr.Userf(t.Pos, "Missing \\def-like primitive")
		}
		cs, bound := m.env.Lookup(t.Name)
		if !bound || cs.Kind != environment.CSPrimitive {
			return toolxiterr.Userf(t.Pos, "Missing \\def-like primitive, found \\%s", t.Name)
		}
		name = cs.Name
	}
}

// handleDefPrimitive parses a parameter text, then a replacement
// text, and binds the resulting macro (globally for \gdef/\xdef or
// when mods carries Global).
func (m *Mouth) handleDefPrimitive(introducer string, mods environment.Modifier) error {
	global := mods.Has(environment.Global) || introducer == "gdef" || introducer == "xdef"
	expandNow := introducer == "edef" || introducer == "xdef"

	nameTok, ok, err := m.rawNext()
	if err != nil {
		return err
	}
	if !ok || nameTok.Kind != token.KindControlSequence {
		return toolxiterr.Userf(nameTok.Pos, "Missing control sequence after \\%s", introducer)
	}

	parts, paramCount, braceTrigger, err := m.parseParamText()
	if err != nil {
		return err
	}
	if !braceTrigger {
		bt, ok, err := m.rawNext()
		if err != nil {
			return err
		}
		if !ok || !(bt.Kind == token.KindCharacter && bt.Category == token.BeginGroup) {
			return toolxiterr.Userf(bt.Pos, "Missing { inserted")
		}
	}

	repl, err := m.parseReplacementText(paramCount)
	if err != nil {
		return err
	}
	if braceTrigger {
		synthOpen := parts[len(parts)-1].Delim[0]
		repl = append([]token.Token{synthOpen}, repl...)
	}

	macro := &environment.MacroDef{
		Name:        nameTok.Name,
		Modifiers:   mods,
		ParamText:   parts,
		ParamCount:  paramCount,
		Replacement: repl,
		ExpandNow:   expandNow,
	}
	if expandNow {
		expanded, err := m.expandTokensFully(repl)
		if err != nil {
			return err
		}
		macro.Replacement = expanded
	}

	m.env.Bind(nameTok.Name, &environment.ControlSequence{Kind: environment.CSMacro, Macro: macro}, global)
	return nil
}

// parseParamText reads a parameter-text up to (not including) the
// explicit opening '{' of the replacement text. braceTrigger reports
// that the text ended in the special `#{` form, in which case the
// caller must not look for a further literal '{'.
func (m *Mouth) parseParamText() ([]environment.ParamPart, int, bool, error) {
	var collected []token.Token
	for {
		t, ok, err := m.rawNext()
		if err != nil {
			return nil, 0, false, err
		}
		if !ok {
			return nil, 0, false, toolxiterr.Userf(t.Pos, "file ended while scanning parameter text")
		}
		if t.Kind == token.KindCharacter && t.Category == token.BeginGroup {
			m.pushbackOne(t)
			parts, paramCount, err := parseParamParts(collected)
			if err != nil {
				return nil, 0, false, err
			}
			return parts, paramCount, false, nil
		}
		if t.Kind == token.KindCharacter && t.Category == token.Parameter {
			la, ok2, err2 := m.rawNext()
			if err2 != nil {
				return nil, 0, false, err2
			}
			if ok2 && la.Kind == token.KindCharacter && la.Category == token.BeginGroup {
				parts, paramCount, err := parseParamParts(collected)
				if err != nil {
					return nil, 0, false, err
				}
				parts = append(parts, environment.ParamPart{BraceTrigger: true, Delim: []token.Token{la}})
				return parts, paramCount, true, nil
			}
			if ok2 {
				m.pushbackOne(la)
			}
			return nil, 0, false, toolxiterr.Userf(t.Pos, "You can't use macro parameter character # here")
		}
		collected = append(collected, t)
	}
}

// parseReplacementText reads a brace-balanced replacement text,
// validating parameter references against paramCount and collapsing
// "##" to a single Parameter-category character: when the eyes have
// already fused the second '#' with a following digit into a
// Parameter token, that fusion is undone and the digit reappears as a
// literal character.
func (m *Mouth) parseReplacementText(paramCount int) ([]token.Token, error) {
	depth := 1
	var out []token.Token
	for {
		t, ok, err := m.rawNext()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, toolxiterr.Userf(t.Pos, "file ended while scanning replacement text")
		}
		if t.Kind == token.KindCharacter && t.Category == token.BeginGroup {
			depth++
			out = append(out, t)
			continue
		}
		if t.Kind == token.KindCharacter && t.Category == token.EndGroup {
			depth--
			if depth == 0 {
				return out, nil
			}
			out = append(out, t)
			continue
		}
		if t.Kind == token.KindCharacter && t.Category == token.Parameter {
			la, ok2, err2 := m.rawNext()
			if err2 != nil {
				return nil, err2
			}
			if ok2 && la.Kind == token.KindCharacter && la.Category == token.Parameter {
				out = append(out, token.Character(t.Char, token.Parameter, t.Pos))
				continue
			}
			if ok2 && la.Kind == token.KindParameter {
				out = append(out, token.Character(t.Char, token.Parameter, t.Pos))
				out = append(out, token.Character(rune('0'+la.ParamNumber), token.Other, la.Pos))
				continue
			}
			if ok2 {
				m.pushbackOne(la)
			}
			return nil, toolxiterr.Userf(t.Pos, "You can't use macro parameter character # here")
		}
		if t.Kind == token.KindParameter {
			if t.ParamNumber > paramCount {
				return nil, toolxiterr.Userf(t.Pos, "Parameter number %d does not exist in current macro", t.ParamNumber)
			}
		}
		out = append(out, t)
	}
}

// expandTokensFully re-expands a finite token list in isolation, used
// by \edef/\xdef to pre-expand a replacement text: \noexpand within it
// is handled uniformly by NextExpanded's own Frozen check, so no
// special-casing is needed here.
func (m *Mouth) expandTokensFully(toks []token.Token) ([]token.Token, error) {
	sentinel := token.ControlSequence("\x00 edef-sentinel", false, position.Position{})
	savedPending := m.pending
	m.pending = append(append([]token.Token{}, toks...), sentinel)
	var out []token.Token
	for {
		t, ok, err := m.NextExpanded()
		if err != nil {
			m.pending = savedPending
			return nil, err
		}
		if !ok {
			break
		}
		if t.Kind == token.KindControlSequence && t.Name == sentinel.Name {
			break
		}
		out = append(out, t)
	}
	m.pending = savedPending
	return out, nil
}

// bindArguments binds macro's parameter text against the upcoming raw
// token stream, with expansion disabled throughout.
func (m *Mouth) bindArguments(macro *environment.MacroDef) ([][]token.Token, error) {
	args := make([][]token.Token, macro.ParamCount+1)
	parts := macro.ParamText
	i := 0
	for i < len(parts) {
		part := parts[i]
		if !part.IsParam {
			if err := m.matchLiteralDelim(part.Delim); err != nil {
				return nil, err
			}
			i++
			continue
		}
		n := part.ParamNumber
		if i+1 < len(parts) && !parts[i+1].IsParam {
			val, err := m.bindDelimitedArg(parts[i+1].Delim, macro.Modifiers)
			if err != nil {
				return nil, err
			}
			args[n] = val
			i += 2
			continue
		}
		val, err := m.bindSingleArg(macro.Modifiers)
		if err != nil {
			return nil, err
		}
		args[n] = val
		i++
	}
	return args, nil
}

func (m *Mouth) matchLiteralDelim(delim []token.Token) error {
	for _, want := range delim {
		t, ok, err := m.rawNext()
		if err != nil {
			return err
		}
		if !ok || !token.Equal(t, want) {
			return toolxiterr.Userf(t.Pos, "Use of macro doesn't match its definition")
		}
	}
	return nil
}

// peekMatchesDelim reads len(delim) raw tokens and reports whether
// they match delim token-for-token, pushing them all back (in order)
// when they do not.
func (m *Mouth) peekMatchesDelim(delim []token.Token) (bool, error) {
	read := make([]token.Token, 0, len(delim))
	for _, want := range delim {
		t, ok, err := m.rawNext()
		if err != nil {
			return false, err
		}
		if !ok {
			for i := len(read) - 1; i >= 0; i-- {
				m.pushbackOne(read[i])
			}
			return false, nil
		}
		read = append(read, t)
		if !token.Equal(t, want) {
			for i := len(read) - 1; i >= 0; i-- {
				m.pushbackOne(read[i])
			}
			return false, nil
		}
	}
	return true, nil
}

func (m *Mouth) bindDelimitedArg(delim []token.Token, mod environment.Modifier) ([]token.Token, error) {
	var out []token.Token
	for {
		if len(delim) > 0 {
			matched, err := m.peekMatchesDelim(delim)
			if err != nil {
				return nil, err
			}
			if matched {
				return out, nil
			}
		}
		t, ok, err := m.rawNext()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, toolxiterr.Userf(t.Pos, "file ended while scanning macro argument")
		}
		if t.Kind == token.KindCharacter && t.Category == token.BeginGroup {
			body, close, err := m.readBalancedGroupBody(t)
			if err != nil {
				return nil, err
			}
			if !mod.Has(environment.Long) && containsPar(body) {
				return nil, toolxiterr.Userf(t.Pos, "Paragraph ended before macro argument was complete")
			}
			out = append(out, token.Group(t, body, close))
			continue
		}
		if !mod.Has(environment.Long) && t.Kind == token.KindControlSequence && !t.Active && t.Name == "par" {
			return nil, toolxiterr.Userf(t.Pos, "Paragraph ended before macro argument was complete")
		}
		out = append(out, t)
	}
}

func (m *Mouth) bindSingleArg(mod environment.Modifier) ([]token.Token, error) {
	t, ok, err := m.rawNext()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, toolxiterr.Userf(t.Pos, "file ended while scanning macro argument")
	}
	if t.Kind == token.KindCharacter && t.Category == token.BeginGroup {
		body, close, err := m.readBalancedGroupBody(t)
		if err != nil {
			return nil, err
		}
		if !mod.Has(environment.Long) && containsPar(body) {
			return nil, toolxiterr.Userf(t.Pos, "Paragraph ended before macro argument was complete")
		}
		return []token.Token{token.Group(t, body, close)}, nil
	}
	if !mod.Has(environment.Long) && t.Kind == token.KindControlSequence && !t.Active && t.Name == "par" {
		return nil, toolxiterr.Userf(t.Pos, "Paragraph ended before macro argument was complete")
	}
	return []token.Token{t}, nil
}

// readBalancedGroupBody reads raw tokens after an already-consumed
// opening brace, tracking nested depth, returning the body (excluding
// both braces) and the matching closing brace token.
func (m *Mouth) readBalancedGroupBody(openTok token.Token) ([]token.Token, token.Token, error) {
	depth := 1
	var body []token.Token
	for {
		t, ok, err := m.rawNext()
		if err != nil {
			return nil, token.Token{}, err
		}
		if !ok {
			return nil, token.Token{}, toolxiterr.Userf(openTok.Pos, "file ended inside a group")
		}
		if t.Kind == token.KindCharacter {
			if t.Category == token.BeginGroup {
				depth++
			}
			if t.Category == token.EndGroup {
				depth--
				if depth == 0 {
					return body, t, nil
				}
			}
		}
		body = append(body, t)
	}
}

// expandMacroInvocation binds macro's arguments and pushes its
// substituted replacement text back onto the input.
func (m *Mouth) expandMacroInvocation(macro *environment.MacroDef) error {
	args, err := m.bindArguments(macro)
	if err != nil {
		return err
	}
	result := substitute(macro.Replacement, args)
	m.pushbackAll(result)
	return nil
}

func substitute(repl []token.Token, args [][]token.Token) []token.Token {
	var out []token.Token
	for _, t := range repl {
		if t.Kind == token.KindParameter {
			out = append(out, flattenGroups(args[t.ParamNumber])...)
			continue
		}
		out = append(out, t)
	}
	return out
}

// flattenGroups expands any synthesised Group token back into its
// open+body+close sequence: Group tokens never leave the mouth in the
// external interface.
func flattenGroups(toks []token.Token) []token.Token {
	var out []token.Token
	for _, t := range toks {
		if t.Kind == token.KindGroup {
			out = append(out, *t.Open)
			out = append(out, flattenGroups(t.Body)...)
			out = append(out, *t.Close)
			continue
		}
		out = append(out, t)
	}
	return out
}

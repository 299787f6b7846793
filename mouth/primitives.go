package mouth

// PrimitiveNames lists every control-sequence name the root
// environment frame binds as a primitive: the ones the mouth expands
// or acts on itself (including the conditional delimiters \else, \or
// and \fi), plus the minimal set of pass-through primitives the mouth
// must still recognise without expanding (\relax, \endcsname, \par,
// \escapechar) so that \ifx, \meaning, \csname and \the can reason
// about them.
var PrimitiveNames = []string{
	"ifnum", "ifdim", "ifodd", "ifvmode", "ifhmode", "ifmmode", "ifinner",
	"if", "ifcat", "ifx", "ifcase", "unless",
	"else", "fi", "or",
	"number", "romannumeral", "string", "jobname", "fontname", "meaning",
	"csname", "endcsname", "expandafter", "noexpand", "input", "endinput", "the",
	"def", "edef", "gdef", "xdef", "global", "long", "outer",
	"relax", "par", "escapechar",
}

func isConditionalName(name string) bool {
	switch name {
	case "ifnum", "ifdim", "ifodd", "ifvmode", "ifhmode", "ifmmode", "ifinner",
		"if", "ifcat", "ifx", "ifcase":
		return true
	}
	return false
}

func isExpandablePrimitive(name string) bool {
	switch name {
	case "number", "romannumeral", "the", "string", "jobname", "fontname", "meaning",
		"csname", "expandafter", "noexpand", "input", "endinput",
		"ifnum", "ifdim", "ifodd", "ifvmode", "ifhmode", "ifmmode", "ifinner",
		"if", "ifcat", "ifx", "ifcase", "unless", "else", "or", "fi",
		"def", "edef", "gdef", "xdef", "global", "long", "outer":
		return true
	}
	return false
}

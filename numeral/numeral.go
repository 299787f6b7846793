// Package numeral parses the textual body of a TeX numeric constant
// (integer-constant | octal | hex) once the mouth has already isolated
// which digit run it is looking at and rendered it back to text, using
// a small grammar described with struct-tag `parser:"..."` over a
// lexer.MustSimple lexer for the "sign* digits" and
// "sign* hexdigits" shapes.
package numeral

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var constantLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Sign", Pattern: `[+-]`},
	{Name: "Space", Pattern: `[ \t]+`},
	{Name: "Digits", Pattern: `[0-9A-Fa-f]+`},
})

// Constant is a signed run of digits in some base, textually: the
// grammar production shared by decimal, octal (base 8) and hex
// (base 16) constants, which differ only in alphabet and base once
// isolated by the mouth's dispatcher.
type Constant struct {
	Signs  []string `parser:"@Sign*"`
	Digits string   `parser:"@Digits"`
}

var constantParser = participle.MustBuild[Constant](
	participle.Lexer(constantLexer),
	participle.Elide("Space"),
)

// ParseSignedDigits parses "sign* digits" and returns the accumulated
// sign (the product of +-1 for every +/- consumed) and the digit text,
// for the caller to convert in the appropriate base.
func ParseSignedDigits(s string) (sign int64, digits string, err error) {
	c, err := constantParser.ParseString("", s)
	if err != nil {
		return 0, "", fmt.Errorf("parse numeric constant %q: %w", s, err)
	}
	sign = 1
	for _, sg := range c.Signs {
		if sg == "-" {
			sign = -sign
		}
	}
	return sign, c.Digits, nil
}

// Decimal parses a signed base-10 integer constant.
func Decimal(s string) (int64, error) {
	sign, digits, err := ParseSignedDigits(s)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("decimal constant %q: %w", digits, err)
	}
	return sign * v, nil
}

// Octal parses a signed base-8 integer constant (after the leading
// quote character has already been consumed by the mouth).
func Octal(s string) (int64, error) {
	sign, digits, err := ParseSignedDigits(s)
	if err != nil {
		return 0, err
	}
	for _, r := range digits {
		if r < '0' || r > '7' {
			return 0, fmt.Errorf("invalid octal digit %q in %q", r, digits)
		}
	}
	v, err := strconv.ParseInt(digits, 8, 64)
	if err != nil {
		return 0, fmt.Errorf("octal constant %q: %w", digits, err)
	}
	return sign * v, nil
}

// Hex parses a signed base-16 integer constant (after the leading
// double-quote character has already been consumed by the mouth).
func Hex(s string) (int64, error) {
	sign, digits, err := ParseSignedDigits(s)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseInt(strings.ToUpper(digits), 16, 64)
	if err != nil {
		return 0, fmt.Errorf("hex constant %q: %w", digits, err)
	}
	return sign * v, nil
}

// Roman renders n as a lowercase roman numeral the way \romannumeral
// does: non-positive input produces empty.
func Roman(n int64) string {
	if n <= 0 {
		return ""
	}
	vals := []struct {
		v int64
		s string
	}{
		{1000, "m"}, {900, "cm"}, {500, "d"}, {400, "cd"},
		{100, "c"}, {90, "xc"}, {50, "l"}, {40, "xl"},
		{10, "x"}, {9, "ix"}, {5, "v"}, {4, "iv"}, {1, "i"},
	}
	var b strings.Builder
	for _, vs := range vals {
		for n >= vs.v {
			b.WriteString(vs.s)
			n -= vs.v
		}
	}
	return b.String()
}

package dsl

import (
	"fmt"
	"io"
	"strconv"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	themeLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "Newline", Pattern: `\n+`},
		{Name: "BlockComment", Pattern: `/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`},
		{Name: "LineComment", Pattern: `//[^\n]*`},
		{Name: "Color", Pattern: `#(?:[0-9A-Fa-f]{8}|[0-9A-Fa-f]{6}|[0-9A-Fa-f]{3})\b`},
		{Name: "HashComment", Pattern: `#[^\n]*`},
		{Name: "Number", Pattern: `-?(?:\d+\.\d+|\d+)(?:pt|mm|cm|in|x)?`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Symbol", Pattern: `[:;]`},
		{Name: "LBrace", Pattern: `{`},
		{Name: "RBrace", Pattern: `}`},
	})

	themeParser = participle.MustBuild[Theme](
		participle.Lexer(themeLexer),
		participle.Elide("Whitespace", "LineComment", "BlockComment", "HashComment"),
	)
)

// Theme is the root AST node of a theme file:
//
//	theme classic {
//	  page   { top: 20mm bottom: 270mm }
//	  colors { accent: #3B82F6 }
//	}
type Theme struct {
	Pos      lexer.Position `parser:"" json:"-"`
	Name     string         `parser:"Newline* 'theme' @Ident"`
	Sections []*Section     `parser:"'{' Newline* ( @@ Newline* )* '}' Newline*"`
}

// Section groups settings under a name such as page, colors or meta.
type Section struct {
	Pos      lexer.Position `parser:"" json:"-"`
	Name     string         `parser:"@Ident"`
	Settings []*Setting     `parser:"'{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

// Setting uses colon syntax (key: value).
type Setting struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Key   string         `parser:"@Ident ':'"`
	Value *Value         `parser:"@@"`
}

// Value is a string, a number with optional unit, a hex color or a bare word.
type Value struct {
	String *StringLiteral `parser:"  @String"`
	Number *string        `parser:"| @Number"`
	Color  *string        `parser:"| @Color"`
	Ident  *string        `parser:"| @Ident"`
}

// Text returns the value as written, with strings unquoted.
func (v *Value) Text() string {
	switch {
	case v == nil:
		return ""
	case v.String != nil:
		return string(*v.String)
	case v.Number != nil:
		return *v.Number
	case v.Color != nil:
		return *v.Color
	case v.Ident != nil:
		return *v.Ident
	default:
		return ""
	}
}

// Section returns the first section with the given name, or nil.
func (t *Theme) Section(name string) *Section {
	if t == nil {
		return nil
	}
	for _, s := range t.Sections {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// Lookup returns the value of key inside the section, or nil.
func (s *Section) Lookup(key string) *Value {
	if s == nil {
		return nil
	}
	for _, st := range s.Settings {
		if st.Key == key {
			return st.Value
		}
	}
	return nil
}

// StringLiteral unquotes Go-style strings on capture.
type StringLiteral string

// Capture implements participle.Capture.
func (s *StringLiteral) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("string literal capture requires value")
	}
	val, err := strconv.Unquote(values[0])
	if err != nil {
		return err
	}
	*s = StringLiteral(val)
	return nil
}

// Parse parses a theme from r; filename is only used in error positions.
func Parse(filename string, r io.Reader) (*Theme, error) {
	return themeParser.Parse(filename, r)
}

// ParseString parses a theme from a string.
func ParseString(input string) (*Theme, error) {
	return themeParser.ParseString("", input)
}

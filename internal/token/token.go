// Package token names the lexical tokens produced by internal/lexer,
// reusing the rune space of text/scanner for identifiers/numbers/strings
// and defining the GraphQL punctuation runes the scanner doesn't know
// about itself.
package token

import "text/scanner"

const (
	NAME   = scanner.Ident
	INT    = scanner.Int
	FLOAT  = scanner.Float
	STRING = scanner.String
	EOF    = scanner.EOF

	BANG      = '!'
	DOLLAR    = '$'
	AT        = '@'
	PAREN_L   = '('
	PAREN_R   = ')'
	SPREAD    = '.'
	COLON     = ':'
	EQUALS    = '='
	BRACKET_L = '['
	BRACKET_R = ']'
	BRACE_L   = '{'
	BRACE_R   = '}'
)

// Package lexer tokenizes a query source string for internal/parser,
// using text/scanner the same way the rest of this family of hand-rolled
// GraphQL parsers does.
package lexer

import (
	"bytes"
	"fmt"
	"strings"
	"text/scanner"

	"github.com/traverseql/gqlc/errors"
	"github.com/traverseql/gqlc/internal/token"
)

type syntaxError string

type Lexer struct {
	scan    *scanner.Scanner
	next    rune
	comment bytes.Buffer
}

func New(source string) *Lexer {
	scan := &scanner.Scanner{
		Mode: scanner.ScanIdents | scanner.ScanInts | scanner.ScanFloats | scanner.ScanStrings,
	}
	scan.Init(strings.NewReader(source))
	return &Lexer{scan: scan}
}

// CatchSyntaxError runs fn and converts any panic raised via SyntaxError
// into a *errors.GraphQLError; any other panic propagates.
func (l *Lexer) CatchSyntaxError(fn func()) (graphQLError *errors.GraphQLError) {
	defer func() {
		if err := recover(); err != nil {
			if err, ok := err.(syntaxError); ok {
				graphQLError = errors.NewAt(errors.ParseError, l.Location(), "syntax error: %s", err)
				return
			}
			panic(err)
		}
	}()
	fn()
	return
}

func (l *Lexer) Peek() rune { return l.next }

func (l *Lexer) TokenText() string { return l.scan.TokenText() }

func (l *Lexer) Location() errors.Location {
	return errors.Location{Line: l.scan.Line, Column: l.scan.Column}
}

// SkipWhitespace advances to the next significant token, skipping tabs,
// commas and comments per the GraphQL ignored-tokens rule.
func (l *Lexer) SkipWhitespace() {
	l.comment.Reset()
	for {
		l.next = l.scan.Scan()
		if l.next == ',' {
			continue
		}
		if l.next == '#' {
			l.skipComment()
			continue
		}
		break
	}
}

func (l *Lexer) skipComment() {
	if l.next != '#' {
		panic("skipComment used in wrong context")
	}
	if l.scan.Peek() == ' ' {
		l.scan.Next()
	}
	if l.comment.Len() > 0 {
		l.comment.WriteRune('\n')
	}
	for {
		next := l.scan.Next()
		if next == '\r' || next == '\n' || next == scanner.EOF {
			break
		}
		l.comment.WriteRune(next)
	}
}

// Advance consumes the current token if it matches expected, then skips to
// the next significant token. Otherwise it raises a syntax error.
func (l *Lexer) Advance(expected rune) {
	if l.next != expected {
		found := strings.Trim(l.scan.TokenText(), `"`)
		l.SyntaxError(fmt.Sprintf("expected %s, found %q", scanner.TokenString(expected), found))
	}
	l.SkipWhitespace()
}

// AdvanceKeyword consumes the current token if it is the NAME token with
// the given text, then skips to the next significant token.
func (l *Lexer) AdvanceKeyword(keyword string) {
	if l.next != token.NAME || l.scan.TokenText() != keyword {
		found := strings.Trim(l.scan.TokenText(), `"`)
		l.SyntaxError(fmt.Sprintf("expected %q, found %q", keyword, found))
	}
	l.SkipWhitespace()
}

func (l *Lexer) SyntaxError(message string) {
	panic(syntaxError(message))
}

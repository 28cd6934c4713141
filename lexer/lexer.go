package lexer

import (
	"errors"
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/example/loxgo/diag"
	"github.com/example/loxgo/token"
)

// ErrScan is returned by Tokenize when at least one scan error was reported.
var ErrScan = errors.New("scan error")

type Lexer struct {
	input   string
	pos     int // current position in input (points to current char)
	readPos int // current reading position (after current char)
	ch      rune
	line    int

	reporter *diag.Reporter
	errors   int
}

// New returns a Lexer over input. Errors go to reporter, which may be nil.
func New(input string, reporter *diag.Reporter) *Lexer {
	l := &Lexer{
		input:    input,
		line:     1,
		reporter: reporter,
	}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0
		l.pos = len(l.input)
		l.readPos = len(l.input) + 1
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPos:])
	l.ch = r
	l.pos = l.readPos
	l.readPos += size
}

func (l *Lexer) peekChar() rune {
	if l.readPos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPos:])
	return r
}

func (l *Lexer) atEnd() bool {
	return l.pos >= len(l.input)
}

func (l *Lexer) skipWhitespaceAndComments() {
	for !l.atEnd() {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\r':
			l.readChar()
		case l.ch == '\n':
			l.line++
			l.readChar()
		case l.ch == '/' && l.peekChar() == '/':
			for l.ch != '\n' && !l.atEnd() {
				l.readChar()
			}
		default:
			return
		}
	}
}

func (l *Lexer) error(line int, msg string) {
	l.errors++
	l.reporter.Error(line, msg)
}

// NextToken returns the next token, skipping and reporting anything that is
// not part of the language. It returns EOF forever once input is exhausted.
func (l *Lexer) NextToken() token.Token {
	for {
		l.skipWhitespaceAndComments()

		line := l.line
		start := l.pos
		tok := func(tt token.TokenType) token.Token {
			return token.Token{Type: tt, Lexeme: l.input[start:l.pos], Line: line}
		}

		if l.atEnd() {
			return token.Token{Type: token.EOF, Line: line}
		}

		ch := l.ch
		switch {
		case ch == '(':
			l.readChar()
			return tok(token.LeftParen)
		case ch == ')':
			l.readChar()
			return tok(token.RightParen)
		case ch == '{':
			l.readChar()
			return tok(token.LeftBrace)
		case ch == '}':
			l.readChar()
			return tok(token.RightBrace)
		case ch == ',':
			l.readChar()
			return tok(token.Comma)
		case ch == '.':
			l.readChar()
			return tok(token.Dot)
		case ch == '-':
			l.readChar()
			return tok(token.Minus)
		case ch == '+':
			l.readChar()
			return tok(token.Plus)
		case ch == ';':
			l.readChar()
			return tok(token.Semicolon)
		case ch == '*':
			l.readChar()
			return tok(token.Star)
		case ch == '/':
			l.readChar()
			return tok(token.Slash)

		case ch == '!':
			l.readChar()
			if l.ch == '=' {
				l.readChar()
				return tok(token.BangEqual)
			}
			return tok(token.Bang)
		case ch == '=':
			l.readChar()
			if l.ch == '=' {
				l.readChar()
				return tok(token.EqualEqual)
			}
			return tok(token.Equal)
		case ch == '<':
			l.readChar()
			if l.ch == '=' {
				l.readChar()
				return tok(token.LessEqual)
			}
			return tok(token.Less)
		case ch == '>':
			l.readChar()
			if l.ch == '=' {
				l.readChar()
				return tok(token.GreaterEqual)
			}
			return tok(token.Greater)

		case ch == '"':
			if t, ok := l.readString(line, start); ok {
				return t
			}
			// unterminated: input is exhausted, loop yields EOF

		case isDigit(ch):
			return l.readNumber(line, start)

		case isIdentStart(ch):
			return l.readIdentifier(line, start)

		default:
			l.readChar()
			l.error(line, fmt.Sprintf("Unexpected character '%c'.", ch))
		}
	}
}

func (l *Lexer) readString(line, start int) (token.Token, bool) {
	l.readChar() // skip opening quote
	for l.ch != '"' && !l.atEnd() {
		if l.ch == '\n' {
			l.line++
		}
		l.readChar()
	}
	if l.atEnd() {
		l.error(l.line, "Unterminated string.")
		return token.Token{}, false
	}
	l.readChar() // closing quote

	lexeme := l.input[start:l.pos]
	return token.Token{
		Type:    token.String,
		Lexeme:  lexeme,
		Literal: lexeme[1 : len(lexeme)-1],
		Line:    line,
	}, true
}

func (l *Lexer) readNumber(line, start int) token.Token {
	for isDigit(l.ch) {
		l.readChar()
	}
	// A fractional part needs at least one digit after the dot.
	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	lexeme := l.input[start:l.pos]
	// Overflow yields ±Inf with ErrRange; the literal keeps that value.
	n, _ := strconv.ParseFloat(lexeme, 64)
	return token.Token{Type: token.Number, Lexeme: lexeme, Literal: n, Line: line}
}

func (l *Lexer) readIdentifier(line, start int) token.Token {
	for isIdentPart(l.ch) {
		l.readChar()
	}
	lexeme := l.input[start:l.pos]
	return token.Token{Type: token.LookupIdentifier(lexeme), Lexeme: lexeme, Line: line}
}

// ScanTokens consumes the remaining input and returns every token, ending
// with exactly one EOF.
func (l *Lexer) ScanTokens() []token.Token {
	var tokens []token.Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			return tokens
		}
	}
}

// Tokenize scans input in one pass. The token slice is always complete; the
// error wraps ErrScan when any problem was reported along the way.
func Tokenize(input string, reporter *diag.Reporter) ([]token.Token, error) {
	l := New(input, reporter)
	tokens := l.ScanTokens()
	if l.errors > 0 {
		return tokens, fmt.Errorf("%w: %d error(s)", ErrScan, l.errors)
	}
	return tokens, nil
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(ch rune) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch rune) bool {
	return isIdentStart(ch) || isDigit(ch)
}

package lexer

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/example/loxgo/diag"
	"github.com/example/loxgo/token"
)

type expectedToken struct {
	typ    token.TokenType
	lexeme string
}

func expectTokens(t *testing.T, input string, expected []expectedToken) {
	t.Helper()
	l := New(input, nil)
	for i, exp := range expected {
		tok := l.NextToken()
		if tok.Type != exp.typ {
			t.Errorf("test[%d]: type wrong. expected=%s, got=%s (lexeme=%q)", i, exp.typ, tok.Type, tok.Lexeme)
		}
		if tok.Lexeme != exp.lexeme {
			t.Errorf("test[%d]: lexeme wrong. expected=%q, got=%q", i, exp.lexeme, tok.Lexeme)
		}
	}
}

func TestSingleCharTokens(t *testing.T) {
	expectTokens(t, `( ) { } , . - + ; / *`, []expectedToken{
		{token.LeftParen, "("},
		{token.RightParen, ")"},
		{token.LeftBrace, "{"},
		{token.RightBrace, "}"},
		{token.Comma, ","},
		{token.Dot, "."},
		{token.Minus, "-"},
		{token.Plus, "+"},
		{token.Semicolon, ";"},
		{token.Slash, "/"},
		{token.Star, "*"},
		{token.EOF, ""},
	})
}

func TestOneOrTwoCharOperators(t *testing.T) {
	expectTokens(t, `! != = == < <= > >= !!==`, []expectedToken{
		{token.Bang, "!"},
		{token.BangEqual, "!="},
		{token.Equal, "="},
		{token.EqualEqual, "=="},
		{token.Less, "<"},
		{token.LessEqual, "<="},
		{token.Greater, ">"},
		{token.GreaterEqual, ">="},
		{token.Bang, "!"},
		{token.BangEqual, "!="},
		{token.Equal, "="},
		{token.EOF, ""},
	})
}

func TestKeywordsAndIdentifiers(t *testing.T) {
	expectTokens(t, `and break class else false fn for if null or print return super this true var while foo _bar9`, []expectedToken{
		{token.And, "and"},
		{token.Break, "break"},
		{token.Class, "class"},
		{token.Else, "else"},
		{token.False, "false"},
		{token.Fn, "fn"},
		{token.For, "for"},
		{token.If, "if"},
		{token.Null, "null"},
		{token.Or, "or"},
		{token.Print, "print"},
		{token.Return, "return"},
		{token.Super, "super"},
		{token.This, "this"},
		{token.True, "true"},
		{token.Var, "var"},
		{token.While, "while"},
		{token.Identifier, "foo"},
		{token.Identifier, "_bar9"},
		{token.EOF, ""},
	})
}

func TestNumbers(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"0", 0},
		{"123", 123},
		{"3.25", 3.25},
		{"10.0", 10},
	}
	for _, tt := range tests {
		tok := New(tt.input, nil).NextToken()
		if tok.Type != token.Number {
			t.Fatalf("%q: expected NUMBER, got %s", tt.input, tok.Type)
		}
		if tok.Literal.(float64) != tt.want {
			t.Errorf("%q: expected %v, got %v", tt.input, tt.want, tok.Literal)
		}
	}
}

func TestNumberOverflowIsInfinity(t *testing.T) {
	var buf bytes.Buffer
	reporter := diag.NewReporter(&buf)
	tokens, err := Tokenize(strings.Repeat("9", 400), reporter)
	if err != nil {
		t.Fatalf("unexpected error: %v (%s)", err, buf.String())
	}
	if tokens[0].Type != token.Number || !math.IsInf(tokens[0].Literal.(float64), 1) {
		t.Fatalf("expected +Inf number, got %s %v", tokens[0].Type, tokens[0].Literal)
	}
	if reporter.HadError() {
		t.Fatalf("unexpected diagnostic: %s", buf.String())
	}
}

func TestNumberDotEdges(t *testing.T) {
	// No trailing or leading bare dot, no sign, no exponent.
	expectTokens(t, `12. .5 -3 1e5`, []expectedToken{
		{token.Number, "12"},
		{token.Dot, "."},
		{token.Dot, "."},
		{token.Number, "5"},
		{token.Minus, "-"},
		{token.Number, "3"},
		{token.Number, "1"},
		{token.Identifier, "e5"},
		{token.EOF, ""},
	})
}

func TestStrings(t *testing.T) {
	tok := New(`"hello world"`, nil).NextToken()
	if tok.Type != token.String || tok.Literal != "hello world" || tok.Lexeme != `"hello world"` {
		t.Fatalf("unexpected string token %+v", tok)
	}
}

func TestMultilineStringAdvancesLine(t *testing.T) {
	tokens, err := Tokenize("\"a\nb\nc\" x", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tokens[0].Type != token.String || tokens[0].Literal != "a\nb\nc" {
		t.Fatalf("unexpected token %+v", tokens[0])
	}
	if tokens[0].Line != 1 {
		t.Errorf("string should start on line 1, got %d", tokens[0].Line)
	}
	if tokens[1].Line != 3 {
		t.Errorf("identifier after string should be on line 3, got %d", tokens[1].Line)
	}
}

func TestCommentsAndLines(t *testing.T) {
	input := "var a; // comment here\n// whole line\nprint a;"
	tokens, err := Tokenize(input, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tokens) != 7 {
		t.Fatalf("expected 7 tokens, got %d: %v", len(tokens), tokens)
	}
	if tokens[3].Type != token.Print || tokens[3].Line != 3 {
		t.Errorf("expected print on line 3, got %s on line %d", tokens[3].Type, tokens[3].Line)
	}
}

func TestUnexpectedCharacterContinues(t *testing.T) {
	var buf bytes.Buffer
	rep := diag.NewReporter(&buf)
	tokens, err := Tokenize("var @ x # = 1;", rep)
	if !errors.Is(err, ErrScan) {
		t.Fatalf("expected ErrScan, got %v", err)
	}
	var types []token.TokenType
	for _, tok := range tokens {
		types = append(types, tok.Type)
	}
	want := []token.TokenType{token.Var, token.Identifier, token.Equal, token.Number, token.Semicolon, token.EOF}
	if len(types) != len(want) {
		t.Fatalf("expected %v, got %v", want, types)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, types)
		}
	}
	if len(rep.Diagnostics()) != 2 {
		t.Fatalf("expected 2 diagnostics, got %d", len(rep.Diagnostics()))
	}
	if !strings.Contains(buf.String(), "Unexpected character '@'.") {
		t.Errorf("missing diagnostic in %q", buf.String())
	}
}

func TestUnterminatedString(t *testing.T) {
	rep := diag.NewReporter(nil)
	tokens, err := Tokenize("print \"oops\nmore", rep)
	if !errors.Is(err, ErrScan) {
		t.Fatalf("expected ErrScan, got %v", err)
	}
	if len(tokens) != 2 || tokens[1].Type != token.EOF {
		t.Fatalf("expected print + EOF, got %v", tokens)
	}
	d := rep.Diagnostics()
	if len(d) != 1 || d[0].Message != "Unterminated string." || d[0].Line != 2 {
		t.Fatalf("unexpected diagnostics %v", d)
	}
}

func TestEOFIsSticky(t *testing.T) {
	l := New("", nil)
	for i := 0; i < 3; i++ {
		if tok := l.NextToken(); tok.Type != token.EOF {
			t.Fatalf("call %d: expected EOF, got %s", i, tok.Type)
		}
	}
}

package token

import "fmt"

type TokenType int

const (
	Illegal TokenType = iota
	EOF

	// Single-character tokens
	LeftParen
	RightParen
	LeftBrace
	RightBrace
	Comma
	Dot
	Minus
	Plus
	Semicolon
	Slash
	Star

	// One or two character tokens
	Bang
	BangEqual
	Equal
	EqualEqual
	Greater
	GreaterEqual
	Less
	LessEqual

	// Literals
	Identifier
	String
	Number

	// Keywords
	And
	Break
	Class
	Else
	False
	Fn
	For
	If
	Null
	Or
	Print
	Return
	Super
	This
	True
	Var
	While
)

// Token is a single lexical unit. Literal holds the parsed value for
// Number (float64) and String (string) tokens and is nil otherwise.
type Token struct {
	Type    TokenType
	Lexeme  string
	Literal any
	Line    int
}

func (t Token) String() string {
	if t.Literal != nil {
		return fmt.Sprintf("%s %q %v", t.Type, t.Lexeme, t.Literal)
	}
	return fmt.Sprintf("%s %q", t.Type, t.Lexeme)
}

var Keywords = map[string]TokenType{
	"and":    And,
	"break":  Break,
	"class":  Class,
	"else":   Else,
	"false":  False,
	"fn":     Fn,
	"for":    For,
	"if":     If,
	"null":   Null,
	"or":     Or,
	"print":  Print,
	"return": Return,
	"super":  Super,
	"this":   This,
	"true":   True,
	"var":    Var,
	"while":  While,
}

func LookupIdentifier(ident string) TokenType {
	if tok, ok := Keywords[ident]; ok {
		return tok
	}
	return Identifier
}

var names = map[TokenType]string{
	Illegal:      "ILLEGAL",
	EOF:          "EOF",
	LeftParen:    "(",
	RightParen:   ")",
	LeftBrace:    "{",
	RightBrace:   "}",
	Comma:        ",",
	Dot:          ".",
	Minus:        "-",
	Plus:         "+",
	Semicolon:    ";",
	Slash:        "/",
	Star:         "*",
	Bang:         "!",
	BangEqual:    "!=",
	Equal:        "=",
	EqualEqual:   "==",
	Greater:      ">",
	GreaterEqual: ">=",
	Less:         "<",
	LessEqual:    "<=",
	Identifier:   "IDENTIFIER",
	String:       "STRING",
	Number:       "NUMBER",
	And:          "and",
	Break:        "break",
	Class:        "class",
	Else:         "else",
	False:        "false",
	Fn:           "fn",
	For:          "for",
	If:           "if",
	Null:         "null",
	Or:           "or",
	Print:        "print",
	Return:       "return",
	Super:        "super",
	This:         "this",
	True:         "true",
	Var:          "var",
	While:        "while",
}

func (t TokenType) String() string {
	if name, ok := names[t]; ok {
		return name
	}
	return fmt.Sprintf("TOKEN(%d)", int(t))
}

package parser

import (
	"errors"
	"fmt"

	"github.com/example/loxgo/ast"
	"github.com/example/loxgo/diag"
	"github.com/example/loxgo/token"
)

// ErrSyntax is returned by Parse when at least one syntax error was reported.
var ErrSyntax = errors.New("syntax error")

const maxArgs = 255

// parseError unwinds the parser to the nearest statement boundary. It never
// escapes the package: declaration recovers it.
type parseError struct{}

type Parser struct {
	tokens   []token.Token
	current  int
	reporter *diag.Reporter
	errors   []error
}

// New returns a parser over tokens, which must end with an EOF token.
// Errors are reported to reporter as they are found; reporter may be nil.
func New(tokens []token.Token, reporter *diag.Reporter) *Parser {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != token.EOF {
		line := 1
		if len(tokens) > 0 {
			line = tokens[len(tokens)-1].Line
		}
		tokens = append(tokens, token.Token{Type: token.EOF, Line: line})
	}
	return &Parser{tokens: tokens, reporter: reporter}
}

// ParseProgram parses every declaration, recovering after each bad one.
// The returned errors are *diag.Diagnostic values in source order.
func (p *Parser) ParseProgram() (*ast.Program, []error) {
	program := &ast.Program{}
	for !p.isAtEnd() {
		stmt := p.declaration()
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}
	}
	return program, p.errors
}

// Parse returns the statement list, or nil and an error wrapping ErrSyntax
// if anything was reported.
func (p *Parser) Parse() ([]ast.Statement, error) {
	program, errs := p.ParseProgram()
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %d error(s)", ErrSyntax, len(errs))
	}
	return program.Statements, nil
}

// ParseExpression parses a single expression that must span the whole input.
func (p *Parser) ParseExpression() (expr ast.Expression, err error) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(parseError); !ok {
				panic(r)
			}
			expr = nil
			err = fmt.Errorf("%w: %d error(s)", ErrSyntax, len(p.errors))
		}
	}()

	expr = p.parseExpression()
	if !p.isAtEnd() {
		panic(p.error(p.peek(), "Expect end of expression."))
	}
	if len(p.errors) > 0 {
		return nil, fmt.Errorf("%w: %d error(s)", ErrSyntax, len(p.errors))
	}
	return expr, nil
}

// ---------- Token helpers ----------

func (p *Parser) peek() token.Token {
	return p.tokens[p.current]
}

func (p *Parser) previous() token.Token {
	return p.tokens[p.current-1]
}

func (p *Parser) isAtEnd() bool {
	return p.peek().Type == token.EOF
}

func (p *Parser) advance() token.Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.previous()
}

func (p *Parser) check(t token.TokenType) bool {
	if p.isAtEnd() {
		return false
	}
	return p.peek().Type == t
}

func (p *Parser) match(types ...token.TokenType) bool {
	for _, t := range types {
		if p.check(t) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) expect(t token.TokenType, msg string) token.Token {
	if p.check(t) {
		return p.advance()
	}
	panic(p.error(p.peek(), msg))
}

// error records and reports a diagnostic at tok. Callers panic with the
// result when the production cannot continue.
func (p *Parser) error(tok token.Token, msg string) parseError {
	d := &diag.Diagnostic{Phase: diag.Static, Line: tok.Line, Message: msg}
	if tok.Type == token.EOF {
		d.Where = " at end"
	} else {
		d.Where = fmt.Sprintf(" at '%s'", tok.Lexeme)
	}
	p.errors = append(p.errors, d)
	p.reporter.ErrorAt(tok, msg)
	return parseError{}
}

// synchronize discards tokens until a likely statement boundary.
func (p *Parser) synchronize() {
	p.advance()
	for !p.isAtEnd() {
		if p.previous().Type == token.Semicolon {
			return
		}
		switch p.peek().Type {
		case token.Class, token.Fn, token.Var, token.For, token.If,
			token.While, token.Print, token.Return:
			return
		}
		p.advance()
	}
}

// ---------- Declarations ----------

func (p *Parser) declaration() (stmt ast.Statement) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(parseError); !ok {
				panic(r)
			}
			p.synchronize()
			stmt = nil
		}
	}()

	switch {
	case p.match(token.Class):
		return p.parseClassDeclaration()
	case p.match(token.Fn):
		return p.parseFunction("function")
	case p.match(token.Var):
		return p.parseVarDeclaration()
	default:
		return p.parseStatement()
	}
}

func (p *Parser) parseClassDeclaration() *ast.ClassDeclaration {
	stmt := &ast.ClassDeclaration{Token: p.previous()}
	stmt.Name = p.expect(token.Identifier, "Expect class name.")

	if p.match(token.Less) {
		p.expect(token.Identifier, "Expect superclass name.")
		stmt.SuperClass = &ast.VariableExpression{Name: p.previous()}
	}

	p.expect(token.LeftBrace, "Expect '{' before class body.")
	for !p.check(token.RightBrace) && !p.isAtEnd() {
		stmt.Methods = append(stmt.Methods, p.parseFunction("method"))
	}
	p.expect(token.RightBrace, "Expect '}' after class body.")
	return stmt
}

// parseFunction parses NAME ( params ) { body } for both declarations and
// methods; kind only shapes error messages.
func (p *Parser) parseFunction(kind string) *ast.FunctionDeclaration {
	fn := &ast.FunctionDeclaration{}
	fn.Name = p.expect(token.Identifier, fmt.Sprintf("Expect %s name.", kind))

	p.expect(token.LeftParen, fmt.Sprintf("Expect '(' after %s name.", kind))
	if !p.check(token.RightParen) {
		for {
			if len(fn.Params) >= maxArgs {
				p.error(p.peek(), fmt.Sprintf("Can't have more than %d parameters.", maxArgs))
			}
			fn.Params = append(fn.Params, p.expect(token.Identifier, "Expect parameter name."))
			if !p.match(token.Comma) {
				break
			}
		}
	}
	p.expect(token.RightParen, "Expect ')' after parameters.")

	p.expect(token.LeftBrace, fmt.Sprintf("Expect '{' before %s body.", kind))
	fn.Body = p.parseBlock()
	return fn
}

func (p *Parser) parseVarDeclaration() *ast.VarDeclaration {
	stmt := &ast.VarDeclaration{Token: p.previous()}
	stmt.Name = p.expect(token.Identifier, "Expect variable name.")
	if p.match(token.Equal) {
		stmt.Initializer = p.parseExpression()
	}
	p.expect(token.Semicolon, "Expect ';' after variable declaration.")
	return stmt
}

// ---------- Statements ----------

func (p *Parser) parseStatement() ast.Statement {
	switch {
	case p.match(token.For):
		return p.parseForStatement()
	case p.match(token.If):
		return p.parseIfStatement()
	case p.match(token.Print):
		return p.parsePrintStatement()
	case p.match(token.Return):
		return p.parseReturnStatement()
	case p.match(token.Break):
		return p.parseBreakStatement()
	case p.match(token.While):
		return p.parseWhileStatement()
	case p.match(token.LeftBrace):
		tok := p.previous()
		return &ast.BlockStatement{Token: tok, Statements: p.parseBlock()}
	default:
		return p.parseExpressionStatement()
	}
}

// parseForStatement desugars for (init; cond; incr) body into
// { init; while (cond) { body; incr; } }.
func (p *Parser) parseForStatement() ast.Statement {
	tok := p.previous()
	p.expect(token.LeftParen, "Expect '(' after 'for'.")

	var initializer ast.Statement
	switch {
	case p.match(token.Semicolon):
	case p.match(token.Var):
		initializer = p.parseVarDeclaration()
	default:
		initializer = p.parseExpressionStatement()
	}

	var condition ast.Expression
	if !p.check(token.Semicolon) {
		condition = p.parseExpression()
	}
	p.expect(token.Semicolon, "Expect ';' after loop condition.")

	var increment ast.Expression
	if !p.check(token.RightParen) {
		increment = p.parseExpression()
	}
	p.expect(token.RightParen, "Expect ')' after for clauses.")

	body := p.parseStatement()

	if increment != nil {
		body = &ast.BlockStatement{
			Token: tok,
			Statements: []ast.Statement{
				body,
				&ast.ExpressionStatement{Token: tok, Expression: increment},
			},
		}
	}
	if condition == nil {
		condition = &ast.Literal{Token: tok, Value: true}
	}
	body = &ast.WhileStatement{Token: tok, Condition: condition, Body: body}

	if initializer != nil {
		body = &ast.BlockStatement{Token: tok, Statements: []ast.Statement{initializer, body}}
	}
	return body
}

func (p *Parser) parseIfStatement() *ast.IfStatement {
	stmt := &ast.IfStatement{Token: p.previous()}
	p.expect(token.LeftParen, "Expect '(' after 'if'.")
	stmt.Condition = p.parseExpression()
	p.expect(token.RightParen, "Expect ')' after if condition.")

	stmt.Consequence = p.parseStatement()
	if p.match(token.Else) {
		stmt.Alternative = p.parseStatement()
	}
	return stmt
}

func (p *Parser) parsePrintStatement() *ast.PrintStatement {
	stmt := &ast.PrintStatement{Token: p.previous()}
	stmt.Expression = p.parseExpression()
	p.expect(token.Semicolon, "Expect ';' after value.")
	return stmt
}

func (p *Parser) parseReturnStatement() *ast.ReturnStatement {
	stmt := &ast.ReturnStatement{Token: p.previous()}
	if !p.check(token.Semicolon) {
		stmt.Value = p.parseExpression()
	}
	p.expect(token.Semicolon, "Expect ';' after return value.")
	return stmt
}

func (p *Parser) parseBreakStatement() *ast.BreakStatement {
	stmt := &ast.BreakStatement{Token: p.previous()}
	p.expect(token.Semicolon, "Expect ';' after 'break'.")
	return stmt
}

func (p *Parser) parseWhileStatement() *ast.WhileStatement {
	stmt := &ast.WhileStatement{Token: p.previous()}
	p.expect(token.LeftParen, "Expect '(' after 'while'.")
	stmt.Condition = p.parseExpression()
	p.expect(token.RightParen, "Expect ')' after condition.")
	stmt.Body = p.parseStatement()
	return stmt
}

// parseBlock parses declarations up to the closing brace; the opening
// brace has already been consumed.
func (p *Parser) parseBlock() []ast.Statement {
	var stmts []ast.Statement
	for !p.check(token.RightBrace) && !p.isAtEnd() {
		if stmt := p.declaration(); stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	p.expect(token.RightBrace, "Expect '}' after block.")
	return stmts
}

func (p *Parser) parseExpressionStatement() *ast.ExpressionStatement {
	stmt := &ast.ExpressionStatement{Token: p.peek()}
	stmt.Expression = p.parseExpression()
	p.expect(token.Semicolon, "Expect ';' after expression.")
	return stmt
}

// ---------- Expressions ----------

func (p *Parser) parseExpression() ast.Expression {
	return p.parseAssignment()
}

func (p *Parser) parseAssignment() ast.Expression {
	expr := p.parseOr()

	if p.match(token.Equal) {
		equals := p.previous()
		value := p.parseAssignment()

		switch target := expr.(type) {
		case *ast.VariableExpression:
			return &ast.AssignExpression{Name: target.Name, Value: value}
		case *ast.GetExpression:
			return &ast.SetExpression{Object: target.Object, Name: target.Name, Value: value}
		}
		// Reported without unwinding: the statement is still well formed.
		p.error(equals, "Invalid assignment target.")
	}
	return expr
}

func (p *Parser) parseOr() ast.Expression {
	expr := p.parseAnd()
	for p.match(token.Or) {
		operator := p.previous()
		right := p.parseAnd()
		expr = &ast.LogicalExpression{Left: expr, Operator: operator, Right: right}
	}
	return expr
}

func (p *Parser) parseAnd() ast.Expression {
	expr := p.parseEquality()
	for p.match(token.And) {
		operator := p.previous()
		right := p.parseEquality()
		expr = &ast.LogicalExpression{Left: expr, Operator: operator, Right: right}
	}
	return expr
}

// parseBinary parses a left-associative level whose operands come from next.
func (p *Parser) parseBinary(next func() ast.Expression, operators ...token.TokenType) ast.Expression {
	expr := next()
	for p.match(operators...) {
		operator := p.previous()
		right := next()
		expr = &ast.BinaryExpression{Left: expr, Operator: operator, Right: right}
	}
	return expr
}

func (p *Parser) parseEquality() ast.Expression {
	return p.parseBinary(p.parseComparison, token.BangEqual, token.EqualEqual)
}

func (p *Parser) parseComparison() ast.Expression {
	return p.parseBinary(p.parseTerm, token.Greater, token.GreaterEqual, token.Less, token.LessEqual)
}

func (p *Parser) parseTerm() ast.Expression {
	return p.parseBinary(p.parseFactor, token.Minus, token.Plus)
}

func (p *Parser) parseFactor() ast.Expression {
	return p.parseBinary(p.parseUnary, token.Slash, token.Star)
}

func (p *Parser) parseUnary() ast.Expression {
	if p.match(token.Bang, token.Minus) {
		operator := p.previous()
		right := p.parseUnary()
		return &ast.UnaryExpression{Operator: operator, Right: right}
	}
	return p.parseCall()
}

func (p *Parser) parseCall() ast.Expression {
	expr := p.parsePrimary()
	for {
		switch {
		case p.match(token.LeftParen):
			expr = p.finishCall(expr)
		case p.match(token.Dot):
			name := p.expect(token.Identifier, "Expect property name after '.'.")
			expr = &ast.GetExpression{Object: expr, Name: name}
		default:
			return expr
		}
	}
}

func (p *Parser) finishCall(callee ast.Expression) ast.Expression {
	var args []ast.Expression
	if !p.check(token.RightParen) {
		for {
			if len(args) >= maxArgs {
				p.error(p.peek(), fmt.Sprintf("Can't have more than %d arguments.", maxArgs))
			}
			args = append(args, p.parseExpression())
			if !p.match(token.Comma) {
				break
			}
		}
	}
	paren := p.expect(token.RightParen, "Expect ')' after arguments.")
	return &ast.CallExpression{Callee: callee, Paren: paren, Arguments: args}
}

func (p *Parser) parsePrimary() ast.Expression {
	switch {
	case p.match(token.False):
		return &ast.Literal{Token: p.previous(), Value: false}
	case p.match(token.True):
		return &ast.Literal{Token: p.previous(), Value: true}
	case p.match(token.Null):
		return &ast.Literal{Token: p.previous(), Value: nil}
	case p.match(token.Number, token.String):
		tok := p.previous()
		return &ast.Literal{Token: tok, Value: tok.Literal}
	case p.match(token.This):
		return &ast.ThisExpression{Keyword: p.previous()}
	case p.match(token.Identifier):
		return &ast.VariableExpression{Name: p.previous()}
	case p.match(token.LeftParen):
		tok := p.previous()
		expr := p.parseExpression()
		p.expect(token.RightParen, "Expect ')' after expression.")
		return &ast.GroupingExpression{Token: tok, Expression: expr}
	}
	panic(p.error(p.peek(), "Expect expression."))
}

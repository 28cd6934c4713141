package ast

import "github.com/example/loxgo/token"

// Node is the interface all AST nodes implement.
type Node interface {
	TokenLiteral() string
	nodeType() string
}

type Statement interface {
	Node
	statementNode()
}

type Expression interface {
	Node
	expressionNode()
}

// Program is the root node of every AST.
type Program struct {
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}
func (p *Program) nodeType() string { return "Program" }

// ---------- Statements ----------

type ExpressionStatement struct {
	Token      token.Token
	Expression Expression
}

type PrintStatement struct {
	Token      token.Token
	Expression Expression
}

type VarDeclaration struct {
	Token       token.Token // var
	Name        token.Token
	Initializer Expression // may be nil
}

type BlockStatement struct {
	Token      token.Token
	Statements []Statement
}

type IfStatement struct {
	Token       token.Token
	Condition   Expression
	Consequence Statement
	Alternative Statement // may be nil
}

type WhileStatement struct {
	Token     token.Token
	Condition Expression
	Body      Statement
}

type BreakStatement struct {
	Token token.Token
}

// FunctionDeclaration is shared by reference with every function value
// created from it; it is also the shape of a class method.
type FunctionDeclaration struct {
	Name   token.Token
	Params []token.Token
	Body   []Statement
}

type ReturnStatement struct {
	Token token.Token
	Value Expression // may be nil
}

type ClassDeclaration struct {
	Token      token.Token
	Name       token.Token
	SuperClass *VariableExpression // may be nil
	Methods    []*FunctionDeclaration
}

// ---------- Expressions ----------

// Literal holds nil, bool, float64 or string.
type Literal struct {
	Token token.Token
	Value any
}

type GroupingExpression struct {
	Token      token.Token
	Expression Expression
}

type UnaryExpression struct {
	Operator token.Token
	Right    Expression
}

type BinaryExpression struct {
	Left     Expression
	Operator token.Token
	Right    Expression
}

// LogicalExpression is an and/or that short-circuits.
type LogicalExpression struct {
	Left     Expression
	Operator token.Token
	Right    Expression
}

type VariableExpression struct {
	Name token.Token
}

type AssignExpression struct {
	Name  token.Token
	Value Expression
}

type CallExpression struct {
	Callee    Expression
	Paren     token.Token // closing paren, for error location
	Arguments []Expression
}

type GetExpression struct {
	Object Expression
	Name   token.Token
}

type SetExpression struct {
	Object Expression
	Name   token.Token
	Value  Expression
}

type ThisExpression struct {
	Keyword token.Token
}

// ---------- Interface plumbing ----------

func (s *ExpressionStatement) statementNode() {}
func (s *PrintStatement) statementNode()      {}
func (s *VarDeclaration) statementNode()      {}
func (s *BlockStatement) statementNode()      {}
func (s *IfStatement) statementNode()         {}
func (s *WhileStatement) statementNode()      {}
func (s *BreakStatement) statementNode()      {}
func (s *FunctionDeclaration) statementNode() {}
func (s *ReturnStatement) statementNode()     {}
func (s *ClassDeclaration) statementNode()    {}

func (s *ExpressionStatement) TokenLiteral() string { return s.Token.Lexeme }
func (s *PrintStatement) TokenLiteral() string      { return s.Token.Lexeme }
func (s *VarDeclaration) TokenLiteral() string      { return s.Token.Lexeme }
func (s *BlockStatement) TokenLiteral() string      { return s.Token.Lexeme }
func (s *IfStatement) TokenLiteral() string         { return s.Token.Lexeme }
func (s *WhileStatement) TokenLiteral() string      { return s.Token.Lexeme }
func (s *BreakStatement) TokenLiteral() string      { return s.Token.Lexeme }
func (s *FunctionDeclaration) TokenLiteral() string { return s.Name.Lexeme }
func (s *ReturnStatement) TokenLiteral() string     { return s.Token.Lexeme }
func (s *ClassDeclaration) TokenLiteral() string    { return s.Token.Lexeme }

func (s *ExpressionStatement) nodeType() string { return "ExpressionStatement" }
func (s *PrintStatement) nodeType() string      { return "PrintStatement" }
func (s *VarDeclaration) nodeType() string      { return "VarDeclaration" }
func (s *BlockStatement) nodeType() string      { return "BlockStatement" }
func (s *IfStatement) nodeType() string         { return "IfStatement" }
func (s *WhileStatement) nodeType() string      { return "WhileStatement" }
func (s *BreakStatement) nodeType() string      { return "BreakStatement" }
func (s *FunctionDeclaration) nodeType() string { return "FunctionDeclaration" }
func (s *ReturnStatement) nodeType() string     { return "ReturnStatement" }
func (s *ClassDeclaration) nodeType() string    { return "ClassDeclaration" }

func (e *Literal) expressionNode()            {}
func (e *GroupingExpression) expressionNode() {}
func (e *UnaryExpression) expressionNode()    {}
func (e *BinaryExpression) expressionNode()   {}
func (e *LogicalExpression) expressionNode()  {}
func (e *VariableExpression) expressionNode() {}
func (e *AssignExpression) expressionNode()   {}
func (e *CallExpression) expressionNode()     {}
func (e *GetExpression) expressionNode()      {}
func (e *SetExpression) expressionNode()      {}
func (e *ThisExpression) expressionNode()     {}

func (e *Literal) TokenLiteral() string            { return e.Token.Lexeme }
func (e *GroupingExpression) TokenLiteral() string { return e.Token.Lexeme }
func (e *UnaryExpression) TokenLiteral() string    { return e.Operator.Lexeme }
func (e *BinaryExpression) TokenLiteral() string   { return e.Operator.Lexeme }
func (e *LogicalExpression) TokenLiteral() string  { return e.Operator.Lexeme }
func (e *VariableExpression) TokenLiteral() string { return e.Name.Lexeme }
func (e *AssignExpression) TokenLiteral() string   { return e.Name.Lexeme }
func (e *CallExpression) TokenLiteral() string     { return e.Paren.Lexeme }
func (e *GetExpression) TokenLiteral() string      { return e.Name.Lexeme }
func (e *SetExpression) TokenLiteral() string      { return e.Name.Lexeme }
func (e *ThisExpression) TokenLiteral() string     { return e.Keyword.Lexeme }

func (e *Literal) nodeType() string            { return "Literal" }
func (e *GroupingExpression) nodeType() string { return "GroupingExpression" }
func (e *UnaryExpression) nodeType() string    { return "UnaryExpression" }
func (e *BinaryExpression) nodeType() string   { return "BinaryExpression" }
func (e *LogicalExpression) nodeType() string  { return "LogicalExpression" }
func (e *VariableExpression) nodeType() string { return "VariableExpression" }
func (e *AssignExpression) nodeType() string   { return "AssignExpression" }
func (e *CallExpression) nodeType() string     { return "CallExpression" }
func (e *GetExpression) nodeType() string      { return "GetExpression" }
func (e *SetExpression) nodeType() string      { return "SetExpression" }
func (e *ThisExpression) nodeType() string     { return "ThisExpression" }

// NodeType returns the node's kind name, e.g. "BinaryExpression".
func NodeType(n Node) string {
	return n.nodeType()
}

package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Print renders a node as a parenthesized s-expression. It is a debugging
// aid: strings are quoted so they can be told apart from identifiers.
func Print(n Node) string {
	var b strings.Builder
	printNode(&b, n)
	return b.String()
}

// PrintProgram renders one s-expression per top-level statement.
func PrintProgram(p *Program) string {
	var b strings.Builder
	for _, stmt := range p.Statements {
		printNode(&b, stmt)
		b.WriteByte('\n')
	}
	return b.String()
}

func printNode(b *strings.Builder, n Node) {
	switch n := n.(type) {
	// statements
	case *ExpressionStatement:
		parenthesize(b, ";", n.Expression)
	case *PrintStatement:
		parenthesize(b, "print", n.Expression)
	case *VarDeclaration:
		if n.Initializer == nil {
			fmt.Fprintf(b, "(var %s)", n.Name.Lexeme)
			return
		}
		fmt.Fprintf(b, "(var %s ", n.Name.Lexeme)
		printNode(b, n.Initializer)
		b.WriteByte(')')
	case *BlockStatement:
		parenthesize(b, "block", statementNodes(n.Statements)...)
	case *IfStatement:
		if n.Alternative == nil {
			parenthesize(b, "if", n.Condition, n.Consequence)
			return
		}
		parenthesize(b, "if", n.Condition, n.Consequence, n.Alternative)
	case *WhileStatement:
		parenthesize(b, "while", n.Condition, n.Body)
	case *BreakStatement:
		b.WriteString("(break)")
	case *FunctionDeclaration:
		printFunction(b, "fn", n)
	case *ReturnStatement:
		if n.Value == nil {
			b.WriteString("(return)")
			return
		}
		parenthesize(b, "return", n.Value)
	case *ClassDeclaration:
		fmt.Fprintf(b, "(class %s", n.Name.Lexeme)
		if n.SuperClass != nil {
			fmt.Fprintf(b, " < %s", n.SuperClass.Name.Lexeme)
		}
		for _, m := range n.Methods {
			b.WriteByte(' ')
			printFunction(b, "method", m)
		}
		b.WriteByte(')')

	// expressions
	case *Literal:
		b.WriteString(literalString(n.Value))
	case *GroupingExpression:
		parenthesize(b, "group", n.Expression)
	case *UnaryExpression:
		parenthesize(b, n.Operator.Lexeme, n.Right)
	case *BinaryExpression:
		parenthesize(b, n.Operator.Lexeme, n.Left, n.Right)
	case *LogicalExpression:
		parenthesize(b, n.Operator.Lexeme, n.Left, n.Right)
	case *VariableExpression:
		b.WriteString(n.Name.Lexeme)
	case *AssignExpression:
		fmt.Fprintf(b, "(= %s ", n.Name.Lexeme)
		printNode(b, n.Value)
		b.WriteByte(')')
	case *CallExpression:
		nodes := append([]Node{n.Callee}, expressionNodes(n.Arguments)...)
		parenthesize(b, "call", nodes...)
	case *GetExpression:
		b.WriteString("(. ")
		printNode(b, n.Object)
		fmt.Fprintf(b, " %s)", n.Name.Lexeme)
	case *SetExpression:
		b.WriteString("(= (. ")
		printNode(b, n.Object)
		fmt.Fprintf(b, " %s) ", n.Name.Lexeme)
		printNode(b, n.Value)
		b.WriteByte(')')
	case *ThisExpression:
		b.WriteString("this")
	default:
		fmt.Fprintf(b, "(unknown %T)", n)
	}
}

func printFunction(b *strings.Builder, kind string, fn *FunctionDeclaration) {
	params := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = p.Lexeme
	}
	fmt.Fprintf(b, "(%s %s (%s)", kind, fn.Name.Lexeme, strings.Join(params, " "))
	for _, stmt := range fn.Body {
		b.WriteByte(' ')
		printNode(b, stmt)
	}
	b.WriteByte(')')
}

func parenthesize(b *strings.Builder, name string, nodes ...Node) {
	b.WriteByte('(')
	b.WriteString(name)
	for _, n := range nodes {
		b.WriteByte(' ')
		printNode(b, n)
	}
	b.WriteByte(')')
}

func statementNodes(stmts []Statement) []Node {
	nodes := make([]Node, len(stmts))
	for i, s := range stmts {
		nodes[i] = s
	}
	return nodes
}

func expressionNodes(exprs []Expression) []Node {
	nodes := make([]Node, len(exprs))
	for i, e := range exprs {
		nodes[i] = e
	}
	return nodes
}

func literalString(v any) string {
	switch v := v.(type) {
	case nil:
		return "null"
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		return strconv.Quote(v)
	default:
		return fmt.Sprint(v)
	}
}

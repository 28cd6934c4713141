package interpreter

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/example/loxgo/ast"
	"github.com/example/loxgo/builtins"
	"github.com/example/loxgo/diag"
	"github.com/example/loxgo/lexer"
	"github.com/example/loxgo/parser"
	"github.com/example/loxgo/runtime"
	"github.com/example/loxgo/token"
)

// ErrStraySignal is returned when a break or return escapes the construct
// that should have caught it. It is an interpreter fault, not a language
// runtime error, and is never reported through the diagnostics sink.
var ErrStraySignal = errors.New("control signal escaped its construct")

// Signal types for control flow
type signalType int

const (
	sigNone signalType = iota
	sigReturn
	sigBreak
)

type signal struct {
	typ     signalType
	value   *runtime.Value
	keyword token.Token // the break or return that raised it
}

func (s signal) stray() error {
	switch s.typ {
	case sigBreak:
		return fmt.Errorf("%w: 'break' outside of a loop at line %d", ErrStraySignal, s.keyword.Line)
	case sigReturn:
		return fmt.Errorf("%w: 'return' outside of a function at line %d", ErrStraySignal, s.keyword.Line)
	}
	return nil
}

// Interpreter evaluates an AST using tree-walking. One Interpreter owns one
// global environment, so successive Run calls share state.
type Interpreter struct {
	global   *runtime.Environment
	out      io.Writer
	reporter *diag.Reporter
}

type Option func(*Interpreter)

// WithOutput sets where print writes. The default is os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(interp *Interpreter) { interp.out = w }
}

// WithReporter sets the diagnostics sink. The default writes to os.Stderr.
func WithReporter(r *diag.Reporter) Option {
	return func(interp *Interpreter) { interp.reporter = r }
}

func New(opts ...Option) *Interpreter {
	interp := &Interpreter{
		global:   runtime.NewEnvironment(nil),
		out:      os.Stdout,
		reporter: diag.NewReporter(os.Stderr),
	}
	for _, opt := range opts {
		opt(interp)
	}
	builtins.RegisterAll(interp.global)
	return interp
}

// Globals returns the interpreter's global environment.
func (interp *Interpreter) Globals() *runtime.Environment {
	return interp.global
}

// Reporter returns the sink diagnostics are sent to.
func (interp *Interpreter) Reporter() *diag.Reporter {
	return interp.reporter
}

// Run scans, parses and interprets source. Static errors stop the run before
// anything executes; the returned error then matches lexer.ErrScan and/or
// parser.ErrSyntax.
func (interp *Interpreter) Run(source string) error {
	tokens, scanErr := lexer.Tokenize(source, interp.reporter)
	stmts, parseErr := parser.New(tokens, interp.reporter).Parse()
	if scanErr != nil || parseErr != nil {
		return errors.Join(scanErr, parseErr)
	}
	return interp.Interpret(stmts)
}

// Interpret executes statements in order in the global environment. The
// first runtime error aborts the rest; it is reported once and returned.
func (interp *Interpreter) Interpret(stmts []ast.Statement) error {
	for _, stmt := range stmts {
		sig, err := interp.execStatement(stmt, interp.global)
		if err != nil {
			var rtErr *runtime.Error
			if errors.As(err, &rtErr) {
				interp.reporter.RuntimeError(rtErr.Line(), rtErr.Message)
			}
			return err
		}
		if sig.typ != sigNone {
			return sig.stray()
		}
	}
	return nil
}

// Evaluate evaluates a single expression in the global environment.
func (interp *Interpreter) Evaluate(expr ast.Expression) (*runtime.Value, error) {
	return interp.evalExpression(expr, interp.global)
}

// ExecuteFunctionBody runs a call's body in env, which already holds the
// parameters. It implements runtime.Executor.
func (interp *Interpreter) ExecuteFunctionBody(body []ast.Statement, env *runtime.Environment) (*runtime.Value, error) {
	sig, err := interp.execStatements(body, env)
	if err != nil {
		return nil, err
	}
	switch sig.typ {
	case sigReturn:
		return sig.value, nil
	case sigBreak:
		return nil, sig.stray()
	}
	return nil, nil
}

// ---------- Statements ----------

func (interp *Interpreter) execStatement(stmt ast.Statement, env *runtime.Environment) (signal, error) {
	switch s := stmt.(type) {
	case *ast.ExpressionStatement:
		_, err := interp.evalExpression(s.Expression, env)
		return signal{}, err
	case *ast.PrintStatement:
		return interp.execPrint(s, env)
	case *ast.VarDeclaration:
		return interp.execVarDecl(s, env)
	case *ast.BlockStatement:
		return interp.execStatements(s.Statements, runtime.NewEnvironment(env))
	case *ast.IfStatement:
		return interp.execIf(s, env)
	case *ast.WhileStatement:
		return interp.execWhile(s, env)
	case *ast.BreakStatement:
		return signal{typ: sigBreak, keyword: s.Token}, nil
	case *ast.ReturnStatement:
		return interp.execReturn(s, env)
	case *ast.FunctionDeclaration:
		fn := runtime.NewFunction(s, env, false)
		env.Define(s.Name.Lexeme, runtime.NewCallable(fn))
		return signal{}, nil
	case *ast.ClassDeclaration:
		return interp.execClassDecl(s, env)
	default:
		return signal{}, fmt.Errorf("unsupported statement: %T", stmt)
	}
}

// execStatements runs stmts in env and stops at the first signal or error.
func (interp *Interpreter) execStatements(stmts []ast.Statement, env *runtime.Environment) (signal, error) {
	for _, stmt := range stmts {
		sig, err := interp.execStatement(stmt, env)
		if err != nil || sig.typ != sigNone {
			return sig, err
		}
	}
	return signal{}, nil
}

func (interp *Interpreter) execPrint(s *ast.PrintStatement, env *runtime.Environment) (signal, error) {
	val, err := interp.evalExpression(s.Expression, env)
	if err != nil {
		return signal{}, err
	}
	fmt.Fprintln(interp.out, val.String())
	return signal{}, nil
}

func (interp *Interpreter) execVarDecl(s *ast.VarDeclaration, env *runtime.Environment) (signal, error) {
	val := runtime.Null
	if s.Initializer != nil {
		v, err := interp.evalExpression(s.Initializer, env)
		if err != nil {
			return signal{}, err
		}
		val = v
	}
	env.Define(s.Name.Lexeme, val)
	return signal{}, nil
}

func (interp *Interpreter) execIf(s *ast.IfStatement, env *runtime.Environment) (signal, error) {
	cond, err := interp.evalExpression(s.Condition, env)
	if err != nil {
		return signal{}, err
	}
	if cond.Truthy() {
		return interp.execStatement(s.Consequence, env)
	}
	if s.Alternative != nil {
		return interp.execStatement(s.Alternative, env)
	}
	return signal{}, nil
}

func (interp *Interpreter) execWhile(s *ast.WhileStatement, env *runtime.Environment) (signal, error) {
	for {
		cond, err := interp.evalExpression(s.Condition, env)
		if err != nil {
			return signal{}, err
		}
		if !cond.Truthy() {
			return signal{}, nil
		}
		sig, err := interp.execStatement(s.Body, env)
		if err != nil {
			return signal{}, err
		}
		switch sig.typ {
		case sigBreak:
			return signal{}, nil
		case sigReturn:
			return sig, nil
		}
	}
}

func (interp *Interpreter) execReturn(s *ast.ReturnStatement, env *runtime.Environment) (signal, error) {
	val := runtime.Null
	if s.Value != nil {
		v, err := interp.evalExpression(s.Value, env)
		if err != nil {
			return signal{}, err
		}
		val = v
	}
	return signal{typ: sigReturn, value: val, keyword: s.Token}, nil
}

func (interp *Interpreter) execClassDecl(s *ast.ClassDeclaration, env *runtime.Environment) (signal, error) {
	var superclass *runtime.Class
	if s.SuperClass != nil {
		val, err := interp.evalExpression(s.SuperClass, env)
		if err != nil {
			return signal{}, err
		}
		class, ok := asClass(val)
		if !ok {
			return signal{}, runtime.NewError(s.SuperClass.Name, runtime.ErrSuperclass, "Superclass must be a class.")
		}
		superclass = class
	}

	// Defining the name first lets methods refer to their own class.
	env.Define(s.Name.Lexeme, runtime.Null)

	methods := make(map[string]*runtime.Function, len(s.Methods))
	for _, m := range s.Methods {
		methods[m.Name.Lexeme] = runtime.NewFunction(m, env, m.Name.Lexeme == "init")
	}
	class := runtime.NewClass(s.Name.Lexeme, superclass, methods)
	if err := env.Assign(s.Name, runtime.NewCallable(class)); err != nil {
		return signal{}, err
	}
	return signal{}, nil
}

func asClass(v *runtime.Value) (*runtime.Class, bool) {
	if v.Type != runtime.TypeCallable {
		return nil, false
	}
	class, ok := v.Callable.(*runtime.Class)
	return class, ok
}

// ---------- Expressions ----------

func (interp *Interpreter) evalExpression(expr ast.Expression, env *runtime.Environment) (*runtime.Value, error) {
	switch e := expr.(type) {
	case *ast.Literal:
		return runtime.FromLiteral(e.Value), nil
	case *ast.GroupingExpression:
		return interp.evalExpression(e.Expression, env)
	case *ast.UnaryExpression:
		return interp.evalUnary(e, env)
	case *ast.BinaryExpression:
		return interp.evalBinary(e, env)
	case *ast.LogicalExpression:
		return interp.evalLogical(e, env)
	case *ast.VariableExpression:
		return env.Get(e.Name)
	case *ast.AssignExpression:
		val, err := interp.evalExpression(e.Value, env)
		if err != nil {
			return nil, err
		}
		if err := env.Assign(e.Name, val); err != nil {
			return nil, err
		}
		return val, nil
	case *ast.CallExpression:
		return interp.evalCall(e, env)
	case *ast.GetExpression:
		return interp.evalGet(e, env)
	case *ast.SetExpression:
		return interp.evalSet(e, env)
	case *ast.ThisExpression:
		return env.Get(e.Keyword)
	default:
		return nil, fmt.Errorf("unsupported expression: %T", expr)
	}
}

func (interp *Interpreter) evalUnary(e *ast.UnaryExpression, env *runtime.Environment) (*runtime.Value, error) {
	right, err := interp.evalExpression(e.Right, env)
	if err != nil {
		return nil, err
	}
	switch e.Operator.Type {
	case token.Bang:
		return runtime.NewBool(!right.Truthy()), nil
	case token.Minus:
		if right.Type != runtime.TypeNumber {
			return nil, runtime.NewError(e.Operator, runtime.ErrOperandType, "Operand must be a number.")
		}
		return runtime.NewNumber(-right.Number), nil
	}
	return nil, fmt.Errorf("unsupported unary operator %s", e.Operator.Lexeme)
}

func (interp *Interpreter) evalBinary(e *ast.BinaryExpression, env *runtime.Environment) (*runtime.Value, error) {
	left, err := interp.evalExpression(e.Left, env)
	if err != nil {
		return nil, err
	}
	right, err := interp.evalExpression(e.Right, env)
	if err != nil {
		return nil, err
	}

	op := e.Operator
	switch op.Type {
	case token.EqualEqual:
		return runtime.NewBool(runtime.Equals(left, right)), nil
	case token.BangEqual:
		return runtime.NewBool(!runtime.Equals(left, right)), nil
	case token.Plus:
		if left.Type == runtime.TypeNumber && right.Type == runtime.TypeNumber {
			return runtime.NewNumber(left.Number + right.Number), nil
		}
		if left.Type == runtime.TypeString && right.Type == runtime.TypeString {
			return runtime.NewString(left.Str + right.Str), nil
		}
		return nil, runtime.NewError(op, runtime.ErrOperandType, "Operands must be two numbers or two strings.")
	}

	if left.Type != runtime.TypeNumber || right.Type != runtime.TypeNumber {
		return nil, runtime.NewError(op, runtime.ErrOperandType, "Operands must be numbers.")
	}
	l, r := left.Number, right.Number
	switch op.Type {
	case token.Minus:
		return runtime.NewNumber(l - r), nil
	case token.Star:
		return runtime.NewNumber(l * r), nil
	case token.Slash:
		if r == 0 {
			return nil, runtime.NewError(op, runtime.ErrDivisionByZero, "Division by zero.")
		}
		return runtime.NewNumber(l / r), nil
	case token.Greater:
		return runtime.NewBool(l > r), nil
	case token.GreaterEqual:
		return runtime.NewBool(l >= r), nil
	case token.Less:
		return runtime.NewBool(l < r), nil
	case token.LessEqual:
		return runtime.NewBool(l <= r), nil
	}
	return nil, fmt.Errorf("unsupported binary operator %s", op.Lexeme)
}

// evalLogical short-circuits and yields the deciding operand itself.
func (interp *Interpreter) evalLogical(e *ast.LogicalExpression, env *runtime.Environment) (*runtime.Value, error) {
	left, err := interp.evalExpression(e.Left, env)
	if err != nil {
		return nil, err
	}
	if e.Operator.Type == token.Or {
		if left.Truthy() {
			return left, nil
		}
	} else if !left.Truthy() {
		return left, nil
	}
	return interp.evalExpression(e.Right, env)
}

func (interp *Interpreter) evalCall(e *ast.CallExpression, env *runtime.Environment) (*runtime.Value, error) {
	callee, err := interp.evalExpression(e.Callee, env)
	if err != nil {
		return nil, err
	}

	args := make([]*runtime.Value, 0, len(e.Arguments))
	for _, argExpr := range e.Arguments {
		arg, err := interp.evalExpression(argExpr, env)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}

	if callee.Type != runtime.TypeCallable {
		return nil, runtime.NewError(e.Paren, runtime.ErrNotCallable, "Can only call functions and classes.")
	}
	fn := callee.Callable
	if len(args) != fn.Arity() {
		return nil, runtime.NewError(e.Paren, runtime.ErrArity, "Expected %d arguments but got %d.", fn.Arity(), len(args))
	}

	result, err := fn.Call(interp, args)
	if err != nil {
		return nil, err
	}
	if result == nil {
		result = runtime.Null
	}
	return result, nil
}

func (interp *Interpreter) evalGet(e *ast.GetExpression, env *runtime.Environment) (*runtime.Value, error) {
	obj, err := interp.evalExpression(e.Object, env)
	if err != nil {
		return nil, err
	}
	if obj.Type != runtime.TypeInstance {
		return nil, runtime.NewError(e.Name, runtime.ErrNotInstance, "Only instances have properties.")
	}
	return obj.Instance.Get(e.Name)
}

func (interp *Interpreter) evalSet(e *ast.SetExpression, env *runtime.Environment) (*runtime.Value, error) {
	obj, err := interp.evalExpression(e.Object, env)
	if err != nil {
		return nil, err
	}
	if obj.Type != runtime.TypeInstance {
		return nil, runtime.NewError(e.Name, runtime.ErrNotInstance, "Only instances have fields.")
	}
	val, err := interp.evalExpression(e.Value, env)
	if err != nil {
		return nil, err
	}
	obj.Instance.Set(e.Name, val)
	return val, nil
}

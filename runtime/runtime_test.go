package runtime

import (
	"errors"
	"math"
	"testing"

	"github.com/example/loxgo/ast"
	"github.com/example/loxgo/token"
)

func ident(name string) token.Token {
	return token.Token{Type: token.Identifier, Lexeme: name, Line: 1}
}

// ---------- Values ----------

func TestTruthy(t *testing.T) {
	tests := []struct {
		v    *Value
		want bool
	}{
		{Null, false},
		{False, false},
		{True, true},
		{NewNumber(0), true},
		{NewString(""), true},
		{NewInstanceValue(NewInstance(NewClass("A", nil, nil))), true},
	}
	for _, tt := range tests {
		if got := tt.v.Truthy(); got != tt.want {
			t.Errorf("Truthy(%s) = %v, want %v", tt.v, got, tt.want)
		}
	}
}

func TestDisplay(t *testing.T) {
	class := NewClass("Point", nil, nil)
	fn := NewFunction(&ast.FunctionDeclaration{Name: ident("add")}, nil, false)
	tenth, fifth := 0.1, 0.2
	tests := []struct {
		v    *Value
		want string
	}{
		{Null, "null"},
		{True, "true"},
		{False, "false"},
		{NewNumber(3), "3"},
		{NewNumber(-2), "-2"},
		{NewNumber(2.5), "2.5"},
		{NewNumber(tenth + fifth), "0.30000000000000004"},
		{NewNumber(math.Copysign(0, -1)), "0"},
		{NewNumber(1e21), "1000000000000000000000"},
		{NewNumber(math.Inf(1)), "inf"},
		{NewString("hi there"), "hi there"},
		{NewCallable(fn), "<fn add>"},
		{NewCallable(class), "Point"},
		{NewInstanceValue(NewInstance(class)), "Point instance"},
		{NewCallable(&NativeFunction{Name: "clock"}), "<native fn clock>"},
	}
	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestEquals(t *testing.T) {
	class := NewClass("A", nil, nil)
	inst := NewInstance(class)
	tests := []struct {
		a, b *Value
		want bool
	}{
		{Null, Null, true},
		{Null, False, false},
		{NewNumber(1), NewNumber(1), true},
		{NewNumber(1), NewString("1"), false},
		{NewString("a"), NewString("a"), true},
		{True, NewBool(true), true},
		{NewNumber(0), False, false},
		{NewCallable(class), NewCallable(class), true},
		{NewCallable(class), NewCallable(NewClass("A", nil, nil)), false},
		{NewInstanceValue(inst), NewInstanceValue(inst), true},
		{NewInstanceValue(inst), NewInstanceValue(NewInstance(class)), false},
	}
	for i, tt := range tests {
		if got := Equals(tt.a, tt.b); got != tt.want {
			t.Errorf("test[%d]: Equals(%s, %s) = %v, want %v", i, tt.a, tt.b, got, tt.want)
		}
	}
}

func TestFromLiteral(t *testing.T) {
	if FromLiteral(nil) != Null || FromLiteral(true) != True {
		t.Fatal("expected shared singletons")
	}
	if v := FromLiteral(4.0); v.Type != TypeNumber || v.Number != 4 {
		t.Fatalf("unexpected %v", v)
	}
	if v := FromLiteral("s"); v.Type != TypeString || v.Str != "s" {
		t.Fatalf("unexpected %v", v)
	}
}

// ---------- Environment ----------

func TestEnvironmentChain(t *testing.T) {
	global := NewEnvironment(nil)
	global.Define("x", NewNumber(1))
	inner := NewEnvironment(global)
	inner.Define("y", NewNumber(2))

	v, err := inner.Get(ident("x"))
	if err != nil || v.Number != 1 {
		t.Fatalf("expected x=1 through chain, got %v (%v)", v, err)
	}
	if err := inner.Assign(ident("x"), NewNumber(5)); err != nil {
		t.Fatal(err)
	}
	if v, _ := global.Get(ident("x")); v.Number != 5 {
		t.Fatalf("assignment should land in the declaring scope, got %v", v)
	}
	if _, ok := global.Local("y"); ok {
		t.Fatal("inner binding leaked outward")
	}
	if inner.Enclosing() != global {
		t.Fatal("unexpected enclosing environment")
	}
}

func TestEnvironmentShadowing(t *testing.T) {
	global := NewEnvironment(nil)
	global.Define("x", NewNumber(1))
	inner := NewEnvironment(global)
	inner.Define("x", NewNumber(2))
	if v, _ := inner.Get(ident("x")); v.Number != 2 {
		t.Fatalf("expected shadowed value 2, got %v", v)
	}
	if v, _ := global.Get(ident("x")); v.Number != 1 {
		t.Fatalf("expected outer value 1, got %v", v)
	}
}

func TestEnvironmentUndefined(t *testing.T) {
	env := NewEnvironment(nil)
	_, err := env.Get(ident("nope"))
	if !errors.Is(err, ErrUndefinedVariable) {
		t.Fatalf("expected ErrUndefinedVariable, got %v", err)
	}
	if err.Error() != "Undefined variable 'nope'." {
		t.Errorf("unexpected message %q", err)
	}
	if err := env.Assign(ident("nope"), Null); !errors.Is(err, ErrUndefinedVariable) {
		t.Fatalf("expected ErrUndefinedVariable on assign, got %v", err)
	}
}

// ---------- Errors ----------

func TestDivisionByZeroRefinesOperandType(t *testing.T) {
	err := NewError(token.Token{Lexeme: "/", Line: 3}, ErrDivisionByZero, "Division by zero.")
	if !errors.Is(err, ErrDivisionByZero) || !errors.Is(err, ErrOperandType) {
		t.Fatal("division by zero should match both kinds")
	}
	if errors.Is(err, ErrArity) {
		t.Fatal("unexpected kind match")
	}
	if err.Line() != 3 {
		t.Errorf("expected line 3, got %d", err.Line())
	}
}

// ---------- Callables ----------

// bodyRunner stands in for the interpreter: it returns the value bound to
// "ret" in the call environment, if any.
type bodyRunner struct {
	envs []*Environment
}

func (r *bodyRunner) ExecuteFunctionBody(body []ast.Statement, env *Environment) (*Value, error) {
	r.envs = append(r.envs, env)
	if v, ok := env.Lookup("ret"); ok {
		return v, nil
	}
	return nil, nil
}

func TestFunctionCallBindsParameters(t *testing.T) {
	closure := NewEnvironment(nil)
	decl := &ast.FunctionDeclaration{Name: ident("f"), Params: []token.Token{ident("a"), ident("b")}}
	fn := NewFunction(decl, closure, false)
	if fn.Arity() != 2 {
		t.Fatalf("expected arity 2, got %d", fn.Arity())
	}

	runner := &bodyRunner{}
	result, err := fn.Call(runner, []*Value{NewNumber(1), NewString("x")})
	if err != nil {
		t.Fatal(err)
	}
	if result != Null {
		t.Fatalf("expected null without return, got %v", result)
	}
	env := runner.envs[0]
	if env.Enclosing() != closure {
		t.Fatal("call environment must chain to the closure")
	}
	if a, _ := env.Local("a"); a.Number != 1 {
		t.Errorf("expected a=1, got %v", a)
	}
	if b, _ := env.Local("b"); b.Str != "x" {
		t.Errorf("expected b=x, got %v", b)
	}
}

func TestBindDoesNotMutateClass(t *testing.T) {
	decl := &ast.FunctionDeclaration{Name: ident("m")}
	method := NewFunction(decl, NewEnvironment(nil), false)
	class := NewClass("A", nil, map[string]*Function{"m": method})

	a, b := NewInstance(class), NewInstance(class)
	boundA := method.Bind(a)
	boundB := method.Bind(b)

	if boundA.Declaration != decl || boundB.Declaration != decl {
		t.Fatal("bound methods must share the declaration")
	}
	thisA, _ := boundA.Closure.Local("this")
	thisB, _ := boundB.Closure.Local("this")
	if thisA.Instance != a || thisB.Instance != b {
		t.Fatal("each bound method must see its own instance")
	}
	if class.Methods["m"] != method {
		t.Fatal("method table was modified")
	}
	if _, ok := method.Closure.Local("this"); ok {
		t.Fatal("unbound method closure gained a this binding")
	}
}

func TestInitializerReturnsInstance(t *testing.T) {
	decl := &ast.FunctionDeclaration{Name: ident("init"), Params: []token.Token{ident("ret")}}
	init := NewFunction(decl, NewEnvironment(nil), true)
	class := NewClass("A", nil, map[string]*Function{"init": init})
	if class.Arity() != 1 {
		t.Fatalf("class arity should mirror init, got %d", class.Arity())
	}

	v, err := class.Call(&bodyRunner{}, []*Value{NewNumber(99)})
	if err != nil {
		t.Fatal(err)
	}
	if v.Type != TypeInstance || v.Instance.Class != class {
		t.Fatalf("expected an A instance, got %v", v)
	}

	// Calling the bound initializer directly still yields the instance.
	again, err := init.Bind(v.Instance).Call(&bodyRunner{}, []*Value{NewNumber(1)})
	if err != nil {
		t.Fatal(err)
	}
	if again.Instance != v.Instance {
		t.Fatalf("initializer should return this, got %v", again)
	}
}

func TestMethodResolution(t *testing.T) {
	mk := func(name string) *Function {
		return NewFunction(&ast.FunctionDeclaration{Name: ident(name)}, NewEnvironment(nil), false)
	}
	base := NewClass("Base", nil, map[string]*Function{"greet": mk("greet"), "only": mk("only")})
	derived := NewClass("Derived", base, map[string]*Function{"greet": mk("greet")})

	if derived.FindMethod("greet") != derived.Methods["greet"] {
		t.Error("override should win")
	}
	if derived.FindMethod("only") != base.Methods["only"] {
		t.Error("inherited method not found")
	}
	if derived.FindMethod("missing") != nil {
		t.Error("unexpected method")
	}
	if derived.Arity() != 0 {
		t.Error("class without init has arity 0")
	}

	inst := NewInstance(derived)
	inst.Set(ident("greet"), NewNumber(7))
	v, err := inst.Get(ident("greet"))
	if err != nil || v.Number != 7 {
		t.Fatalf("fields shadow methods, got %v (%v)", v, err)
	}
	v, err = inst.Get(ident("only"))
	if err != nil || v.Type != TypeCallable {
		t.Fatalf("expected bound method, got %v (%v)", v, err)
	}
	if _, err := inst.Get(ident("missing")); !errors.Is(err, ErrUndefinedProperty) {
		t.Fatalf("expected ErrUndefinedProperty, got %v", err)
	}
}

func TestNativeFunction(t *testing.T) {
	called := false
	native := &NativeFunction{Name: "n", ArityN: 0, Fn: func(args []*Value) (*Value, error) {
		called = true
		return NewNumber(42), nil
	}}
	v, err := native.Call(nil, nil)
	if err != nil || !called || v.Number != 42 {
		t.Fatalf("unexpected native result %v (%v)", v, err)
	}
	if native.Arity() != 0 {
		t.Fatal("unexpected arity")
	}
}

package runtime

import (
	"fmt"

	"github.com/example/loxgo/ast"
	"github.com/example/loxgo/token"
)

// Executor runs a function body in a prepared environment. The interpreter
// implements it; keeping it an interface lets runtime avoid importing the
// evaluator. A nil result means the body finished without a return value.
type Executor interface {
	ExecuteFunctionBody(body []ast.Statement, env *Environment) (*Value, error)
}

// Callable is implemented by every value that can appear before ( args ).
// Callers check Arity before Call.
type Callable interface {
	Arity() int
	Call(exec Executor, args []*Value) (*Value, error)
	String() string
}

// NativeFunc is the Go implementation of a builtin.
type NativeFunc func(args []*Value) (*Value, error)

type NativeFunction struct {
	Name   string
	ArityN int
	Fn     NativeFunc
}

func (n *NativeFunction) Arity() int { return n.ArityN }

func (n *NativeFunction) Call(_ Executor, args []*Value) (*Value, error) {
	return n.Fn(args)
}

func (n *NativeFunction) String() string { return "<native fn " + n.Name + ">" }

// Function is a user-defined function or method. Declaration is shared with
// the AST; Closure is the environment captured at declaration time.
type Function struct {
	Declaration   *ast.FunctionDeclaration
	Closure       *Environment
	IsInitializer bool
}

func NewFunction(decl *ast.FunctionDeclaration, closure *Environment, isInitializer bool) *Function {
	return &Function{Declaration: decl, Closure: closure, IsInitializer: isInitializer}
}

func (f *Function) Arity() int { return len(f.Declaration.Params) }

func (f *Function) Call(exec Executor, args []*Value) (*Value, error) {
	env := NewEnvironment(f.Closure)
	for i, param := range f.Declaration.Params {
		env.Define(param.Lexeme, args[i])
	}

	result, err := exec.ExecuteFunctionBody(f.Declaration.Body, env)
	if err != nil {
		return nil, err
	}
	if f.IsInitializer {
		if this, ok := f.Closure.Local("this"); ok {
			return this, nil
		}
	}
	if result == nil {
		return Null, nil
	}
	return result, nil
}

// Bind returns a copy of f whose closure defines this as instance. The
// class's method table is left untouched.
func (f *Function) Bind(instance *Instance) *Function {
	env := NewEnvironment(f.Closure)
	env.Define("this", NewInstanceValue(instance))
	return &Function{Declaration: f.Declaration, Closure: env, IsInitializer: f.IsInitializer}
}

func (f *Function) String() string { return "<fn " + f.Declaration.Name.Lexeme + ">" }

type Class struct {
	Name       string
	Superclass *Class // may be nil
	Methods    map[string]*Function
}

func NewClass(name string, superclass *Class, methods map[string]*Function) *Class {
	if methods == nil {
		methods = make(map[string]*Function)
	}
	return &Class{Name: name, Superclass: superclass, Methods: methods}
}

// FindMethod looks in the class and then up the superclass chain.
func (c *Class) FindMethod(name string) *Function {
	for class := c; class != nil; class = class.Superclass {
		if m, ok := class.Methods[name]; ok {
			return m
		}
	}
	return nil
}

func (c *Class) Arity() int {
	if init := c.FindMethod("init"); init != nil {
		return init.Arity()
	}
	return 0
}

// Call allocates an instance and runs init on it, if the class has one.
func (c *Class) Call(exec Executor, args []*Value) (*Value, error) {
	instance := NewInstance(c)
	if init := c.FindMethod("init"); init != nil {
		if _, err := init.Bind(instance).Call(exec, args); err != nil {
			return nil, err
		}
	}
	return NewInstanceValue(instance), nil
}

func (c *Class) String() string { return c.Name }

type Instance struct {
	Class  *Class
	Fields map[string]*Value
}

func NewInstance(class *Class) *Instance {
	return &Instance{Class: class, Fields: make(map[string]*Value)}
}

// Get reads a field, or else a method bound to this instance.
func (i *Instance) Get(name token.Token) (*Value, error) {
	if v, ok := i.Fields[name.Lexeme]; ok {
		return v, nil
	}
	if m := i.Class.FindMethod(name.Lexeme); m != nil {
		return NewCallable(m.Bind(i)), nil
	}
	return nil, NewError(name, ErrUndefinedProperty, "Undefined property '%s'.", name.Lexeme)
}

func (i *Instance) Set(name token.Token, value *Value) {
	i.Fields[name.Lexeme] = value
}

func (i *Instance) String() string { return fmt.Sprintf("%s instance", i.Class.Name) }

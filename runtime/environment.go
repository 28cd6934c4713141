package runtime

import "github.com/example/loxgo/token"

// Environment is one lexical scope. Scopes are shared by pointer: every
// closure created inside a scope sees later writes to it.
type Environment struct {
	values    map[string]*Value
	enclosing *Environment
}

func NewEnvironment(enclosing *Environment) *Environment {
	return &Environment{
		values:    make(map[string]*Value),
		enclosing: enclosing,
	}
}

// Define binds name in this scope, replacing any previous binding here.
func (e *Environment) Define(name string, value *Value) {
	e.values[name] = value
}

// Get retrieves a variable value, walking up the scope chain.
func (e *Environment) Get(name token.Token) (*Value, error) {
	if v, ok := e.Lookup(name.Lexeme); ok {
		return v, nil
	}
	return nil, NewError(name, ErrUndefinedVariable, "Undefined variable '%s'.", name.Lexeme)
}

// Assign updates a variable in the scope where it was declared.
func (e *Environment) Assign(name token.Token, value *Value) error {
	for env := e; env != nil; env = env.enclosing {
		if _, ok := env.values[name.Lexeme]; ok {
			env.values[name.Lexeme] = value
			return nil
		}
	}
	return NewError(name, ErrUndefinedVariable, "Undefined variable '%s'.", name.Lexeme)
}

// Lookup walks the chain without producing an error.
func (e *Environment) Lookup(name string) (*Value, bool) {
	for env := e; env != nil; env = env.enclosing {
		if v, ok := env.values[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Local reads a binding from this scope only.
func (e *Environment) Local(name string) (*Value, bool) {
	v, ok := e.values[name]
	return v, ok
}

// Enclosing returns the parent environment.
func (e *Environment) Enclosing() *Environment {
	return e.enclosing
}

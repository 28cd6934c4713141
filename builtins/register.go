package builtins

import (
	"github.com/example/loxgo/runtime"
)

// RegisterAll defines every native function in env, normally the global scope.
func RegisterAll(env *runtime.Environment) {
	for _, fn := range natives() {
		env.Define(fn.Name, runtime.NewCallable(fn))
	}
}

func natives() []*runtime.NativeFunction {
	return []*runtime.NativeFunction{
		newNative("clock", 0, clock),
	}
}

func newNative(name string, arity int, fn runtime.NativeFunc) *runtime.NativeFunction {
	return &runtime.NativeFunction{Name: name, ArityN: arity, Fn: fn}
}

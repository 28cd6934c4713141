package builtins

import (
	"time"

	"github.com/example/loxgo/runtime"
)

// start is read once; time.Since uses the monotonic clock reading.
var start = time.Now()

// clock returns the seconds elapsed since the process started.
func clock(args []*runtime.Value) (*runtime.Value, error) {
	return runtime.NewNumber(time.Since(start).Seconds()), nil
}

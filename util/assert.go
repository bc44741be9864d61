package util

import "fmt"

// Assert panics with msg if cond is false. For internal invariants only;
// data errors must be returned as error values.
func Assert(cond bool, msg ...interface{}) {
	if !cond {
		panic(fmt.Sprint(msg...))
	}
}

func Assertf(cond bool, format string, args ...interface{}) {
	if !cond {
		panic(fmt.Sprintf(format, args...))
	}
}

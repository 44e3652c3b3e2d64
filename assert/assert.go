package assert

import "github.com/dozersim/dozersim/oerror"

// IsTrue panics with an oerror.Error if ok is false.
func IsTrue(ok bool, message string, args ...interface{}) {
	if !ok {
		panic(oerror.New(message, args...))
	}
}

package assert

import (
	"testing"

	"github.com/dozersim/dozersim/oerror"
)

func TestIsTruePanicsWithError(t *testing.T) {
	defer func() {
		r := recover()
		err, ok := r.(*oerror.Error)
		if !ok {
			t.Fatalf("expected *oerror.Error panic, got %T", r)
		}
		if err.Error() != "dozersim: wheel count 3" {
			t.Fatalf("unexpected message %q", err.Error())
		}
	}()
	IsTrue(false, "wheel count %d", 3)
}

func TestIsTrueNoPanic(t *testing.T) {
	IsTrue(true, "never")
}

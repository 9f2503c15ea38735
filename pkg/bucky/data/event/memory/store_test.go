package memory

import (
	"testing"

	"github.com/code-payments/bucky-bank-server/pkg/bucky/data/event/tests"
)

func TestEventMemoryStore(t *testing.T) {
	testStore := New()
	teardown := func() {
		testStore.(*store).reset()
	}
	tests.RunTests(t, testStore, teardown)
}

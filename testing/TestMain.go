package testing

import (
	"os"
	"sync"
	stdtesting "testing"
)

var once sync.Once

// ensureTestMode keeps binaries started from tests away from files, Redis and
// Gotenberg.
func ensureTestMode() {
	once.Do(func() {
		_ = os.Setenv("FINDASH_TEST_MODE", "1")
		_ = os.Unsetenv("GOTENBERG_URL")
		if os.Getenv("DATA_PATH") == "" {
			_ = os.Setenv("DATA_PATH", os.DevNull)
		}
	})
}

func init() {
	ensureTestMode()
}

func TestMain(m *stdtesting.M) {
	ensureTestMode()
	os.Exit(m.Run())
}

// Package testing switches binaries into test mode when blank-imported by tests.
package testing

import (
	"os"
	"sync"
	stdtesting "testing"
)

var once sync.Once

func ensureTestMode() {
	once.Do(func() {
		_ = os.Setenv("PRODUCTMANAGE_TEST_MODE", "1")
		if os.Getenv("EXPORT_DIR") == "" {
			_ = os.Setenv("EXPORT_DIR", os.TempDir())
		}
	})
}

func init() {
	ensureTestMode()
}

// TestMain can be delegated to from package tests that need an explicit entry point.
func TestMain(m *stdtesting.M) {
	ensureTestMode()
	os.Exit(m.Run())
}

package app

import (
	"os"
	"strconv"
)

const testModeEnv = "PRODUCTMANAGE_TEST_MODE"

// InTestMode reports whether binaries run under go test and must skip runtime side effects.
func InTestMode() bool {
	enabled, _ := strconv.ParseBool(os.Getenv(testModeEnv))
	return enabled
}

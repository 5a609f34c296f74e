package app

import (
	"os"
	"sync/atomic"
)

const testModeEnv = "ODYSSEY_TEST_MODE"

// testMode caches the flag: 0 not read yet, 1 off, 2 on.
var testMode atomic.Int32

func readTestMode() int32 {
	if os.Getenv(testModeEnv) == "1" {
		return 2
	}
	return 1
}

// InTestMode reports whether binaries should skip connecting to Postgres,
// Redis and the queue.
func InTestMode() bool {
	v := testMode.Load()
	if v == 0 {
		v = readTestMode()
		testMode.CompareAndSwap(0, v)
	}
	return v == 2
}

// RefreshTestMode re-reads the flag after the environment changes.
func RefreshTestMode() {
	testMode.Store(readTestMode())
}

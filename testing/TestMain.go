// Package testing flips the binaries into test mode. Test packages that run
// cmd/crm or cmd/worker code blank-import it.
package testing

import "os"

// ModeEnv is the variable app.InTestMode reads.
const ModeEnv = "ODYSSEY_TEST_MODE"

func init() {
	if os.Getenv(ModeEnv) != "1" {
		_ = os.Setenv(ModeEnv, "1")
	}
}

package tutil

import (
	"os"
	"strings"
)

// IsIntegrationTest reports whether tests that reach live services should run.
func IsIntegrationTest() bool {
	testType := os.Getenv("SEQSYNC_TEST")
	return strings.ToLower(testType) == "integration"
}

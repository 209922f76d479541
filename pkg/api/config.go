package api

import (
	"os"
	"strconv"
	"sync"
)

// Environment tunables, read once per process:
//
//	MULE_STEP_RETRIES     non-negative retry count per step (default 1,
//	                      so 2 total attempts); invalid or negative
//	                      values fall back to the default.
//	MULE_STEP_CONCURRENCY positive cap on in-flight members per
//	                      parallel/branch batch; unset, invalid, or
//	                      zero means unlimited.
//
// Per-workflow overrides are available via WithRetries and
// WithConcurrency, which take precedence over the environment.
const (
	EnvStepRetries     = "MULE_STEP_RETRIES"
	EnvStepConcurrency = "MULE_STEP_CONCURRENCY"

	// DefaultStepRetries is the retry count used when the environment
	// does not provide a valid value.
	DefaultStepRetries = 1
)

var (
	envRetries = sync.OnceValue(func() int {
		return parseRetries(os.Getenv(EnvStepRetries))
	})
	envConcurrency = sync.OnceValue(func() int {
		return parseConcurrency(os.Getenv(EnvStepConcurrency))
	})
)

// StepRetries returns the process-wide retry count per step.
func StepRetries() int { return envRetries() }

// StepConcurrency returns the process-wide per-batch concurrency cap.
// Zero means unlimited.
func StepConcurrency() int { return envConcurrency() }

func parseRetries(raw string) int {
	if raw == "" {
		return DefaultStepRetries
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return DefaultStepRetries
	}
	return n
}

func parseConcurrency(raw string) int {
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0
	}
	return n
}

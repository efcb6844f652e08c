package state

import (
	"time"
)

// newLocalEnv creates a new LocalEnv instance with default values, the rest
// is filled by the command line processing.
func newLocalEnv() *LocalEnv {
	return &LocalEnv{
		start: time.Now(),
	}
}

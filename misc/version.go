// Package misc holds build time information.
package misc

import (
	"os"
	"path/filepath"
	"strings"
)

// Set by the linker:
// -X addcss/misc.version=... -X addcss/misc.gitHash=...
var (
	version = "dev"
	gitHash = "unknown"
)

const appName = "addcss"

// GetAppName returns program name. When binary has been renamed we still want
// to have our logs and report files to be recognizable, so name is fixed
// unless we are running as part of "go test".
func GetAppName() string {
	if exe, err := os.Executable(); err == nil && strings.HasSuffix(strings.TrimSuffix(filepath.Base(exe), ".exe"), ".test") {
		return appName + "-test"
	}
	return appName
}

func GetVersion() string {
	return version
}

func GetGitHash() string {
	return gitHash
}

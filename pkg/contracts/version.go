package contracts

import (
	"fmt"
	"runtime"
)

const (
	// Name identifies the binary in version output and health responses
	Name = "finvis"

	Version = "1.0.0"

	// APIVersion is the version of the JSON API under /api
	APIVersion = "v1"
)

// Set with -ldflags "-X finvis/pkg/contracts.GitCommit=..."
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// VersionInfo is served by GET /api/version
type VersionInfo struct {
	Name       string `json:"name"`
	Version    string `json:"version"`
	APIVersion string `json:"api_version"`
	BuildTime  string `json:"build_time"`
	GitCommit  string `json:"git_commit"`
	GoVersion  string `json:"go_version"`
	Platform   string `json:"platform"`
}

// GetVersionInfo returns the build information of the running binary
func GetVersionInfo() VersionInfo {
	return VersionInfo{
		Name:       Name,
		Version:    Version,
		APIVersion: APIVersion,
		BuildTime:  BuildTime,
		GitCommit:  GitCommit,
		GoVersion:  runtime.Version(),
		Platform:   runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// GetFullVersionString is printed by -version
func GetFullVersionString() string {
	info := GetVersionInfo()
	return fmt.Sprintf("%s v%s (built: %s, commit: %s, %s, %s)",
		info.Name, info.Version, info.BuildTime, info.GitCommit, info.GoVersion, info.Platform)
}

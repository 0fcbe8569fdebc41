package version

import (
	"fmt"
	"runtime"

	goversion "github.com/hashicorp/go-version"

	"github.com/satishbabariya/multilingual-go/schema"
)

var (
	// Version is the version of the CLI
	Version = "0.1.0"
	// BuildDate is the build date
	BuildDate = "unknown"
	// GitCommit is the git commit hash
	GitCommit = "unknown"
)

// Info holds version information
type Info struct {
	Version        string
	BuildDate      string
	GitCommit      string
	GoVersion      string
	Platform       string
	SchemaVersions string
}

// Get returns version information
func Get() Info {
	return Info{
		Version:        Version,
		BuildDate:      BuildDate,
		GitCommit:      GitCommit,
		GoVersion:      runtime.Version(),
		Platform:       fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
		SchemaVersions: schema.SupportedVersions,
	}
}

// String returns a formatted version string
func (i Info) String() string {
	return fmt.Sprintf("mlquery version %s (%s %s)", i.Version, i.Platform, i.GoVersion)
}

// FullString returns a detailed version string
func (i Info) FullString() string {
	return fmt.Sprintf(`mlquery version %s
Build Date: %s
Git Commit: %s
Platform: %s
Go Version: %s
Schema files: %s`, i.Version, i.BuildDate, i.GitCommit, i.Platform, i.GoVersion, i.SchemaVersions)
}

// Satisfies reports whether the CLI version meets a constraint such as ">= 0.1, < 1.0".
func (i Info) Satisfies(constraint string) (bool, error) {
	v, err := goversion.NewVersion(i.Version)
	if err != nil {
		return false, fmt.Errorf("invalid version format: %w", err)
	}
	c, err := goversion.NewConstraint(constraint)
	if err != nil {
		return false, fmt.Errorf("invalid constraint %q: %w", constraint, err)
	}
	return c.Check(v), nil
}

package runtime

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// LatestVersion is the documentation label that tracks the newest release
const LatestVersion = "latest"

// versionPattern finds major.minor.patch inside a dependency range such as ^15.1.8
var versionPattern = regexp.MustCompile(`(\d+)\.(\d+)\.(\d+)`)

// VersionInfo describes the framework version declared by a project
type VersionInfo struct {
	Version  string `json:"version"` // Declared range with operators removed
	Major    int    `json:"major"`
	Minor    int    `json:"minor"`
	Patch    int    `json:"patch"`
	IsCanary bool   `json:"is_canary"`
}

// packageManifest holds the parts of package.json we read
type packageManifest struct {
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

// DetectVersionInfo reads package.json in projectDir and returns the
// declared "next" dependency. ok is false when the manifest is missing,
// unreadable or does not declare a parsable version.
func DetectVersionInfo(projectDir string) (info VersionInfo, ok bool) {
	data, err := os.ReadFile(filepath.Join(projectDir, "package.json"))
	if err != nil {
		return info, false
	}

	var manifest packageManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return info, false
	}

	declared := manifest.Dependencies["next"]
	if declared == "" {
		declared = manifest.DevDependencies["next"]
	}
	if declared == "" {
		return info, false
	}

	return ParseVersion(declared)
}

// ParseVersion parses a dependency range such as "^15.1.8" or
// "15.0.0-canary.12"
func ParseVersion(declared string) (VersionInfo, bool) {
	m := versionPattern.FindStringSubmatch(declared)
	if m == nil {
		return VersionInfo{}, false
	}

	major, _ := strconv.Atoi(m[1])
	minor, _ := strconv.Atoi(m[2])
	patch, _ := strconv.Atoi(m[3])

	return VersionInfo{
		Version:  cleanVersion(declared),
		Major:    major,
		Minor:    minor,
		Patch:    patch,
		IsCanary: strings.Contains(declared, "canary"),
	}, true
}

// cleanVersion drops everything but digits, dots and dashes
func cleanVersion(declared string) string {
	return strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			return r
		}
		return -1
	}, declared)
}

// DocVersionFor maps a framework version to the documentation label
// that covers it. Canary builds use the latest docs; anything older than
// 13 uses the 13 docs.
func DocVersionFor(info VersionInfo) string {
	switch {
	case info.IsCanary:
		return LatestVersion
	case info.Major >= 16:
		return "16"
	case info.Major == 15, info.Major == 14, info.Major == 13:
		return strconv.Itoa(info.Major)
	default:
		return "13"
	}
}

// AvailableVersions lists the documentation labels that can be requested
func AvailableVersions() []string {
	return []string{"13", "14", "15", "16", LatestVersion}
}

// IsVersionSupported reports whether version is one of AvailableVersions
func IsVersionSupported(version string) bool {
	for _, v := range AvailableVersions() {
		if v == version {
			return true
		}
	}
	return false
}

// VersionedDocURL returns the published URL of a page for a version.
// The latest docs (and 16) live at the root, older ones under /v<version>.
func VersionedDocURL(baseURL, version, path string) string {
	base := strings.TrimSuffix(baseURL, "/")
	path = strings.TrimPrefix(path, "/")

	if version == LatestVersion || version == "16" || version == "" {
		return fmt.Sprintf("%s/%s", base, path)
	}
	return fmt.Sprintf("%s/v%s/%s", base, version, path)
}

// VersionedBaseURL returns the docs root for a version
func VersionedBaseURL(baseURL, version string) string {
	return strings.TrimSuffix(VersionedDocURL(baseURL, version, ""), "/")
}

// PackageJSONDetector detects the documentation version of the project
// rooted at Dir
type PackageJSONDetector struct {
	Dir string
}

// DetectVersion returns the documentation label for the project, or false
// when it does not declare the framework
func (d PackageJSONDetector) DetectVersion() (string, bool) {
	info, ok := DetectVersionInfo(d.Dir)
	if !ok {
		return "", false
	}
	return DocVersionFor(info), true
}

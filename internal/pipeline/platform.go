package pipeline

import (
	"net/url"
	"strings"
)

// Platforms reported by DetectPlatform.
const (
	PlatformLinkedIn  = "linkedin"
	PlatformIndeed    = "indeed"
	PlatformGlassdoor = "glassdoor"
	PlatformCompany   = "company"
	PlatformOther     = "other"
)

// DetectPlatform guesses which job board a source URL belongs to. Anything
// that is not a parseable URL is PlatformOther.
func DetectPlatform(source string) string {
	u, err := url.Parse(strings.TrimSpace(source))
	if err != nil || u.Hostname() == "" {
		return PlatformOther
	}
	host := strings.ToLower(u.Hostname())
	path := strings.ToLower(u.Path)
	switch {
	case strings.Contains(host, "linkedin"):
		return PlatformLinkedIn
	case strings.Contains(host, "indeed"):
		return PlatformIndeed
	case strings.Contains(host, "glassdoor"):
		return PlatformGlassdoor
	case strings.Contains(host, "careers.") || strings.Contains(path, "/careers") || strings.Contains(path, "/jobs"):
		return PlatformCompany
	}
	return PlatformOther
}

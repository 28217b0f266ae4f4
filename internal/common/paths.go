package common

import "strings"

// IsSessionRenewingPath reports whether path targets one of the endpoints
// listed in SessionRenewingPaths.
func IsSessionRenewingPath(path string) bool {
	for _, p := range SessionRenewingPaths {
		if strings.Contains(path, p) {
			return true
		}
	}
	return false
}

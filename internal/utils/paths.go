package utils

import "strings"

// ConvertPath rewrites a host-system file path into its container-side
// equivalent (or vice versa) by swapping the leading prefix. The boolean
// reports whether the current prefix was actually present; when it is not,
// the returned path is empty and must not be used.
func ConvertPath(path, currentPrefix, targetPrefix string) (bool, string) {
	if !strings.HasPrefix(path, currentPrefix) {
		return false, ""
	}
	return true, targetPrefix + strings.TrimPrefix(path, currentPrefix)
}

// StripPathPrefix removes the given prefix from a file path. The boolean
// reports whether the prefix was present.
func StripPathPrefix(path, prefix string) (bool, string) {
	if !strings.HasPrefix(path, prefix) {
		return false, ""
	}
	return true, strings.TrimPrefix(path, prefix)
}

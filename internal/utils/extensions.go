package utils

import (
	"strings"
)

// ParseExtensions parses extension list items into normalized suffixes.
// Items may hold several comma separated values ("html, .css,js").
// Each suffix gets a leading dot; case is preserved.
func ParseExtensions(items []string) []string {
	exts := make([]string, 0)
	seen := make(map[string]bool)

	for _, item := range items {
		for _, part := range strings.Split(item, ",") {
			ext := strings.TrimSpace(part)
			if ext == "" || ext == "." {
				continue
			}

			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}

			if seen[ext] {
				continue
			}

			seen[ext] = true
			exts = append(exts, ext)
		}
	}

	return exts
}

// Overlap returns the extensions present in both lists, in the order of a
func Overlap(a, b []string) []string {
	inB := make(map[string]bool, len(b))
	for _, ext := range b {
		inB[ext] = true
	}

	var both []string
	for _, ext := range a {
		if inB[ext] {
			both = append(both, ext)
		}
	}

	return both
}

// HasSuffixIn reports the first suffix in exts that name ends with
func HasSuffixIn(name string, exts []string) (string, bool) {
	for _, ext := range exts {
		if strings.HasSuffix(name, ext) && len(name) > len(ext) {
			return ext, true
		}
	}

	return "", false
}

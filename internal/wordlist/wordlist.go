// Package wordlist loads candidate-name lists and applies the per-surface
// name filters.
package wordlist

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// headerNameRe restricts header candidates to names a server will accept.
var headerNameRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// SplitPaths splits a comma-separated wordlist argument into paths.
func SplitPaths(csv string) []string {
	var paths []string
	for _, part := range strings.Split(csv, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			paths = append(paths, part)
		}
	}
	return paths
}

// Load reads every path and returns the deduplicated union of their lines in
// first-seen order.
func Load(paths []string) ([]string, error) {
	seen := make(map[string]bool)
	var words []string

	for _, path := range paths {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open wordlist %s: %w", path, err)
		}
		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			word := strings.TrimSpace(scanner.Text())
			if word == "" || seen[word] {
				continue
			}
			seen[word] = true
			words = append(words, word)
		}
		err = scanner.Err()
		file.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read wordlist %s: %w", path, err)
		}
	}
	return words, nil
}

// FilterHeaderNames keeps only names legal as HTTP header fields.
func FilterHeaderNames(words []string) []string {
	filtered := make([]string, 0, len(words))
	for _, w := range words {
		if headerNameRe.MatchString(w) {
			filtered = append(filtered, w)
		}
	}
	return filtered
}

// FilterCookieNames drops names that would corrupt a Cookie header.
func FilterCookieNames(words []string) []string {
	filtered := make([]string, 0, len(words))
	for _, w := range words {
		if !strings.ContainsAny(w, "=,;") {
			filtered = append(filtered, w)
		}
	}
	return filtered
}

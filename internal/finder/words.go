package finder

import "strings"

// mergeCandidates unions the configured wordlist with the names miners
// contributed, drops names already present on the surface, and deduplicates
// while keeping the original order.
func mergeCandidates(wordlist, additional []string, existing map[string]bool) []string {
	seen := make(map[string]bool, len(wordlist)+len(additional))
	merged := make([]string, 0, len(wordlist)+len(additional))
	for _, list := range [][]string{wordlist, additional} {
		for _, w := range list {
			if w == "" || seen[w] || existing[w] {
				continue
			}
			seen[w] = true
			merged = append(merged, w)
		}
	}
	return merged
}

// chunkByCost packs words into chunks whose summed per-word cost stays within
// the bucket. A word whose cost alone exceeds the bucket still gets its own
// chunk so no candidate silently disappears.
func chunkByCost(words []string, bucket int, cost func(word string) int) [][]string {
	var chunks [][]string
	var current []string
	currentCost := 0

	for _, w := range words {
		c := cost(w)
		if len(current) > 0 && currentCost+c > bucket {
			chunks = append(chunks, current)
			current = nil
			currentCost = 0
		}
		current = append(current, w)
		currentCost += c
	}
	if len(current) > 0 {
		chunks = append(chunks, current)
	}
	return chunks
}

// chunkByCount slices words into fixed-size groups.
func chunkByCount(words []string, size int) [][]string {
	if size <= 0 {
		return nil
	}
	var chunks [][]string
	for start := 0; start < len(words); start += size {
		end := start + size
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, words[start:end])
	}
	return chunks
}

// queryKeys extracts parameter names from a raw query or form-encoded string.
func queryKeys(raw string) map[string]bool {
	keys := make(map[string]bool)
	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		name := pair
		if idx := strings.Index(pair, "="); idx >= 0 {
			name = pair[:idx]
		}
		if name != "" {
			keys[name] = true
		}
	}
	return keys
}

// formPairs parses a form-encoded body into its name=value pairs, skipping
// fragments without a value the way lenient servers do.
func formPairs(body string) [][2]string {
	var pairs [][2]string
	for _, pair := range strings.Split(body, "&") {
		idx := strings.Index(pair, "=")
		if idx <= 0 || idx == len(pair)-1 {
			continue
		}
		pairs = append(pairs, [2]string{pair[:idx], pair[idx+1:]})
	}
	return pairs
}

package miner

import "encoding/json"

// MineJSON collects every object key, at any depth, from a JSON document.
func MineJSON(body string) []string {
	var doc interface{}
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return nil
	}

	seen := make(map[string]bool)
	var names []string
	var walk func(item interface{})
	walk = func(item interface{}) {
		switch v := item.(type) {
		case map[string]interface{}:
			for key, value := range v {
				if !seen[key] {
					seen[key] = true
					names = append(names, key)
				}
				walk(value)
			}
		case []interface{}:
			for _, value := range v {
				walk(value)
			}
		}
	}
	walk(doc)
	return names
}

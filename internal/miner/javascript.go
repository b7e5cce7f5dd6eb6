package miner

import "regexp"

// identifierRe matches JavaScript identifier tokens.
var identifierRe = regexp.MustCompile(`[A-Za-z_$][A-Za-z0-9_$]*`)

// jsStripRe removes comments and string literals before tokenizing so quoted
// prose does not flood the candidate set.
var jsStripRe = regexp.MustCompile(`(?s)/\*.*?\*/|//[^\n]*|"(?:\\.|[^"\\])*"|'(?:\\.|[^'\\])*'|` + "`(?:\\\\.|[^`\\\\])*`")

// jsKeywords are tokens that can never be parameter names.
var jsKeywords = map[string]bool{
	"break": true, "case": true, "catch": true, "class": true, "const": true,
	"continue": true, "debugger": true, "default": true, "delete": true,
	"do": true, "else": true, "export": true, "extends": true, "false": true,
	"finally": true, "for": true, "function": true, "if": true, "import": true,
	"in": true, "instanceof": true, "let": true, "new": true, "null": true,
	"of": true, "return": true, "super": true, "switch": true, "this": true,
	"throw": true, "true": true, "try": true, "typeof": true, "undefined": true,
	"var": true, "void": true, "while": true, "with": true, "yield": true,
	"async": true, "await": true, "static": true,
}

// MineJS extracts identifier tokens from script source.
func MineJS(script string) []string {
	stripped := jsStripRe.ReplaceAllString(script, " ")

	seen := make(map[string]bool)
	var names []string
	for _, token := range identifierRe.FindAllString(stripped, -1) {
		if jsKeywords[token] || seen[token] {
			continue
		}
		seen[token] = true
		names = append(names, token)
	}
	return names
}

package reporter

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/aleister1102/paramseeker/internal/models"
)

// FormatTable renders an aligned four-column ASCII table. Repeated URL,
// surface and name cells are blanked so the eye can group rows.
func FormatTable(results models.Results) string {
	headers := []string{"URL", "Surface", "Parameter", "Reasons"}
	widths := []int{len(headers[0]), len(headers[1]), len(headers[2]), len(headers[3])}

	type row [4]string
	var rows []row

	for _, u := range sortedURLs(results) {
		sameURL := false
		for _, surface := range surfacesOf(results[u]) {
			sameSurface := false
			for _, finding := range results[u][surface] {
				sameName := false
				for _, reason := range finding.Reasons {
					reasonCell := string(reason.Kind) + ": " + reason.Value
					r := row{
						blankIf(sameURL, u),
						blankIf(sameSurface, surface.String()),
						blankIf(sameName, finding.Name),
						reasonCell,
					}
					rows = append(rows, r)
					for i, cell := range r {
						if len(cell) > widths[i] {
							widths[i] = len(cell)
						}
					}
					sameURL, sameSurface, sameName = true, true, true
				}
			}
		}
	}

	var sb strings.Builder
	separator := "\n" + strings.Join([]string{
		strings.Repeat("-", widths[0]),
		strings.Repeat("-", widths[1]),
		strings.Repeat("-", widths[2]),
		strings.Repeat("-", widths[3]),
	}, "---") + "\n"

	sb.WriteString(separator)
	sb.WriteString(formatRow(row{headers[0], headers[1], headers[2], headers[3]}, widths))
	sb.WriteString(separator)
	for _, r := range rows {
		sb.WriteString(formatRow(r, widths))
		sb.WriteString(separator)
	}
	return sb.String()
}

func formatRow(r [4]string, widths []int) string {
	cells := make([]string, len(r))
	for i, cell := range r {
		cells[i] = center(cell, widths[i])
	}
	return strings.Join(cells, " | ")
}

func center(s string, width int) string {
	if len(s) >= width {
		return s
	}
	left := (width - len(s)) / 2
	right := width - len(s) - left
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", right)
}

func blankIf(same bool, value string) string {
	if same {
		return ""
	}
	return value
}

type jsonReason struct {
	Reason string `json:"reason"`
	Value  string `json:"value"`
}

type jsonParam struct {
	Param   string       `json:"param"`
	Reasons []jsonReason `json:"reasons"`
}

// FormatJSON renders {url: {surface: [{param, reasons}]}}.
func FormatJSON(results models.Results) (string, error) {
	out := make(map[string]map[string][]jsonParam, len(results))
	for u, bySurface := range results {
		out[u] = make(map[string][]jsonParam, len(bySurface))
		for surface, findings := range bySurface {
			params := make([]jsonParam, 0, len(findings))
			for _, f := range findings {
				reasons := make([]jsonReason, 0, len(f.Reasons))
				for _, reason := range f.Reasons {
					reasons = append(reasons, jsonReason{Reason: string(reason.Kind), Value: reason.Value})
				}
				params = append(params, jsonParam{Param: f.Name, Reasons: reasons})
			}
			out[u][surface.String()] = params
		}
	}

	encoded, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("failed to encode results: %w", err)
	}
	return string(encoded), nil
}

var surfaceColors = map[models.Surface]*color.Color{
	models.SurfaceURL:      color.New(color.FgBlue),
	models.SurfaceBodyForm: color.New(color.FgGreen),
	models.SurfaceBodyJSON: color.New(color.FgMagenta),
	models.SurfaceHeader:   color.New(color.FgYellow),
	models.SurfaceCookie:   color.New(color.FgCyan),
}

const lightIndent = "            "

// FormatLight renders a compact per-URL listing of "surface: name;" tokens,
// colorized by surface and reflowed to the given width.
func FormatLight(results models.Results, width int) string {
	if width <= len(lightIndent) {
		width = len(lightIndent) + 40
	}

	var sb strings.Builder
	for _, u := range sortedURLs(results) {
		sb.WriteString("\n")
		sb.WriteString(u)
		sb.WriteString(":\n")

		line := lightIndent
		lineLen := len(lightIndent)
		for _, surface := range surfacesOf(results[u]) {
			painter := surfaceColors[surface]
			for _, finding := range results[u][surface] {
				plain := surface.String() + ": " + finding.Name + "; "
				if lineLen+len(plain) > width && lineLen > len(lightIndent) {
					sb.WriteString(line)
					sb.WriteString("\n")
					line = lightIndent
					lineLen = len(lightIndent)
				}
				line += painter.Sprint(surface.String()) + ": " + finding.Name + "; "
				lineLen += len(plain)
			}
		}
		if lineLen > len(lightIndent) {
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

package reporter

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleister1102/paramseeker/internal/config"
	"github.com/aleister1102/paramseeker/internal/models"
)

func sampleResults() models.Results {
	results := models.NewResults()
	results.Add(models.Finding{
		URL:     "http://example.com/page",
		Surface: models.SurfaceURL,
		Name:    "debug",
		Reasons: []models.Reason{
			{Kind: models.ReasonParamValueReflection, Value: "1 (0)"},
			{Kind: models.ReasonDiffContentLength, Value: "42 (5)"},
		},
	})
	results.Add(models.Finding{
		URL:     "http://example.com/page",
		Surface: models.SurfaceHeader,
		Name:    "X-Secret",
		Reasons: []models.Reason{{Kind: models.ReasonDiffStatusCode, Value: "500 (200)"}},
	})
	return results
}

func TestFormatJSON(t *testing.T) {
	rendered, err := FormatJSON(sampleResults())
	require.NoError(t, err)

	var decoded map[string]map[string][]struct {
		Param   string `json:"param"`
		Reasons []struct {
			Reason string `json:"reason"`
			Value  string `json:"value"`
		} `json:"reasons"`
	}
	require.NoError(t, json.Unmarshal([]byte(rendered), &decoded))

	page := decoded["http://example.com/page"]
	require.NotNil(t, page)
	require.Len(t, page["URL"], 1)
	assert.Equal(t, "debug", page["URL"][0].Param)
	require.Len(t, page["URL"][0].Reasons, 2)
	assert.Equal(t, "param_value_reflection", page["URL"][0].Reasons[0].Reason)
	require.Len(t, page["HEADER"], 1)
	assert.Equal(t, "X-Secret", page["HEADER"][0].Param)
}

func TestFormatTable(t *testing.T) {
	rendered := FormatTable(sampleResults())

	assert.Contains(t, rendered, "http://example.com/page")
	assert.Contains(t, rendered, "debug")
	assert.Contains(t, rendered, "X-Secret")
	assert.Contains(t, rendered, "diff_status_code: 500 (200)")

	// One row per reason, repeated cells blanked: the URL shows up once.
	assert.Equal(t, 1, strings.Count(rendered, "http://example.com/page"))
}

func TestFormatLight(t *testing.T) {
	rendered := FormatLight(sampleResults(), 100)

	assert.Contains(t, rendered, "http://example.com/page:")
	assert.Contains(t, rendered, "debug; ")
	assert.Contains(t, rendered, "X-Secret; ")
}

func TestFormatLight_ReflowsLongLines(t *testing.T) {
	results := models.NewResults()
	for i := 0; i < 12; i++ {
		results.Add(models.Finding{
			URL:     "http://example.com/",
			Surface: models.SurfaceURL,
			Name:    "parameter_" + string(rune('a'+i)),
			Reasons: []models.Reason{{Kind: models.ReasonDiffStatusCode, Value: "500 (200)"}},
		})
	}

	rendered := FormatLight(results, 60)
	lines := strings.Split(strings.TrimRight(rendered, "\n"), "\n")
	assert.Greater(t, len(lines), 3, "long listings wrap over several lines")
}

func TestReporter_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	r := New(config.ReporterConfig{Format: config.FormatJSON, OutputFile: path, TermWidth: 80}, zerolog.Nop())

	require.NoError(t, r.Report(sampleResults()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, json.Valid(data))
}

func TestReporter_UnknownFormat(t *testing.T) {
	r := New(config.ReporterConfig{Format: "yaml", TermWidth: 80}, zerolog.Nop())
	assert.Error(t, r.Report(sampleResults()))
}

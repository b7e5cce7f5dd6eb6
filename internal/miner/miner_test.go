package miner

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleister1102/paramseeker/internal/config"
	"github.com/aleister1102/paramseeker/internal/httpclient"
	"github.com/aleister1102/paramseeker/internal/models"
)

func TestMineHTML(t *testing.T) {
	page := `<html><body>
		<form action="/login">
			<input name="username">
			<select name="role"><option>a</option></select>
			<textarea name="comment"></textarea>
		</form>
		<script src="/static/app.js"></script>
		<script>var trackingId = cfg.sessionKey;</script>
	</body></html>`

	base, err := url.Parse("http://example.com/login")
	require.NoError(t, err)

	names, srcs := MineHTML(page, base)

	assert.Contains(t, names, "username")
	assert.Contains(t, names, "role")
	assert.Contains(t, names, "comment")
	assert.Contains(t, names, "trackingId", "inline scripts are mined too")
	assert.Contains(t, names, "sessionKey")

	require.Len(t, srcs, 1)
	assert.Equal(t, "http://example.com/static/app.js", srcs[0].String())
}

func TestMineJS(t *testing.T) {
	script := `
		// comment identifiers like ignoredOne stay out
		var apiToken = "quoted words do not count";
		const search = { pageSize: 10, 'filter': active };
		function load(userId) { return fetch(endpoint + userId); }
	`
	names := MineJS(script)

	assert.Contains(t, names, "apiToken")
	assert.Contains(t, names, "pageSize")
	assert.Contains(t, names, "userId")
	assert.Contains(t, names, "endpoint")
	assert.NotContains(t, names, "ignoredOne", "comments are stripped")
	assert.NotContains(t, names, "quoted", "string literals are stripped")
	assert.NotContains(t, names, "var", "keywords are dropped")
	assert.NotContains(t, names, "function")
}

func TestMineJSON(t *testing.T) {
	body := `{"user": {"id": 1, "roles": ["admin"]}, "items": [{"sku": "x"}], "total": 2}`
	names := MineJSON(body)

	assert.ElementsMatch(t, []string{"user", "id", "roles", "items", "sku", "total"}, names)

	assert.Nil(t, MineJSON("not json"))
}

func TestMiner_Mine(t *testing.T) {
	script := `var minedFromScript = 1;`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/javascript")
		w.Write([]byte(script))
	}))
	defer server.Close()

	client, err := httpclient.New(config.HTTPClientConfig{Retry: 1, TimeoutSeconds: 3}, zerolog.Nop())
	require.NoError(t, err)

	pageURL, err := url.Parse(server.URL + "/page")
	require.NoError(t, err)

	info := models.NewRequestInfo(models.NewRequest("GET", pageURL, nil, ""))
	info.SetBaseline(&models.Response{
		StatusCode: 200,
		Headers:    http.Header{"Content-Type": []string{"text/html; charset=utf-8"}},
		Body: []byte(`<html><body>
			<input name="query">
			<script src="` + server.URL + `/app.js"></script>
		</body></html>`),
	}, 7)

	m := New(client, config.MinerConfig{MaxScriptFetches: 5}, zerolog.Nop())
	mined := m.Mine(context.Background(), []*models.RequestInfo{info})

	names := mined[info.Netloc]
	assert.Contains(t, names, "query")
	assert.Contains(t, names, "minedFromScript", "external scripts are fetched and mined")
}

func TestMiner_MineJSONBaseline(t *testing.T) {
	client, err := httpclient.New(config.HTTPClientConfig{Retry: 1, TimeoutSeconds: 3}, zerolog.Nop())
	require.NoError(t, err)

	u, err := url.Parse("http://api.example.com/v1/user")
	require.NoError(t, err)

	info := models.NewRequestInfo(models.NewRequest("GET", u, nil, ""))
	info.SetBaseline(&models.Response{
		StatusCode: 200,
		Headers:    http.Header{"Content-Type": []string{"application/json"}},
		Body:       []byte(`{"visible": 1, "nested": {"secretKey": true}}`),
	}, 0)

	m := New(client, config.MinerConfig{}, zerolog.Nop())
	mined := m.Mine(context.Background(), []*models.RequestInfo{info})

	assert.ElementsMatch(t, []string{"nested", "secretKey", "visible"}, mined["api.example.com"])
}

package web

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func pageData(page string) PageData {
	return PageData{
		Page:              page,
		Title:             "Spend forecaster",
		Version:           "1.2.3",
		DefaultElasticity: 0.82,
		MinElasticity:     0.5,
		MaxElasticity:     1,
	}
}

func TestRenderEmbeddedPages(t *testing.T) {
	r, err := NewRenderer("")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, ForecastPage, pageData("forecast"), nil))
	out := buf.String()
	require.Contains(t, out, "<title>Spend forecaster | Lead Forecaster</title>")
	require.Contains(t, out, `name="spend_change_percent"`)
	require.Contains(t, out, `"/api/forecast"`)
	require.Contains(t, out, "defaults to\n      0.82")
	require.Contains(t, out, "forecaster 1.2.3")

	buf.Reset()
	require.NoError(t, r.Render(&buf, IncrementalPage, pageData("incremental"), nil))
	require.Contains(t, buf.String(), `name="incremental_budget"`)
	require.Contains(t, buf.String(), `"/api/incremental"`)
}

func TestRenderUnknownPage(t *testing.T) {
	r, err := NewRenderer("")
	require.NoError(t, err)
	require.EqualError(t, r.Render(&bytes.Buffer{}, "missing.html", nil, nil), "no template named missing.html")
}

func TestRenderFromDirectory(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
	}
	write(layoutFile, `{{ define "layout" }}<h1>{{ .Title | upper }}</h1>{{ template "content" . }}{{ end }}`)
	write(ForecastPage, `{{ define "content" }}forecast{{ end }}`)
	write(IncrementalPage, `{{ define "content" }}incremental{{ end }}`)

	r, err := NewRenderer(dir)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, IncrementalPage, pageData("incremental"), nil))
	require.Equal(t, "<h1>SPEND FORECASTER</h1>incremental", buf.String())
}

func TestMissingDirectoryFails(t *testing.T) {
	_, err := NewRenderer(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}

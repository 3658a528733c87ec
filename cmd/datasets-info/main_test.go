package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkoziy/hdxinfo/internal/config"
)

const catalogBody = `{"success":true,"result":{"count":1,"results":[{"id":"a","name":"ukr-boundaries","title":"Ukraine Boundaries","metadata_created":"2020-01-05T10:00:00.000000","metadata_modified":"2020-02-10T10:00:00.000000","last_modified":"2020-02-10T10:00:00.000000","private":false,"archived":false,"organization":{"title":"OCHA Ukraine"},"tags":[{"name":"common operational dataset - cod"}],"resources":[{"url":"https://example.org/a.csv"}]}]}}`

func upstream(t *testing.T, mixpanelStatus int) (hdxURL, mixpanelURL string) {
	t.Helper()
	hdx := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/3/action/package_search" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, catalogBody)
	}))
	t.Cleanup(hdx.Close)

	mp := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/2.0/jql" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if mixpanelStatus != http.StatusOK {
			http.Error(w, "unavailable", mixpanelStatus)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, `[{"dataset_id":"a","value":3}]`)
	}))
	t.Cleanup(mp.Close)

	return hdx.URL, mp.URL
}

func writeConfig(t *testing.T, hdxURL, mixpanelURL, ledgerDSN string) config.Paths {
	t.Helper()
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
		return path
	}
	return config.Paths{
		ProjectFile: write("project_configuration.yml", fmt.Sprintf(`hdx_site: test
hdx_sites:
  test: %s
mixpanel_url: %s
log_level: error
ledger_dsn: %q
`, hdxURL, mixpanelURL, ledgerDSN)),
		UserAgentFile: write(".useragents.yml", "hdx-analysis-scripts:\n  user_agent: test\n"),
		MixpanelFile:  write(".mixpanel.yml", "api_secret: s3cret\n"),
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer func() {
		_ = f.Close()
	}()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestRunWritesReports(t *testing.T) {
	hdxURL, mpURL := upstream(t, http.StatusOK)
	ledger := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	paths := writeConfig(t, hdxURL, mpURL, ledger)
	out := filepath.Join(t.TempDir(), "reports")

	err := run(context.Background(), []string{"-od", out}, paths)
	require.NoError(t, err)

	datasets := readCSV(t, filepath.Join(out, "datasets.csv"))
	require.Len(t, datasets, 2)
	assert.Equal(t, "ukr-boundaries", datasets[1][0])
	assert.Equal(t, "3", datasets[1][3])

	monthly := readCSV(t, filepath.Join(out, "non_script_updates.csv"))
	assert.Equal(t, []string{"Year Month", "Created", "Metadata Updated", "Data Updated"}, monthly[0])

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestRunKeepsOutputOnUpstreamFailure(t *testing.T) {
	hdxURL, mpURL := upstream(t, http.StatusServiceUnavailable)
	paths := writeConfig(t, hdxURL, mpURL, "")
	out := filepath.Join(t.TempDir(), "reports")
	require.NoError(t, os.MkdirAll(out, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(out, "datasets.csv"), []byte("previous\n"), 0o600))

	err := run(context.Background(), []string{"--output_dir", out}, paths)
	require.Error(t, err)

	data, err := os.ReadFile(filepath.Join(out, "datasets.csv"))
	require.NoError(t, err)
	assert.Equal(t, "previous\n", string(data))
}

func TestRunMissingConfig(t *testing.T) {
	paths := config.Paths{
		ProjectFile:   filepath.Join(t.TempDir(), "missing.yml"),
		UserAgentFile: filepath.Join(t.TempDir(), "missing.yml"),
		MixpanelFile:  filepath.Join(t.TempDir(), "missing.yml"),
	}
	err := run(context.Background(), nil, paths)
	assert.ErrorContains(t, err, "project config")
}

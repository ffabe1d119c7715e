package cmd

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/hatidata/hati/pkg/config"
	"github.com/hatidata/hati/pkg/engine"
	"github.com/hatidata/hati/pkg/project"
	"github.com/hatidata/hati/pkg/sync"
	"github.com/stretchr/testify/require"
)

// setupProject creates an initialized project pointing at the given control
// plane endpoint, with an API key and Cloud tier configured.
func setupProject(t *testing.T, endpoint string) string {
	t.Helper()

	dir := t.TempDir()
	proj := project.New(dir)
	require.NoError(t, proj.Initialize())

	cfg := &config.Config{
		CloudEndpoint: endpoint,
		APIKey:        "hd_live_test",
		DefaultTarget: "cloud",
		Tier:          "cloud",
	}
	require.NoError(t, cfg.Save(project.ConfigPath(proj.HatiDir())))

	eng, err := engine.Open(project.DatabasePath(proj.HatiDir()))
	require.NoError(t, err)
	require.NoError(t, eng.Close())

	return dir
}

func TestPull_RejectsInvalidRemoteTableName(t *testing.T) {
	pullCalls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/sync/schema" {
			_ = json.NewEncoder(w).Encode([]sync.TableSchema{{Name: "../../escape"}})
			return
		}
		pullCalls++
		_, _ = w.Write([]byte("parquet"))
	}))
	defer server.Close()

	dir := setupProject(t, server.URL)
	t.Chdir(dir)

	err := Run(context.Background(), "test", []string{"hati", "pull"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid table name")

	// The bad name was rejected before any download or filesystem write.
	require.Zero(t, pullCalls)
	require.NoFileExists(t, filepath.Join(filepath.Dir(os.TempDir()), "escape.parquet"))
}

func TestPull_ImportsRemoteTable(t *testing.T) {
	// Produce real Parquet bytes to serve.
	seedDB := filepath.Join(t.TempDir(), "seed.duckdb")
	seedEng, err := engine.Open(seedDB)
	require.NoError(t, err)
	ctx := context.Background()
	_, err = seedEng.ExecuteQuery(ctx, `CREATE TABLE events (id INT)`)
	require.NoError(t, err)
	_, err = seedEng.ExecuteQuery(ctx, `INSERT INTO events VALUES (1), (2)`)
	require.NoError(t, err)
	parquetPath := filepath.Join(t.TempDir(), "events.parquet")
	require.NoError(t, seedEng.ExportParquet(ctx, "events", parquetPath))
	require.NoError(t, seedEng.Close())

	parquet, err := os.ReadFile(parquetPath)
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/sync/schema":
			_ = json.NewEncoder(w).Encode([]sync.TableSchema{
				{Name: "events", Columns: []sync.ColumnSchema{{Name: "id", DataType: "INTEGER"}}},
			})
		case "/v1/sync/pull/events":
			_, _ = w.Write(parquet)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	dir := setupProject(t, server.URL)
	t.Chdir(dir)

	require.NoError(t, Run(ctx, "test", []string{"hati", "pull"}))

	eng, err := engine.Open(project.DatabasePath(filepath.Join(dir, ".hati")))
	require.NoError(t, err)
	defer func() { _ = eng.Close() }()

	count, err := eng.TableRowCount(ctx, "events")
	require.NoError(t, err)
	require.Equal(t, uint64(2), count)
}

func TestAuthStatus_VerifiesKey(t *testing.T) {
	meCalls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/auth/me", r.URL.Path)
		require.Equal(t, "Bearer hd_live_test", r.Header.Get("Authorization"))
		meCalls++
		_ = json.NewEncoder(w).Encode(sync.Identity{Email: "dev@example.com", OrgID: "org_123"})
	}))
	defer server.Close()

	dir := setupProject(t, server.URL)
	t.Chdir(dir)

	require.NoError(t, Run(context.Background(), "test", []string{"hati", "auth", "status"}))
	require.Equal(t, 1, meCalls)
}

func TestAuthStatus_UnreachableControlPlane(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	endpoint := server.URL
	server.Close()

	dir := setupProject(t, endpoint)
	t.Chdir(dir)

	// Verification failure falls back to the local view, not an error.
	require.NoError(t, Run(context.Background(), "test", []string{"hati", "auth", "status"}))
}

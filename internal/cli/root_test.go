package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"testing"
	"time"

	"finboard/internal/bootstrap"
	apphttp "finboard/internal/http"
	applog "finboard/internal/log"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "finboard", cmd.Use)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()

	for _, name := range []string{"serve", "init", "migrate"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)

	format := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "text", format.DefValue)
}

func TestInvalidFormatRejected(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"init", "--format", "yaml"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid format "yaml"`)
}

func TestWorkerRootCommand(t *testing.T) {
	cmd := NewWorkerRootCommand()
	assert.Equal(t, "finboard-worker", cmd.Use)
	assert.NotNil(t, cmd.PersistentFlags().Lookup("verbose"))
}

func setupEnv(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "finboard.db")
	t.Setenv("DB", path)
	t.Setenv("AMQP_URL", "")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("PORT", "8080")
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestInitAndMigrateCommands(t *testing.T) {
	setupEnv(t)

	out, err := execute(t, "init", "--format", "json")
	require.NoError(t, err)
	var initResult bootstrap.InitResult
	require.NoError(t, json.Unmarshal([]byte(out), &initResult))
	assert.True(t, initResult.Seeded)

	out, err = execute(t, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "seeded=false")

	out, err = execute(t, "migrate", "--format", "json")
	require.NoError(t, err)
	var migrated map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &migrated))
	assert.Equal(t, 13.0, migrated["migrated_records"])

	out, err = execute(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "already up to date")
	assert.Contains(t, out, "(13 records)")
}

func TestServeRequiresAdminPassword(t *testing.T) {
	setupEnv(t)
	t.Setenv("ADMIN_PASSWORD", "")

	_, err := execute(t, "serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ADMIN_PASSWORD is required")
}

func TestServe_StopsOnCancel(t *testing.T) {
	srv := apphttp.NewServer("127.0.0.1:0", apphttp.Dependencies{Logger: applog.Nop()})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, srv, time.Second, applog.Nop()) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestOutputFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &buf}
	require.NoError(t, f.Print(map[string]int{"n": 1}, "ignored"))
	assert.JSONEq(t, `{"n":1}`, buf.String())

	buf.Reset()
	f.Format = "text"
	require.NoError(t, f.Print(nil, "init: done"))
	assert.Equal(t, "init: done\n", buf.String())
}

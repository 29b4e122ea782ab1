package cmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	queries []string
	err     error
}

func (f *fakeRunner) Run(ctx context.Context, query string) (string, error) {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return "", f.err
	}
	return "reply to " + query, nil
}

func TestRunLoopExitInAnyCase(t *testing.T) {
	for _, word := range []string{"exit", "EXIT", "  Exit  "} {
		r := &fakeRunner{}
		var out bytes.Buffer
		err := runLoop(context.Background(), strings.NewReader(word+"\nnever read\n"), &out, r)
		require.NoError(t, err)
		assert.Empty(t, r.queries, word)
		assert.Contains(t, out.String(), "Goodbye!")
	}
}

func TestRunLoopSkipsBlankInput(t *testing.T) {
	r := &fakeRunner{}
	var out bytes.Buffer
	err := runLoop(context.Background(), strings.NewReader("\n   \n\t\nexit\n"), &out, r)
	require.NoError(t, err)
	assert.Empty(t, r.queries)
	assert.Equal(t, 4, strings.Count(out.String(), "Enter your query: "))
}

func TestRunLoopPrintsResponses(t *testing.T) {
	r := &fakeRunner{}
	var out bytes.Buffer
	err := runLoop(context.Background(), strings.NewReader("list tables\n how many films? \nexit\n"), &out, r)
	require.NoError(t, err)

	assert.Equal(t, []string{"list tables", "how many films?"}, r.queries)
	s := out.String()
	assert.Contains(t, s, "Database Analyst Agent is ready. Type 'exit' to quit.")
	assert.Contains(t, s, "Response:")
	assert.Contains(t, s, "reply to list tables")
	assert.Contains(t, s, "reply to how many films?")
}

func TestRunLoopContinuesAfterError(t *testing.T) {
	r := &fakeRunner{err: errors.New("rate limited")}
	var out bytes.Buffer
	err := runLoop(context.Background(), strings.NewReader("q1\nq2\nexit\n"), &out, r)
	require.NoError(t, err)
	assert.Equal(t, []string{"q1", "q2"}, r.queries)
	assert.Equal(t, 2, strings.Count(out.String(), "Error: rate limited"))
}

func TestRunLoopEndsOnEOF(t *testing.T) {
	r := &fakeRunner{}
	var out bytes.Buffer
	err := runLoop(context.Background(), strings.NewReader("q1\n"), &out, r)
	require.NoError(t, err)
	assert.Equal(t, []string{"q1"}, r.queries)
	assert.NotContains(t, out.String(), "Goodbye!")
}

func TestRunLoopStopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := &fakeRunner{}
	err := runLoop(ctx, strings.NewReader("q1\n"), &bytes.Buffer{}, r)
	require.NoError(t, err)
	assert.Empty(t, r.queries)
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PGHOST", "PGPORT", "PGUSER", "PGPASSWORD", "PGDATABASE", "PGSSLMODE",
		"OPENAI_API_KEY", "ANTHROPIC_API_KEY", "GEMINI_API_KEY", "GROQ_API_KEY",
		"OLLAMA_HOST", "ERDCHAT_PROVIDER", "ERDCHAT_MODEL",
	} {
		t.Setenv(k, "")
	}
	t.Chdir(t.TempDir())
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestFlagsOverrideConfigFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("PGUSER", "from_env")
	path := writeConfig(t, "db:\n  host: file-host\n  port: 5433\n  database: pagila\n")

	require.NoError(t, rootCmd.ParseFlags([]string{
		"--config", path, "--host", "db.internal", "--model", "gpt-4o-mini", "--erd-file", "pagila.md",
	}))
	cfg, err := loadConfig(rootCmd)
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.DB.Host)
	assert.Equal(t, 5433, cfg.DB.Port)
	assert.Equal(t, "pagila", cfg.DB.Database)
	assert.Equal(t, "from_env", cfg.DB.User)
	assert.Equal(t, "gpt-4o-mini", cfg.Agent.Model)
	assert.Equal(t, "pagila.md", cfg.ERDFile)
}

func TestERDCommandReportsProviderError(t *testing.T) {
	clearEnv(t)
	logDir := t.TempDir()
	path := writeConfig(t, "log_dir: "+logDir+"\n")

	var stderr bytes.Buffer
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs([]string{"erd", "--config", path, "--provider", "mystery"})
	t.Cleanup(func() {
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown AI provider "mystery"`)

	data, err := os.ReadFile(filepath.Join(logDir, "app.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "erdchat start")
	assert.ErrorIs(t, closeLog(), os.ErrClosed, "log file closed even though the command failed")
}

func TestRunLoopInterruptedAtPrompt(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	r := &fakeRunner{}
	var out bytes.Buffer
	done := make(chan error, 1)
	go func() { done <- runLoop(ctx, pr, &out, r) }()

	_, err := pw.Write([]byte("q1\n"))
	require.NoError(t, err)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("runLoop did not return after cancel while waiting for input")
	}
	assert.LessOrEqual(t, len(r.queries), 1)
}

func TestInitWritesConfigOnce(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "erdchat", "config.yaml")
	t.Setenv("HOME", dir)
	t.Setenv("PGHOST", "db.internal")

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		forceInit = false
	})

	rootCmd.SetArgs([]string{"init", "--config", path})
	require.NoError(t, Execute())
	assert.Contains(t, stdout.String(), "Wrote "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "host: db.internal")

	rootCmd.SetArgs([]string{"init", "--config", path})
	err = Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	rootCmd.SetArgs([]string{"init", "--config", path, "--force"})
	require.NoError(t, Execute())
}

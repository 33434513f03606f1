package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codevf/codevf-go/internal/config"
	"github.com/codevf/codevf-go/internal/fakeapi"
	"github.com/codevf/codevf-go/pkg/codevf"
)

const cliTestKey = "sk-cli"

func newFakeClient(t *testing.T, opts ...fakeapi.Option) *codevf.Client {
	t.Helper()

	srv := httptest.NewServer(fakeapi.NewRouter(fakeapi.NewStore(opts...), cliTestKey, nil))
	t.Cleanup(srv.Close)

	c, err := codevf.NewClient(
		codevf.WithAPIKey(cliTestKey),
		codevf.WithBaseURL(srv.URL+fakeapi.BasePath),
		codevf.WithMaxRetries(0),
	)
	require.NoError(t, err)
	return c
}

func createProject(t *testing.T, c *codevf.Client) int64 {
	t.Helper()
	project, err := c.CreateProject(context.Background(), "cli")
	require.NoError(t, err)
	return project.ID
}

func TestRunProjectCreate(t *testing.T) {
	setJSONOutput(t, true)
	c := newFakeClient(t)

	var buf bytes.Buffer
	require.NoError(t, runProjectCreate(context.Background(), &buf, c, "backend", "API services"))

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &parsed))
	assert.Equal(t, "backend", parsed["name"])
	assert.Equal(t, "API services", parsed["description"])
}

func TestRunTaskCreate_WaitsForCompletion(t *testing.T) {
	setJSONOutput(t, true)
	c := newFakeClient(t, fakeapi.WithAutoAdvance())
	projectID := createProject(t, c)

	req := codevf.TaskCreateRequest{
		Prompt:     "Review the release checklist.",
		MaxCredits: 240,
		ProjectID:  projectID,
	}

	var buf bytes.Buffer
	require.NoError(t, runTaskCreate(context.Background(), &buf, c, req, true, 5*time.Millisecond))

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &parsed))
	assert.Equal(t, "completed", parsed["status"])
	assert.Contains(t, parsed, "result")
}

func TestRunTaskLifecycle(t *testing.T) {
	setJSONOutput(t, false)
	c := newFakeClient(t)
	projectID := createProject(t, c)
	ctx := context.Background()

	task, err := c.CreateTask(ctx, codevf.TaskCreateRequest{
		Prompt:     "Tighten the retry policy.",
		MaxCredits: 240,
		ProjectID:  projectID,
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, runTaskGet(ctx, &buf, c, task.ID))
	assert.Contains(t, buf.String(), task.ID)
	assert.Contains(t, buf.String(), "pending")

	buf.Reset()
	require.NoError(t, runTaskCancel(ctx, &buf, c, task.ID))
	assert.Contains(t, buf.String(), "Task cancelled")
	assert.Contains(t, buf.String(), "Credits returned: 240")

	buf.Reset()
	require.NoError(t, runTaskWait(ctx, &buf, c, task.ID, 5*time.Millisecond))
	assert.Contains(t, buf.String(), "cancelled")

	err = runTaskCancel(ctx, &buf, c, task.ID)
	require.Error(t, err)
	assert.True(t, codevf.IsAPIError(err))
}

func TestRunTaskGet_NotFound(t *testing.T) {
	c := newFakeClient(t)

	err := runTaskGet(context.Background(), &bytes.Buffer{}, c, "missing")
	require.Error(t, err)
	assert.Equal(t, ExitNotFound, mapErrorToExitCode(err))
}

func TestRunTaskWait_Deadline(t *testing.T) {
	c := newFakeClient(t)
	projectID := createProject(t, c)

	task, err := c.CreateTask(context.Background(), codevf.TaskCreateRequest{
		Prompt:     "This task never advances.",
		MaxCredits: 240,
		ProjectID:  projectID,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err = runTaskWait(ctx, &bytes.Buffer{}, c, task.ID, 10*time.Millisecond)
	require.Error(t, err)
	assert.Equal(t, ExitTimeout, mapErrorToExitCode(err))
}

func TestRunCreditsBalance(t *testing.T) {
	setJSONOutput(t, true)
	c := newFakeClient(t, fakeapi.WithCredits(decimal.NewFromInt(500)))

	var buf bytes.Buffer
	require.NoError(t, runCreditsBalance(context.Background(), &buf, c))
	assert.JSONEq(t, `{"available":"500","onHold":"0","total":"500"}`, buf.String())
}

func TestRunTagsList(t *testing.T) {
	setJSONOutput(t, false)
	c := newFakeClient(t)

	var buf bytes.Buffer
	require.NoError(t, runTagsList(context.Background(), &buf, c))
	for _, tag := range fakeapi.DefaultTags {
		assert.Contains(t, buf.String(), tag.Name)
	}
}

func TestTagMultiplier(t *testing.T) {
	c := newFakeClient(t)
	ctx := context.Background()

	m, err := tagMultiplier(ctx, c, fakeapi.DefaultTags[1].ID)
	require.NoError(t, err)
	assert.True(t, m.Equal(fakeapi.DefaultTags[1].CostMultiplier))

	_, err = tagMultiplier(ctx, c, 999)
	assert.Error(t, err)
}

func TestRunCostEstimate(t *testing.T) {
	setJSONOutput(t, true)

	var buf bytes.Buffer
	require.NoError(t, runCostEstimate(&buf, 100, codevf.TierFast, decimal.RequireFromString("1.5")))

	var est costEstimate
	require.NoError(t, json.Unmarshal(buf.Bytes(), &est))
	assert.Equal(t, int64(225), est.FinalCost)

	err := runCostEstimate(&buf, 100, codevf.TierFast, decimal.NewFromInt(-1))
	require.Error(t, err)
	assert.Equal(t, ExitValidationError, mapErrorToExitCode(err))
}

func TestBuildTaskRequest(t *testing.T) {
	dir := t.TempDir()
	codePath := filepath.Join(dir, "main.go")
	require.NoError(t, os.WriteFile(codePath, []byte("package main\n"), 0o644))
	schemaPath := filepath.Join(dir, "schema.json")
	require.NoError(t, os.WriteFile(schemaPath, []byte(`{"type":"object"}`), 0o644))

	cfg := &config.ResolvedConfig{ProjectID: 7, Tier: codevf.TierFast}
	opts := taskCreateOptions{
		prompt:            "Review main.go for races.",
		maxCredits:        240,
		meta:              []string{"ticket=OPS-1"},
		attach:            []string{codePath},
		schemaFile:        schemaPath,
		newIdempotencyKey: true,
	}

	req, err := buildTaskRequest(opts, cfg)
	require.NoError(t, err)

	assert.Equal(t, int64(7), req.ProjectID)
	assert.Equal(t, codevf.TierFast, req.Tier)
	assert.Equal(t, map[string]any{"ticket": "OPS-1"}, req.Metadata)
	require.Len(t, req.Attachments, 1)
	assert.Equal(t, "main.go", req.Attachments[0].FileName)
	assert.Equal(t, map[string]any{"type": "object"}, req.ResponseSchema)
	assert.NoError(t, codevf.ValidateIdempotencyKey(req.IdempotencyKey))

	var buf bytes.Buffer
	require.NoError(t, runTaskDryRun(&buf, req))
	var payload map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &payload))
	assert.Equal(t, "fast", payload["mode"])
	assert.Equal(t, float64(7), payload["projectId"])
	assert.Len(t, payload["attachments"], 1)
}

func TestBuildTaskRequest_Errors(t *testing.T) {
	dir := t.TempDir()
	badSchema := filepath.Join(dir, "schema.json")
	require.NoError(t, os.WriteFile(badSchema, []byte(`[1,2]`), 0o644))

	cfg := &config.ResolvedConfig{ProjectID: 7, Tier: codevf.TierStandard}
	base := taskCreateOptions{prompt: "Review the handler code.", maxCredits: 240}

	t.Run("no project", func(t *testing.T) {
		_, err := buildTaskRequest(base, &config.ResolvedConfig{Tier: codevf.TierStandard})
		require.Error(t, err)
		assert.Equal(t, ExitConfigError, mapErrorToExitCode(err))
	})

	t.Run("missing attachment", func(t *testing.T) {
		opts := base
		opts.attach = []string{filepath.Join(dir, "nope.go")}
		_, err := buildTaskRequest(opts, cfg)
		assert.Error(t, err)
	})

	t.Run("unsupported attachment", func(t *testing.T) {
		path := filepath.Join(dir, "archive.zip")
		require.NoError(t, os.WriteFile(path, []byte("PK"), 0o644))
		opts := base
		opts.attach = []string{path}
		_, err := buildTaskRequest(opts, cfg)
		assert.True(t, codevf.IsAttachmentTooLarge(err), "err = %v", err)
		assert.Equal(t, ExitValidationError, mapErrorToExitCode(err))
	})

	t.Run("schema not an object", func(t *testing.T) {
		opts := base
		opts.schemaFile = badSchema
		_, err := buildTaskRequest(opts, cfg)
		assert.Error(t, err)
	})

	t.Run("bad metadata", func(t *testing.T) {
		opts := base
		opts.meta = []string{"missing-separator"}
		_, err := buildTaskRequest(opts, cfg)
		assert.Error(t, err)
	})
}

func TestRunTaskDryRun_Invalid(t *testing.T) {
	err := runTaskDryRun(&bytes.Buffer{}, codevf.TaskCreateRequest{Prompt: "short", MaxCredits: 240, ProjectID: 1})
	require.Error(t, err)
	assert.Equal(t, ExitValidationError, mapErrorToExitCode(err))
}

func TestReadPrompt(t *testing.T) {
	got, err := readPrompt("inline prompt", nil)
	require.NoError(t, err)
	assert.Equal(t, "inline prompt", got)

	got, err = readPrompt("-", strings.NewReader("  from stdin\n"))
	require.NoError(t, err)
	assert.Equal(t, "from stdin", got)
}

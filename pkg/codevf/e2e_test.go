package codevf_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/codevf/codevf-go/internal/fakeapi"
	"github.com/codevf/codevf-go/pkg/codevf"
)

const e2eAPIKey = "sk-e2e"

func startFakeService(t *testing.T, opts ...fakeapi.Option) *codevf.Client {
	t.Helper()

	store := fakeapi.NewStore(opts...)
	server := httptest.NewServer(fakeapi.NewRouter(store, e2eAPIKey, nil))
	t.Cleanup(server.Close)

	client, err := codevf.NewClient(
		codevf.WithAPIKey(e2eAPIKey),
		codevf.WithBaseURL(server.URL+fakeapi.BasePath),
		codevf.WithMaxRetries(0),
	)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return client
}

func TestEndToEnd_TaskLifecycle(t *testing.T) {
	client := startFakeService(t, fakeapi.WithAutoAdvance())
	ctx := context.Background()

	project, err := client.CreateProject(ctx, "backend", codevf.WithDescription("API services"))
	if err != nil {
		t.Fatalf("CreateProject() error = %v", err)
	}
	if project.ID <= 0 || project.Name != "backend" {
		t.Fatalf("unexpected project: %+v", project)
	}

	tags, err := client.ListTags(ctx)
	if err != nil {
		t.Fatalf("ListTags() error = %v", err)
	}
	if len(tags) != len(fakeapi.DefaultTags) {
		t.Fatalf("ListTags() returned %d tags, want %d", len(tags), len(fakeapi.DefaultTags))
	}

	tagID := tags[0].ID
	attachment, err := codevf.AttachmentFromFile("main.go", []byte("package main\n"), "")
	if err != nil {
		t.Fatalf("AttachmentFromFile() error = %v", err)
	}

	task, err := client.CreateTask(ctx, codevf.TaskCreateRequest{
		Prompt:         "Review the retry logic in main.go.",
		MaxCredits:     240,
		ProjectID:      project.ID,
		Tier:           codevf.TierFast,
		TagID:          &tagID,
		Metadata:       map[string]any{"ticket": "OPS-12"},
		IdempotencyKey: codevf.NewIdempotencyKey(),
		Attachments:    []codevf.AttachmentInput{attachment},
	})
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	if task.Status != codevf.StatusPending || task.Tier != codevf.TierFast || task.MaxCredits != 240 {
		t.Fatalf("unexpected task: %+v", task)
	}

	cost, err := codevf.CalculateFinalCreditCost(240, codevf.TierFast, tags[0].CostMultiplier)
	if err != nil {
		t.Fatalf("CalculateFinalCreditCost() error = %v", err)
	}

	balance, err := client.GetCreditBalance(ctx)
	if err != nil {
		t.Fatalf("GetCreditBalance() error = %v", err)
	}
	if !balance.OnHold.Equal(decimal.NewFromInt(cost)) {
		t.Errorf("OnHold = %s, want %d", balance.OnHold, cost)
	}
	if !balance.Total.Equal(balance.Available.Add(balance.OnHold)) {
		t.Errorf("Total %s != Available %s + OnHold %s", balance.Total, balance.Available, balance.OnHold)
	}

	waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	done, err := client.WaitForTask(waitCtx, task.ID, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("WaitForTask() error = %v", err)
	}
	if done.Status != codevf.StatusCompleted {
		t.Fatalf("Status = %s, want completed", done.Status)
	}
	result, ok := done.Result.(*codevf.TaskResult)
	if !ok {
		t.Fatalf("Result is %T, want *codevf.TaskResult", done.Result)
	}
	if result.Message == nil || *result.Message == "" {
		t.Error("expected a result message")
	}
	if done.CreditsUsed == nil || !done.CreditsUsed.Equal(decimal.NewFromInt(cost)) {
		t.Errorf("CreditsUsed = %v, want %d", done.CreditsUsed, cost)
	}

	if _, err := client.CancelTask(ctx, task.ID); !codevf.IsAPIError(err) {
		t.Errorf("CancelTask() on completed task error = %v, want API error", err)
	}
}

func TestEndToEnd_StructuredResult(t *testing.T) {
	client := startFakeService(t, fakeapi.WithAutoAdvance())
	ctx := context.Background()

	project, err := client.CreateProject(ctx, "schemas")
	if err != nil {
		t.Fatalf("CreateProject() error = %v", err)
	}

	task, err := client.CreateTask(ctx, codevf.TaskCreateRequest{
		Prompt:     "Summarise the open issues as JSON.",
		MaxCredits: 240,
		ProjectID:  project.ID,
		ResponseSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{"summary": map[string]any{"type": "string"}},
		},
	})
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}

	done, err := client.WaitForTask(ctx, task.ID, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("WaitForTask() error = %v", err)
	}
	if _, ok := done.Result.(*codevf.StructuredResult); !ok {
		t.Fatalf("Result is %T, want *codevf.StructuredResult", done.Result)
	}
}

func TestEndToEnd_CancelReturnsCredits(t *testing.T) {
	client := startFakeService(t)
	ctx := context.Background()

	project, err := client.CreateProject(ctx, "cancel")
	if err != nil {
		t.Fatalf("CreateProject() error = %v", err)
	}

	task, err := client.CreateTask(ctx, codevf.TaskCreateRequest{
		Prompt:     "Refactor the config loader.",
		MaxCredits: 240,
		ProjectID:  project.ID,
	})
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}

	result, err := client.CancelTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("CancelTask() error = %v", err)
	}
	if result["message"] != "Task cancelled" {
		t.Errorf("message = %v", result["message"])
	}

	got, err := client.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetTask() error = %v", err)
	}
	if got.Status != codevf.StatusCancelled {
		t.Errorf("Status = %s, want cancelled", got.Status)
	}

	balance, err := client.GetCreditBalance(ctx)
	if err != nil {
		t.Fatalf("GetCreditBalance() error = %v", err)
	}
	if !balance.OnHold.IsZero() || !balance.Available.Equal(fakeapi.DefaultCredits) {
		t.Errorf("balance after cancel = %+v", balance)
	}
}

func TestEndToEnd_ErrorKinds(t *testing.T) {
	client := startFakeService(t, fakeapi.WithCredits(decimal.NewFromInt(100)))
	ctx := context.Background()

	project, err := client.CreateProject(ctx, "errors")
	if err != nil {
		t.Fatalf("CreateProject() error = %v", err)
	}

	unknownTag := int64(404)
	tests := []struct {
		name string
		req  codevf.TaskCreateRequest
		kind codevf.Kind
	}{
		{
			name: "unknown project",
			req:  codevf.TaskCreateRequest{Prompt: "Check the build scripts.", MaxCredits: 240, ProjectID: 9999},
			kind: codevf.KindNotFound,
		},
		{
			name: "unknown tag",
			req:  codevf.TaskCreateRequest{Prompt: "Check the build scripts.", MaxCredits: 240, ProjectID: project.ID, TagID: &unknownTag},
			kind: codevf.KindInvalidTag,
		},
		{
			name: "insufficient credits",
			req:  codevf.TaskCreateRequest{Prompt: "Check the build scripts.", MaxCredits: 600, ProjectID: project.ID},
			kind: codevf.KindInsufficientCredits,
		},
		{
			name: "local validation",
			req:  codevf.TaskCreateRequest{Prompt: "short", MaxCredits: 60, ProjectID: project.ID},
			kind: codevf.KindValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.CreateTask(ctx, tt.req)
			if got := codevf.KindOf(err); got != tt.kind {
				t.Errorf("KindOf() = %q, want %q (err = %v)", got, tt.kind, err)
			}
		})
	}

	if _, err := client.GetTask(ctx, "missing"); !codevf.IsNotFound(err) {
		t.Errorf("GetTask(missing) error = %v, want not found", err)
	}
}

func TestEndToEnd_IdempotentReplay(t *testing.T) {
	client := startFakeService(t)
	ctx := context.Background()

	project, err := client.CreateProject(ctx, "replay")
	if err != nil {
		t.Fatalf("CreateProject() error = %v", err)
	}

	req := codevf.TaskCreateRequest{
		Prompt:         "Audit the logging setup.",
		MaxCredits:     240,
		ProjectID:      project.ID,
		IdempotencyKey: codevf.NewIdempotencyKey(),
	}

	first, err := client.CreateTask(ctx, req)
	if err != nil {
		t.Fatalf("first CreateTask() error = %v", err)
	}
	second, err := client.CreateTask(ctx, req)
	if err != nil {
		t.Fatalf("second CreateTask() error = %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("replayed task ID = %s, want %s", second.ID, first.ID)
	}

	req.Prompt = "Audit something else entirely."
	if _, err := client.CreateTask(ctx, req); !codevf.IsIdempotencyConflict(err) {
		t.Errorf("conflicting CreateTask() error = %v, want idempotency conflict", err)
	}
}

func TestEndToEnd_WrongKey(t *testing.T) {
	store := fakeapi.NewStore()
	server := httptest.NewServer(fakeapi.NewRouter(store, e2eAPIKey, nil))
	defer server.Close()

	client, err := codevf.NewClient(
		codevf.WithAPIKey("sk-wrong"),
		codevf.WithBaseURL(server.URL+fakeapi.BasePath),
	)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	if _, err := client.GetCreditBalance(context.Background()); !codevf.IsAuthentication(err) {
		t.Errorf("GetCreditBalance() error = %v, want authentication error", err)
	}
}

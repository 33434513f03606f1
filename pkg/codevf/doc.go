// Package codevf provides a Go SDK for the CodeVF task API.
//
// CodeVF accepts natural-language work requests ("tasks") against a project,
// optionally with file attachments, and returns results once an engineer has
// completed them. The SDK validates requests locally, talks JSON over HTTPS,
// and maps failures onto typed errors.
//
// # Getting Started
//
// Create a client. The API key falls back to the CODEVF_API_KEY environment
// variable:
//
//	client, err := codevf.NewClient(
//	    codevf.WithAPIKey("sk-..."),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Projects
//
// Creating a project is idempotent by name:
//
//	project, err := client.CreateProject(ctx, "backend",
//	    codevf.WithDescription("API service reviews"),
//	)
//
// # Creating Tasks
//
//	task, err := client.CreateTask(ctx, codevf.TaskCreateRequest{
//	    Prompt:     "Review the retry logic in the attached file.",
//	    MaxCredits: 240,
//	    ProjectID:  project.ID,
//	    Tier:       codevf.TierFast,
//	    Attachments: []codevf.AttachmentInput{
//	        {FileName: "retry.go", MimeType: "text/x-go", Content: src},
//	    },
//	    IdempotencyKey: codevf.NewIdempotencyKey(),
//	})
//
// Requests are validated before anything is sent: prompt length, the global
// and per-tier maxCredits ranges, attachment count, size and encoding, the
// idempotency key (UUID v4), the tag ID and metadata keys.
//
// # Task Results
//
// Poll a task until it completes:
//
//	task, err = client.WaitForTask(ctx, task.ID, 2*time.Second)
//
// Inspect the result:
//
//	switch r := task.Result.(type) {
//	case *codevf.TaskResult:
//	    fmt.Println(*r.Message, len(r.Deliverables))
//	case *codevf.StructuredResult:
//	    var report SecurityReport
//	    err = r.Decode(&report)
//	}
//
// A task created with a ResponseSchema always yields a *StructuredResult.
//
// Cancel a task:
//
//	result, err := client.CancelTask(ctx, task.ID)
//
// # Credits and Tags
//
//	balance, err := client.GetCreditBalance(ctx)
//	tags, err := client.ListTags(ctx)
//
// Estimate the cost of a task before submitting it:
//
//	cost, err := codevf.CalculateFinalCreditCost(240, codevf.TierFast, tags[0].CostMultiplier)
//
// # Error Handling
//
// Every failure is an *Error with a Kind. Helpers test for each kind:
//
//	task, err := client.GetTask(ctx, id)
//	if err != nil {
//	    if codevf.IsNotFound(err) {
//	        // Task doesn't exist
//	    } else if codevf.IsValidation(err) {
//	        // Rejected locally, nothing was sent
//	    } else if codevf.IsConnection(err) {
//	        // No response from the service
//	    }
//	}
//
// Errors from the service carry the HTTP status and the decoded body:
//
//	var apiErr *codevf.Error
//	if errors.As(err, &apiErr) {
//	    log.Println(apiErr.Status, apiErr.Code, apiErr.Body)
//	}
//
// # Configuration Options
//
//	codevf.WithAPIKey(key)               // API key (default: $CODEVF_API_KEY)
//	codevf.WithBaseURL(url)              // Base URL (default: https://codevf.com/api/v1/)
//	codevf.WithTimeout(duration)         // Per-request timeout (default: 60s)
//	codevf.WithMaxRetries(n)             // Retries on 502/503/504 (default: 3)
//	codevf.WithRetryWait(minWait, max)   // Backoff bounds between retries
//	codevf.WithHTTPClient(client)        // Replace the transport
//	codevf.WithLogger(logger)            // Debug logging via log/slog
package codevf

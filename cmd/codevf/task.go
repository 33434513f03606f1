package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/codevf/codevf-go/internal/config"
	"github.com/codevf/codevf-go/pkg/codevf"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Create and track tasks",
}

var taskCreateCmd = &cobra.Command{
	Use:   "create <prompt>",
	Short: "Create a task",
	Long: `Create a task for a CodeVF engineer.

Pass "-" as the prompt to read it from stdin. The project and tier default to
the values in codevf.toml or CODEVF_PROJECT_ID and CODEVF_TIER.

With --dry-run the request is validated and printed without being sent.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		opts, err := taskCreateOptionsFromFlags(cmd, args[0])
		if err != nil {
			handleError(err)
		}

		o := globalOverrides()
		o.ProjectID = opts.projectID
		o.Tier = opts.tier
		cfg, err := loadConfig(o)
		if err != nil {
			handleError(err)
		}

		req, err := buildTaskRequest(opts, cfg)
		if err != nil {
			handleError(err)
		}

		if opts.dryRun {
			if err := runTaskDryRun(os.Stdout, req); err != nil {
				handleError(err)
			}
			return
		}

		c, err := newClient(cfg)
		if err != nil {
			handleError(err)
		}

		if err := runTaskCreate(context.Background(), os.Stdout, c, req, opts.wait, opts.interval); err != nil {
			handleError(err)
		}
	},
}

var taskGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show a task",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		c, err := getClient()
		if err != nil {
			handleError(err)
		}

		if err := runTaskGet(context.Background(), os.Stdout, c, args[0]); err != nil {
			handleError(err)
		}
	},
}

var taskCancelCmd = &cobra.Command{
	Use:   "cancel <id>",
	Short: "Cancel a task",
	Long:  `Cancel a pending or processing task. Held credits are returned.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		c, err := getClient()
		if err != nil {
			handleError(err)
		}

		if err := runTaskCancel(context.Background(), os.Stdout, c, args[0]); err != nil {
			handleError(err)
		}
	},
}

var taskWaitCmd = &cobra.Command{
	Use:   "wait <id>",
	Short: "Wait for a task to finish",
	Long: `Poll a task until it is completed or cancelled, then print it.

--timeout bounds each request; --wait-timeout bounds the whole wait.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		interval, _ := cmd.Flags().GetDuration("interval")
		waitTimeout, _ := cmd.Flags().GetDuration("wait-timeout")

		c, err := getClient()
		if err != nil {
			handleError(err)
		}

		ctx := context.Background()
		if waitTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, waitTimeout)
			defer cancel()
		}

		if err := runTaskWait(ctx, os.Stdout, c, args[0], interval); err != nil {
			handleError(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(taskCmd)

	taskCmd.AddCommand(taskCreateCmd)
	taskCmd.AddCommand(taskGetCmd)
	taskCmd.AddCommand(taskCancelCmd)
	taskCmd.AddCommand(taskWaitCmd)

	f := taskCreateCmd.Flags()
	f.Int64P("max-credits", "c", 0, "Maximum credits to spend (required)")
	f.Int64P("project-id", "p", 0, "Project ID (default from codevf.toml)")
	f.StringP("tier", "t", "", "Service tier: realtime_answer, fast or standard")
	f.Int64("tag-id", 0, "Expertise tag ID (see 'codevf tags list')")
	f.String("idempotency-key", "", "Idempotency key (UUID v4)")
	f.Bool("new-idempotency-key", false, "Generate a fresh idempotency key")
	f.StringArrayP("meta", "m", nil, "Metadata as key=value (repeatable)")
	f.StringArrayP("attach", "a", nil, "File to attach (repeatable)")
	f.String("schema", "", "Path to a JSON Schema for structured output")
	f.Bool("dry-run", false, "Validate and print the request without sending it")
	f.BoolP("wait", "w", false, "Wait for the task to finish")
	f.Duration("interval", codevf.DefaultPollInterval, "Poll interval with --wait")
	taskCreateCmd.MarkFlagRequired("max-credits")
	taskCreateCmd.MarkFlagsMutuallyExclusive("idempotency-key", "new-idempotency-key")

	taskWaitCmd.Flags().Duration("interval", codevf.DefaultPollInterval, "Poll interval")
	taskWaitCmd.Flags().Duration("wait-timeout", 0, "Give up after this long (0 waits forever)")
}

// taskCreateOptions holds the raw inputs of 'task create'.
type taskCreateOptions struct {
	prompt            string
	maxCredits        int64
	projectID         int64
	tier              string
	tagID             *int64
	idempotencyKey    string
	newIdempotencyKey bool
	meta              []string
	attach            []string
	schemaFile        string
	dryRun            bool
	wait              bool
	interval          time.Duration
}

func taskCreateOptionsFromFlags(cmd *cobra.Command, promptArg string) (taskCreateOptions, error) {
	f := cmd.Flags()
	opts := taskCreateOptions{}
	opts.maxCredits, _ = f.GetInt64("max-credits")
	opts.projectID, _ = f.GetInt64("project-id")
	opts.tier, _ = f.GetString("tier")
	opts.idempotencyKey, _ = f.GetString("idempotency-key")
	opts.newIdempotencyKey, _ = f.GetBool("new-idempotency-key")
	opts.meta, _ = f.GetStringArray("meta")
	opts.attach, _ = f.GetStringArray("attach")
	opts.schemaFile, _ = f.GetString("schema")
	opts.dryRun, _ = f.GetBool("dry-run")
	opts.wait, _ = f.GetBool("wait")
	opts.interval, _ = f.GetDuration("interval")

	if f.Changed("tag-id") {
		id, _ := f.GetInt64("tag-id")
		opts.tagID = &id
	}

	prompt, err := readPrompt(promptArg, cmd.InOrStdin())
	if err != nil {
		return opts, err
	}
	opts.prompt = prompt
	return opts, nil
}

func readPrompt(arg string, stdin io.Reader) (string, error) {
	if arg != "-" {
		return arg, nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read prompt from stdin: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// buildTaskRequest turns CLI inputs into an SDK request. Project and tier
// come from cfg, which already has the flag values applied.
func buildTaskRequest(opts taskCreateOptions, cfg *config.ResolvedConfig) (codevf.TaskCreateRequest, error) {
	req := codevf.TaskCreateRequest{
		Prompt:         opts.prompt,
		MaxCredits:     opts.maxCredits,
		ProjectID:      cfg.ProjectID,
		Tier:           cfg.Tier,
		TagID:          opts.tagID,
		IdempotencyKey: opts.idempotencyKey,
	}

	if req.ProjectID == 0 {
		return req, &configError{err: errors.New("no project configured: pass --project-id or set project_id in codevf.toml")}
	}

	if opts.newIdempotencyKey {
		req.IdempotencyKey = codevf.NewIdempotencyKey()
	}

	meta, err := parseMeta(opts.meta)
	if err != nil {
		return req, err
	}
	req.Metadata = meta

	for _, path := range opts.attach {
		data, err := os.ReadFile(path)
		if err != nil {
			return req, fmt.Errorf("failed to read attachment: %w", err)
		}
		in, err := codevf.AttachmentFromFile(filepath.Base(path), data, "")
		if err != nil {
			return req, err
		}
		req.Attachments = append(req.Attachments, in)
	}

	if opts.schemaFile != "" {
		schema, err := readSchema(opts.schemaFile)
		if err != nil {
			return req, err
		}
		req.ResponseSchema = schema
	}

	return req, nil
}

func readSchema(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema: %w", err)
	}
	var schema map[string]any
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("invalid schema %s: %w", path, err)
	}
	if schema == nil {
		return nil, fmt.Errorf("invalid schema %s: must be a JSON object", path)
	}
	return schema, nil
}

func runTaskDryRun(w io.Writer, req codevf.TaskCreateRequest) error {
	payload, err := codevf.BuildTaskPayload(req)
	if err != nil {
		return err
	}
	printPayload(w, payload)
	return nil
}

func runTaskCreate(ctx context.Context, w io.Writer, c *codevf.Client, req codevf.TaskCreateRequest, wait bool, interval time.Duration) error {
	task, err := c.CreateTask(ctx, req)
	if err != nil {
		return err
	}

	if wait {
		task, err = c.WaitForTask(ctx, task.ID, interval)
		if err != nil {
			return err
		}
	}

	printTask(w, task, jsonOutput)
	return nil
}

func runTaskGet(ctx context.Context, w io.Writer, c *codevf.Client, id string) error {
	task, err := c.GetTask(ctx, id)
	if err != nil {
		return err
	}

	printTask(w, task, jsonOutput)
	return nil
}

func runTaskCancel(ctx context.Context, w io.Writer, c *codevf.Client, id string) error {
	result, err := c.CancelTask(ctx, id)
	if err != nil {
		return err
	}

	printCancelResult(w, id, result, jsonOutput)
	return nil
}

func runTaskWait(ctx context.Context, w io.Writer, c *codevf.Client, id string, interval time.Duration) error {
	task, err := c.WaitForTask(ctx, id, interval)
	if err != nil {
		return err
	}

	printTask(w, task, jsonOutput)
	return nil
}

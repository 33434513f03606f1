package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/codevf/codevf-go/pkg/codevf"
)

const timeLayout = "2006-01-02 15:04:05"

func writeJSON(w io.Writer, v any) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}

// taskView is the JSON form of a task printed by the CLI.
type taskView struct {
	ID             string           `json:"id"`
	Status         string           `json:"status"`
	Mode           string           `json:"mode"`
	MaxCredits     int64            `json:"maxCredits"`
	CreatedAt      codevf.Timestamp `json:"createdAt"`
	CreditsUsed    *decimal.Decimal `json:"creditsUsed,omitempty"`
	ResponseSchema map[string]any   `json:"responseSchema,omitempty"`
	Result         any              `json:"result,omitempty"`
}

type resultView struct {
	Message      *string              `json:"message"`
	Deliverables []codevf.Deliverable `json:"deliverables"`
}

func newTaskView(task *codevf.TaskResponse) taskView {
	v := taskView{
		ID:             task.ID,
		Status:         string(task.Status),
		Mode:           string(task.Tier),
		MaxCredits:     task.MaxCredits,
		CreatedAt:      task.CreatedAt,
		CreditsUsed:    task.CreditsUsed,
		ResponseSchema: task.ResponseSchema,
	}
	switch r := task.Result.(type) {
	case *codevf.TaskResult:
		v.Result = resultView{Message: r.Message, Deliverables: r.Deliverables}
	case *codevf.StructuredResult:
		v.Result = r.Raw
	}
	return v
}

// printTask prints a single task to the writer
func printTask(w io.Writer, task *codevf.TaskResponse, jsonOutput bool) {
	if jsonOutput {
		writeJSON(w, newTaskView(task))
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", task.ID)
	fmt.Fprintf(tw, "Status:\t%s\n", task.Status)
	fmt.Fprintf(tw, "Tier:\t%s\n", task.Tier)
	fmt.Fprintf(tw, "Max Credits:\t%d\n", task.MaxCredits)
	if task.CreditsUsed != nil {
		fmt.Fprintf(tw, "Credits Used:\t%s\n", task.CreditsUsed.String())
	}
	fmt.Fprintf(tw, "Created:\t%s\n", task.CreatedAt.Format(timeLayout))

	switch r := task.Result.(type) {
	case *codevf.TaskResult:
		if r.Message != nil {
			fmt.Fprintf(tw, "Message:\t%s\n", *r.Message)
		}
		for _, d := range r.Deliverables {
			fmt.Fprintf(tw, "Deliverable:\t%s\t%s\n", d.FileName, d.URL)
		}
		tw.Flush()
	case *codevf.StructuredResult:
		tw.Flush()
		fmt.Fprintln(w, "Result:")
		pretty, err := indentJSON(r.Raw)
		if err != nil {
			fmt.Fprintln(w, string(r.Raw))
			return
		}
		fmt.Fprintln(w, string(pretty))
	default:
		tw.Flush()
	}
}

func indentJSON(raw json.RawMessage) ([]byte, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return json.MarshalIndent(v, "", "  ")
}

// printPayload prints a validated request body. It is always JSON.
func printPayload(w io.Writer, payload *codevf.TaskPayload) {
	writeJSON(w, payload)
}

func printProject(w io.Writer, project *codevf.Project, jsonOutput bool) {
	if jsonOutput {
		writeJSON(w, map[string]any{
			"id":          project.ID,
			"name":        project.Name,
			"description": project.Description,
			"createdAt":   project.CreatedAt,
		})
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%d\n", project.ID)
	fmt.Fprintf(tw, "Name:\t%s\n", project.Name)
	if project.Description != nil && *project.Description != "" {
		fmt.Fprintf(tw, "Description:\t%s\n", *project.Description)
	}
	fmt.Fprintf(tw, "Created:\t%s\n", project.CreatedAt.Format(timeLayout))
	tw.Flush()
}

func printCancelResult(w io.Writer, taskID string, result codevf.CancelResult, jsonOutput bool) {
	if jsonOutput {
		writeJSON(w, result)
		return
	}

	msg, _ := result["message"].(string)
	if msg == "" {
		msg = "Task cancelled"
	}
	fmt.Fprintf(w, "%s: %s\n", taskID, msg)
	if returned, ok := result["creditsReturned"]; ok {
		fmt.Fprintf(w, "Credits returned: %v\n", returned)
	}
}

func printBalance(w io.Writer, b *codevf.CreditBalance, jsonOutput bool) {
	if jsonOutput {
		writeJSON(w, map[string]decimal.Decimal{
			"available": b.Available,
			"onHold":    b.OnHold,
			"total":     b.Total,
		})
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Available:\t%s\n", b.Available.String())
	fmt.Fprintf(tw, "On Hold:\t%s\n", b.OnHold.String())
	fmt.Fprintf(tw, "Total:\t%s\n", b.Total.String())
	tw.Flush()
}

type tagView struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name"`
	DisplayName    string          `json:"displayName"`
	Description    *string         `json:"description,omitempty"`
	CostMultiplier decimal.Decimal `json:"costMultiplier"`
	IsActive       bool            `json:"isActive"`
	SortOrder      int             `json:"sortOrder"`
}

func printTags(w io.Writer, tags []codevf.Tag, jsonOutput bool) {
	if jsonOutput {
		views := make([]tagView, 0, len(tags))
		for _, t := range tags {
			views = append(views, tagView{
				ID:             t.ID,
				Name:           t.Name,
				DisplayName:    t.DisplayName,
				Description:    t.Description,
				CostMultiplier: t.CostMultiplier,
				IsActive:       t.IsActive,
				SortOrder:      t.SortOrder,
			})
		}
		writeJSON(w, map[string]any{"data": views})
		return
	}

	if len(tags) == 0 {
		fmt.Fprintln(w, "No tags found")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\tNAME\tDISPLAY NAME\tMULTIPLIER\n")
	fmt.Fprintf(tw, "--\t----\t------------\t----------\n")
	for _, t := range tags {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", t.ID, t.Name, t.DisplayName, t.CostMultiplier.String())
	}
	tw.Flush()
}

// costEstimate is the output of the cost command.
type costEstimate struct {
	MaxCredits    int64           `json:"maxCredits"`
	Mode          codevf.Tier     `json:"mode"`
	SLAMultiplier decimal.Decimal `json:"slaMultiplier"`
	TagMultiplier decimal.Decimal `json:"tagMultiplier"`
	FinalCost     int64           `json:"finalCost"`
}

func printCost(w io.Writer, est costEstimate, jsonOutput bool) {
	if jsonOutput {
		writeJSON(w, est)
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Max Credits:\t%d\n", est.MaxCredits)
	fmt.Fprintf(tw, "Tier:\t%s (x%s)\n", est.Mode, est.SLAMultiplier.String())
	fmt.Fprintf(tw, "Tag Multiplier:\tx%s\n", est.TagMultiplier.String())
	fmt.Fprintf(tw, "Final Cost:\t%d\n", est.FinalCost)
	tw.Flush()
}

// printError prints an error message
func printError(w io.Writer, err error, jsonOutput bool) {
	if jsonOutput {
		body := map[string]any{"message": err.Error()}
		var apiErr *codevf.Error
		if errors.As(err, &apiErr) {
			body["kind"] = apiErr.Kind
			if apiErr.Status != 0 {
				body["status"] = apiErr.Status
			}
			if apiErr.Code != "" {
				body["code"] = apiErr.Code
			}
			if len(apiErr.Context) > 0 {
				body["context"] = apiErr.Context
			}
		}
		writeJSON(w, map[string]any{"error": body})
		return
	}

	fmt.Fprintf(w, "Error: %s\n", err.Error())
}

// printSuccess prints a success message
func printSuccess(w io.Writer, message string, jsonOutput bool) {
	if jsonOutput {
		writeJSON(w, map[string]any{"message": message})
		return
	}

	fmt.Fprintln(w, message)
}

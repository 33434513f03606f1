package main

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/codevf/codevf-go/pkg/codevf"
)

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "Inspect expertise tags",
}

var tagsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List expertise tags",
	Long:  `List the expertise tags a task can request and the cost multiplier of each.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		c, err := getClient()
		if err != nil {
			handleError(err)
		}

		if err := runTagsList(context.Background(), os.Stdout, c); err != nil {
			handleError(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(tagsCmd)
	tagsCmd.AddCommand(tagsListCmd)
}

func runTagsList(ctx context.Context, w io.Writer, c *codevf.Client) error {
	tags, err := c.ListTags(ctx)
	if err != nil {
		return err
	}

	printTags(w, tags, jsonOutput)
	return nil
}

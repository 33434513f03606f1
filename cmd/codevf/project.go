package main

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/codevf/codevf-go/pkg/codevf"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects",
	Long:  `Projects group tasks. Create one and put its ID in codevf.toml as project_id.`,
}

var projectCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a project",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		description, _ := cmd.Flags().GetString("description")

		c, err := getClient()
		if err != nil {
			handleError(err)
		}

		if err := runProjectCreate(context.Background(), os.Stdout, c, args[0], description); err != nil {
			handleError(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(projectCmd)
	projectCmd.AddCommand(projectCreateCmd)

	projectCreateCmd.Flags().StringP("description", "d", "", "Project description")
}

func runProjectCreate(ctx context.Context, w io.Writer, c *codevf.Client, name, description string) error {
	var opts []codevf.ProjectOption
	if description != "" {
		opts = append(opts, codevf.WithDescription(description))
	}

	project, err := c.CreateProject(ctx, name, opts...)
	if err != nil {
		return err
	}

	printProject(w, project, jsonOutput)
	return nil
}

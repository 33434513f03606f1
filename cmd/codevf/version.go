package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/codevf/codevf-go/pkg/codevf"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the client version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		printSuccess(os.Stdout, fmt.Sprintf("codevf %s", codevf.Version), jsonOutput)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

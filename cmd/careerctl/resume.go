package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Resume tools",
}

var resumeAnalyzeCmd = &cobra.Command{
	Use:   "analyze <file.pdf|file.docx>",
	Short: "Analyze a PDF or DOCX resume",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open resume: %w", err)
		}
		defer f.Close()

		resp, err := newClient(cmd).AnalyzeResume(cmd.Context(), filepath.Base(args[0]), f)
		if err != nil {
			return err
		}
		return printJSON(cmd, resp.Analysis)
	},
}

func init() {
	resumeCmd.AddCommand(resumeAnalyzeCmd)
}

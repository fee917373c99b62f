package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/terra-clan/careerprep/pkg/client"
)

const defaultServer = "http://localhost:8080"

var rootCmd = &cobra.Command{
	Use:           "careerctl",
	Short:         "Command line client for careerprep",
	Long:          "careerctl talks to a careerprep server: career assessment, counselor chat, resume analysis and mock interviews.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("server", "", "careerprep base URL (overrides CAREERPREP_URL env var)")
	rootCmd.PersistentFlags().Duration("timeout", 2*time.Minute, "request timeout")

	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(careersCmd)
	rootCmd.AddCommand(assessCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(interviewCmd)
}

// newClient builds an SDK client using --server first, then CAREERPREP_URL,
// then the local default.
func newClient(cmd *cobra.Command) *client.Client {
	server, _ := cmd.Flags().GetString("server")
	if server == "" {
		server = os.Getenv("CAREERPREP_URL")
	}
	if server == "" {
		server = defaultServer
	}
	timeout, _ := cmd.Flags().GetDuration("timeout")
	return client.NewClient(server, client.WithTimeout(timeout))
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to print result: %w", err)
	}
	return nil
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the server is up",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := newClient(cmd).Health(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "ok")
		return nil
	},
}

var careersCmd = &cobra.Command{
	Use:   "careers",
	Short: "List career paths",
	RunE: func(cmd *cobra.Command, args []string) error {
		careers, err := newClient(cmd).ListCareers(cmd.Context())
		if err != nil {
			return err
		}
		for _, c := range careers {
			fmt.Fprintf(cmd.OutOrStdout(), "%-24s %s %s\n", c.ID, c.Icon, c.Title)
		}
		return nil
	},
}

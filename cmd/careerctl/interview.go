package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/terra-clan/careerprep/internal/interview"
	"github.com/terra-clan/careerprep/internal/models"
	"github.com/terra-clan/careerprep/pkg/client"
)

var interviewCmd = &cobra.Command{
	Use:   "interview",
	Short: "Mock interview sessions",
}

var interviewRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an interactive mock interview",
	Example: "  careerctl interview run --role \"Backend Developer\" --resume cv.pdf",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient(cmd)
		session, err := startSession(cmd, c)
		if err != nil {
			return err
		}
		return runInterview(cmd, c, session, cmd.InOrStdin())
	},
}

var interviewStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start an interview session and print its first question",
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := startSession(cmd, newClient(cmd))
		if err != nil {
			return err
		}
		return printJSON(cmd, session)
	},
}

var interviewAnswerCmd = &cobra.Command{
	Use:   "answer <id> <answer>",
	Short: "Answer the current question of a session",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := newClient(cmd).SubmitAnswer(cmd.Context(), args[0], strings.Join(args[1:], " "))
		return printSession(cmd, session, err)
	},
}

var interviewRetryCmd = &cobra.Command{
	Use:   "retry <id>",
	Short: "Retry the last failed turn of a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := newClient(cmd).RetryTurn(cmd.Context(), args[0])
		return printSession(cmd, session, err)
	},
}

var interviewShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show an interview session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := newClient(cmd).GetInterview(cmd.Context(), args[0])
		return printSession(cmd, session, err)
	},
}

var interviewListCmd = &cobra.Command{
	Use:   "list",
	Short: "List interview sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		status, _ := cmd.Flags().GetString("status")
		limit, _ := cmd.Flags().GetInt("limit")

		sessions, err := newClient(cmd).ListInterviews(cmd.Context(), client.ListOptions{Status: status, Limit: limit})
		if err != nil {
			return err
		}
		for _, s := range sessions {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %-16s %d/%d  %s\n", s.ID, s.Status, s.QuestionNumber, interview.TotalQuestions, s.Role)
		}
		return nil
	},
}

var interviewResultCmd = &cobra.Command{
	Use:   "result <id>",
	Short: "Show the stored result of an interview",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := newClient(cmd).GetResult(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd, result)
	},
}

func init() {
	for _, c := range []*cobra.Command{interviewRunCmd, interviewStartCmd} {
		c.Flags().String("role", "", "role to interview for (required)")
		c.Flags().String("resume", "", "PDF or DOCX resume (required)")
		c.MarkFlagRequired("role")
		c.MarkFlagRequired("resume")
	}
	interviewListCmd.Flags().String("status", "", "filter by status")
	interviewListCmd.Flags().Int("limit", 20, "maximum sessions to list")

	interviewCmd.AddCommand(interviewRunCmd)
	interviewCmd.AddCommand(interviewStartCmd)
	interviewCmd.AddCommand(interviewAnswerCmd)
	interviewCmd.AddCommand(interviewRetryCmd)
	interviewCmd.AddCommand(interviewShowCmd)
	interviewCmd.AddCommand(interviewListCmd)
	interviewCmd.AddCommand(interviewResultCmd)
}

func startSession(cmd *cobra.Command, c *client.Client) (*models.InterviewSession, error) {
	role, _ := cmd.Flags().GetString("role")
	path, _ := cmd.Flags().GetString("resume")

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open resume: %w", err)
	}
	defer f.Close()

	return c.StartInterviewWithFile(cmd.Context(), role, filepath.Base(path), f)
}

// printSession prints the session even when the turn failed, so a pending
// retry is visible.
func printSession(cmd *cobra.Command, session *models.InterviewSession, err error) error {
	if session != nil {
		if printErr := printJSON(cmd, session); printErr != nil {
			return printErr
		}
	}
	return err
}

// runInterview asks questions until the session finishes. A failed turn
// is retried on request without asking for the answer again.
func runInterview(cmd *cobra.Command, c *client.Client, session *models.InterviewSession, in io.Reader) error {
	out := cmd.OutOrStdout()
	scanner := bufio.NewScanner(in)

	for session.Status == models.InterviewAwaitingAnswer {
		var err error
		if session.RetryPending() {
			fmt.Fprint(out, "The last answer could not be processed. Retry? [Y/n] ")
			if !scanner.Scan() {
				return scanner.Err()
			}
			if strings.EqualFold(strings.TrimSpace(scanner.Text()), "n") {
				fmt.Fprintf(out, "Session %s kept, resume it with: careerctl interview retry %s\n", session.ID, session.ID)
				return nil
			}
			session, err = retryOrKeep(cmd, c, session)
		} else {
			fmt.Fprintf(out, "\nQuestion %d/%d: %s\n> ", session.QuestionNumber, interview.TotalQuestions, session.CurrentQuestion)
			if !scanner.Scan() {
				return scanner.Err()
			}
			answer := strings.TrimSpace(scanner.Text())
			if answer == "" {
				continue
			}
			var next *models.InterviewSession
			next, err = c.SubmitAnswer(cmd.Context(), session.ID, answer)
			if next != nil {
				session = next
			}
		}
		if err != nil && !isTurnFailure(err) {
			return err
		}
	}

	if session.Evaluation == nil {
		return fmt.Errorf("interview ended with status %s", session.Status)
	}
	fmt.Fprintf(out, "\nInterview finished. Score: %d/100\n", session.Evaluation.Score)
	return printJSON(cmd, session.Evaluation)
}

func retryOrKeep(cmd *cobra.Command, c *client.Client, session *models.InterviewSession) (*models.InterviewSession, error) {
	next, err := c.RetryTurn(cmd.Context(), session.ID)
	if next != nil {
		return next, err
	}
	return session, err
}

func isTurnFailure(err error) bool {
	var apiErr *client.APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusBadGateway
}

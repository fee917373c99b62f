package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/terra-clan/careerprep/internal/models"
)

var assessCmd = &cobra.Command{
	Use:   "assess",
	Short: "Score assessment answers and get a career roadmap",
	Example: "  careerctl assess --answer q1=4 --answer q2=3 --skill Python --skill SQL\n" +
		"  careerctl assess --questions",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient(cmd)

		if showQuestions, _ := cmd.Flags().GetBool("questions"); showQuestions {
			questions, err := c.ListQuestions(cmd.Context())
			if err != nil {
				return err
			}
			for _, q := range questions {
				fmt.Fprintf(cmd.OutOrStdout(), "%s [%s] %s\n", q.ID, q.Category, q.Text)
				for _, o := range q.Options {
					fmt.Fprintf(cmd.OutOrStdout(), "    %d  %s\n", o.Value, o.Label)
				}
			}
			return nil
		}

		answers, _ := cmd.Flags().GetStringToInt("answer")
		if len(answers) == 0 {
			return errors.New("at least one --answer id=value is required")
		}
		skills, _ := cmd.Flags().GetStringSlice("skill")

		resp, err := c.Assess(cmd.Context(), models.AssessmentRequest{
			Answers:      answers,
			ResumeSkills: skills,
		})
		if err != nil {
			return err
		}
		return printJSON(cmd, resp)
	},
}

var chatCmd = &cobra.Command{
	Use:   "chat <message>",
	Short: "Ask the career counselor a question",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		skills, _ := cmd.Flags().GetStringSlice("skill")
		target, _ := cmd.Flags().GetString("target")

		req := models.ChatRequest{Message: strings.Join(args, " ")}
		if len(skills) > 0 || target != "" {
			req.Context = &models.ChatContext{ResumeSkills: skills, TargetCareer: target}
		}

		resp, err := newClient(cmd).Chat(cmd.Context(), req)
		if resp != nil {
			fmt.Fprintln(cmd.OutOrStdout(), resp.Reply)
		}
		return err
	},
}

func init() {
	assessCmd.Flags().StringToInt("answer", nil, "answer as question-id=value, repeatable")
	assessCmd.Flags().StringSlice("skill", nil, "skill from your resume, repeatable")
	assessCmd.Flags().Bool("questions", false, "list the assessment questions instead of scoring")

	chatCmd.Flags().StringSlice("skill", nil, "skill from your resume, repeatable")
	chatCmd.Flags().String("target", "", "target career")
}

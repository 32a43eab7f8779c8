package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/crispterm/internal/interview"
	"github.com/abhisek/crispterm/internal/remote"
)

var candidatesCmd = &cobra.Command{
	Use:   "candidates",
	Short: "Browse finalized interviews on the remote store",
}

var candidatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List finalized interviews",
	RunE: func(cmd *cobra.Command, args []string) error {
		sort, _ := cmd.Flags().GetString("sort")
		query, _ := cmd.Flags().GetString("query")

		store, err := remoteStoreFromConfig(cmd)
		if err != nil {
			return err
		}

		list, err := store.List(context.Background(), remote.ListOptions{Query: query, Sort: sort})
		if err != nil {
			return fmt.Errorf("list candidates: %w", err)
		}

		if len(list) == 0 {
			fmt.Println("No finalized interviews found.")
			return nil
		}

		fmt.Printf("%-24s  %-28s  %5s  %-16s  %s\n",
			"Name", "Email", "Score", "Completed", "Session")
		fmt.Println(strings.Repeat("─", 110))
		for _, c := range list {
			fmt.Printf("%-24s  %-28s  %4d%%  %-16s  %s\n",
				clip(c.Name, 24),
				clip(c.Email, 28),
				c.FinalScore,
				formatEpochMs(c.CreatedAt),
				c.SessionID,
			)
		}
		return nil
	},
}

var candidatesGetCmd = &cobra.Command{
	Use:   "get <session-id>",
	Short: "Show one candidate's full interview",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := remoteStoreFromConfig(cmd)
		if err != nil {
			return err
		}

		s, err := store.Get(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("get interview: %w", err)
		}

		sep := strings.Repeat("─", 72)

		fmt.Printf("Candidate:  %s\n", s.Profile.Name)
		fmt.Printf("Email:      %s\n", s.Profile.Email)
		fmt.Printf("Phone:      %s\n", s.Profile.Phone)
		fmt.Printf("Role:       %s\n", s.Role)
		if s.FinalScore != nil {
			fmt.Printf("Score:      %d/100\n", *s.FinalScore)
		}
		fmt.Printf("Completed:  %s\n", formatEpochMs(s.CompletedAt))

		for _, q := range s.Questions {
			fmt.Println()
			fmt.Println(sep)
			score := "-"
			if q.Score != nil {
				score = fmt.Sprintf("%d/%d", *q.Score, interview.MaxQuestionScore)
			}
			fmt.Printf("Q%d [%s] %s\n", q.Index+1, q.Difficulty, score)
			fmt.Println(q.Question)
			if q.Answer != "" {
				fmt.Println()
				fmt.Println(q.Answer)
			}
		}

		if s.Summary != "" {
			fmt.Println()
			fmt.Println(sep)
			fmt.Println("SUMMARY")
			fmt.Println(sep)
			fmt.Println(s.Summary)
		}
		return nil
	},
}

// remoteStoreFromConfig builds the HTTP store from the configured base
// URL, failing when none is set.
func remoteStoreFromConfig(cmd *cobra.Command) (remote.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.Remote.BaseURL == "" {
		return nil, fmt.Errorf("no remote store configured; set remote.base_url in the config file or CRISP_REMOTE__BASE_URL")
	}
	return remote.NewHTTPStore(cfg.Remote.BaseURL), nil
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

func formatEpochMs(ms int64) string {
	if ms == 0 {
		return "-"
	}
	return time.UnixMilli(ms).Local().Format("2006-01-02 15:04")
}

func init() {
	candidatesListCmd.Flags().StringP("sort", "s", remote.SortScoreDesc, "Sort order: -score, score, -created, created")
	candidatesListCmd.Flags().StringP("query", "q", "", "Filter by name or email substring")

	candidatesCmd.AddCommand(candidatesListCmd)
	candidatesCmd.AddCommand(candidatesGetCmd)
}

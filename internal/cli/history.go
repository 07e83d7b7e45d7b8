package cli

import (
	"fmt"
	"io"

	"github.com/raphaelgruber/flirtassist/internal/models"
	"github.com/spf13/cobra"
)

var (
	historyLimit int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List conversation threads",
	Long: `List stored conversation threads, most recent first.

Examples:
  flirtassist history
  flirtassist history --limit 10`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

var recentCmd = &cobra.Command{
	Use:   "recent",
	Short: "Show the five most recent threads",
	Args:  cobra.NoArgs,
	RunE:  runRecent,
}

var showCmd = &cobra.Command{
	Use:   "show <thread-id>",
	Short: "Show a thread with its context and suggestions",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var moodsCmd = &cobra.Command{
	Use:   "moods",
	Short: "List the available moods",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, m := range models.Moods() {
			line := defaultTheme.moodStyle(m).Render(string(m))
			if m == models.DefaultMood {
				line += defaultTheme.hintStyle().Render(" (default)")
			}
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 0, "max threads (0 = all)")
}

func runHistory(cmd *cobra.Command, args []string) error {
	threads, err := threadService.List(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("list threads: %w", err)
	}
	printThreads(cmd.OutOrStdout(), threads)
	return nil
}

func runRecent(cmd *cobra.Command, args []string) error {
	threads, err := threadService.Recent(cmd.Context())
	if err != nil {
		return fmt.Errorf("list threads: %w", err)
	}
	printThreads(cmd.OutOrStdout(), threads)
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	th, err := threadService.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), defaultTheme.renderThread(*th))
	return nil
}

func printThreads(w io.Writer, threads []models.Thread) {
	if len(threads) == 0 {
		fmt.Fprintln(w, "No conversations yet. Start one with 'flirtassist suggest'.")
		return
	}
	for _, th := range threads {
		fmt.Fprintln(w, defaultTheme.renderThreadRow(th))
	}
	fmt.Fprintf(w, "\n%d thread(s)\n", len(threads))
}

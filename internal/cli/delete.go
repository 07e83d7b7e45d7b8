package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	deleteForce bool
)

var deleteCmd = &cobra.Command{
	Use:   "delete <thread-id>",
	Short: "Delete a conversation thread",
	Long: `Delete a conversation thread with its context and suggestions.

Requires confirmation unless --force is used.

Examples:
  flirtassist delete 0197a1b2-...
  flirtassist delete 0197a1b2-... --force`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "skip confirmation")
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	th, err := threadService.Get(ctx, args[0])
	if err != nil {
		return err
	}

	// Confirm deletion
	if !deleteForce {
		fmt.Fprintf(out, "About to delete: %s (%s, %d messages)\n", th.Title, th.ID, len(th.Context))
		fmt.Fprint(out, "\nContinue? [y/N]: ")

		reader := bufio.NewReader(cmd.InOrStdin())
		response, err := reader.ReadString('\n')
		if err != nil && response == "" {
			return fmt.Errorf("read input: %w", err)
		}
		response = strings.TrimSpace(strings.ToLower(response))

		if response != "y" && response != "yes" {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}

	if err := threadService.Delete(ctx, th.ID); err != nil {
		return fmt.Errorf("delete thread: %w", err)
	}

	fmt.Fprintf(out, "Deleted: %s\n", th.Title)
	return nil
}

package cli

import (
	"fmt"
	"os"

	"github.com/raphaelgruber/flirtassist/internal/models"
	"github.com/spf13/cobra"
)

var (
	contextRole string
	contextText string
)

var contextCmd = &cobra.Command{
	Use:   "context",
	Short: "Add conversation context to a thread",
	Long: `Add messages to a thread's context so later suggestions know what was said.

Subcommands:
  add     Add a single message
  import  Import a transcript file`,
}

var contextAddCmd = &cobra.Command{
	Use:   "add <thread-id>",
	Short: "Add a single message",
	Long: `Add a single message to a thread's context.

Roles: user (me), other (them, her, him), assistant (ai).

Examples:
  flirtassist context add 0197a1b2-... --role them --text "are you free friday?"
  flirtassist context add 0197a1b2-... --text "yes, what did you have in mind?"`,
	Args: cobra.ExactArgs(1),
	RunE: runContextAdd,
}

var contextImportCmd = &cobra.Command{
	Use:   "import [thread-id] <file>",
	Short: "Import a transcript file",
	Long: `Import a chat transcript into a thread. Without a thread id a new thread is
created, named after the transcript's title.

Transcript format:

  ---
  title: Sam
  mood: Funny
  ---
  them: are you coming tonight?
  me: depends who's asking

Examples:
  flirtassist context import 0197a1b2-... chat.md
  flirtassist context import chat.md`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runContextImport,
}

func init() {
	contextAddCmd.Flags().StringVarP(&contextRole, "role", "r", string(models.RoleUser), "who wrote the message (user, other, assistant)")
	contextAddCmd.Flags().StringVarP(&contextText, "text", "t", "", "message text")
	_ = contextAddCmd.MarkFlagRequired("text")

	contextCmd.AddCommand(contextAddCmd)
	contextCmd.AddCommand(contextImportCmd)
}

func runContextAdd(cmd *cobra.Command, args []string) error {
	role, err := models.ParseRole(contextRole)
	if err != nil {
		return err
	}

	th, err := threadService.AddMessage(cmd.Context(), args[0], role, contextText)
	if err != nil {
		return fmt.Errorf("add message: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Added to %s (%d messages)\n", th.Title, len(th.Context))
	return nil
}

func runContextImport(cmd *cobra.Command, args []string) error {
	threadID, path := "", args[0]
	if len(args) == 2 {
		threadID, path = args[0], args[1]
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open transcript: %w", err)
	}
	defer f.Close()

	th, err := threadService.ImportTranscript(cmd.Context(), threadID, f)
	if err != nil {
		return fmt.Errorf("import transcript: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Imported into %s (%s, %d messages)\n", th.Title, th.ID, len(th.Context))
	return nil
}

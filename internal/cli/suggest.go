package cli

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/raphaelgruber/flirtassist/internal/models"
	"github.com/raphaelgruber/flirtassist/internal/service"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	suggestMood   string
	suggestImage  string
	suggestText   string
	suggestThread string
	plainOutput   bool
)

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Get reply suggestions for a screenshot or text",
	Long: `Get reply suggestions for a chat screenshot or pasted text.

The screenshot is sent to the suggestion webhook, which reads the chat and
returns three replies in the chosen mood. Without --thread a new thread is
started; with --thread the thread's context is sent along and its
suggestions are replaced.

Examples:
  flirtassist suggest --image ~/Desktop/chat.png
  flirtassist suggest --mood Romantic --text "them: so what are you up to tonight?"
  flirtassist suggest --thread 0197a1b2-... --image chat2.png --mood Mysterious`,
	Args: cobra.NoArgs,
	RunE: runSuggest,
}

var regenerateCmd = &cobra.Command{
	Use:   "regenerate <thread-id>",
	Short: "Get fresh suggestions for a thread",
	Long: `Ask for new suggestions for an existing thread, using the thread's mood
and its context. The previous suggestions are replaced.

Examples:
  flirtassist regenerate 0197a1b2-...`,
	Args: cobra.ExactArgs(1),
	RunE: runRegenerate,
}

func init() {
	suggestCmd.Flags().StringVarP(&suggestMood, "mood", "m", string(models.DefaultMood), "mood (Funny, Romantic, Mysterious, Sexy)")
	suggestCmd.Flags().StringVarP(&suggestImage, "image", "i", "", "screenshot file")
	suggestCmd.Flags().StringVarP(&suggestText, "text", "t", "", "chat text, when there is no screenshot")
	suggestCmd.Flags().StringVar(&suggestThread, "thread", "", "existing thread to continue")

	for _, c := range []*cobra.Command{suggestCmd, regenerateCmd} {
		c.Flags().BoolVar(&plainOutput, "plain", false, "no interactive progress display")
	}
}

func runSuggest(cmd *cobra.Command, args []string) error {
	mood, err := models.ParseMood(suggestMood)
	if err != nil {
		return err
	}

	in := service.SuggestInput{
		Mood:         mood,
		ThreadID:     suggestThread,
		TextOverride: suggestText,
	}

	if suggestImage != "" {
		img, err := readImage(suggestImage)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "No image: %v\n", err)
			return nil
		}
		in.ImageBase64 = img
	}
	if in.ImageBase64 == "" && in.TextOverride == "" && in.ThreadID == "" {
		fmt.Fprintln(cmd.ErrOrStderr(), "No image: pass --image, --text or --thread.")
		return nil
	}

	res, err := suggestWithProgress(cmd, func(ctx context.Context, s *service.Suggester) (*service.SuggestResult, error) {
		return s.Suggest(ctx, in)
	})
	if err != nil {
		return err
	}

	printResult(cmd.OutOrStdout(), res)
	return nil
}

func runRegenerate(cmd *cobra.Command, args []string) error {
	res, err := suggestWithProgress(cmd, func(ctx context.Context, s *service.Suggester) (*service.SuggestResult, error) {
		return s.Regenerate(ctx, args[0])
	})
	if err != nil {
		return err
	}

	printResult(cmd.OutOrStdout(), res)
	return nil
}

// suggestWithProgress runs fn with the progress UI when stdout is a
// terminal and plainly otherwise.
func suggestWithProgress(cmd *cobra.Command, fn func(context.Context, *service.Suggester) (*service.SuggestResult, error)) (*service.SuggestResult, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if plainOutput || !isTerminal(cmd.OutOrStdout()) {
		return fn(ctx, newSuggester())
	}

	return runWithProgress(ctx, func(observe func(service.Phase)) runFunc {
		s := newSuggester(service.WithPhaseObserver(observe))
		return func(ctx context.Context) (*service.SuggestResult, error) {
			return fn(ctx, s)
		}
	})
}

func printResult(w io.Writer, res *service.SuggestResult) {
	th := res.Thread
	if res.OCRText != "" {
		fmt.Fprintf(w, "%s\n%s\n\n", defaultTheme.hintStyle().Render("Read from chat:"), res.OCRText)
	}
	fmt.Fprintf(w, "%s  %s\n", defaultTheme.titleStyle().Render(th.Title), defaultTheme.moodStyle(th.Mood).Render(string(th.Mood)))
	fmt.Fprintf(w, "%s\n\n", defaultTheme.hintStyle().Render("thread "+th.ID))
	fmt.Fprint(w, defaultTheme.renderSuggestions(th.Suggestions))
}

// readImage reads a screenshot and base64 encodes it.
func readImage(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%s does not exist", path)
		}
		return "", err
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%s is empty", path)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

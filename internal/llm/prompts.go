package llm

import (
	"fmt"
	"strings"

	"github.com/raphaelgruber/flirtassist/internal/models"
)

// SuggestionCount is how many replies the model is asked for.
const SuggestionCount = 3

// maxContextMessages caps how much thread history goes into the prompt.
const maxContextMessages = 30

var moodStyles = map[models.Mood]string{
	models.MoodFunny:      "playful and witty, light teasing, a good joke beats a compliment",
	models.MoodRomantic:   "warm and sincere, attentive to what they said, gently affectionate",
	models.MoodMysterious: "intriguing and understated, leave something unsaid, invite curiosity",
	models.MoodSexy:       "confident and flirty with tasteful innuendo, never crude or explicit",
}

func systemPrompt(mood models.Mood) string {
	style, ok := moodStyles[mood]
	if !ok {
		style = moodStyles[models.DefaultMood]
	}
	return fmt.Sprintf(`You are a dating conversation coach. You help the user reply to a chat with someone they are interested in.

Tone: %s (%s).

Rules:
- Write exactly %d alternative replies the user could send next.
- Each reply is one or two short sentences, written in the user's voice, ready to paste.
- Stay respectful. No pressure, no pickup-artist tactics, nothing explicit.
- If a screenshot is attached, read the chat in it first. Messages on the right are usually the user's, messages on the left the other person's.

Respond with a single JSON object and nothing else:
{"ocrText": "<the chat text you read from the screenshot, empty if none>", "title": "<2-4 word name for this conversation, e.g. the other person's name>", "suggestions": ["...", "...", "..."]}`,
		mood, style, SuggestionCount)
}

func userPrompt(text string, thread *models.Thread, hasImage bool) string {
	var b strings.Builder

	if thread != nil {
		if thread.Title != "" {
			fmt.Fprintf(&b, "Conversation: %s\n", thread.Title)
		}
		ctxMsgs := thread.Context
		if len(ctxMsgs) > maxContextMessages {
			ctxMsgs = ctxMsgs[len(ctxMsgs)-maxContextMessages:]
		}
		if len(ctxMsgs) > 0 {
			b.WriteString("\nEarlier messages:\n")
			for _, m := range ctxMsgs {
				fmt.Fprintf(&b, "%s: %s\n", speaker(m.Role), m.Text)
			}
		}
		if len(thread.Suggestions) > 0 {
			b.WriteString("\nPreviously suggested (offer something different):\n")
			for _, s := range thread.Suggestions {
				fmt.Fprintf(&b, "- %s\n", s.Text)
			}
		}
	}

	if text = strings.TrimSpace(text); text != "" {
		fmt.Fprintf(&b, "\nLatest chat text:\n%s\n", text)
	}
	if hasImage {
		b.WriteString("\nThe latest chat is in the attached screenshot.\n")
	}

	b.WriteString("\nSuggest the user's next reply.")
	return strings.TrimSpace(b.String())
}

func speaker(r models.Role) string {
	switch r {
	case models.RoleUser:
		return "Me"
	case models.RoleAssistant:
		return "Coach"
	default:
		return "Them"
	}
}

package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/raphaelgruber/flirtassist/internal/models"
)

// Theme holds the color scheme for terminal output.
type Theme struct {
	Status     lipgloss.Color
	Success    lipgloss.Color
	Error      lipgloss.Color
	Hint       lipgloss.Color
	ProgressBg lipgloss.Color
	Moods      map[models.Mood]lipgloss.Color
}

// defaultTheme provides default colors.
var defaultTheme = Theme{
	Status:     lipgloss.Color("#5FAFD7"), // light blue
	Success:    lipgloss.Color("#00D787"), // green
	Error:      lipgloss.Color("#FF005F"), // red
	Hint:       lipgloss.Color("#6C6C6C"), // dim gray
	ProgressBg: lipgloss.Color("#3A3A3A"), // dark gray
	Moods: map[models.Mood]lipgloss.Color{
		models.MoodFunny:      lipgloss.Color("#FFAF00"), // amber
		models.MoodRomantic:   lipgloss.Color("#FF5F87"), // pink
		models.MoodMysterious: lipgloss.Color("#AF87FF"), // violet
		models.MoodSexy:       lipgloss.Color("#D7005F"), // deep red
	},
}

// Style functions for dynamic theming
func (t Theme) statusStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Status)
}

func (t Theme) completedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Success).Bold(true)
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

func (t Theme) moodStyle(m models.Mood) lipgloss.Style {
	c, ok := t.Moods[m]
	if !ok {
		c = t.Status
	}
	return lipgloss.NewStyle().Foreground(c).Bold(true)
}

func (t Theme) titleStyle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true)
}

// renderThreadRow renders one history line.
func (t Theme) renderThreadRow(th models.Thread) string {
	return fmt.Sprintf("%s  %s  %s  %s",
		t.hintStyle().Render(th.ID),
		t.moodStyle(th.Mood).Render(fmt.Sprintf("%-10s", th.Mood)),
		t.titleStyle().Render(th.Title),
		t.hintStyle().Render(fmt.Sprintf("(%d msgs, %s)", len(th.Context), relativeTime(th.UpdatedAt.Time(), time.Now()))),
	)
}

// renderThread renders a thread with its context and suggestions.
func (t Theme) renderThread(th models.Thread) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s  %s\n", t.titleStyle().Render(th.Title), t.moodStyle(th.Mood).Render(string(th.Mood)))
	fmt.Fprintf(&b, "%s\n", t.hintStyle().Render(fmt.Sprintf("%s · updated %s", th.ID, th.UpdatedAt.Time().Format("2006-01-02 15:04"))))

	b.WriteString("\nContext:\n")
	if len(th.Context) == 0 {
		b.WriteString(t.hintStyle().Render("  (no messages yet)") + "\n")
	}
	for _, m := range th.Context {
		fmt.Fprintf(&b, "  %s %s\n", t.statusStyle().Render(roleLabel(m.Role)+":"), m.Text)
	}

	b.WriteString("\n")
	b.WriteString(t.renderSuggestions(th.Suggestions))
	return b.String()
}

// renderSuggestions renders a numbered suggestion list.
func (t Theme) renderSuggestions(list []models.Suggestion) string {
	var b strings.Builder
	b.WriteString("Suggestions:\n")
	if len(list) == 0 {
		b.WriteString(t.hintStyle().Render("  (none yet)") + "\n")
		return b.String()
	}
	for i, s := range list {
		fmt.Fprintf(&b, "  %s %s\n", t.moodStyle(s.Mood).Render(fmt.Sprintf("%d.", i+1)), s.Text)
	}
	return b.String()
}

func roleLabel(r models.Role) string {
	switch r {
	case models.RoleUser:
		return "me"
	case models.RoleOther:
		return "them"
	case models.RoleAssistant:
		return "ai"
	}
	return string(r)
}

func relativeTime(ts, now time.Time) string {
	if ts.IsZero() {
		return "never"
	}
	d := now.Sub(ts)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
	return ts.Format("2006-01-02")
}

// Package parser reads chat transcripts into conversation messages.
//
// A transcript is plain text with optional YAML frontmatter:
//
//	---
//	title: Sam from the climbing gym
//	mood: Mysterious
//	---
//	# Friday
//	them: are you coming tonight?
//	me: depends who's asking
//	  and what's on offer
//
// Each "speaker: text" line starts a message. Lines without a known
// speaker continue the previous message. Blank lines and headings are
// ignored.
package parser

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/raphaelgruber/flirtassist/internal/models"
	"gopkg.in/yaml.v3"
)

// Transcript is a parsed transcript.
type Transcript struct {
	// Frontmatter metadata (from YAML)
	Frontmatter map[string]any

	// Title from frontmatter or the first h1
	Title string

	// Mood from frontmatter, empty when absent or unknown
	Mood models.Mood

	Lines []Line

	// Skipped counts text lines that came before any speaker
	Skipped int
}

// Line is one message of a transcript.
type Line struct {
	Role models.Role
	Text string
}

var (
	speakerRegex = regexp.MustCompile(`^(?:[-*]\s+)?\**([A-Za-z][A-Za-z ]{0,19}?)\**\s*:\s*(.*)$`)
	headingRegex = regexp.MustCompile(`^#{1,6}\s+(.+)$`)
)

// ReadTranscript reads and parses a transcript from r.
func ReadTranscript(r io.Reader) (*Transcript, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}
	return ParseTranscript(string(data)), nil
}

// ParseTranscript parses transcript content.
func ParseTranscript(content string) *Transcript {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	tr := &Transcript{
		Frontmatter: make(map[string]any),
	}

	remaining := content
	if strings.HasPrefix(content, "---\n") {
		endIdx := strings.Index(content[4:], "\n---")
		if endIdx >= 0 {
			frontmatterYAML := content[4 : 4+endIdx]
			remaining = strings.TrimPrefix(content[4+endIdx+4:], "\n")

			if err := yaml.Unmarshal([]byte(frontmatterYAML), &tr.Frontmatter); err != nil || tr.Frontmatter == nil {
				// Ignore YAML errors, just use empty frontmatter
				tr.Frontmatter = make(map[string]any)
			}
		}
	}

	tr.Title = extractTitle(tr.Frontmatter, remaining)
	if mood, err := models.ParseMood(tr.GetFrontmatterString("mood")); err == nil {
		tr.Mood = mood
	}
	tr.Lines, tr.Skipped = parseLines(remaining)

	return tr
}

// extractTitle gets title from frontmatter or first h1.
func extractTitle(fm map[string]any, content string) string {
	if title, ok := fm["title"].(string); ok && strings.TrimSpace(title) != "" {
		return strings.TrimSpace(title)
	}

	h1Regex := regexp.MustCompile(`(?m)^#\s+(.+)$`)
	if match := h1Regex.FindStringSubmatch(content); len(match) > 1 {
		return strings.TrimSpace(match[1])
	}

	return ""
}

func parseLines(content string) ([]Line, int) {
	var lines []Line
	skipped := 0

	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || headingRegex.MatchString(line) {
			continue
		}

		if match := speakerRegex.FindStringSubmatch(line); match != nil {
			if role, err := models.ParseRole(match[1]); err == nil {
				lines = append(lines, Line{Role: role, Text: strings.TrimSpace(match[2])})
				continue
			}
		}

		if len(lines) == 0 {
			skipped++
			continue
		}
		last := &lines[len(lines)-1]
		if last.Text == "" {
			last.Text = line
		} else {
			last.Text += "\n" + line
		}
	}

	// Drop speakers that never said anything.
	out := lines[:0]
	for _, l := range lines {
		if l.Text != "" {
			out = append(out, l)
		}
	}
	return out, skipped
}

// GetFrontmatterString extracts a string from frontmatter.
func (t *Transcript) GetFrontmatterString(key string) string {
	if v, ok := t.Frontmatter[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

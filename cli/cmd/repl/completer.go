package repl

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/ddpaper/filter"
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{"help", "list", "clear", "quit"}

// isWordBoundary reports whether r separates words of a key for completion
// purposes: whitespace, the member-access dot, and key punctuation.
func isWordBoundary(r rune) bool {
	switch r {
	case '.', ' ', '\t',
		'(', ')', '[', ']',
		'|', ',', '=', '+', '-',
		'\'', '"':
		return true
	}

	return false
}

// wordBounds returns the word at the cursor and its byte boundaries within
// input. The word is empty when the cursor sits on a boundary (after a
// space, after a dot, at the start of the line).
func wordBounds(input string, cursor int) (word string, start, end int) {
	if cursor > len(input) {
		cursor = len(input)
	}

	start = cursor

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	end = cursor

	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// parentPath returns the dotted path leading up to the word starting at
// wordStart, following only the contiguous member-access chain. For
// "grb.peak.me" with the word "me" it is "grb.peak". It is empty for
// top-level words.
func parentPath(input string, wordStart int) string {
	prefix := input[:wordStart]
	if !strings.HasSuffix(prefix, ".") {
		return ""
	}

	prefix = strings.TrimRight(prefix, ".")

	pos := len(prefix)

	for pos > 0 {
		r, size := utf8.DecodeLastRuneInString(prefix[:pos])
		if r != '.' && isWordBoundary(r) {
			break
		}

		pos -= size
	}

	return strings.TrimSpace(prefix[pos:])
}

// afterPipe reports whether the word starting at wordStart is a filter
// name, i.e. the last non-blank character before it is "|".
func afterPipe(input string, wordStart int) bool {
	return strings.HasSuffix(strings.TrimRight(input[:wordStart], " \t"), "|")
}

// computeMatches calculates the fuzzy match results for the word at the
// cursor. Filter names are offered after a pipe and store paths elsewhere.
// An empty word offers nothing at the top level and every child after a
// dot, so the members of a value can be browsed.
func (m model) computeMatches() (
	matches fuzzy.Matches,
	candidates []string,
	wordStart, wordEnd int,
) {
	input := m.input.Value()

	word, wordStart, wordEnd := wordBounds(input, m.input.Position())

	switch {
	case m.mode == modeCtrl:
		if word == "" {
			return nil, nil, wordStart, wordEnd
		}

		candidates = ctrlCommands

	case afterPipe(input, wordStart):
		if word == "" {
			return nil, nil, wordStart, wordEnd
		}

		candidates = m.filters

	default:
		parent := parentPath(input, wordStart)
		candidates = m.store.Children(parent)

		if word == "" {
			if parent == "" || len(candidates) == 0 {
				return nil, nil, wordStart, wordEnd
			}

			matches = make(fuzzy.Matches, len(candidates))
			for i, c := range candidates {
				matches[i] = fuzzy.Match{Str: c, Index: i}
			}

			return matches, candidates, wordStart, wordEnd
		}
	}

	if len(candidates) == 0 {
		return nil, nil, wordStart, wordEnd
	}

	return fuzzy.Find(word, candidates), candidates, wordStart, wordEnd
}

// renderCandidateBar builds the single-line completion bar, ellipsized to fit
// within the given terminal width. The selected candidate (when tabbing)
// uses the selected style.
func renderCandidateBar(
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	width int,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	sepWidth := lipgloss.Width(sep)
	ellipsis := hintStyle.Render("...")
	ellipsisWidth := lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		rendered := renderCandidate(match, tabActive && i == suggIdx)

		entryWidth := lipgloss.Width(rendered)
		if i > 0 {
			entryWidth += sepWidth
		}

		if used+entryWidth+ellipsisWidth > width && i > 0 {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += entryWidth
	}

	return b.String()
}

// renderCandidate renders a single candidate with matched characters
// highlighted.
func renderCandidate(match fuzzy.Match, selected bool) string {
	baseStyle := suggestionStyle
	highlightStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("4")).
		Bold(true)

	if selected {
		baseStyle = selectedStyle
		highlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4")).
			Bold(true)
	}

	matchSet := make(map[int]bool, len(match.MatchedIndexes))
	for _, idx := range match.MatchedIndexes {
		matchSet[idx] = true
	}

	var b strings.Builder

	for i, r := range match.Str {
		if matchSet[i] {
			b.WriteString(highlightStyle.Render(string(r)))
		} else {
			b.WriteString(baseStyle.Render(string(r)))
		}
	}

	return b.String()
}

const previewWidth = 40

// formatPreview summarizes a store value in one short line.
func formatPreview(v any) string {
	switch v := v.(type) {
	case map[string]any:
		return fmt.Sprintf("{ %d items }", len(v))

	case []any:
		return fmt.Sprintf("[ %d items ]", len(v))
	}

	s := filter.Str(v)
	if _, ok := v.(string); ok {
		s = fmt.Sprintf("%q", s)
	}

	if utf8.RuneCountInString(s) > previewWidth {
		s = string([]rune(s)[:previewWidth-3]) + "..."
	}

	return s
}

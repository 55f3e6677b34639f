// Package blocks implements the bidirectional transform between the typed
// block tree and its markdown body text, including inline mark parsing.
//
// Parsing is total: arbitrary input always yields a block tree, with
// unrecognized constructs degrading to the closest supported block type.
package blocks

import (
	"sort"
	"strings"

	"github.com/starford/berkano/internal/models"
	"github.com/starford/berkano/internal/validate"
)

// markRank fixes the canonical order marks are stored and rendered in, so
// structural comparison and re-rendering are deterministic.
var markRank = map[models.Mark]int{
	models.MarkBold:      0,
	models.MarkItalic:    1,
	models.MarkUnderline: 2,
	models.MarkStrike:    3,
	models.MarkCode:      4,
	models.MarkHighlight: 5,
}

func normalizeMarks(set map[models.Mark]struct{}) []models.Mark {
	if len(set) == 0 {
		return nil
	}
	out := make([]models.Mark, 0, len(set))
	for m := range set {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return markRank[out[i]] < markRank[out[j]] })
	return out
}

func withMark(set map[models.Mark]struct{}, marks ...models.Mark) map[models.Mark]struct{} {
	next := make(map[models.Mark]struct{}, len(set)+len(marks))
	for m := range set {
		next[m] = struct{}{}
	}
	for _, m := range marks {
		next[m] = struct{}{}
	}
	return next
}

// ParseInline parses one text segment into a sequence of inline nodes.
// Unmatched delimiters are kept as literal text; the parser never fails.
func ParseInline(s string) []models.InlineNode {
	return parseInline(s, nil, false)
}

func parseInline(s string, marks map[models.Mark]struct{}, inLink bool) []models.InlineNode {
	var nodes []models.InlineNode
	var buf strings.Builder

	flush := func() {
		if buf.Len() == 0 {
			return
		}
		nodes = append(nodes, models.InlineNode{
			Type:  models.InlineText,
			Text:  buf.String(),
			Marks: normalizeMarks(marks),
		})
		buf.Reset()
	}

	// span tries to consume a delimited span starting at i. It returns the
	// new position, or -1 when the delimiter has no closing match.
	span := func(i int, delim string, spanMarks ...models.Mark) int {
		inner := s[i+len(delim):]
		end := strings.Index(inner, delim)
		if end < 0 {
			return -1
		}
		flush()
		nodes = append(nodes, parseInline(inner[:end], withMark(marks, spanMarks...), inLink)...)
		return i + len(delim) + end + len(delim)
	}

	i := 0
	for i < len(s) {
		rest := s[i:]
		switch {
		case strings.HasPrefix(rest, "`"):
			inner := rest[1:]
			if end := strings.Index(inner, "`"); end >= 0 {
				flush()
				// Code spans are opaque: no nested parsing.
				nodes = append(nodes, models.InlineNode{
					Type:  models.InlineText,
					Text:  inner[:end],
					Marks: normalizeMarks(withMark(marks, models.MarkCode)),
				})
				i += 1 + end + 1
				continue
			}
		case strings.HasPrefix(rest, "***"):
			if next := span(i, "***", models.MarkBold, models.MarkItalic); next >= 0 {
				i = next
				continue
			}
		case strings.HasPrefix(rest, "**"):
			if next := span(i, "**", models.MarkBold); next >= 0 {
				i = next
				continue
			}
		case strings.HasPrefix(rest, "*"):
			if next := span(i, "*", models.MarkItalic); next >= 0 {
				i = next
				continue
			}
		case strings.HasPrefix(rest, "__"):
			if next := span(i, "__", models.MarkUnderline); next >= 0 {
				i = next
				continue
			}
		case strings.HasPrefix(rest, "~~"):
			if next := span(i, "~~", models.MarkStrike); next >= 0 {
				i = next
				continue
			}
		case strings.HasPrefix(rest, "=="):
			if next := span(i, "==", models.MarkHighlight); next >= 0 {
				i = next
				continue
			}
		case strings.HasPrefix(rest, "[") && !inLink:
			if node, next := parseLink(rest, marks); next >= 0 {
				flush()
				nodes = append(nodes, node)
				i += next
				continue
			}
		}
		buf.WriteByte(s[i])
		i++
	}
	flush()
	return nodes
}

// parseLink consumes "[text](href)" or `[text](href "title")` at the start
// of s. It returns the link node and the number of bytes consumed, or -1
// when s is not a well-formed link.
func parseLink(s string, marks map[models.Mark]struct{}) (models.InlineNode, int) {
	mid := strings.Index(s, "](")
	if mid < 0 {
		return models.InlineNode{}, -1
	}
	end := strings.Index(s[mid+2:], ")")
	if end < 0 {
		return models.InlineNode{}, -1
	}
	text := s[1:mid]
	target := s[mid+2 : mid+2+end]

	href := target
	title := ""
	if q := strings.Index(target, ` "`); q >= 0 && strings.HasSuffix(target, `"`) {
		href = target[:q]
		title = strings.TrimSuffix(target[q+2:], `"`)
	}

	return models.InlineNode{
		Type:     models.InlineLink,
		Href:     validate.SanitizeURL(href),
		Title:    title,
		Children: parseInline(text, marks, true),
	}, mid + 2 + end + 1
}

// RenderInline is the inverse of ParseInline: it produces the canonical
// markdown for an inline node sequence. Adjacent text runs sharing a mark
// render inside one delimiter pair, so a bold span with an italic stretch
// in the middle comes back as **bold *deep* bold**.
func RenderInline(nodes []models.InlineNode) string {
	var b strings.Builder
	for i := 0; i < len(nodes); {
		if nodes[i].Type == models.InlineLink {
			n := nodes[i]
			b.WriteString("[")
			b.WriteString(RenderInline(n.Children))
			b.WriteString("](")
			b.WriteString(n.Href)
			if n.Title != "" {
				b.WriteString(` "` + n.Title + `"`)
			}
			b.WriteString(")")
			i++
			continue
		}
		j := i
		for j < len(nodes) && nodes[j].Type != models.InlineLink {
			j++
		}
		b.WriteString(renderTextRuns(nodes[i:j], 0))
		i = j
	}
	return b.String()
}

// wrapOrder lists marks outermost first; renderTextRuns handles one mark per
// recursion level.
var wrapOrder = []models.Mark{
	models.MarkBold,
	models.MarkItalic,
	models.MarkUnderline,
	models.MarkStrike,
	models.MarkHighlight,
	models.MarkCode,
}

var markDelim = map[models.Mark]string{
	models.MarkBold:      "**",
	models.MarkItalic:    "*",
	models.MarkUnderline: "__",
	models.MarkStrike:    "~~",
	models.MarkHighlight: "==",
	models.MarkCode:      "`",
}

func hasMark(n models.InlineNode, m models.Mark) bool {
	for _, x := range n.Marks {
		if x == m {
			return true
		}
	}
	return false
}

// sameMarks relies on Marks being in canonical order, which normalizeMarks
// guarantees for parsed nodes.
func sameMarks(a, b models.InlineNode) bool {
	if len(a.Marks) != len(b.Marks) {
		return false
	}
	for i := range a.Marks {
		if a.Marks[i] != b.Marks[i] {
			return false
		}
	}
	return true
}

// renderTextRuns renders a link-free node sequence. Consecutive nodes
// sharing the current mark go inside a single delimiter pair; identically
// marked neighbors keep separate pairs so the delimiters reparse to the
// same node boundaries.
func renderTextRuns(nodes []models.InlineNode, rank int) string {
	if rank >= len(wrapOrder) {
		var b strings.Builder
		for _, n := range nodes {
			b.WriteString(n.Text)
		}
		return b.String()
	}
	m := wrapOrder[rank]
	var b strings.Builder
	for i := 0; i < len(nodes); {
		if !hasMark(nodes[i], m) {
			j := i
			for j < len(nodes) && !hasMark(nodes[j], m) {
				j++
			}
			b.WriteString(renderTextRuns(nodes[i:j], rank+1))
			i = j
			continue
		}
		j := i + 1
		for j < len(nodes) && hasMark(nodes[j], m) && !sameMarks(nodes[j], nodes[j-1]) {
			j++
		}
		b.WriteString(wrapRun(nodes[i:j], rank))
		i = j
	}
	return b.String()
}

// wrapRun wraps one run in the delimiters of wrapOrder[rank]. Bold is the
// tricky case: a ** delimiter touching a * span would reparse at the wrong
// width, so runs that are italic throughout take the *** form and italic
// nodes at a run boundary render on their own.
func wrapRun(run []models.InlineNode, rank int) string {
	m := wrapOrder[rank]
	if m != models.MarkBold {
		return markDelim[m] + renderTextRuns(run, rank+1) + markDelim[m]
	}

	allItalic := true
	for _, n := range run {
		if !hasMark(n, models.MarkItalic) {
			allItalic = false
			break
		}
	}
	if allItalic {
		return "***" + renderTextRuns(run, rank+2) + "***"
	}

	var b strings.Builder
	for len(run) > 0 && hasMark(run[0], models.MarkItalic) {
		b.WriteString("***" + renderTextRuns(run[:1], rank+2) + "***")
		run = run[1:]
	}
	tail := 0
	for tail < len(run) && hasMark(run[len(run)-1-tail], models.MarkItalic) {
		tail++
	}
	head := run[:len(run)-tail]
	if len(head) > 0 {
		b.WriteString("**" + renderTextRuns(head, rank+1) + "**")
	}
	for _, n := range run[len(head):] {
		b.WriteString("***" + renderTextRuns([]models.InlineNode{n}, rank+2) + "***")
	}
	return b.String()
}

// PlainText concatenates the literal text of an inline node sequence,
// discarding marks and link wrapping.
func PlainText(nodes []models.InlineNode) string {
	var b strings.Builder
	for _, n := range nodes {
		if n.Type == models.InlineLink {
			b.WriteString(PlainText(n.Children))
			continue
		}
		b.WriteString(n.Text)
	}
	return b.String()
}

package blocks

import (
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/starford/berkano/internal/models"
	"github.com/starford/berkano/internal/validate"
)

var (
	headingRe    = regexp.MustCompile(`^(#{1,6})(?:\s+(.*))?$`)
	listItemRe   = regexp.MustCompile(`^(\s*)(-|\*|\+|\d+\.)(?:\s+(.*))?$`)
	orderedRe    = regexp.MustCompile(`^\d+\.$`)
	toggleRe     = regexp.MustCompile(`^:::toggle(?:\s+(.*))?$`)
	inlineMathRe = regexp.MustCompile(`^\$\$(.+)\$\$$`)
)

// MarkdownToBlocks parses a markdown body into an ordered block tree. It is
// total over arbitrary text: malformed or partial constructs degrade to a
// best-effort block instead of failing.
func MarkdownToBlocks(md string) []models.Block {
	md = strings.ReplaceAll(md, "\r\n", "\n")
	lines := strings.Split(md, "\n")

	var out []models.Block
	i := 0
	for i < len(lines) {
		line := lines[i]
		trimmed := strings.TrimRight(line, " \t")

		switch {
		case strings.TrimSpace(line) == "":
			i++

		case backslashLine(trimmed):
			// A lone backslash is the empty-paragraph marker; extra
			// backslashes are escaped paragraph text.
			b := models.Block{ID: newID(), Type: models.BlockParagraph}
			if len(trimmed) > 1 {
				b.Nodes = ParseInline(trimmed[1:])
			}
			out = append(out, b)
			i++

		case headingRe.MatchString(trimmed):
			m := headingRe.FindStringSubmatch(trimmed)
			out = append(out, models.Block{
				ID:    newID(),
				Type:  models.BlockHeading,
				Level: len(m[1]),
				Nodes: ParseInline(strings.TrimSpace(m[2])),
			})
			i++

		case strings.HasPrefix(trimmed, "```"):
			block, next := parseFence(lines, i)
			out = append(out, block)
			i = next

		case inlineMathRe.MatchString(trimmed):
			m := inlineMathRe.FindStringSubmatch(trimmed)
			out = append(out, models.Block{ID: newID(), Type: models.BlockMath, Raw: m[1]})
			i++

		case trimmed == "$$":
			block, next := parseMath(lines, i)
			out = append(out, block)
			i = next

		case toggleRe.MatchString(trimmed):
			block, next := parseToggle(lines, i)
			out = append(out, block)
			i = next

		case strings.HasPrefix(trimmed, ">"):
			block, next := parseCallout(lines, i)
			out = append(out, block)
			i = next

		case listItemRe.MatchString(trimmed) && trimmed != "":
			block, next := parseList(lines, i)
			out = append(out, block)
			i = next

		case trimmed == "[TOC]":
			out = append(out, models.Block{ID: newID(), Type: models.BlockTOC})
			i++

		case strings.HasPrefix(trimmed, "<"):
			block, next, ok := parseHTML(lines, i)
			if ok {
				out = append(out, block)
			}
			i = next

		default:
			block, next := parseParagraph(lines, i)
			out = append(out, block)
			i = next
		}
	}
	return out
}

func newID() string { return uuid.NewString() }

// backslashLine reports whether a line consists only of backslashes.
func backslashLine(s string) bool {
	return s != "" && strings.Trim(s, `\`) == ""
}

// parseFence consumes a ``` fenced code block starting at i. An unterminated
// fence runs to the end of input.
func parseFence(lines []string, i int) (models.Block, int) {
	lang := strings.TrimSpace(strings.TrimPrefix(strings.TrimRight(lines[i], " \t"), "```"))
	if lang == "" {
		lang = "text"
	}
	var body []string
	j := i + 1
	for ; j < len(lines); j++ {
		if strings.TrimSpace(lines[j]) == "```" {
			j++
			break
		}
		body = append(body, lines[j])
	}
	return models.Block{
		ID:       newID(),
		Type:     models.BlockCode,
		Language: lang,
		Raw:      strings.Join(body, "\n"),
	}, j
}

func parseMath(lines []string, i int) (models.Block, int) {
	var body []string
	j := i + 1
	for ; j < len(lines); j++ {
		if strings.TrimSpace(lines[j]) == "$$" {
			j++
			break
		}
		body = append(body, lines[j])
	}
	return models.Block{
		ID:   newID(),
		Type: models.BlockMath,
		Raw:  strings.Join(body, "\n"),
	}, j
}

// parseToggle consumes a :::toggle container. Containers nest: an inner
// :::toggle opener deepens, a bare ::: closes one level.
func parseToggle(lines []string, i int) (models.Block, int) {
	m := toggleRe.FindStringSubmatch(strings.TrimRight(lines[i], " \t"))
	summary := strings.TrimSpace(m[1])

	depth := 1
	var body []string
	j := i + 1
	for ; j < len(lines); j++ {
		t := strings.TrimRight(lines[j], " \t")
		if toggleRe.MatchString(t) {
			depth++
		} else if t == ":::" {
			depth--
			if depth == 0 {
				j++
				break
			}
		}
		body = append(body, lines[j])
	}
	return models.Block{
		ID:       newID(),
		Type:     models.BlockToggle,
		Nodes:    ParseInline(summary),
		Children: MarkdownToBlocks(strings.Join(body, "\n")),
	}, j
}

func parseCallout(lines []string, i int) (models.Block, int) {
	var parts []string
	j := i
	for ; j < len(lines); j++ {
		t := strings.TrimRight(lines[j], " \t")
		if !strings.HasPrefix(t, ">") {
			break
		}
		parts = append(parts, strings.TrimPrefix(strings.TrimPrefix(t, ">"), " "))
	}
	text := strings.TrimSpace(strings.Join(parts, " "))
	return models.Block{
		ID:    newID(),
		Type:  models.BlockCallout,
		Nodes: ParseInline(text),
	}, j
}

type listLine struct {
	depth   int
	ordered bool
	text    string
}

func parseList(lines []string, i int) (models.Block, int) {
	var items []listLine
	j := i
	for ; j < len(lines); j++ {
		t := strings.TrimRight(lines[j], " \t")
		m := listItemRe.FindStringSubmatch(t)
		if m == nil || t == "" {
			break
		}
		items = append(items, listLine{
			depth:   len(m[1]) / 2,
			ordered: orderedRe.MatchString(m[2]),
			text:    m[3],
		})
	}
	built, _ := buildListItems(items, 0, 0)
	return models.Block{
		ID:      newID(),
		Type:    models.BlockList,
		Ordered: items[0].ordered,
		Items:   built,
	}, j
}

// buildListItems turns the flat indented lines into nested items. Lines
// deeper than expected attach to the previous item; shallower lines return
// control to the caller.
func buildListItems(lines []listLine, start, depth int) ([]models.ListItem, int) {
	var out []models.ListItem
	i := start
	for i < len(lines) {
		l := lines[i]
		switch {
		case l.depth == depth:
			out = append(out, models.ListItem{Nodes: ParseInline(l.text)})
			i++
		case l.depth > depth && len(out) > 0:
			children, next := buildListItems(lines, i, depth+1)
			out[len(out)-1].Children = children
			i = next
		case l.depth > depth:
			// Over-indented first line: treat at current depth.
			out = append(out, models.ListItem{Nodes: ParseInline(l.text)})
			i++
		default:
			return out, i
		}
	}
	return out, i
}

// parseHTML consumes raw HTML lines up to the next blank line and strips
// script elements. A block whose content is entirely stripped yields no
// block at all.
func parseHTML(lines []string, i int) (models.Block, int, bool) {
	var body []string
	j := i
	for ; j < len(lines); j++ {
		if strings.TrimSpace(lines[j]) == "" {
			break
		}
		body = append(body, lines[j])
	}
	raw := validate.SanitizeHTML(strings.Join(body, "\n"))
	if strings.TrimSpace(raw) == "" {
		return models.Block{}, j, false
	}
	return models.Block{ID: newID(), Type: models.BlockHTML, Raw: raw}, j, true
}

func parseParagraph(lines []string, i int) (models.Block, int) {
	var parts []string
	j := i
	for ; j < len(lines); j++ {
		t := strings.TrimRight(lines[j], " \t")
		if strings.TrimSpace(t) == "" || (j > i && isBlockStart(t)) {
			break
		}
		parts = append(parts, strings.TrimSpace(t))
	}
	return models.Block{
		ID:    newID(),
		Type:  models.BlockParagraph,
		Nodes: ParseInline(strings.Join(parts, " ")),
	}, j
}

// isBlockStart reports whether a line opens a non-paragraph construct.
func isBlockStart(trimmed string) bool {
	switch {
	case backslashLine(trimmed),
		trimmed == "[TOC]",
		trimmed == "$$",
		headingRe.MatchString(trimmed),
		strings.HasPrefix(trimmed, "```"),
		inlineMathRe.MatchString(trimmed),
		toggleRe.MatchString(trimmed),
		strings.HasPrefix(trimmed, ">"),
		strings.HasPrefix(trimmed, "<"),
		listItemRe.MatchString(trimmed):
		return true
	}
	return false
}

package blocks

import (
	"fmt"
	"strings"

	"github.com/starford/berkano/internal/models"
)

// BlocksToMarkdown renders a block tree to its canonical markdown body.
// Every block type has exactly one rendering, so the output reparses to a
// structurally identical tree.
func BlocksToMarkdown(bs []models.Block) string {
	parts := make([]string, 0, len(bs))
	for _, b := range bs {
		parts = append(parts, renderBlock(b))
	}
	out := strings.Join(parts, "\n\n")
	if out == "" {
		return ""
	}
	return out + "\n"
}

func renderBlock(b models.Block) string {
	switch b.Type {
	case models.BlockHeading:
		level := b.Level
		if level < 1 {
			level = 1
		} else if level > 6 {
			level = 6
		}
		text := RenderInline(b.Nodes)
		if text == "" {
			return strings.Repeat("#", level)
		}
		return strings.Repeat("#", level) + " " + text

	case models.BlockList:
		return renderItems(b.Items, 0, b.Ordered)

	case models.BlockCallout:
		text := RenderInline(b.Nodes)
		if text == "" {
			return ">"
		}
		return "> " + text

	case models.BlockCode:
		lang := b.Language
		if lang == "" {
			lang = "text"
		}
		if b.Raw == "" {
			return "```" + lang + "\n```"
		}
		return "```" + lang + "\n" + b.Raw + "\n```"

	case models.BlockMath:
		if b.Raw == "" {
			return "$$\n$$"
		}
		return "$$\n" + b.Raw + "\n$$"

	case models.BlockToggle:
		open := ":::toggle"
		if summary := RenderInline(b.Nodes); summary != "" {
			open += " " + summary
		}
		if len(b.Children) == 0 {
			return open + "\n:::"
		}
		inner := strings.TrimRight(BlocksToMarkdown(b.Children), "\n")
		return open + "\n" + inner + "\n:::"

	case models.BlockHTML:
		return b.Raw

	case models.BlockTOC:
		return "[TOC]"

	default:
		// Paragraph and anything unknown. An empty paragraph keeps a lone
		// backslash marker; text that is itself nothing but backslashes
		// gains one more so it cannot collide with the marker.
		text := RenderInline(b.Nodes)
		if text == "" {
			return `\`
		}
		if strings.Trim(text, `\`) == "" {
			return `\` + text
		}
		return text
	}
}

func renderItems(items []models.ListItem, depth int, ordered bool) string {
	var lines []string
	for i, item := range items {
		marker := "-"
		if ordered && depth == 0 {
			marker = fmt.Sprintf("%d.", i+1)
		}
		text := RenderInline(item.Nodes)
		line := strings.Repeat("  ", depth) + marker
		if text != "" {
			line += " " + text
		}
		lines = append(lines, line)
		if len(item.Children) > 0 {
			lines = append(lines, renderItems(item.Children, depth+1, ordered))
		}
	}
	return strings.Join(lines, "\n")
}

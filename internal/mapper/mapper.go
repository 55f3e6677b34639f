// Package mapper translates between the Content record and its persisted
// markdown document form: YAML frontmatter followed by the block renderings.
package mapper

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/berkano/internal/blocks"
	"github.com/starford/berkano/internal/models"
)

// Reserved frontmatter keys mapped onto Content fields.
const (
	keyTitle    = "title"
	keySlug     = "slug"
	keyStatus   = "status"
	keyCategory = "category"
)

// ParseDocument materializes a Content record from a stored markdown
// document. Parsing is total: missing or invalid frontmatter degrades to a
// body-only record, and an unknown status degrades to draft.
func ParseDocument(id string, data []byte) *models.Content {
	fm, body := splitFrontmatter(data)

	c := &models.Content{
		ID:     id,
		Status: models.StatusDraft,
		Blocks: blocks.MarkdownToBlocks(body),
	}

	if fm == nil {
		return c
	}
	if s, ok := fm[keyTitle].(string); ok {
		c.Title = s
		delete(fm, keyTitle)
	}
	if s, ok := fm[keySlug].(string); ok {
		c.Slug = s
		delete(fm, keySlug)
	}
	if s, ok := fm[keyStatus].(string); ok {
		switch models.Status(s) {
		case models.StatusDraft, models.StatusPublished, models.StatusArchived:
			c.Status = models.Status(s)
		}
		delete(fm, keyStatus)
	}
	if s, ok := fm[keyCategory].(string); ok {
		c.Category = s
		delete(fm, keyCategory)
	}
	if len(fm) > 0 {
		c.Frontmatter = fm
	}
	return c
}

// ComposeDocument serializes a Content record to the full markdown document.
// Frontmatter keys come out in a fixed order (title, slug, status, category,
// then remaining keys sorted) so documents stay diff-friendly.
func ComposeDocument(c *models.Content) ([]byte, error) {
	var b bytes.Buffer
	b.WriteString("---\n")

	writeKey := func(key string, value any) error {
		raw, err := yaml.Marshal(map[string]any{key: value})
		if err != nil {
			return fmt.Errorf("mapper: marshal frontmatter key %q: %w", key, err)
		}
		b.Write(raw)
		return nil
	}

	if err := writeKey(keyTitle, c.Title); err != nil {
		return nil, err
	}
	if err := writeKey(keySlug, c.Slug); err != nil {
		return nil, err
	}
	if err := writeKey(keyStatus, string(c.Status)); err != nil {
		return nil, err
	}
	if c.Category != "" {
		if err := writeKey(keyCategory, c.Category); err != nil {
			return nil, err
		}
	}

	extras := make([]string, 0, len(c.Frontmatter))
	for k := range c.Frontmatter {
		extras = append(extras, k)
	}
	sort.Strings(extras)
	for _, k := range extras {
		if err := writeKey(k, c.Frontmatter[k]); err != nil {
			return nil, err
		}
	}

	b.WriteString("---\n\n")
	b.WriteString(blocks.BlocksToMarkdown(c.Blocks))
	return b.Bytes(), nil
}

// Stats computes word count, heading count, and a block-type histogram over
// a markdown document. It never touches storage.
func Stats(markdown string) models.MarkdownStats {
	_, body := splitFrontmatter([]byte(markdown))
	stats := models.MarkdownStats{Blocks: make(map[models.BlockType]int)}
	countBlocks(blocks.MarkdownToBlocks(body), &stats)
	return stats
}

func countBlocks(bs []models.Block, stats *models.MarkdownStats) {
	for _, b := range bs {
		stats.Blocks[b.Type]++
		if b.Type == models.BlockHeading {
			stats.Headings++
		}
		stats.Words += len(strings.Fields(blocks.PlainText(b.Nodes)))
		for _, item := range b.Items {
			countItemWords(item, stats)
		}
		countBlocks(b.Children, stats)
	}
}

func countItemWords(item models.ListItem, stats *models.MarkdownStats) {
	stats.Words += len(strings.Fields(blocks.PlainText(item.Nodes)))
	for _, child := range item.Children {
		countItemWords(child, stats)
	}
}

// splitFrontmatter separates YAML frontmatter (between leading ---
// delimiters) from the markdown body. If no frontmatter is found, or its
// YAML does not parse, the entire content is body.
func splitFrontmatter(data []byte) (map[string]any, string) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data)
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, string(data)
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")

	var fm map[string]any
	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		return nil, string(data)
	}
	return fm, body
}

// Package models defines the domain types for Berkano.
package models

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Status is the publication state of a content record.
type Status string

// Publication states.
const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

// BlockType identifies the kind of a document block.
type BlockType string

// Block type catalog. Adding a type requires a converter mapping in both
// directions (internal/blocks).
const (
	BlockParagraph BlockType = "paragraph"
	BlockHeading   BlockType = "heading"
	BlockList      BlockType = "list"
	BlockCallout   BlockType = "callout"
	BlockCode      BlockType = "code"
	BlockMath      BlockType = "math"
	BlockToggle    BlockType = "toggle"
	BlockHTML      BlockType = "html"
	BlockTOC       BlockType = "tableOfContents"
)

// Mark is an inline formatting annotation.
type Mark string

// Inline marks.
const (
	MarkBold      Mark = "bold"
	MarkItalic    Mark = "italic"
	MarkUnderline Mark = "underline"
	MarkStrike    Mark = "strike"
	MarkCode      Mark = "code"
	MarkHighlight Mark = "highlight"
)

// InlineType discriminates InlineNode variants.
type InlineType string

// Inline node variants. Links carry children but never nest another link.
const (
	InlineText InlineType = "text"
	InlineLink InlineType = "link"
)

// InlineNode is one element of inline-formatted text: either a text run with
// a set of marks, or a link wrapping child text runs.
type InlineNode struct {
	Type     InlineType   `json:"type"`
	Text     string       `json:"text,omitempty"`
	Marks    []Mark       `json:"marks,omitempty"`
	Href     string       `json:"href,omitempty"`
	Title    string       `json:"title,omitempty"`
	Children []InlineNode `json:"children,omitempty"`
}

// ListItem is one entry of a list block. Item text retains inline marks;
// nested items live in Children.
type ListItem struct {
	Nodes    []InlineNode `json:"nodes"`
	Children []ListItem   `json:"children,omitempty"`
}

// Block is a typed unit of structured document content. The Type tag decides
// which fields are meaningful: text-bearing types (paragraph, heading,
// callout, toggle summary) use Nodes; code, math, and html carry opaque Raw
// text; list uses Ordered+Items; toggle bodies nest in Children.
type Block struct {
	ID       string       `json:"id"`
	Type     BlockType    `json:"type"`
	Nodes    []InlineNode `json:"nodes,omitempty"`
	Raw      string       `json:"raw,omitempty"`
	Level    int          `json:"level,omitempty"`
	Language string       `json:"language,omitempty"`
	Ordered  bool         `json:"ordered,omitempty"`
	Items    []ListItem   `json:"items,omitempty"`
	Children []Block      `json:"children,omitempty"`
}

// Content is the structured record stored per content identifier. Blocks are
// owned by the record; copy operations deep-copy the whole tree.
type Content struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Slug        string         `json:"slug"`
	Status      Status         `json:"status"`
	Category    string         `json:"category,omitempty"`
	Frontmatter map[string]any `json:"frontmatter,omitempty"`
	Blocks      []Block        `json:"blocks"`
}

var slugRe = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Validate checks the invariants the rest of the system relies on: a present
// id, the title grammar, the slug grammar, and a known status.
func (c *Content) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.ID, validation.Required),
		validation.Field(&c.Title, validation.Required, validation.Length(1, 180)),
		validation.Field(&c.Slug, validation.Required, validation.Length(1, 120), validation.Match(slugRe)),
		validation.Field(&c.Status, validation.Required,
			validation.In(StatusDraft, StatusPublished, StatusArchived)),
	)
}

// MarkdownStats summarises a parsed markdown document.
type MarkdownStats struct {
	Words    int               `json:"words"`
	Headings int               `json:"headings"`
	Blocks   map[BlockType]int `json:"blocks"`
}

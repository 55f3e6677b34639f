package mapper

import (
	"strings"
	"testing"

	"github.com/starford/berkano/internal/models"
)

func TestParseDocument_FullFrontmatter(t *testing.T) {
	doc := "---\ntitle: Getting Started\nslug: getting-started\nstatus: published\ncategory: guides\nauthor: pat\n---\n\n# Hello\n\nBody text.\n"
	c := ParseDocument("c-1", []byte(doc))
	if c.ID != "c-1" {
		t.Errorf("id = %q", c.ID)
	}
	if c.Title != "Getting Started" {
		t.Errorf("title = %q", c.Title)
	}
	if c.Slug != "getting-started" {
		t.Errorf("slug = %q", c.Slug)
	}
	if c.Status != models.StatusPublished {
		t.Errorf("status = %q", c.Status)
	}
	if c.Category != "guides" {
		t.Errorf("category = %q", c.Category)
	}
	if c.Frontmatter["author"] != "pat" {
		t.Errorf("frontmatter = %v", c.Frontmatter)
	}
	if len(c.Blocks) != 2 {
		t.Errorf("len(blocks) = %d, want 2", len(c.Blocks))
	}
}

func TestParseDocument_NoFrontmatter(t *testing.T) {
	c := ParseDocument("c-2", []byte("# Just a heading\n\nSome text.\n"))
	if c.Title != "" {
		t.Errorf("title = %q, want empty", c.Title)
	}
	if c.Status != models.StatusDraft {
		t.Errorf("status = %q, want draft", c.Status)
	}
	if len(c.Blocks) != 2 {
		t.Errorf("len(blocks) = %d", len(c.Blocks))
	}
}

func TestParseDocument_InvalidYAMLFallsBackToBody(t *testing.T) {
	doc := "---\n: invalid: yaml: {{{\n---\nBody\n"
	c := ParseDocument("c-3", []byte(doc))
	if c.Frontmatter != nil {
		t.Errorf("frontmatter = %v, want nil", c.Frontmatter)
	}
	if len(c.Blocks) == 0 {
		t.Fatal("body was lost")
	}
}

func TestParseDocument_UnknownStatusDegradesToDraft(t *testing.T) {
	doc := "---\ntitle: T\nstatus: banana\n---\n\nBody.\n"
	c := ParseDocument("c-4", []byte(doc))
	if c.Status != models.StatusDraft {
		t.Errorf("status = %q, want draft", c.Status)
	}
}

func TestComposeDocument_KeyOrder(t *testing.T) {
	c := &models.Content{
		ID:       "c-5",
		Title:    "Hello",
		Slug:     "hello",
		Status:   models.StatusPublished,
		Category: "misc",
		Frontmatter: map[string]any{
			"zeta":  "last",
			"alpha": "first",
		},
	}
	data, err := ComposeDocument(c)
	if err != nil {
		t.Fatalf("ComposeDocument: %v", err)
	}
	doc := string(data)

	order := []string{"title:", "slug:", "status:", "category:", "alpha:", "zeta:"}
	last := -1
	for _, key := range order {
		idx := strings.Index(doc, key)
		if idx < 0 {
			t.Fatalf("key %q missing from document:\n%s", key, doc)
		}
		if idx < last {
			t.Errorf("key %q out of order:\n%s", key, doc)
		}
		last = idx
	}
}

func TestComposeParse_RoundTrip(t *testing.T) {
	doc := "---\ntitle: Round Trip\nslug: round-trip\nstatus: archived\n---\n\n# One\n\npara **bold**\n\n- a\n- b\n"
	c := ParseDocument("c-6", []byte(doc))

	out, err := ComposeDocument(c)
	if err != nil {
		t.Fatalf("ComposeDocument: %v", err)
	}
	back := ParseDocument("c-6", out)

	if back.Title != c.Title || back.Slug != c.Slug || back.Status != c.Status {
		t.Errorf("metadata changed: %+v vs %+v", back, c)
	}
	if len(back.Blocks) != len(c.Blocks) {
		t.Errorf("block count changed: %d vs %d", len(back.Blocks), len(c.Blocks))
	}

	// A second compose must be byte-identical.
	again, err := ComposeDocument(back)
	if err != nil {
		t.Fatalf("ComposeDocument: %v", err)
	}
	if string(again) != string(out) {
		t.Errorf("compose not stable:\nfirst:  %q\nsecond: %q", out, again)
	}
}

func TestStats(t *testing.T) {
	doc := "---\ntitle: T\n---\n\n# Heading here\n\nthree words now\n\n- one\n- two three\n"
	stats := Stats(doc)
	if stats.Headings != 1 {
		t.Errorf("headings = %d, want 1", stats.Headings)
	}
	// "Heading here" + "three words now" + "one" + "two three"
	if stats.Words != 8 {
		t.Errorf("words = %d, want 8", stats.Words)
	}
	if stats.Blocks[models.BlockHeading] != 1 {
		t.Errorf("heading blocks = %d", stats.Blocks[models.BlockHeading])
	}
	if stats.Blocks[models.BlockParagraph] != 1 {
		t.Errorf("paragraph blocks = %d", stats.Blocks[models.BlockParagraph])
	}
	if stats.Blocks[models.BlockList] != 1 {
		t.Errorf("list blocks = %d", stats.Blocks[models.BlockList])
	}
}

func TestStats_EmptyDocument(t *testing.T) {
	stats := Stats("")
	if stats.Words != 0 || stats.Headings != 0 || len(stats.Blocks) != 0 {
		t.Errorf("stats = %+v, want zero", stats)
	}
}

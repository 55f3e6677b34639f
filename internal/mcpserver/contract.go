package mcpserver

// DocumentFormatContract describes the canonical Markdown document format
// that LLM consumers should follow when creating or updating content.
const DocumentFormatContract = `# Berkano Document Format Contract

Every document stored in Berkano MUST follow this structure.

## Structure

` + "```" + `markdown
---
title: Human-readable title        # REQUIRED – shown in lists and exports
slug: human-readable-title          # OPTIONAL – derived from title when omitted
status: draft                       # OPTIONAL – draft | published | archived
category: guides                    # OPTIONAL – free-form grouping key
---

Body text in standard Markdown.
` + "```" + `

## Rules

1. **YAML frontmatter is mandatory.** The ` + "```" + `---` + "```" + ` fences must be the first
   thing in the document (no leading blank lines).
2. **` + "`" + `title` + "`" + ` field is required** and is at most 180 characters.
3. **Slugs** are lowercase kebab-case (e.g. ` + "`" + `getting-started` + "`" + `) and unique
   within a database. Omit the field to have one derived from the title.
4. **Status** is one of ` + "`" + `draft` + "`" + `, ` + "`" + `published` + "`" + `, ` + "`" + `archived` + "`" + `. Unknown values
   fall back to ` + "`" + `draft` + "`" + `.
5. **Encoding** is UTF-8 with a trailing newline.
6. **Script tags are stripped.** Raw HTML is allowed but sanitized on save.

## Supported blocks

- Headings ` + "`" + `#` + "`" + ` through ` + "`" + `######` + "`" + `
- Paragraphs (a lone ` + "`" + `\` + "`" + ` line marks an intentionally empty paragraph)
- Bulleted and numbered lists, nested by two-space indentation
- Callouts as ` + "`" + `> ` + "`" + ` quoted lines
- Fenced code blocks with an optional language
- Math blocks fenced with ` + "`" + `$$` + "`" + `
- Toggles: ` + "`" + `:::toggle Summary` + "`" + ` ... ` + "`" + `:::` + "`" + `
- A table of contents marker: ` + "`" + `[TOC]` + "`" + `

## Inline formatting

` + "`" + `**bold**` + "`" + `, ` + "`" + `*italic*` + "`" + `, ` + "`" + `__underline__` + "`" + `, ` + "`" + `~~strikethrough~~` + "`" + `,
` + "`" + `==highlight==` + "`" + `, inline ` + "`" + `code` + "`" + `, and ` + "`" + `[links](https://example.com)` + "`" + `.
Link URLs must be http, https, mailto, or tel; anything else is dropped.

## Example

` + "```" + `markdown
---
title: Getting Started
slug: getting-started
status: published
---

# Welcome

This guide covers the **basics**.

- install the binary
- create a database
- save your first document
` + "```" + `
`

package blocks

import "github.com/starford/berkano/internal/models"

// NewEmptyBlock returns the canonical empty shape for a block type, used by
// the editor when inserting new blocks. Each shape survives the markdown
// round trip unchanged.
func NewEmptyBlock(t models.BlockType) models.Block {
	b := models.Block{ID: newID(), Type: t}
	switch t {
	case models.BlockHeading:
		b.Level = 2
	case models.BlockList:
		b.Items = []models.ListItem{{}}
	case models.BlockCode:
		b.Language = "text"
	case models.BlockHTML:
		b.Raw = "<div></div>"
	}
	return b
}

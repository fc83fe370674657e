package catalog

import (
	"time"

	"github.com/meghashyamc/toolshelf/db/searchdb"
	"github.com/meghashyamc/toolshelf/search"
)

type Tool struct {
	ID          string    `json:"id"`
	ToolName    string    `json:"tool_name"`
	Category    string    `json:"category"`
	Rating      float64   `json:"rating"`
	Description string    `json:"description,omitempty"`
	URL         string    `json:"url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Input holds the user-editable fields of a Tool.
type Input struct {
	ToolName    string  `json:"tool_name" validate:"required,not_blank,max=200"`
	Category    string  `json:"category" validate:"required,not_blank,max=100"`
	Rating      float64 `json:"rating" validate:"gte=0,lte=5"`
	Description string  `json:"description" validate:"max=2000"`
	URL         string  `json:"url" validate:"omitempty,max=2048,valid_url"`
}

func (t Tool) SearchFields() search.Fields {
	return search.Fields{
		ID:        t.ID,
		Name:      t.ToolName,
		Category:  t.Category,
		Rating:    t.Rating,
		CreatedAt: t.CreatedAt,
	}
}

// Document converts a tool into its full-text index representation.
func (t Tool) Document() searchdb.Document {
	return searchdb.Document{
		ID:          t.ID,
		Name:        t.ToolName,
		Category:    t.Category,
		Description: t.Description,
		URL:         t.URL,
		Rating:      t.Rating,
		CreatedAt:   t.CreatedAt,
	}
}

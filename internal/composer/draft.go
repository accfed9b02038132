// Package composer holds the article form: its draft state, the main image
// preview lifecycle and the submission flow that hands a finished draft to
// the save action.
package composer

import (
	"strings"

	"github.com/debemdeboas/composer/internal/model"
	"github.com/rs/zerolog"
)

type DraftID string

// ImageFile is a selected image as uploaded. Its bytes are never modified.
type ImageFile struct {
	Name        string
	ContentType string
	Data        []byte
}

type Draft struct {
	ID    DraftID
	Owner model.UserID

	Title        string
	Subtitle     string
	Content      string
	Bibliography string

	MainImage *ImageFile
}

// Rules decides when a draft is complete enough to submit.
type Rules struct {
	// EmptyMarkup is the rich-text editor's representation of an empty document.
	EmptyMarkup string
}

func (r Rules) ContentEmpty(content string) bool {
	return content == "" || content == r.EmptyMarkup
}

// Missing lists the required fields the draft lacks, in form order.
func (r Rules) Missing(d Draft) []string {
	var missing []string
	if strings.TrimSpace(d.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(d.Subtitle) == "" {
		missing = append(missing, "subtitle")
	}
	if r.ContentEmpty(d.Content) {
		missing = append(missing, "content")
	}
	return missing
}

func (r Rules) Validate(d Draft) error {
	if missing := r.Missing(d); len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}

var composerLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	composerLogger = l
}

// Package model defines the data shared between the composer and storage layers.
package model

import (
	"html/template"
	"time"
)

type UserID string

type ArticleID string

type Article struct {
	ID ArticleID

	Title    string
	Subtitle string

	// Sanitised rich-text markup as stored.
	Content string

	// Optional markdown bibliography.
	Bibliography string

	// Public URL of the processed main image, empty when none was attached.
	MainImageURL string

	ContentHash string
	CreatedDate time.Time
	Owner       UserID
}

// SafeContent marks the stored markup as trusted for templates. Content is
// sanitised before it is saved.
func (a *Article) SafeContent() template.HTML {
	return template.HTML(a.Content)
}

func (a *Article) HasMainImage() bool {
	return a.MainImageURL != ""
}

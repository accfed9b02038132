package config

const (
	// Database errors
	ErrInitializeDatabaseFmt = "Failed to initialize database: %v"

	// Composer errors
	ErrDraftNotFound     = "Draft not found"
	ErrPreviewNotFound   = "Preview not found"
	ErrUserRequired      = "User required"
	ErrImageRequired     = "No image file provided"
	ErrImageTooLarge     = "Image too large"
	ErrInvalidForm       = "Invalid form"
	ErrStreamUnsupported = "Streaming unsupported"
	ErrCouldNotLoad      = "Could not load articles"

	// Toast messages shown while composing
	MsgFieldsRequired   = "All fields are required"
	MsgTermsRequired    = "You must agree to the terms before submitting"
	MsgSavingArticle    = "Saving article..."
	MsgArticleSaved     = "Article saved successfully"
	ErrCouldNotSave     = "Could not save article"
	ErrTitleTooLong     = "Title is too long"
	ErrInvalidMainImage = "Main image could not be read"
)

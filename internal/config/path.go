package config

const (
	TemplatesLocalDir = "templates"

	TemplateLayout   = "layout.html"
	TemplateComposer = "composer.html"
	TemplateProfile  = "profile.html"
	TemplateArticle  = "article.html"

	// Partials rendered on their own in htmx responses.
	TemplateSubmitPartial  = "submit"
	TemplatePreviewPartial = "preview"
)

const (
	ImageBackendFS = "fs"
	ImageBackendS3 = "s3"

	CompressionZstd = "zstd"
	CompressionGzip = "gzip"
)

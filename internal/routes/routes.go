// Package routes defines HTTP route constants for the application.
package routes

const (
	RootPath   = "/"
	RobotsPath = "/robots.txt"

	// Composer
	NewArticle       = "GET /new/article"
	Compose          = "GET /compose"
	ComposeFields    = "POST /compose/{id}/fields"
	ComposeImage     = "POST /compose/{id}/image"
	ComposeImageDrop = "DELETE /compose/{id}/image"
	ComposeSubmit    = "POST /compose/{id}/submit"
	ComposeDiscard   = "DELETE /compose/{id}"
	ComposeEvents    = "GET /compose/{id}/events"

	// Previews of selected images, before upload
	PreviewPrefix = "/previews/"
	Preview       = "GET /previews/{token}"

	// Saved articles
	Profile = "GET /user/{userId}"
	Article = "GET /articles/{id}"
)

// ComposePath returns the base path of a draft's composer endpoints.
func ComposePath(draftID string) string {
	return "/compose/" + draftID
}

package config

const (
	HCType        = "Content-Type"
	HETag         = "ETag"
	HCacheControl = "Cache-Control"
	HHxRedirect   = "HX-Redirect"
	HHxRequest    = "HX-Request"

	CTypeHTML = "text/html; charset=utf-8"
	CTypeSSE  = "text/event-stream"
)

const (
	CookieDraftID = "draft-id"
	CookieFlash   = "flash"
)

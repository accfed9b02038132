package model

import (
	"net/http"

	"github.com/debemdeboas/composer/internal/config"
)

type PageData struct {
	SiteName    string
	SiteTagline string

	PageURL string
}

func NewPageData(r *http.Request) *PageData {
	pd := &PageData{PageURL: r.URL.Path}
	if config.AppConfig != nil {
		pd.SiteName = config.AppConfig.Site.Name
		pd.SiteTagline = config.AppConfig.Site.Tagline
	}
	return pd
}

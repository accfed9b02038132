// Package server exposes the composer over HTTP.
package server

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/debemdeboas/composer/internal/composer"
	"github.com/debemdeboas/composer/internal/config"
	"github.com/debemdeboas/composer/internal/notify"
	"github.com/debemdeboas/composer/internal/repository"
	"github.com/debemdeboas/composer/internal/routes"
	"github.com/debemdeboas/composer/internal/session"
	"github.com/rs/zerolog"
)

//go:embed templates/*
var templateFS embed.FS

var serverLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	serverLogger = l
}

// Deps are the collaborators the HTTP layer drives.
type Deps struct {
	Sessions    session.Store
	Previews    *composer.MemoryPreviewStore
	Hub         *notify.Hub
	Coordinator *composer.Coordinator
	Articles    repository.ArticleRepository

	// UploadsDir is served under the images public URL when set.
	UploadsDir string
}

type Server struct {
	cfg  *config.Config
	deps Deps

	pages map[string]*template.Template
}

func New(cfg *config.Config, deps Deps) (*Server, error) {
	pages := make(map[string]*template.Template)
	for _, page := range []string{config.TemplateComposer, config.TemplateProfile, config.TemplateArticle} {
		tmpl, err := template.ParseFS(templateFS,
			config.TemplatesLocalDir+"/"+config.TemplateLayout,
			config.TemplatesLocalDir+"/"+page,
		)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", page, err)
		}
		pages[page] = tmpl
	}

	return &Server{cfg: cfg, deps: deps, pages: pages}, nil
}

// Handler returns the routed mux wrapped in the common middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc(routes.RobotsPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(config.HCType, "text/plain")
		w.Write([]byte("User-agent: *\nDisallow: /compose\nDisallow: /previews/\n"))
	})

	mux.HandleFunc(routes.NewArticle, s.serveNewArticle)
	mux.HandleFunc(routes.Compose, s.serveCompose)
	mux.HandleFunc(routes.ComposeFields, s.withSession(s.serveFields))
	mux.HandleFunc(routes.ComposeImage, s.withSession(s.serveSelectImage))
	mux.HandleFunc(routes.ComposeImageDrop, s.withSession(s.serveClearImage))
	mux.HandleFunc(routes.ComposeSubmit, s.withSession(s.serveSubmit))
	mux.HandleFunc(routes.ComposeDiscard, s.withSession(s.serveDiscard))
	mux.HandleFunc(routes.ComposeEvents, s.withSession(s.serveEvents))

	mux.HandleFunc(routes.Preview, s.servePreview)
	mux.HandleFunc(routes.Profile, s.serveProfile)
	mux.HandleFunc(routes.Article, s.serveArticle)

	if s.deps.UploadsDir != "" && strings.HasPrefix(s.cfg.Images.PublicURL, "/") {
		prefix := strings.TrimRight(s.cfg.Images.PublicURL, "/") + "/"
		mux.Handle("GET "+prefix, http.StripPrefix(prefix, http.FileServer(http.Dir(s.deps.UploadsDir))))
	}

	return logRequests(secureHeaders(mux))
}

func (s *Server) render(w http.ResponseWriter, page, name string, data any) {
	tmpl, ok := s.pages[page]
	if !ok {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}

	w.Header().Set(config.HCType, config.CTypeHTML)
	if err := tmpl.ExecuteTemplate(w, name, data); err != nil {
		serverLogger.Error().Err(err).Str("template", name).Msg("Error executing template")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/debemdeboas/composer/internal/composer"
	"github.com/debemdeboas/composer/internal/config"
	"github.com/debemdeboas/composer/internal/model"
	"github.com/debemdeboas/composer/internal/render"
	"github.com/debemdeboas/composer/internal/repository"
	"github.com/debemdeboas/composer/internal/routes"
	"github.com/debemdeboas/composer/internal/session"
	"github.com/rs/zerolog"
)

const sseHeartbeat = 25 * time.Second

type composerView struct {
	*model.PageData
	Draft        composer.Draft
	DraftPath    string
	PreviewURL   string
	Disabled     bool
	Loading      bool
	RequireTerms bool
	MaxUploadMB  int
}

func (s *Server) view(r *http.Request, sess *session.Session) composerView {
	return composerView{
		PageData:     model.NewPageData(r),
		Draft:        sess.Form.Snapshot(),
		DraftPath:    routes.ComposePath(string(sess.ID)),
		PreviewURL:   sess.Form.PreviewURL(),
		Disabled:     sess.Form.Disabled(),
		Loading:      sess.Form.Loading(),
		RequireTerms: s.deps.Coordinator.RequiresConsent(),
		MaxUploadMB:  s.cfg.Images.MaxUpload,
	}
}

func (s *Server) setDraftCookie(w http.ResponseWriter, id composer.DraftID) {
	http.SetCookie(w, &http.Cookie{
		Name:     config.CookieDraftID,
		Value:    string(id),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearDraftCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     config.CookieDraftID,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

// cookieSession returns the session named by the draft cookie, if any.
func (s *Server) cookieSession(r *http.Request) *session.Session {
	cookie, err := r.Cookie(config.CookieDraftID)
	if err != nil {
		return nil
	}
	sess, err := s.deps.Sessions.Get(composer.DraftID(cookie.Value))
	if err != nil {
		return nil
	}
	return sess
}

// withSession resolves the {id} path value to a session. The draft cookie
// must name the same draft, so one browser cannot drive another's draft.
func (s *Server) withSession(next func(http.ResponseWriter, *http.Request, *session.Session)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		cookie, err := r.Cookie(config.CookieDraftID)
		if err != nil || cookie.Value != id {
			http.Error(w, config.ErrDraftNotFound, http.StatusNotFound)
			return
		}

		sess, err := s.deps.Sessions.Get(composer.DraftID(id))
		if err != nil {
			http.Error(w, config.ErrDraftNotFound, http.StatusNotFound)
			return
		}
		next(w, r, sess)
	}
}

func (s *Server) serveNewArticle(w http.ResponseWriter, r *http.Request) {
	owner := model.UserID(r.URL.Query().Get("user"))
	if owner == "" {
		http.Error(w, config.ErrUserRequired, http.StatusBadRequest)
		return
	}

	// Resume the writer's open draft rather than starting over.
	if sess := s.cookieSession(r); sess != nil && sess.Owner == owner {
		http.Redirect(w, r, "/compose", http.StatusSeeOther)
		return
	}

	sess, err := s.deps.Sessions.Create(owner)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("Error creating draft session")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.setDraftCookie(w, sess.ID)
	http.Redirect(w, r, "/compose", http.StatusSeeOther)
}

func (s *Server) serveCompose(w http.ResponseWriter, r *http.Request) {
	sess := s.cookieSession(r)
	if sess == nil {
		http.Error(w, config.ErrDraftNotFound, http.StatusNotFound)
		return
	}

	w.Header().Set(config.HCacheControl, "no-store")
	s.render(w, config.TemplateComposer, config.TemplateLayout, s.view(r, sess))
}

// serveFields applies a change notification. Only the fields present in the
// request are updated.
func (s *Server) serveFields(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, config.ErrInvalidForm, http.StatusBadRequest)
		return
	}

	applyFields(sess.Form, r.PostForm)
	s.render(w, config.TemplateComposer, config.TemplateSubmitPartial, s.view(r, sess))
}

// applyFields copies the text fields present in values onto the form.
func applyFields(f *composer.Form, values url.Values) {
	setters := map[string]func(string){
		"title":        f.SetTitle,
		"subtitle":     f.SetSubtitle,
		"content":      f.SetContent,
		"bibliography": f.SetBibliography,
	}
	for field, set := range setters {
		if v, ok := values[field]; ok && len(v) > 0 {
			set(v[0])
		}
	}
}

func (s *Server) serveSelectImage(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	maxBytes := int64(s.cfg.Images.MaxUpload) << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+1<<20)

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || r.ContentLength > maxBytes {
			http.Error(w, config.ErrImageTooLarge, http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, config.ErrInvalidForm, http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("main_image")
	if err != nil {
		http.Error(w, config.ErrImageRequired, http.StatusBadRequest)
		return
	}
	defer file.Close()

	if header.Size > maxBytes {
		http.Error(w, config.ErrImageTooLarge, http.StatusRequestEntityTooLarge)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, config.ErrInvalidForm, http.StatusBadRequest)
		return
	}

	contentType := header.Header.Get(config.HCType)
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	sess.Form.SelectImage(&composer.ImageFile{
		Name:        header.Filename,
		ContentType: contentType,
		Data:        data,
	})

	s.render(w, config.TemplateComposer, config.TemplatePreviewPartial, s.view(r, sess))
}

func (s *Server) serveClearImage(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	sess.Form.ClearImage()
	s.render(w, config.TemplateComposer, config.TemplatePreviewPartial, s.view(r, sess))
}

// redirectNavigator records where the coordinator wants the writer to go.
type redirectNavigator struct {
	path string
}

func (n *redirectNavigator) Navigate(path string) {
	n.path = path
}

func (s *Server) serveSubmit(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, config.ErrInvalidForm, http.StatusBadRequest)
		return
	}
	// Change notifications are debounced, so the submit carries the latest text.
	applyFields(sess.Form, r.PostForm)
	agreed := r.PostForm.Get("agree") != ""

	nav := &redirectNavigator{}
	err := s.deps.Coordinator.SubmitWithConsent(r.Context(), sess.Form, agreed, s.deps.Hub.For(sess.ID), nav)
	if err != nil {
		// The outcome has already been reported as a toast; re-render the
		// control so the page reflects the form's current state.
		zerolog.Ctx(r.Context()).Debug().Err(err).Str("draft_id", string(sess.ID)).Msg("Submission not completed")
		s.render(w, config.TemplateComposer, config.TemplateSubmitPartial, s.view(r, sess))
		return
	}

	if err := s.deps.Sessions.Delete(sess.ID); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Str("draft_id", string(sess.ID)).Msg("Error discarding submitted draft")
	}
	s.clearDraftCookie(w)
	setFlash(w, flashArticleSaved)
	redirect(w, r, nav.path)
}

func (s *Server) serveDiscard(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if err := s.deps.Sessions.Delete(sess.ID); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.clearDraftCookie(w)
	redirect(w, r, s.deps.Coordinator.ProfileURL(sess.Owner))
}

// redirect uses HX-Redirect for htmx requests, which ignore 3xx responses.
func redirect(w http.ResponseWriter, r *http.Request, path string) {
	if r.Header.Get(config.HHxRequest) == "true" {
		w.Header().Set(config.HHxRedirect, path)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

type toastEvent struct {
	ID      string `json:"id"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func (s *Server) serveEvents(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, config.ErrStreamUnsupported, http.StatusInternalServerError)
		return
	}

	w.Header().Set(config.HCType, config.CTypeSSE)
	w.Header().Set(config.HCacheControl, "no-cache")
	w.Header().Set("Connection", "keep-alive")

	fmt.Fprintf(w, "event: connected\ndata: %s\n\n", sess.ID)
	flusher.Flush()

	client := s.deps.Hub.Subscribe(sess.ID)
	defer s.deps.Hub.Unsubscribe(client)

	l := zerolog.Ctx(r.Context()).With().Str("draft_id", string(sess.ID)).Logger()
	l.Debug().Msg("Toast stream connected")

	heartbeat := time.NewTicker(sseHeartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case toast, ok := <-client.Msg:
			if !ok {
				l.Debug().Msg("Toast stream closed by draft teardown")
				return
			}
			data, err := json.Marshal(toastEvent{ID: string(toast.ID), Kind: string(toast.Kind), Message: toast.Message})
			if err != nil {
				l.Error().Err(err).Msg("Error encoding toast")
				continue
			}
			fmt.Fprintf(w, "event: toast\ndata: %s\n\n", data)
			flusher.Flush()
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case <-r.Context().Done():
			l.Debug().Msg("Toast stream disconnected")
			return
		}
	}
}

func (s *Server) servePreview(w http.ResponseWriter, r *http.Request) {
	file, ok := s.deps.Previews.Get(r.PathValue("token"))
	if !ok {
		http.Error(w, config.ErrPreviewNotFound, http.StatusNotFound)
		return
	}

	// Sniff rather than trust the uploaded type so a preview can only ever be an image.
	contentType := http.DetectContentType(file.Data)
	if !strings.HasPrefix(contentType, "image/") {
		contentType = "application/octet-stream"
	}
	w.Header().Set(config.HCType, contentType)
	w.Header().Set(config.HCacheControl, "no-store")
	w.Write(file.Data)
}

type profileView struct {
	*model.PageData
	UserID   model.UserID
	Articles []model.Article
	Flash    string
}

func (s *Server) serveProfile(w http.ResponseWriter, r *http.Request) {
	owner := model.UserID(r.PathValue("userId"))

	articles, err := s.deps.Articles.ListByOwner(r.Context(), owner)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("owner", string(owner)).Msg("Error listing articles")
		http.Error(w, config.ErrCouldNotLoad, http.StatusInternalServerError)
		return
	}

	s.render(w, config.TemplateProfile, config.TemplateLayout, profileView{
		PageData: model.NewPageData(r),
		UserID:   owner,
		Articles: articles,
		Flash:    takeFlash(w, r),
	})
}

type articleView struct {
	*model.PageData
	Article      *model.Article
	Bibliography template.HTML
}

func (s *Server) serveArticle(w http.ResponseWriter, r *http.Request) {
	article, err := s.deps.Articles.GetArticle(r.Context(), model.ArticleID(r.PathValue("id")))
	if err != nil {
		if errors.Is(err, repository.ErrArticleNotFound) {
			http.NotFound(w, r)
			return
		}
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("Error loading article")
		http.Error(w, config.ErrCouldNotLoad, http.StatusInternalServerError)
		return
	}

	w.Header().Set(config.HETag, article.ContentHash)
	s.render(w, config.TemplateArticle, config.TemplateLayout, articleView{
		PageData:     model.NewPageData(r),
		Article:      article,
		Bibliography: template.HTML(render.RenderMarkdownCached([]byte(article.Bibliography), render.DefaultStyle)),
	})
}

package composer

import (
	"context"
	"errors"
	"strings"

	"github.com/debemdeboas/composer/internal/config"
	"github.com/debemdeboas/composer/internal/model"
)

// ArticleInput is what crosses the boundary into the save action.
type ArticleInput struct {
	Owner model.UserID

	Title        string
	Subtitle     string
	Content      string
	Bibliography string

	MainImage *ImageFile
}

// SaveAction persists a finished article. A non-nil error is the failure
// outcome and its message is shown to the writer verbatim.
type SaveAction interface {
	CreateArticle(ctx context.Context, in ArticleInput) error
}

type ToastID string

// Notifier shows transient messages. Passing an existing id replaces that
// toast in place; an empty id opens a new one.
type Notifier interface {
	Loading(msg string) ToastID
	Success(id ToastID, msg string)
	Error(id ToastID, msg string)
}

type Navigator interface {
	Navigate(path string)
}

type Coordinator struct {
	action         SaveAction
	requireConsent bool
	profilePath    string
}

type CoordinatorOption func(*Coordinator)

// WithConsentGate requires SubmitWithConsent to be called with agreed=true.
func WithConsentGate(required bool) CoordinatorOption {
	return func(c *Coordinator) {
		c.requireConsent = required
	}
}

// WithProfilePath sets the prefix of the page a writer lands on after saving.
func WithProfilePath(path string) CoordinatorOption {
	return func(c *Coordinator) {
		c.profilePath = path
	}
}

func NewCoordinator(action SaveAction, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		action:      action,
		profilePath: "/user/",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Coordinator) RequiresConsent() bool {
	return c.requireConsent
}

// ProfileURL is where a writer is sent after a successful save.
func (c *Coordinator) ProfileURL(owner model.UserID) string {
	return strings.TrimRight(c.profilePath, "/") + "/" + string(owner)
}

// SubmitWithConsent is Submit behind the terms dialog. When the gate is
// enabled and agreed is false the save action is never called.
func (c *Coordinator) SubmitWithConsent(ctx context.Context, f *Form, agreed bool, n Notifier, nav Navigator) error {
	if c.requireConsent && !agreed {
		n.Error("", config.MsgTermsRequired)
		return ErrConsentRequired
	}
	return c.Submit(ctx, f, n, nav)
}

// Submit validates the form, calls the save action once and reports the
// outcome. On success the writer is navigated to their profile; on any
// failure the draft is left as it was.
func (c *Coordinator) Submit(ctx context.Context, f *Form, n Notifier, nav Navigator) error {
	draft, err := f.begin()
	if err != nil {
		var verr *ValidationError
		switch {
		case errors.As(err, &verr):
			n.Error("", config.MsgFieldsRequired)
		case errors.Is(err, ErrSubmissionInFlight):
			composerLogger.Debug().Str("draft_id", string(f.ID())).Msg("Ignoring submit while saving")
		case errors.Is(err, ErrFormClosed):
			composerLogger.Debug().Str("draft_id", string(f.ID())).Msg("Ignoring submit for discarded draft")
		}
		return err
	}
	defer f.finish()

	l := composerLogger.With().Str("draft_id", string(draft.ID)).Str("owner", string(draft.Owner)).Logger()

	toast := n.Loading(config.MsgSavingArticle)
	err = c.action.CreateArticle(ctx, ArticleInput{
		Owner:        draft.Owner,
		Title:        draft.Title,
		Subtitle:     draft.Subtitle,
		Content:      draft.Content,
		Bibliography: draft.Bibliography,
		MainImage:    draft.MainImage,
	})
	if err != nil {
		l.Warn().Err(err).Msg("Article save failed")
		n.Error(toast, err.Error())
		return &SaveError{Err: err}
	}

	l.Info().Msg("Article saved")
	n.Success(toast, config.MsgArticleSaved)
	nav.Navigate(c.ProfileURL(draft.Owner))
	return nil
}

// Package article is the save action behind the composer: it cleans the
// submitted draft, stores its main image and persists the article.
package article

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/debemdeboas/composer/internal/composer"
	"github.com/debemdeboas/composer/internal/config"
	"github.com/debemdeboas/composer/internal/imagestore"
	"github.com/debemdeboas/composer/internal/repository"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
)

var (
	ErrTitleTooLong     = errors.New(config.ErrTitleTooLong)
	ErrInvalidMainImage = errors.New(config.ErrInvalidMainImage)
	ErrCouldNotSave     = errors.New(config.ErrCouldNotSave)
)

type Options struct {
	MaxTitleLength int
	MaxImageWidth  int
	JPEGQuality    int
	EmptyMarkup    string
}

// Service is the composer's save action.
type Service struct {
	repo   repository.ArticleRepository
	images imagestore.ImageStore
	policy *bluemonday.Policy
	opts   Options
}

var _ composer.SaveAction = (*Service)(nil)

var articleLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	articleLogger = l
}

func NewService(repo repository.ArticleRepository, images imagestore.ImageStore, opts Options) *Service {
	if opts.EmptyMarkup == "" {
		opts.EmptyMarkup = "<p></p>"
	}
	if opts.JPEGQuality <= 0 {
		opts.JPEGQuality = 80
	}

	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("code", "pre", "span")

	return &Service{
		repo:   repo,
		images: images,
		policy: policy,
		opts:   opts,
	}
}

// CreateArticle saves in as a new article. Returned errors carry text meant
// for the writer; the underlying cause is logged.
func (s *Service) CreateArticle(ctx context.Context, in composer.ArticleInput) error {
	l := articleLogger.With().Str("owner", string(in.Owner)).Logger()

	title := strings.TrimSpace(in.Title)
	subtitle := strings.TrimSpace(in.Subtitle)
	if title == "" || subtitle == "" {
		return errors.New(config.MsgFieldsRequired)
	}
	if s.opts.MaxTitleLength > 0 && utf8.RuneCountInString(title) > s.opts.MaxTitleLength {
		return ErrTitleTooLong
	}

	content := s.policy.Sanitize(in.Content)
	if strings.TrimSpace(content) == "" || content == s.opts.EmptyMarkup {
		return errors.New(config.MsgFieldsRequired)
	}

	article := s.repo.NewArticle(in.Owner)
	article.Title = title
	article.Subtitle = subtitle
	article.Content = content
	article.Bibliography = strings.TrimSpace(in.Bibliography)

	var imageKey string
	if in.MainImage != nil {
		data, err := processImage(in.MainImage.Data, s.opts.MaxImageWidth, s.opts.JPEGQuality)
		if err != nil {
			l.Warn().Err(err).Str("file", in.MainImage.Name).Msg("Rejected main image")
			return ErrInvalidMainImage
		}

		imageKey = imageKeyFor(string(article.ID), in.MainImage.Name)
		url, err := s.images.Put(ctx, imageKey, "image/jpeg", data)
		if err != nil {
			l.Error().Err(err).Str("key", imageKey).Msg("Error storing main image")
			return ErrCouldNotSave
		}
		article.MainImageURL = url
	}

	if err := s.repo.SaveArticle(ctx, article); err != nil {
		l.Error().Err(err).Str("article_id", string(article.ID)).Msg("Error saving article")
		if imageKey != "" {
			if derr := s.images.Delete(ctx, imageKey); derr != nil {
				l.Warn().Err(derr).Str("key", imageKey).Msg("Error removing orphaned image")
			}
		}
		return ErrCouldNotSave
	}

	l.Info().Str("article_id", string(article.ID)).Bool("main_image", imageKey != "").Msg("Article created")
	return nil
}

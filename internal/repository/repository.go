package repository

import (
	"context"
	"errors"

	"github.com/debemdeboas/composer/internal/model"
	"github.com/rs/zerolog"
)

var ErrArticleNotFound = errors.New("article not found")

type ArticleRepository interface {
	NewArticle(owner model.UserID) *model.Article
	SaveArticle(ctx context.Context, article *model.Article) error
	GetArticle(ctx context.Context, id model.ArticleID) (*model.Article, error)
	ListByOwner(ctx context.Context, owner model.UserID) ([]model.Article, error)
}

var repoLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	repoLogger = l
}

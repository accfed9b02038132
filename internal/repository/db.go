package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/debemdeboas/composer/internal/db"
	"github.com/debemdeboas/composer/internal/model"
	"github.com/debemdeboas/composer/internal/util"
	"github.com/debemdeboas/composer/internal/util/compression"
	"github.com/google/uuid"
)

const articleColumns = `id, title, subtitle, content, content_hash, bibliography, main_image_url, user_id, created_at`

type DBArticleRepository struct { // implements ArticleRepository
	db         db.DB
	compressor compression.Compressor
}

func NewDBArticleRepository(db db.DB, compressor compression.Compressor) *DBArticleRepository {
	if compressor == nil {
		compressor = compression.ZstdCompressor{}
	}
	return &DBArticleRepository{
		db:         db,
		compressor: compressor,
	}
}

func (r *DBArticleRepository) NewArticle(owner model.UserID) *model.Article {
	return &model.Article{
		ID:          model.ArticleID(uuid.New().String()),
		CreatedDate: time.Now().UTC(),
		Owner:       owner,
	}
}

func (r *DBArticleRepository) SaveArticle(ctx context.Context, article *model.Article) error {
	compressed, err := r.compressor.Compress([]byte(article.Content))
	if err != nil {
		return fmt.Errorf("error compressing content: %w", err)
	}

	// Hash the markup rather than the compressed bytes so codecs can change.
	article.ContentHash = util.ContentHashString(article.Content)

	_, err = r.db.Exec(ctx,
		`INSERT INTO articles (`+articleColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		article.ID, article.Title, article.Subtitle, compressed, article.ContentHash,
		article.Bibliography, article.MainImageURL, article.Owner, article.CreatedDate,
	)
	if err != nil {
		return fmt.Errorf("error saving article: %w", err)
	}

	repoLogger.Debug().
		Str("article_id", string(article.ID)).
		Str("owner", string(article.Owner)).
		Msg("Article saved")
	return nil
}

func (r *DBArticleRepository) GetArticle(ctx context.Context, id model.ArticleID) (*model.Article, error) {
	row := r.db.QueryRow(ctx, `SELECT `+articleColumns+` FROM articles WHERE id = ?`, id)

	article, err := r.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrArticleNotFound, id)
	}
	return article, err
}

func (r *DBArticleRepository) ListByOwner(ctx context.Context, owner model.UserID) ([]model.Article, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+articleColumns+` FROM articles WHERE user_id = ? ORDER BY created_at DESC`,
		owner,
	)
	if err != nil {
		return nil, fmt.Errorf("error querying articles: %w", err)
	}
	defer rows.Close()

	articles := make([]model.Article, 0)
	for rows.Next() {
		article, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, *article)
	}
	return articles, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *DBArticleRepository) scan(s scanner) (*model.Article, error) {
	var article model.Article
	var compressed []byte
	var hash, bibliography, imageURL sql.NullString

	err := s.Scan(
		&article.ID, &article.Title, &article.Subtitle, &compressed, &hash,
		&bibliography, &imageURL, &article.Owner, &article.CreatedDate,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("error scanning article: %w", err)
	}

	content, err := r.compressor.Decompress(compressed)
	if err != nil {
		return nil, fmt.Errorf("error decompressing content: %w", err)
	}

	article.Content = string(content)
	article.ContentHash = hash.String
	article.Bibliography = bibliography.String
	article.MainImageURL = imageURL.String
	return &article, nil
}

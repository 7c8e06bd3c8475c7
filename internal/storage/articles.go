package db

import (
	"context"
	"fmt"
)

// UpsertArticle writes or merges a news article. Per §4.9's
// COALESCE-merge semantics, a blank incoming field never overwrites a
// present stored value.
func (db *DB) UpsertArticle(ctx context.Context, p UpsertArticleParams) error {
	const q = `
		INSERT INTO news_articles (url, feed_url, title, description, image, content, author, published_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (url) DO UPDATE SET
			title = COALESCE(NULLIF(EXCLUDED.title, ''), news_articles.title),
			description = COALESCE(NULLIF(EXCLUDED.description, ''), news_articles.description),
			image = COALESCE(NULLIF(EXCLUDED.image, ''), news_articles.image),
			content = COALESCE(NULLIF(EXCLUDED.content, ''), news_articles.content),
			author = COALESCE(NULLIF(EXCLUDED.author, ''), news_articles.author),
			published_at = COALESCE(EXCLUDED.published_at, news_articles.published_at),
			updated_at = COALESCE(EXCLUDED.updated_at, news_articles.updated_at)`

	_, err := db.Pool.Exec(ctx, q,
		p.URL, p.FeedURL, toText(p.Title), toText(p.Description), toText(p.Image),
		toText(p.Content), toText(p.Author), toTimestamptzPtr(p.PublishedAt), toTimestamptzPtr(p.UpdatedAt))
	if err != nil {
		return fmt.Errorf("upsert article: %w", err)
	}

	return nil
}

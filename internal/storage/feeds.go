package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
)

// UpsertFeed registers a feed discovered during extraction or seeded in
// bulk. Existing metadata is only overwritten with non-blank values.
func (db *DB) UpsertFeed(ctx context.Context, p UpsertFeedParams) error {
	const q = `
		INSERT INTO news_feeds (feed_url, home_url, name, link, image, discovered_by_url, last_published, next_fetch_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		ON CONFLICT (feed_url) DO UPDATE SET
			home_url = COALESCE(NULLIF(EXCLUDED.home_url, ''), news_feeds.home_url),
			name = COALESCE(NULLIF(EXCLUDED.name, ''), news_feeds.name),
			link = COALESCE(NULLIF(EXCLUDED.link, ''), news_feeds.link),
			image = COALESCE(NULLIF(EXCLUDED.image, ''), news_feeds.image),
			last_published = COALESCE(EXCLUDED.last_published, news_feeds.last_published)`

	_, err := db.Pool.Exec(ctx, q,
		p.FeedURL, toText(p.HomeURL), toText(p.Name), toText(p.Link), toText(p.Image),
		toText(p.DiscoveredByURL), toTimestamptzPtr(p.LastPublished))
	if err != nil {
		return fmt.Errorf("upsert feed: %w", err)
	}

	return nil
}

// ClaimFeedsDue returns up to limit feeds whose next_fetch_at is null or
// due, restricted to this node's shard when totalNodes > 1.
func (db *DB) ClaimFeedsDue(ctx context.Context, limit, totalNodes, nodeIndex int) ([]NewsFeed, error) {
	q := `
		SELECT feed_url, home_url, name, link, image, discovered_by_url,
		       last_published, last_fetched, next_fetch_at, publish_rate_per_hour
		FROM news_feeds
		WHERE (next_fetch_at IS NULL OR next_fetch_at <= now())`

	args := []any{}
	argn := 1

	if totalNodes > 1 {
		q += fmt.Sprintf(" AND abs(('x' || md5(feed_url))::bit(32)::int) %% $%d = $%d", argn, argn+1)
		args = append(args, totalNodes, nodeIndex)
		argn += 2
	}

	q += fmt.Sprintf(" ORDER BY next_fetch_at NULLS FIRST LIMIT $%d", argn)
	args = append(args, limit)

	rows, err := db.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("claim feeds due: %w", err)
	}
	defer rows.Close()

	var feeds []NewsFeed

	for rows.Next() {
		var (
			f                                          NewsFeed
			home, name, link, image, discoveredBy      pgtype.Text
			lastPublished, lastFetched, nextFetch      pgtype.Timestamptz
			rate                                        pgtype.Float4
		)

		err := rows.Scan(&f.FeedURL, &home, &name, &link, &image, &discoveredBy,
			&lastPublished, &lastFetched, &nextFetch, &rate)
		if err != nil {
			return nil, fmt.Errorf("scan feed: %w", err)
		}

		f.HomeURL = fromText(home)
		f.Name = fromText(name)
		f.Link = fromText(link)
		f.Image = fromText(image)
		f.DiscoveredByURL = fromText(discoveredBy)
		f.LastPublished = fromTimestamptzPtr(lastPublished)
		f.LastFetched = fromTimestamptzPtr(lastFetched)
		f.NextFetchAt = fromTimestamptzPtr(nextFetch)
		f.PublishRatePerHour = rate.Float32

		feeds = append(feeds, f)
	}

	return feeds, rows.Err()
}

// TouchFeedFetched stamps last_fetched = now() and next_fetch_at = now()
// + interval, after a feed has been polled, per §4.9.
func (db *DB) TouchFeedFetched(ctx context.Context, feedURL string, nextInSeconds int) error {
	const q = `
		UPDATE news_feeds
		SET last_fetched = now(), next_fetch_at = now() + ($2 * interval '1 second')
		WHERE feed_url = $1`

	if _, err := db.Pool.Exec(ctx, q, feedURL, nextInSeconds); err != nil {
		return fmt.Errorf("touch feed fetched: %w", err)
	}

	return nil
}

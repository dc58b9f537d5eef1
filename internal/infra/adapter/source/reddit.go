package source

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"condo-radar/internal/domain/entity"
)

// DefaultRedditBaseURL is the public JSON listing endpoint.
const DefaultRedditBaseURL = "https://www.reddit.com"

// DefaultRedditLimit is how many newest posts each subreddit listing asks for.
const DefaultRedditLimit = 100

// RedditAdapter lists the newest posts of a set of subreddits through the
// public .json listing endpoint. No OAuth is involved; the endpoint serves
// the same payload the HTML frontend renders.
type RedditAdapter struct {
	fetcher    Fetcher
	baseURL    string
	subreddits []string
	limit      int
	logger     *slog.Logger
}

// NewRedditAdapter builds the forum adapter. An empty baseURL selects the
// public endpoint; limit <= 0 selects the default page size.
func NewRedditAdapter(fetcher Fetcher, baseURL string, subreddits []string, limit int, logger *slog.Logger) *RedditAdapter {
	if baseURL == "" {
		baseURL = DefaultRedditBaseURL
	}
	if limit <= 0 {
		limit = DefaultRedditLimit
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedditAdapter{
		fetcher:    fetcher,
		baseURL:    baseURL,
		subreddits: subreddits,
		limit:      limit,
		logger:     logger,
	}
}

func (a *RedditAdapter) Source() entity.Source {
	return entity.SourceForum
}

// List collects records from every configured subreddit. One subreddit
// failing is logged and skipped; List errors only when every subreddit
// failed, so a single private or banned community cannot sink the source.
func (a *RedditAdapter) List(ctx context.Context) ([]*entity.RawRecord, error) {
	var records []*entity.RawRecord
	failed := 0
	for _, sub := range a.subreddits {
		recs, err := a.listSubreddit(ctx, sub)
		if err != nil {
			failed++
			a.logger.Warn("subreddit listing failed",
				"subreddit", sub,
				"error", err)
			continue
		}
		records = append(records, recs...)
	}
	if failed == len(a.subreddits) && len(a.subreddits) > 0 {
		return nil, fmt.Errorf("all %d subreddit listings failed", failed)
	}
	return records, nil
}

func (a *RedditAdapter) listSubreddit(ctx context.Context, sub string) ([]*entity.RawRecord, error) {
	url := fmt.Sprintf("%s/r/%s/new.json?limit=%d", a.baseURL, sub, a.limit)
	body, err := a.fetcher.GetListing(ctx, url)
	if err != nil {
		return nil, err
	}

	var listing redditListing
	if err := json.Unmarshal(body, &listing); err != nil {
		return nil, fmt.Errorf("decode listing: %w", err)
	}

	records := make([]*entity.RawRecord, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		post := child.Data
		epoch := int64(post.CreatedUTC)
		records = append(records, &entity.RawRecord{
			Title:        post.Title,
			Body:         post.SelfText,
			Link:         a.baseURL + post.Permalink,
			EpochSeconds: &epoch,
			Metadata: map[string]any{
				"subreddit":    post.Subreddit,
				"author":       post.Author,
				"score":        post.Score,
				"num_comments": post.NumComments,
				"external_url": post.URL,
			},
		})
	}
	return records, nil
}

// redditListing mirrors the subset of the listing payload the adapter needs.
// created_utc arrives as a float even though it is a whole-second epoch.
type redditListing struct {
	Data struct {
		Children []struct {
			Data struct {
				Title       string  `json:"title"`
				SelfText    string  `json:"selftext"`
				Permalink   string  `json:"permalink"`
				URL         string  `json:"url"`
				CreatedUTC  float64 `json:"created_utc"`
				Subreddit   string  `json:"subreddit"`
				Author      string  `json:"author"`
				Score       int     `json:"score"`
				NumComments int     `json:"num_comments"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

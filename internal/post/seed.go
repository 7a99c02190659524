// internal/post/seed.go
//
// Embedded last-resort dataset.
//
// Context
// -------
// When both database paths are down the blog grid still has to render, so a
// small curated set of evergreen stories ships inside the binary.  The seed
// honours the caller's filters and paging, which keeps the grid's state
// machine identical whether content is live or canned.
//
// The file is parsed once on first use.  A corrupt seed is a build problem
// caught by tests; at runtime it degrades to an empty dataset with an error
// log rather than a panic.
package post

import (
	_ "embed"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/meridianmall/arcade/internal/category"
	"github.com/meridianmall/arcade/internal/normalize"
	"github.com/meridianmall/arcade/internal/query"
)

// seedNotice rides ListResult.Notice so the grid can show its degraded-mode
// banner.
const seedNotice = "Live content is temporarily unavailable; showing recent highlights."

//go:embed seed.json
var seedRaw []byte

type seedFile struct {
	Categories []category.Category `json:"categories"`
	Posts      []seedPost          `json:"posts"`
}

type seedPost struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Slug       string    `json:"slug"`
	Summary    string    `json:"summary"`
	Body       string    `json:"body"`
	Tags       []string  `json:"tags"`
	ImageURL   string    `json:"imageUrl"`
	Featured   bool      `json:"isFeatured"`
	PublishAt  time.Time `json:"publishAt"`
	CategoryID int64     `json:"categoryId"`
}

var (
	seedOnce   sync.Once
	seedCached []Post
)

// loadSeed parses the embedded dataset once and returns it newest first.
func loadSeed() []Post {
	seedOnce.Do(func() {
		var f seedFile
		if err := json.Unmarshal(seedRaw, &f); err != nil {
			zap.S().Errorw("post seed dataset unreadable", "error", err)
			return
		}

		cats := make(map[int64]category.Category, len(f.Categories))
		for _, c := range f.Categories {
			cats[c.ID] = c
		}

		out := make([]Post, 0, len(f.Posts))
		for _, sp := range f.Posts {
			p := Post{
				ID:        sp.ID,
				Title:     sp.Title,
				Slug:      sp.Slug,
				Summary:   sp.Summary,
				Body:      sp.Body,
				Tags:      sp.Tags,
				ImageURL:  normalize.ImageURL(sp.ImageURL),
				Featured:  sp.Featured,
				Published: true,
				PublishAt: sp.PublishAt,
			}
			if p.Tags == nil {
				p.Tags = []string{}
			}
			if c, ok := cats[sp.CategoryID]; ok {
				cc := c
				p.Category = &cc
			}
			out = append(out, p)
		}

		sort.Slice(out, func(i, j int) bool {
			return out[i].PublishAt.After(out[j].PublishAt)
		})
		seedCached = out
	})
	return seedCached
}

// seedList filters and pages the seed with the caller's original
// parameters, so the canned response has the same shape and counts a live
// one would.
func seedList(params ListParams, page query.Page) pageData {
	matched := filterSeed(loadSeed(), params)
	total := len(matched)

	start := page.Offset()
	if start > total {
		start = total
	}
	end := start + page.Limit()
	if end > total {
		end = total
	}

	return pageData{
		posts: append([]Post(nil), matched[start:end]...),
		total: total,
	}
}

func seedBySlug(slug string) *Post {
	for _, p := range loadSeed() {
		if p.Slug == slug {
			cp := p
			return &cp
		}
	}
	return nil
}

func seedFeatured(limit int) []Post {
	f := true
	matched := filterSeed(loadSeed(), ListParams{Featured: &f})
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return append([]Post(nil), matched...)
}

func seedSearch(term string, limit int) []Post {
	matched := filterSeed(loadSeed(), ListParams{Search: term})
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return append([]Post(nil), matched...)
}

// filterSeed mirrors the SQL predicates in repository.go: substring match
// on title or summary, category-id equality, tag intersection, featured
// flag, and the publish window.  Every seed post is published, so the
// Admin flag changes nothing here.
func filterSeed(posts []Post, params ListParams) []Post {
	needle := strings.ToLower(strings.TrimSpace(params.Search))

	out := make([]Post, 0, len(posts))
	for _, p := range posts {
		if needle != "" &&
			!strings.Contains(strings.ToLower(p.Title), needle) &&
			!strings.Contains(strings.ToLower(p.Summary), needle) {
			continue
		}
		if params.CategoryID > 0 && (p.Category == nil || p.Category.ID != params.CategoryID) {
			continue
		}
		if params.Featured != nil && p.Featured != *params.Featured {
			continue
		}
		if params.From != nil && p.PublishAt.Before(*params.From) {
			continue
		}
		if params.To != nil && p.PublishAt.After(*params.To) {
			continue
		}
		if len(params.Tags) > 0 && !anyTagMatch(p.Tags, params.Tags) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func anyTagMatch(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if strings.EqualFold(h, w) {
				return true
			}
		}
	}
	return false
}

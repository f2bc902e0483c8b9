package catalog

import (
	"sort"
	"strings"

	"memeverse/internal/models"
)

// PageSize is the number of memes added per explore page.
const PageSize = 12

// Category filter values. CategoryAll disables the filter.
const (
	CategoryAll      = "All"
	CategoryTrending = "Trending"
	CategoryNew      = "New"
	CategoryClassic  = "Classic"
	CategoryRandom   = "Random"
)

var Categories = []string{CategoryAll, CategoryTrending, CategoryNew, CategoryClassic, CategoryRandom}

// Sort keys.
const (
	SortLikes    = "likes"
	SortDate     = "date"
	SortComments = "comments"
)

// Query selects an explore view.
type Query struct {
	Category string
	Search   string
	SortBy   string
	Page     int
}

// Normalize fills defaults: category All, sort by likes, page 1.
func (q Query) Normalize() Query {
	if q.Category == "" {
		q.Category = CategoryAll
	}
	if q.SortBy == "" {
		q.SortBy = SortLikes
	}
	if q.Page < 1 {
		q.Page = 1
	}
	q.Search = strings.TrimSpace(q.Search)
	return q
}

// ValidCategory reports whether c is one of Categories.
func ValidCategory(c string) bool {
	for _, known := range Categories {
		if known == c {
			return true
		}
	}
	return false
}

// ValidSort reports whether s is a known sort key.
func ValidSort(s string) bool {
	return s == SortLikes || s == SortDate || s == SortComments
}

// Explore filters, sorts and pages memes. Pages are cumulative: page N holds
// the first N*PageSize results.
func Explore(memes []models.Meme, q Query) []models.Meme {
	q = q.Normalize()
	search := strings.ToLower(q.Search)

	out := make([]models.Meme, 0, len(memes))
	for _, m := range memes {
		if q.Category != CategoryAll && m.Category != q.Category {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(m.Title), search) {
			continue
		}
		out = append(out, m)
	}

	switch q.SortBy {
	case SortLikes:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Likes > out[j].Likes })
	case SortComments:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Comments > out[j].Comments })
	case SortDate:
		sort.SliceStable(out, func(i, j int) bool { return newer(out[i], out[j]) })
	}

	// Pages past the last one return everything. q.Page is only multiplied
	// once it is below the page count.
	if pages := (len(out) + PageSize - 1) / PageSize; q.Page < pages {
		out = out[:q.Page*PageSize]
	}
	return out
}

// newer orders dated memes first, most recent first.
func newer(a, b models.Meme) bool {
	switch {
	case a.Date == nil:
		return false
	case b.Date == nil:
		return true
	default:
		return a.Date.After(*b.Date)
	}
}

// Trending returns the first PageSize memes, labelled Trending when they have no category.
func Trending(memes []models.Meme) []models.Meme {
	n := min(len(memes), PageSize)
	out := make([]models.Meme, n)
	for i := range n {
		out[i] = memes[i]
		if out[i].Category == "" {
			out[i].Category = CategoryTrending
		}
	}
	return out
}

// Find returns the meme with id.
func Find(memes []models.Meme, id string) (models.Meme, bool) {
	for _, m := range memes {
		if m.ID == id {
			return m, true
		}
	}
	return models.Meme{}, false
}

// Package store persists users, topics, articles, reviews and auth tokens.
//
// Two implementations share the same method set: Gorm talks to PostgreSQL
// and Memory keeps everything in process for tests and throwaway servers.
package store

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned when no row matches a lookup.
	ErrNotFound = errors.New("store: not found")
	// ErrConflict is returned when a write violates a uniqueness constraint.
	ErrConflict = errors.New("store: conflict")
)

// ArticleQuery selects a page of articles.
type ArticleQuery struct {
	// Published restricts the result to the given publication state when set.
	Published *bool
	// Search is split on whitespace; every term must appear in the title or
	// the content, case-insensitively.
	Search   string
	TopicID  uint
	AuthorID uint
	Limit    int
	Offset   int
}

// Terms returns the search terms of the query.
func (q ArticleQuery) Terms() []string {
	return strings.Fields(q.Search)
}

// OnlyPublished is a convenience for ArticleQuery.Published.
func OnlyPublished() *bool {
	t := true

	return &t
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

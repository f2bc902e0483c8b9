// Package models contains data structures for the application's domain models.
package models

import "time"

// Meme is a catalog entry. Likes is the catalog-provided baseline (or a cached
// snapshot) and never the source of truth for the local like count.
type Meme struct {
	ID       string     `json:"id" yaml:"id"`
	Title    string     `json:"title" yaml:"title"`
	URL      string     `json:"url" yaml:"url"`
	Category string     `json:"category,omitempty" yaml:"category,omitempty"`
	Likes    int        `json:"likes" yaml:"likes"`
	Comments int        `json:"comments,omitempty" yaml:"comments,omitempty"`
	Date     *time.Time `json:"date,omitempty" yaml:"date,omitempty"`
	// Author is the recorded uploader, if the catalog knows one.
	Author string `json:"userName,omitempty" yaml:"userName,omitempty"`
}

// MemeView is a catalog meme overlaid with the local like state.
type MemeView struct {
	Meme
	Liked bool `json:"liked"`
}

package models

// LikeRecord is the local like state of a single meme.
type LikeRecord struct {
	Liked bool `json:"liked"`
	Count int  `json:"count"`
}

package models

// AnonymousOwner is attributed when no author or profile name is known.
const AnonymousOwner = "Anonymous"

// MemeRanking is one row of the top memes table.
type MemeRanking struct {
	Rank  int  `json:"rank"`
	Meme  Meme `json:"meme"`
	Likes int  `json:"likes"`
}

// UserRanking is one row of the top users table.
type UserRanking struct {
	Rank            int    `json:"rank"`
	Name            string `json:"name"`
	EngagementCount int    `json:"engagementCount"`
	IsCurrentUser   bool   `json:"isCurrentUser"`
}

// Leaderboard is derived on demand and never persisted.
type Leaderboard struct {
	Memes []MemeRanking `json:"memes"`
	Users []UserRanking `json:"users"`
}

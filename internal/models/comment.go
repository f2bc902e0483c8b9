package models

// Comment is a local comment attached to one meme id.
type Comment struct {
	ID        int64  `json:"id"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// CommentTimestampLayout matches the ISO-8601 form browsers produce with toISOString.
const CommentTimestampLayout = "2006-01-02T15:04:05.000Z"

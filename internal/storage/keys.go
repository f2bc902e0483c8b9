package storage

import "strings"

// Persisted keys of the local namespace.
const (
	KeyMemeLikes       = "memeLikes"
	KeyLikedMemesState = "likedMemesState"
	KeyLikedMemes      = "likedMemes"
	KeyUserProfile     = "userProfile"

	CommentsKeyPrefix = "comments-"
)

// CommentsKey is the per-meme comment list key.
func CommentsKey(memeID string) string {
	return CommentsKeyPrefix + memeID
}

// MemeIDFromCommentsKey reverses CommentsKey.
func MemeIDFromCommentsKey(key string) (string, bool) {
	if !strings.HasPrefix(key, CommentsKeyPrefix) {
		return "", false
	}
	return strings.TrimPrefix(key, CommentsKeyPrefix), true
}

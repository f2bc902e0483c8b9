package models

// Profile defaults used until the user saves their own.
const (
	DefaultProfileName = "MemeVerse User"
	DefaultProfileBio  = "I love creating and sharing memes!"
)

// UserProfile is the single local user. Avatar holds encoded image bytes and
// serializes as base64, or null when unset.
type UserProfile struct {
	Name   string `json:"name"`
	Bio    string `json:"bio"`
	Avatar []byte `json:"avatar"`
}

// DefaultProfile returns the placeholder profile.
func DefaultProfile() UserProfile {
	return UserProfile{
		Name: DefaultProfileName,
		Bio:  DefaultProfileBio,
	}
}

// Package assets uploads user images to a third-party image host.
package assets

import "context"

// Store accepts an image and returns its public URL.
type Store interface {
	Upload(ctx context.Context, image []byte, filename string) (string, error)
}

// Command main seeds the local store with demo likes and comments.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"memeverse/internal/bootstrap"
	"memeverse/internal/catalog"
	"memeverse/internal/config"
	"memeverse/internal/observability"
	"memeverse/internal/seed"
)

func main() {
	defaults := seed.DefaultOptions()
	likeRatio := flag.Float64("like-ratio", defaults.LikeRatio, "Share of catalog memes to like (0-1)")
	maxComments := flag.Int("comments", defaults.MaxComments, "Maximum comments per meme")
	profile := flag.Bool("profile", defaults.Profile, "Replace the profile with a generated one")
	seedValue := flag.Int64("seed", defaults.Seed, "Random seed")
	flag.Parse()

	log.Println("🌱 Store Seeder")
	log.Println("===============")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	observability.InitLogger(cfg.Env)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	store, rdb, err := bootstrap.InitRuntime(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer func() { _ = store.Close() }()

	provider, err := catalog.NewProvider(cfg, rdb)
	if err != nil {
		log.Fatalf("Failed to create catalog provider: %v", err)
	}
	memes, err := provider.FetchCatalog(ctx)
	if err != nil {
		log.Fatalf("❌ Catalog fetch failed: %v", err)
	}

	summary, err := seed.NewSeeder(store).Run(ctx, memes, seed.Options{
		LikeRatio:   *likeRatio,
		MaxComments: *maxComments,
		Profile:     *profile,
		Seed:        *seedValue,
	})
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Printf("✨ Liked %d memes, added %d comments", summary.Liked, summary.Comments)
	if summary.Profile != "" {
		log.Printf("👤 Profile name: %s", summary.Profile)
	}
}

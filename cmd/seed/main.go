// Package main provides a tool to seed the database with sample comics.
//
// It generates small placeholder page images, runs them through the real
// ingestion pipeline, and publishes a subset, which is enough to exercise the
// catalog queries and thumbnail derivation locally.
//
// Usage:
//
//	DATA_DIR=./data UPLOAD_DIR=./media/uploads go run ./cmd/seed
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"
	"log/slog"
	"math/rand"
	"os"

	"github.com/panelverse/panelverse-server/internal/auth"
	"github.com/panelverse/panelverse-server/internal/config"
	"github.com/panelverse/panelverse-server/internal/service"
	"github.com/panelverse/panelverse-server/internal/store"
	"github.com/panelverse/panelverse-server/internal/upload"
)

var count = flag.Int("count", 12, "Number of comics to seed")

var titles = []string{
	"Space Saga", "Romance Weekly", "Drama Club", "Midnight Runner",
	"Paper Tigers", "The Long Commute", "Garden of Glass", "Static",
	"Harbor Lights", "Crooked Lines", "Afterparty", "Winter Index",
}

var tagPool = []string{"action", "drama", "romance", "sci-fi", "slice-of-life", "horror", "comedy"}

var authors = []auth.Identity{
	{ID: "usr-seed-alice", Label: "Alice"},
	{ID: "usr-seed-bob", Label: "Bob"},
}

func main() {
	flag.Parse()

	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	s, err := store.New(cfg.Storage.DataDir, logger)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	writer, err := upload.NewWriter(cfg.Storage.UploadDir, cfg.Storage.PublicPath)
	if err != nil {
		log.Fatalf("Failed to open upload storage: %v", err)
	}
	policy := upload.NewPolicy(cfg.Upload.AllowedExtensions, cfg.Upload.MaxFileSize)

	// No thumbnail queue: the seed tool exits immediately, so deferred
	// derivation would be cut off mid-flight anyway.
	catalog := service.NewCatalog(s, policy, writer, nil, logger)

	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))

	for i := range *count {
		author := authors[i%len(authors)]
		title := titles[i%len(titles)]

		pages := 1 + rng.Intn(4)
		files := make([]service.UploadFile, 0, pages)
		for p := range pages {
			files = append(files, service.UploadFile{
				Filename: fmt.Sprintf("page%d.png", p+1),
				Data:     placeholderPNG(rng),
			})
		}

		comic, err := catalog.Upload(ctx, author, service.UploadInput{
			Title:       title,
			Description: fmt.Sprintf("Sample comic #%d", i+1),
			Tags:        randomTags(rng),
			Files:       files,
		})
		if err != nil {
			log.Fatalf("Failed to seed %q: %v", title, err)
		}

		// Publish roughly two thirds of the catalog.
		if rng.Intn(3) != 0 {
			published := true
			if _, err := catalog.Patch(ctx, author, comic.ID, service.PatchInput{Published: &published}); err != nil {
				log.Fatalf("Failed to publish %q: %v", title, err)
			}
		}

		fmt.Printf("Seeded %s (%s): %d pages\n", title, comic.ID, pages)
	}

	fmt.Printf("\nSeeded %d comics into %s\n", *count, cfg.Storage.DataDir)
}

// placeholderPNG encodes a small solid-color page.
func placeholderPNG(rng *rand.Rand) []byte {
	img := image.NewRGBA(image.Rect(0, 0, 64, 96))
	c := color.RGBA{R: uint8(rng.Intn(256)), G: uint8(rng.Intn(256)), B: uint8(rng.Intn(256)), A: 255}
	for y := range 96 {
		for x := range 64 {
			img.Set(x, y, c)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// randomTags picks one to three tags, comma-joined as an upload would send.
func randomTags(rng *rand.Rand) string {
	n := 1 + rng.Intn(3)
	picked := make([]string, 0, n)
	for range n {
		picked = append(picked, tagPool[rng.Intn(len(tagPool))])
	}
	out := picked[0]
	for _, t := range picked[1:] {
		out += ", " + t
	}
	return out
}

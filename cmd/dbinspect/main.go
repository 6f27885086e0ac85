// Package main provides a read-only inspection tool for the catalog database.
//
// Usage:
//
//	DATA_DIR=./data go run ./cmd/dbinspect
package main

import (
	"encoding/json/v2"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/panelverse/panelverse-server/internal/domain"
)

func main() {
	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}

	opts := badger.DefaultOptions(dataDir).
		WithReadOnly(true).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	fmt.Println("=== Catalog Inspection ===")
	fmt.Println()

	comicCount := 0
	publishedCount := 0
	totalFiles := 0
	thumbedFiles := 0
	tagCounts := map[string]int{}
	userCount := 0

	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			key := string(item.Key())

			switch {
			case strings.HasPrefix(key, "comic:"):
				err := item.Value(func(val []byte) error {
					var c domain.Comic
					if err := json.Unmarshal(val, &c); err != nil {
						return err
					}

					comicCount++
					if c.Published {
						publishedCount++
					}
					totalFiles += len(c.Files)
					for _, f := range c.Files {
						if f.ThumbnailURL != "" {
							thumbedFiles++
						}
					}
					for _, tag := range c.Tags {
						tagCounts[tag]++
					}

					if comicCount <= 3 {
						fmt.Printf("Comic: %s\n", c.Title)
						fmt.Printf("  ID: %s\n", c.ID)
						fmt.Printf("  Author: %s (%s)\n", c.UploadedBy, c.AuthorID)
						fmt.Printf("  Files: %d, Published: %v, Tags: %v\n", c.FileCount, c.Published, c.Tags)
						fmt.Println()
					}
					return nil
				})
				if err != nil {
					log.Printf("Error reading comic %s: %v", key, err)
				}

			case strings.HasPrefix(key, "user:"):
				userCount++
			}
		}
		return nil
	})
	if err != nil {
		log.Fatalf("Error iterating database: %v", err)
	}

	fmt.Println("=== Summary ===")
	fmt.Printf("Total comics: %d\n", comicCount)
	fmt.Printf("Published: %d\n", publishedCount)
	fmt.Printf("Total files: %d\n", totalFiles)
	fmt.Printf("Files with thumbnails: %d\n", thumbedFiles)
	fmt.Printf("Users: %d\n", userCount)

	if len(tagCounts) > 0 {
		tags := make([]string, 0, len(tagCounts))
		for tag := range tagCounts {
			tags = append(tags, tag)
		}
		sort.Slice(tags, func(i, j int) bool { return tagCounts[tags[i]] > tagCounts[tags[j]] })

		fmt.Println("Top tags:")
		for i, tag := range tags {
			if i >= 10 {
				break
			}
			fmt.Printf("  %s: %d\n", tag, tagCounts[tag])
		}
	}
}

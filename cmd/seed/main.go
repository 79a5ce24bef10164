// Command main loads the blog dataset into PostgreSQL, optionally padded with fake posts.
package main

import (
	"context"
	"flag"
	"log"

	"folio/internal/bootstrap"
	"folio/internal/config"
	"folio/internal/database"
	"folio/internal/models"
	"folio/internal/repository"
	"folio/internal/seed"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func main() {
	numPosts := flag.Int("posts", 0, "Number of fake posts to add on top of the fixtures")
	shouldClean := flag.Bool("clean", false, "Remove existing blog data before seeding")
	randSeed := flag.Int64("seed", 0, "Random seed for fake data (0 picks one)")
	maxDays := flag.Int("days", 90, "Spread fake posts over this many past days")
	flag.Parse()

	log.Println("🌱 Folio Seeder")
	log.Printf("Target: %d fake posts, clean=%v\n", *numPosts, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	ctx := context.Background()

	if *shouldClean {
		if err := clearAll(db); err != nil {
			log.Fatalf("❌ Cleanup failed: %v", err)
		}
	}

	// Initialize migrates and loads the fixtures into an empty database.
	repo := repository.NewSQLRepository(db, bootstrap.RepositoryOptions(cfg)...)
	if err := repo.Initialize(ctx); err != nil {
		log.Fatalf("❌ Fixture seeding failed: %v", err)
	}

	if *numPosts > 0 {
		categories, err := repo.Categories(ctx)
		if err != nil {
			log.Fatalf("❌ Loading categories failed: %v", err)
		}
		authors, err := repo.Profiles(ctx)
		if err != nil {
			log.Fatalf("❌ Loading profiles failed: %v", err)
		}

		posts := seed.NewFactory(*randSeed, *maxDays).BuildPosts(*numPosts, categories, authors)
		if err := db.WithContext(ctx).Omit(clause.Associations).CreateInBatches(&posts, 100).Error; err != nil {
			log.Fatalf("❌ Fake post seeding failed: %v", err)
		}
		log.Printf("Added %d fake posts", len(posts))
	}

	log.Println("✨ All done!")
}

func clearAll(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, m := range []any{&models.Post{}, &models.Profile{}, &models.Category{}} {
			if !tx.Migrator().HasTable(m) {
				continue
			}
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(m).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

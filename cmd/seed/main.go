// Command main runs the database seeder for Reeltrack.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"reeltrack/internal/config"
	"reeltrack/internal/middleware"
	"reeltrack/internal/database"
	"reeltrack/internal/mongostore"
	"reeltrack/internal/repository"
	"reeltrack/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 25, "Number of users to create")
	catalog := flag.Int("catalog", 60, "Number of distinct movies to draw from")
	perList := flag.Int("list", 5, "Movies per favorites/watchlist")
	reviews := flag.Int("reviews", 4, "Reviews per user")
	follows := flag.Int("follows", 5, "Follows per user")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	log.Println("Database Seeder")
	log.Printf("Target: %d users, clean=%v", *numUsers, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	middleware.ConfigureLogger(cfg.Env, cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	var repos seed.Repositories
	switch cfg.StoreDriver {
	case config.StoreDriverMongo:
		store, err := mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			log.Fatalf("Failed to connect to mongo: %v", err)
		}
		defer func() { _ = store.Close(context.Background()) }()

		if *shouldClean {
			if err := store.Drop(ctx); err != nil {
				log.Fatalf("Cleanup failed: %v", err)
			}
		}
		if err := store.EnsureIndexes(ctx); err != nil {
			log.Fatalf("Index setup failed: %v", err)
		}
		repos = seed.Repositories{
			Users:     mongostore.NewUserRepository(store),
			Lists:     mongostore.NewListRepository(store),
			Relations: mongostore.NewRelationRepository(store),
			Reviews:   mongostore.NewReviewRepository(store),
		}
	default:
		db, err := database.Connect(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		if *shouldClean {
			if err := seed.ClearAll(db); err != nil {
				log.Fatalf("Cleanup failed: %v", err)
			}
		}
		repos = seed.Repositories{
			Users:     repository.NewUserRepository(db),
			Lists:     repository.NewListRepository(db),
			Relations: repository.NewRelationRepository(db),
			Reviews:   repository.NewReviewRepository(db),
		}
	}

	s := seed.NewSeeder(repos, seed.Options{
		NumUsers:       *numUsers,
		CatalogSize:    *catalog,
		MoviesPerList:  *perList,
		ReviewsPerUser: *reviews,
		FollowsPerUser: *follows,
	})
	summary, err := s.Run(ctx)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Done: %d users, %d list entries, %d reviews, %d follows",
		summary.Users, summary.Lists, summary.Reviews, summary.Follows)
	log.Printf("All seeded users have the password: %s", seed.DefaultPassword)
}

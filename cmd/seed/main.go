// Command seed fills the database with generated demo data or a YAML
// fixture.
package main

import (
	"flag"
	"log"

	"agora/internal/config"
	"agora/internal/database"
	"agora/internal/seed"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	opts := seed.DefaultOptions
	flag.IntVar(&opts.Users, "users", opts.Users, "Number of users to create")
	flag.IntVar(&opts.PostsPerUser, "posts", opts.PostsPerUser, "Posts per user")
	flag.IntVar(&opts.FollowsPerUser, "follows", opts.FollowsPerUser, "Follow attempts per user")
	flag.IntVar(&opts.MessagesPerUser, "messages", opts.MessagesPerUser, "Messages sent per user")
	flag.Int64Var(&opts.RandSeed, "rand-seed", 0, "Seed for reproducible data (0 = random)")
	fixture := flag.String("fixture", "", "Apply a YAML fixture instead of generated data")
	clean := flag.Bool("clean", false, "Delete all rows before seeding")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s, err := seed.NewSeeder(db, opts)
	if err != nil {
		log.Fatalf("Failed to create seeder: %v", err)
	}
	if *clean {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	var res *seed.Result
	if *fixture != "" {
		fx, err := seed.LoadFixture(*fixture)
		if err != nil {
			log.Fatalf("Failed to load fixture: %v", err)
		}
		res, err = seed.ApplyFixture(db, fx, bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("Fixture seeding failed: %v", err)
		}
	} else {
		res, err = s.Run()
		if err != nil {
			log.Fatalf("Seeding failed: %v", err)
		}
	}

	log.Printf("Seeded %d users, %d posts, %d follows, %d messages", res.Users, res.Posts, res.Follows, res.Messages)
	log.Printf("Accounts without an explicit password use: %s", seed.DemoPassword)
}

// Package main provides a tool to seed the database with test guild members.
//
// This creates a set of active member accounts with character rosters across
// a few games, for exercising the member directory, search, and avatar
// resolution locally.
//
// Usage:
//
//	DB_PATH=~/Guildhall/data/db go run ./cmd/seed
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/guildhallapp/guildhall-server/internal/auth"
	"github.com/guildhallapp/guildhall-server/internal/domain"
	"github.com/guildhallapp/guildhall-server/internal/id"
	"github.com/guildhallapp/guildhall-server/internal/store"
	"github.com/guildhallapp/guildhall-server/internal/util"
)

var memberCount = flag.Int("members", 12, "Number of test members to create")

var displayNames = []string{
	"Alice Cooper", "Bob Marley", "Carol Danvers", "Dylan Thomas",
	"Erin Brockovich", "Frank Herbert", "Grace Hopper", "Hank Williams",
	"Iris Murdoch", "Jack London", "Kate Bush", "Leo Tolstoy",
	"Mina Harker", "Ned Stark", "Opal Reyes", "Pete Seeger",
}

type gameTemplate struct {
	game       string
	realms     []string
	classes    []string
	characters []string
}

var games = []gameTemplate{
	{
		game:       "World of Warcraft",
		realms:     []string{"Area 52", "Stormrage", "Tichondrius"},
		classes:    []string{"Shaman", "Warrior", "Mage", "Priest", "Hunter"},
		characters: []string{"Thrall", "Sylvanas", "Anduin", "Jaina", "Rexxar", "Velen"},
	},
	{
		game:       "Final Fantasy XIV",
		realms:     []string{"Gilgamesh", "Balmung"},
		classes:    []string{"White Mage", "Dark Knight", "Summoner"},
		characters: []string{"Yshtola", "Alphinaud", "Estinien", "Krile"},
	},
	{
		game:       "Guild Wars 2",
		realms:     []string{"Tarnished Coast"},
		classes:    []string{"Elementalist", "Ranger", "Thief"},
		characters: []string{"Rytlock", "Eir", "Caithe", "Zojja"},
	},
}

func main() {
	flag.Parse()

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("Failed to resolve home directory: %v", err)
		}
		dbPath = home + "/Guildhall/data/db"
	}

	fmt.Printf("Opening database at: %s\n", dbPath)

	s, err := store.New(dbPath, nil, store.NewNoopEmitter())
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	rng := rand.New(rand.NewSource(time.Now().UnixNano())) //#nosec G404 -- test data only

	passwordHash, err := auth.HashPassword("SeedPassword123!")
	if err != nil {
		log.Fatalf("Failed to hash seed password: %v", err)
	}

	created := 0
	for i := 0; i < *memberCount && i < len(displayNames); i++ {
		name := displayNames[i]
		email := fmt.Sprintf("seed%d@example.com", i+1)

		if _, err := s.GetUserByEmail(ctx, email); err == nil {
			fmt.Printf("Skipping %s (already exists)\n", email)
			continue
		}

		userID, err := id.Generate("user")
		if err != nil {
			log.Fatalf("Failed to generate user ID: %v", err)
		}

		user := &domain.User{
			Syncable:     domain.Syncable{ID: userID},
			Email:        email,
			PasswordHash: passwordHash,
			DisplayName:  name,
			Role:         domain.RoleMember,
			Status:       domain.UserStatusActive,
		}
		user.InitTimestamps()

		if err := s.CreateUser(ctx, user); err != nil {
			log.Fatalf("Failed to create user %s: %v", email, err)
		}

		characters := rollCharacters(rng, userID)
		if err := s.ReplaceUserCharacters(ctx, userID, characters); err != nil {
			log.Fatalf("Failed to create roster for %s: %v", email, err)
		}

		fmt.Printf("Created %s (%s) with %d characters\n", name, email, len(characters))
		created++
	}

	fmt.Printf("\nSeeded %d members. Password for all: SeedPassword123!\n", created)
}

// rollCharacters builds a small random roster spanning one or two games.
func rollCharacters(rng *rand.Rand, userID string) []*domain.Character {
	count := 1 + rng.Intn(3)
	characters := make([]*domain.Character, 0, count)

	for len(characters) < count {
		tpl := games[rng.Intn(len(games))]
		name := tpl.characters[rng.Intn(len(tpl.characters))]

		charID, err := id.Generate("char")
		if err != nil {
			continue
		}

		c := &domain.Character{
			Syncable: domain.Syncable{ID: charID},
			UserID:   userID,
			GameID:   util.Slugify(tpl.game),
			Name:     name,
			Realm:    util.Slugify(tpl.realms[rng.Intn(len(tpl.realms))]),
			Class:    tpl.classes[rng.Intn(len(tpl.classes))],
			Level:    10 + rng.Intn(60),
		}
		if rng.Intn(2) == 0 {
			c.PortraitURL = fmt.Sprintf("https://render.example.com/%s/%s.jpg", c.GameID, name)
		}
		c.InitTimestamps()

		characters = append(characters, c)
	}

	return characters
}

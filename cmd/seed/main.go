package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pageza/cibaria/backend/config"
	"github.com/pageza/cibaria/backend/internal/auth"
	"github.com/pageza/cibaria/backend/internal/database"
	"github.com/pageza/cibaria/backend/internal/logging"
	"github.com/pageza/cibaria/backend/internal/models"
	"github.com/pageza/cibaria/backend/internal/service"
	"github.com/pageza/cibaria/backend/internal/types"
)

const seedPassword = "testpassword123"

type seedUser struct {
	username string
	role     string
}

var users = []seedUser{
	{username: "johndoe", role: models.RoleUser},
	{username: "janesmith", role: models.RoleUser},
	{username: "admin", role: models.RoleUser + "," + models.RoleAdmin},
}

var recipes = []types.RecipeDraft{
	{
		Name: "Tomato Soup", Difficulty: 2, PrepareTime: 35, Servings: 4,
		Category: "soup", IsPublic: true, Language: "en",
		Ingredients: []types.IngredientDraft{
			{Name: "tomatoes", Quantity: 800, Unit: "g"},
			{Name: "onion", Quantity: 1},
			{Name: "basil", Quantity: 5, Unit: "leaves", IsOptional: true},
		},
		Steps: []string{"Fry the onion.", "Add tomatoes and simmer for 20 minutes.", "Blend."},
	},
	{
		Name: "Pierogi", Difficulty: 6, PrepareTime: 120, Servings: 6,
		Category: "dinner", IsPublic: true, Language: "pl",
		Ingredients: []types.IngredientDraft{
			{Name: "mąka", Quantity: 500, Unit: "g"},
			{Name: "ziemniaki", Quantity: 700, Unit: "g"},
			{Name: "twaróg", Quantity: 250, Unit: "g"},
		},
		Steps: []string{"Zagnieć ciasto.", "Przygotuj farsz.", "Lep i gotuj."},
	},
	{
		Name: "Overnight Oats", Difficulty: 1, PrepareTime: 5, Servings: 1,
		Category: "breakfast", IsPublic: false, Language: "en",
		Ingredients: []types.IngredientDraft{
			{Name: "oats", Quantity: 50, Unit: "g"},
			{Name: "milk", Quantity: 150, Unit: "ml"},
		},
		Steps: []string{"Mix and refrigerate overnight."},
	},
}

func main() {
	log := logging.New(logging.Config{Level: os.Getenv("LOG_LEVEL"), Format: "text"})

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	db, err := database.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := database.RunMigrations(db.DB, cfg.MigrationsDir, log); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to hash password")
	}

	claims := auth.NewClaimsReader(cfg.JWTSecret, cfg.JWTIssuer)
	seeded := make([]models.User, 0, len(users))
	for _, u := range users {
		user, err := ensureUser(db.DB, u, string(hash))
		if err != nil {
			log.Fatal().Err(err).Str("username", u.username).Msg("failed to seed user")
		}
		seeded = append(seeded, *user)

		token, err := claims.Issue(user.ID, user.Roles(), 24*time.Hour)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to issue token")
		}
		fmt.Printf("%-10s id=%d roles=%s\n  token: %s\n", user.Username, user.ID, user.Role, token)
	}

	// Recipes go through the catalog service without an image store.
	svc := service.NewRecipeService(db.DB, nil, service.WithLogger(log))
	ctx := context.Background()
	for i, draft := range recipes {
		owner := seeded[i%len(seeded)]
		var existing int64
		if err := db.Model(&models.Recipe{}).Where("recipe_name = ? AND user_id = ?", draft.Name, owner.ID).Count(&existing).Error; err != nil {
			log.Fatal().Err(err).Msg("failed to check existing recipe")
		}
		if existing > 0 {
			log.Info().Str("recipe", draft.Name).Msg("recipe already seeded, skipping")
			continue
		}

		recipe, err := svc.Create(ctx, auth.Principal{UserID: owner.ID, Roles: owner.Roles()}, draft, nil)
		if err != nil {
			log.Fatal().Err(err).Str("recipe", draft.Name).Msg("failed to seed recipe")
		}
		log.Info().Uint("id", recipe.ID).Str("recipe", recipe.Name).Str("owner", owner.Username).Msg("seeded recipe")
	}

	fmt.Printf("\nAll seeded users share the password %q\n", seedPassword)
}

func ensureUser(db *gorm.DB, u seedUser, hash string) (*models.User, error) {
	user := &models.User{}
	err := db.Where(models.User{Username: u.username}).
		Attrs(models.User{
			Email:        u.username + "@example.com",
			PasswordHash: hash,
			Role:         u.role,
		}).
		FirstOrCreate(user).Error
	return user, err
}

package testhelpers

import (
	"fmt"
	"testing"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pageza/cibaria/backend/internal/auth"
	"github.com/pageza/cibaria/backend/internal/models"
)

// CreateTestUser inserts a user with the given role list and a bcrypt
// hashed password of "password".
func CreateTestUser(t *testing.T, db *gorm.DB, username, role string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	if role == "" {
		role = models.RoleUser
	}
	user := &models.User{
		Username:     username,
		Email:        fmt.Sprintf("%s@example.com", username),
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// PrincipalFor returns the principal a token for user would resolve to.
func PrincipalFor(user *models.User) auth.Principal {
	return auth.Principal{UserID: user.ID, Roles: user.Roles()}
}

// CreateTestRecipe inserts a public recipe owned by owner.
func CreateTestRecipe(t *testing.T, db *gorm.DB, owner *models.User, name string) *models.Recipe {
	t.Helper()

	recipe := &models.Recipe{
		Name:        name,
		Difficulty:  2,
		PrepareTime: 30,
		Servings:    4,
		Category:    "dinner",
		IsPublic:    true,
		Language:    "en",
		UserID:      owner.ID,
		Ingredients: []models.Ingredient{
			{Name: "salt", Quantity: 1, Unit: "tsp", Language: "en"},
		},
		Steps: []models.Step{
			{Position: 0, Content: "Cook it."},
		},
	}
	if err := db.Create(recipe).Error; err != nil {
		t.Fatalf("failed to create test recipe: %v", err)
	}
	return recipe
}

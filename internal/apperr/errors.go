// Package apperr holds the error kinds shared by the catalog service and
// the HTTP layer. Callers test kinds with errors.Is.
package apperr

import (
	"errors"
	"fmt"
)

// Kinds
var (
	ErrNotFound        = errors.New("not found")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrConflict        = errors.New("conflict")
	ErrCollaborator    = errors.New("collaborator failure")
)

// ErrInvalidCredential is returned when a bearer token cannot be resolved.
var ErrInvalidCredential = errors.New("invalid credential")

var (
	ErrRecipeNotFound = fmt.Errorf("recipe %w", ErrNotFound)
	ErrUserNotFound   = fmt.Errorf("user %w", ErrNotFound)

	ErrCannotEdit   = fmt.Errorf("%w: you can edit only your own recipes", ErrUnauthorized)
	ErrCannotDelete = fmt.Errorf("%w: you can delete only your own recipes", ErrUnauthorized)

	ErrPageDoesNotExist = fmt.Errorf("%w: page does not exist", ErrInvalidArgument)
	ErrInvalidPageSize  = fmt.Errorf("%w: page size must be positive", ErrInvalidArgument)
	ErrInvalidRating    = fmt.Errorf("%w: rating has to be from 1 to 5", ErrInvalidArgument)
	ErrInvalidRange     = fmt.Errorf("%w: range must look like from-to", ErrInvalidArgument)
	ErrInvalidRecipe    = fmt.Errorf("%w: invalid recipe", ErrInvalidArgument)

	ErrAlreadyFavorite = fmt.Errorf("%w: recipe is already in favorites", ErrConflict)
	ErrNotFavorite     = fmt.Errorf("%w: recipe is not in favorites", ErrConflict)

	ErrImage = fmt.Errorf("image store: %w", ErrCollaborator)
)

// Page wraps ErrPageDoesNotExist with the requested page number.
func Page(page int) error {
	return fmt.Errorf("page %d: %w", page, ErrPageDoesNotExist)
}

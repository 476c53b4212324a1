package recipefilter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/cibaria/backend/internal/apperr"
	"github.com/pageza/cibaria/backend/internal/models"
)

func intPtr(v int) *int { return &v }

func ids(recipes []models.Recipe) []uint {
	out := make([]uint, 0, len(recipes))
	for _, r := range recipes {
		out = append(out, r.ID)
	}
	return out
}

func fixture() []models.Recipe {
	return []models.Recipe{
		{
			ID: 1, Name: "Pancakes", Category: "breakfast", Difficulty: 1, Servings: 2, PrepareTime: 20, Language: "en",
			Ingredients: []models.Ingredient{
				{Name: "flour", Language: "en"},
				{Name: "mleko", Language: "pl"},
			},
		},
		{
			ID: 2, Name: "Pierogi", Category: "dinner", Difficulty: 3, Servings: 4, PrepareTime: 90, Language: "PL",
			Ingredients: []models.Ingredient{
				{Name: "Maka", Language: "pl"},
				{Name: "ser", Language: "pl"},
			},
		},
		{
			ID: 3, Name: "Omelette", Category: "breakfast", Difficulty: 1, Servings: 1, PrepareTime: 10, Language: "en",
			Ingredients: []models.Ingredient{
				{Name: "Eggs", Language: "en"},
				{Name: "Milk", Language: "en"},
			},
		},
		{
			ID: 4, Name: "Stew", Category: "dinner", Difficulty: 2, Servings: 6, PrepareTime: 120, Language: "",
		},
	}
}

func TestParseRange(t *testing.T) {
	rng, err := ParseRange("2-4")
	require.NoError(t, err)
	assert.Equal(t, Range{From: 2, To: 4}, rng)
	assert.True(t, rng.Contains(2))
	assert.True(t, rng.Contains(4))
	assert.False(t, rng.Contains(5))

	for _, bad := range []string{"", "4", "a-4", "2-b", "-", "2-4-6"} {
		_, err := ParseRange(bad)
		assert.ErrorIs(t, err, apperr.ErrInvalidRange, bad)
		assert.ErrorIs(t, err, apperr.ErrInvalidArgument, bad)
	}
}

func TestApply(t *testing.T) {
	tests := []struct {
		name     string
		criteria Criteria
		want     []uint
	}{
		{name: "no criteria", criteria: Criteria{}, want: []uint{1, 2, 3, 4}},
		{name: "category set", criteria: Criteria{Categories: []string{"dinner"}}, want: []uint{2, 4}},
		{name: "category is exact", criteria: Criteria{Categories: []string{"Dinner"}}, want: []uint{}},
		{name: "difficulty", criteria: Criteria{Difficulty: intPtr(1)}, want: []uint{1, 3}},
		{name: "servings inclusive", criteria: Criteria{Servings: "2-4"}, want: []uint{1, 2}},
		{name: "prepare time inclusive", criteria: Criteria{PrepareTime: "10-20"}, want: []uint{1, 3}},
		{name: "language ignores case", criteria: Criteria{Language: "pl"}, want: []uint{2}},
		{name: "ingredient all of", criteria: Criteria{Ingredients: []string{"eggs", "MILK"}}, want: []uint{3}},
		{name: "ingredient missing one", criteria: Criteria{Ingredients: []string{"eggs", "flour"}}, want: []uint{}},
		{name: "empty ingredient list", criteria: Criteria{Ingredients: []string{}}, want: []uint{1, 2, 3, 4}},
		{
			name:     "combined",
			criteria: Criteria{Categories: []string{"breakfast"}, Difficulty: intPtr(1), Servings: "1-1"},
			want:     []uint{3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Apply(tt.criteria, fixture())
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestApplyMalformedRange(t *testing.T) {
	_, err := Apply(Criteria{Servings: "two-four"}, fixture())
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)

	_, err = Apply(Criteria{PrepareTime: "15"}, fixture())
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)

	assert.ErrorIs(t, Criteria{Servings: "x"}.Validate(), apperr.ErrInvalidRange)
	assert.NoError(t, Criteria{Servings: "1-2", PrepareTime: "5-10"}.Validate())
}

func TestApplyLanguageRewrite(t *testing.T) {
	input := fixture()

	got, err := Apply(Criteria{Language: "EN"}, input)
	require.NoError(t, err)
	require.Equal(t, []uint{1, 3}, ids(got))

	require.Len(t, got[0].Ingredients, 1)
	assert.Equal(t, "flour", got[0].Ingredients[0].Name)
	assert.Len(t, got[1].Ingredients, 2)

	// The caller's recipes keep their full ingredient lists.
	assert.Len(t, input[0].Ingredients, 2)
}

func TestApplyRewriteKeepsSurvivors(t *testing.T) {
	// Filtering by the other criteria then rewriting must keep the same set as
	// filtering without the rewrite step.
	base := Criteria{Categories: []string{"breakfast", "dinner"}, Language: "en"}
	got, err := Apply(base, fixture())
	require.NoError(t, err)

	var plain []uint
	for _, r := range fixture() {
		if (r.Category == "breakfast" || r.Category == "dinner") && (r.Language == "en" || r.Language == "EN") {
			plain = append(plain, r.ID)
		}
	}
	assert.Equal(t, plain, ids(got))
}

func TestApplyOrderIndependent(t *testing.T) {
	single := []Criteria{
		{Categories: []string{"breakfast", "dinner"}},
		{Difficulty: intPtr(1)},
		{Servings: "1-4"},
		{PrepareTime: "5-60"},
		{Language: "en"},
	}
	combined := Criteria{
		Categories:  single[0].Categories,
		Difficulty:  single[1].Difficulty,
		Servings:    single[2].Servings,
		PrepareTime: single[3].PrepareTime,
		Language:    single[4].Language,
	}
	want, err := Apply(combined, fixture())
	require.NoError(t, err)

	orders := [][]int{
		{0, 1, 2, 3, 4},
		{4, 3, 2, 1, 0},
		{2, 0, 4, 1, 3},
	}
	for _, order := range orders {
		set := fixture()
		for _, i := range order {
			set, err = Apply(single[i], set)
			require.NoError(t, err)
		}
		assert.Equal(t, ids(want), ids(set), "order %v", order)
	}
}

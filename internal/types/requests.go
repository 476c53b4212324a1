package types

// RateRecipeRequest is the body of POST /recipes/:id/rating.
type RateRecipeRequest struct {
	Value int `json:"value"`
}

// BrowseQuery binds the browse query string.
type BrowseQuery struct {
	Page        int      `form:"page,default=1"`
	Size        int      `form:"size,default=10"`
	Categories  []string `form:"category"`
	Difficulty  *int     `form:"difficulty"`
	Servings    string   `form:"servings"`
	PrepareTime string   `form:"prepare_time"`
	PublicOnly  *bool    `form:"public_only"`
	Language    string   `form:"language"`
	Ingredients []string `form:"ingredients"`
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

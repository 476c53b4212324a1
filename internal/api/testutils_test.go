package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/pageza/cibaria/backend/internal/auth"
	"github.com/pageza/cibaria/backend/internal/middleware"
	"github.com/pageza/cibaria/backend/internal/service"
)

const (
	testSecret = "test-secret"
	testIssuer = "cibaria-test"
)

// newTestRouter wires the API the way the server does, minus logging and
// rate limiting.
func newTestRouter(recipes service.IRecipeService) (*gin.Engine, *auth.ClaimsReader) {
	gin.SetMode(gin.TestMode)
	reader := auth.NewClaimsReader(testSecret, testIssuer)

	router := gin.New()
	router.Use(middleware.Recovery(zerolog.Nop()), middleware.ErrorHandler(zerolog.Nop()))
	RegisterRoutes(router, Dependencies{Recipes: recipes, Claims: reader})
	return router, reader
}

func tokenFor(t *testing.T, reader *auth.ClaimsReader, userID uint, roles ...string) string {
	t.Helper()
	token, err := reader.Issue(userID, roles, time.Hour)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}
	return token
}

// doJSON performs a request with an optional JSON body and bearer token.
func doJSON(router http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

type testFile struct {
	name        string
	contentType string
	data        []byte
}

// doMultipart sends the draft as the "recipe" field with the files under
// "images".
func doMultipart(t *testing.T, router http.Handler, method, path, token string, draft interface{}, fields map[string]string, files ...testFile) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	draftJSON, err := json.Marshal(draft)
	if err != nil {
		t.Fatalf("failed to marshal draft: %v", err)
	}
	if err := mw.WriteField("recipe", string(draftJSON)); err != nil {
		t.Fatalf("failed to write field: %v", err)
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("failed to write field: %v", err)
		}
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="images"; filename="`+f.name+`"`)
		h.Set("Content-Type", f.contentType)
		part, err := mw.CreatePart(h)
		if err != nil {
			t.Fatalf("failed to create part: %v", err)
		}
		part.Write(f.data)
	}
	mw.Close()

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

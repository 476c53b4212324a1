package api

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/pageza/cibaria/backend/internal/apperr"
	"github.com/pageza/cibaria/backend/internal/recipefilter"
	"github.com/pageza/cibaria/backend/internal/types"
)

const (
	maxPhotoBytes  = 10 << 20
	maxPhotos      = 10
	recipeField    = "recipe"
	imagesField    = "images"
	keepImagesFlag = "keep_existing_images"
)

// recipeRequest is a decoded create or update call.
type recipeRequest struct {
	Draft        types.RecipeDraft
	Photos       []types.Photo
	KeepExisting bool
}

// bindRecipeRequest accepts either a JSON body or a multipart form with the
// draft as JSON in the "recipe" field and photos under "images". Images are
// kept only when keep_existing_images is exactly "true".
func bindRecipeRequest(c *gin.Context) (*recipeRequest, error) {
	req := &recipeRequest{}

	if c.ContentType() != binding.MIMEMultipartPOSTForm {
		if err := c.ShouldBindJSON(&req.Draft); err != nil {
			return nil, fmt.Errorf("%w: invalid recipe body: %v", apperr.ErrInvalidArgument, err)
		}
		req.KeepExisting = c.Query(keepImagesFlag) == "true"
		return req, nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return nil, fmt.Errorf("%w: invalid multipart form: %v", apperr.ErrInvalidArgument, err)
	}
	raw := form.Value[recipeField]
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: missing %q field", apperr.ErrInvalidArgument, recipeField)
	}
	if err := json.Unmarshal([]byte(raw[0]), &req.Draft); err != nil {
		return nil, fmt.Errorf("%w: invalid recipe json: %v", apperr.ErrInvalidArgument, err)
	}
	if v := form.Value[keepImagesFlag]; len(v) > 0 {
		req.KeepExisting = v[0] == "true"
	}

	files := form.File[imagesField]
	if len(files) > maxPhotos {
		return nil, fmt.Errorf("%w: at most %d images per recipe", apperr.ErrInvalidArgument, maxPhotos)
	}
	for _, fh := range files {
		photo, err := readPhoto(fh)
		if err != nil {
			return nil, err
		}
		req.Photos = append(req.Photos, photo)
	}
	return req, nil
}

func readPhoto(fh *multipart.FileHeader) (types.Photo, error) {
	if fh.Size > maxPhotoBytes {
		return types.Photo{}, fmt.Errorf("%w: image %q exceeds %d bytes", apperr.ErrInvalidArgument, fh.Filename, maxPhotoBytes)
	}
	f, err := fh.Open()
	if err != nil {
		return types.Photo{}, fmt.Errorf("failed to open upload %q: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxPhotoBytes+1))
	if err != nil {
		return types.Photo{}, fmt.Errorf("failed to read upload %q: %w", fh.Filename, err)
	}
	if len(data) > maxPhotoBytes {
		return types.Photo{}, fmt.Errorf("%w: image %q exceeds %d bytes", apperr.ErrInvalidArgument, fh.Filename, maxPhotoBytes)
	}
	return types.Photo{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// recipeID parses the :id path parameter.
func recipeID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 0)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: invalid recipe id %q", apperr.ErrInvalidArgument, c.Param("id"))
	}
	return uint(id), nil
}

// browseCriteria converts the bound query into filter criteria. Repeated and
// comma separated values are both accepted for lists.
func browseCriteria(q types.BrowseQuery) recipefilter.Criteria {
	return recipefilter.Criteria{
		Categories:  splitValues(q.Categories),
		Difficulty:  q.Difficulty,
		Servings:    strings.TrimSpace(q.Servings),
		PrepareTime: strings.TrimSpace(q.PrepareTime),
		Language:    strings.TrimSpace(q.Language),
		Ingredients: splitValues(q.Ingredients),
	}
}

func splitValues(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

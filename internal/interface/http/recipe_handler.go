package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	app "github.com/oksasatya/go-recipe-api/internal/application"
	"github.com/oksasatya/go-recipe-api/internal/interface/middleware"
	"github.com/oksasatya/go-recipe-api/pkg/response"
)

type RecipeHandler struct {
	Svc            *app.RecipeService
	Logger         *logrus.Logger
	MaxUploadBytes int64
}

func NewRecipeHandler(svc *app.RecipeService, logger *logrus.Logger, maxUploadBytes int64) *RecipeHandler {
	return &RecipeHandler{Svc: svc, Logger: logger, MaxUploadBytes: maxUploadBytes}
}

type namedRequest struct {
	Name string `json:"name"`
}

// priceValue decodes like decimal.Decimal but reports malformed input as a
// type error so the binding error is keyed by the field name.
type priceValue struct {
	decimal.Decimal
}

func (p *priceValue) UnmarshalJSON(b []byte) error {
	if err := p.Decimal.UnmarshalJSON(b); err != nil {
		return &json.UnmarshalTypeError{Value: string(b), Type: reflect.TypeOf(decimal.Decimal{})}
	}
	return nil
}

// recipeRequest uses pointers so omitted keys can be told apart from zero values.
// Any "user" key in the body is ignored.
type recipeRequest struct {
	Title       *string         `json:"title" binding:"omitempty,title"`
	TimeMinutes *int            `json:"time_minutes" binding:"omitempty,gte=0,lte=2147483647"`
	Price       *priceValue     `json:"price"`
	Description *string         `json:"description"`
	Link        *string         `json:"link" binding:"omitempty,max=255,url"`
	Tags        *[]namedRequest `json:"tags"`
	Ingredients *[]namedRequest `json:"ingredients"`
}

func names(in *[]namedRequest) *[]string {
	if in == nil {
		return nil
	}
	out := make([]string, 0, len(*in))
	for _, n := range *in {
		out = append(out, n.Name)
	}
	return &out
}

func (r recipeRequest) toInput() app.RecipeInput {
	in := app.RecipeInput{
		Title:       r.Title,
		TimeMinutes: r.TimeMinutes,
		Description: r.Description,
		Link:        r.Link,
		Tags:        names(r.Tags),
		Ingredients: names(r.Ingredients),
	}
	if r.Price != nil {
		p := r.Price.Decimal
		in.Price = &p
	}
	return in
}

// pathID parses :id; a malformed id cannot name an owned row, so it is a 404.
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error[any](c, http.StatusNotFound, "not found", nil)
		return 0, false
	}
	return id, true
}

// parseIDList parses a comma-separated id list such as "1,2,3".
func parseIDList(s string) ([]int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, errors.New("must be a comma-separated list of ids")
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (h *RecipeHandler) List(c *gin.Context) {
	tagIDs, err := parseIDList(c.Query("tags"))
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid query", map[string]string{"tags": err.Error()})
		return
	}
	ingredientIDs, err := parseIDList(c.Query("ingredients"))
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid query", map[string]string{"ingredients": err.Error()})
		return
	}
	rs, err := h.Svc.List(c.Request.Context(), middleware.UserID(c), tagIDs, ingredientIDs)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toRecipeList(rs), "recipes", map[string]any{"count": len(rs)})
}

func (h *RecipeHandler) Create(c *gin.Context) {
	var req recipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	r, err := h.Svc.Create(c.Request.Context(), middleware.UserID(c), req.toInput())
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, toRecipeDetailResponse(r), "recipe created", nil)
}

func (h *RecipeHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	r, err := h.Svc.Get(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toRecipeDetailResponse(r), "recipe", nil)
}

// Update serves PUT (full) and PATCH (partial).
func (h *RecipeHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req recipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	full := c.Request.Method == http.MethodPut
	r, err := h.Svc.Update(c.Request.Context(), middleware.UserID(c), id, req.toInput(), full)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toRecipeDetailResponse(r), "recipe updated", nil)
}

func (h *RecipeHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), middleware.UserID(c), id); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.NoContent(c)
}

// UploadImage accepts a multipart "image" file and attaches it to the recipe.
func (h *RecipeHandler) UploadImage(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if h.MaxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes)
	}
	fh, err := c.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error[any](c, http.StatusBadRequest, "invalid payload", map[string]string{"image": "file is too large"})
			return
		}
		response.Error[any](c, http.StatusBadRequest, "invalid payload", map[string]string{"image": "no file was submitted"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	defer func() { _ = f.Close() }()
	data, err := io.ReadAll(f)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}

	r, err := h.Svc.UploadImage(c.Request.Context(), middleware.UserID(c), id, data)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, recipeImageResponse{ID: r.ID, Image: r.Image}, "image uploaded", nil)
}

func (h *RecipeHandler) Search(c *gin.Context) {
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	rs, err := h.Svc.Search(c.Request.Context(), middleware.UserID(c), c.Query("q"), size)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toRecipeList(rs), "search results", map[string]any{"count": len(rs)})
}

package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/oksasatya/go-recipe-api/internal/application"
	"github.com/oksasatya/go-recipe-api/internal/interface/middleware"
	"github.com/oksasatya/go-recipe-api/pkg/response"
)

type nameRequest struct {
	Name *string `json:"name" binding:"omitempty,title"`
}

// assignedOnly parses the assigned_only flag; "1", "true" and "0", "false" are accepted.
func assignedOnly(c *gin.Context) (bool, bool) {
	v := c.Query("assigned_only")
	if v == "" {
		return false, true
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid query", map[string]string{"assigned_only": "must be 0 or 1"})
		return false, false
	}
	return b, true
}

// bindName binds a rename body; PUT requires the name.
func bindName(c *gin.Context) (*string, bool) {
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return nil, false
	}
	if c.Request.Method == http.MethodPut && req.Name == nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", map[string]string{"name": "is required"})
		return nil, false
	}
	return req.Name, true
}

type TagHandler struct {
	Svc    *app.TagService
	Logger *logrus.Logger
}

func NewTagHandler(svc *app.TagService, logger *logrus.Logger) *TagHandler {
	return &TagHandler{Svc: svc, Logger: logger}
}

func (h *TagHandler) List(c *gin.Context) {
	only, ok := assignedOnly(c)
	if !ok {
		return
	}
	tags, err := h.Svc.List(c.Request.Context(), middleware.UserID(c), only)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	out := make([]namedResponse, 0, len(tags))
	for _, t := range tags {
		out = append(out, toTagResponse(t))
	}
	response.Success(c, http.StatusOK, out, "tags", map[string]any{"count": len(out)})
}

func (h *TagHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	t, err := h.Svc.Get(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toTagResponse(*t), "tag", nil)
}

func (h *TagHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	name, ok := bindName(c)
	if !ok {
		return
	}
	t, err := h.Svc.Rename(c.Request.Context(), middleware.UserID(c), id, name)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toTagResponse(*t), "tag updated", nil)
}

func (h *TagHandler) Delete(c *gin.Context) {
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

type IngredientHandler struct {
	Svc    *app.IngredientService
	Logger *logrus.Logger
}

func NewIngredientHandler(svc *app.IngredientService, logger *logrus.Logger) *IngredientHandler {
	return &IngredientHandler{Svc: svc, Logger: logger}
}

func (h *IngredientHandler) List(c *gin.Context) {
	only, ok := assignedOnly(c)
	if !ok {
		return
	}
	ingredients, err := h.Svc.List(c.Request.Context(), middleware.UserID(c), only)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	out := make([]namedResponse, 0, len(ingredients))
	for _, i := range ingredients {
		out = append(out, toIngredientResponse(i))
	}
	response.Success(c, http.StatusOK, out, "ingredients", map[string]any{"count": len(out)})
}

func (h *IngredientHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	i, err := h.Svc.Get(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toIngredientResponse(*i), "ingredient", nil)
}

func (h *IngredientHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	name, ok := bindName(c)
	if !ok {
		return
	}
	i, err := h.Svc.Rename(c.Request.Context(), middleware.UserID(c), id, name)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toIngredientResponse(*i), "ingredient updated", nil)
}

func (h *IngredientHandler) Delete(c *gin.Context) {
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

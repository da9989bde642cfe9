package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/oksasatya/go-recipe-api/internal/application"
	"github.com/oksasatya/go-recipe-api/pkg/helpers"
	"github.com/oksasatya/go-recipe-api/pkg/response"
	"github.com/oksasatya/go-recipe-api/pkg/validation"
)

// writeError maps application errors onto status codes and the error envelope.
func writeError(c *gin.Context, logger *logrus.Logger, err error) {
	var ve *app.ValidationError
	switch {
	case errors.As(err, &ve):
		response.Error[any](c, http.StatusBadRequest, "invalid payload", ve.Fields)
	case errors.Is(err, app.ErrInvalidCredentials):
		response.Error[any](c, http.StatusBadRequest, "invalid credentials", map[string]string{"non_field_errors": err.Error()})
	case errors.Is(err, app.ErrEmailTaken):
		response.Error[any](c, http.StatusBadRequest, "invalid payload", map[string]string{"email": err.Error()})
	case errors.Is(err, app.ErrDuplicateName):
		response.Error[any](c, http.StatusBadRequest, "invalid payload", map[string]string{"name": err.Error()})
	case errors.Is(err, app.ErrInvalidImage):
		response.Error[any](c, http.StatusBadRequest, "invalid payload", map[string]string{"image": err.Error()})
	case errors.Is(err, app.ErrNotFound), errors.Is(err, app.ErrUserNotFound):
		response.Error[any](c, http.StatusNotFound, "not found", nil)
	default:
		if logger != nil {
			helpers.LogError(logger, "request failed", err, logrus.Fields{
				"request_id": c.GetString("request_id"),
				"path":       c.FullPath(),
			})
		}
		response.Error[any](c, http.StatusInternalServerError, "internal server error", nil)
	}
}

func bindError(c *gin.Context, err error) {
	response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
}

package handler

import (
	"errors"
	"net/http"

	"github.com/devfolio-io/devfolio/internal/infra/authprovider"
	"github.com/devfolio-io/devfolio/internal/modules/serializer"
	"github.com/devfolio-io/devfolio/internal/modules/service"
	"github.com/devfolio-io/devfolio/internal/pkg/validation"
	"github.com/gin-gonic/gin"
)

// writeError maps domain errors onto the error envelope.
func writeError(c *gin.Context, err error) {
	var (
		fe *validation.FieldErrors
		ae *service.AuthError
		pe *authprovider.ProviderError
	)
	switch {
	case errors.As(err, &fe):
		c.JSON(http.StatusBadRequest, serializer.ValidationErr(fe.Fields))
	case errors.Is(err, service.ErrProjectNotFound):
		c.JSON(http.StatusNotFound, serializer.NotFoundErr(validation.CodeProjectNotFound, "project not found"))
	case errors.Is(err, service.ErrProjectSlugAlreadyExists):
		c.JSON(http.StatusConflict, serializer.Err(validation.CodeProjectSlugAlreadyExists, "a project with this slug already exists", nil))
	case errors.As(err, &ae):
		c.JSON(ae.Status, serializer.Response{Code: ae.Code, Message: ae.Message, Fields: ae.Fields})
	case errors.As(err, &pe):
		c.JSON(http.StatusBadGateway, serializer.Err("AUTH_PROVIDER_UNAVAILABLE", "auth provider unavailable", err))
	default:
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
	}
}

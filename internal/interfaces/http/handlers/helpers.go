package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainerrors "mechamind.backend/internal/domain/errors"
	"mechamind.backend/internal/interfaces/http/middleware"
)

// notFoundAs narrows a not-found error to a resource specific code.
func notFoundAs(err error, code string) error {
	if errors.Is(err, domainerrors.ErrNotFound) {
		return domainerrors.FromError(err).WithCode(code)
	}
	return err
}

// pathID parses :id. Malformed ids are reported as not found.
func pathID(c *gin.Context, code string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, domainerrors.NotFound("resource not found").WithCode(code)
	}
	return id, nil
}

func sessionUserID(c *gin.Context) (uuid.UUID, error) {
	id, ok := middleware.GetUserID(c)
	if !ok {
		return uuid.Nil, domainerrors.Unauthorized("authentication required")
	}
	return id, nil
}

package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"losadmin/internal/utils/logger"
)

type ArtifactHandler struct {
	source ArtifactSource
	log    *logger.Logger
}

func NewArtifactHandler(source ArtifactSource) *ArtifactHandler {
	return &ArtifactHandler{
		source: source,
		log:    logger.New("artifact_handler"),
	}
}

// Download serves a generated report file.
// GET /artifacts/:name
func (h *ArtifactHandler) Download(c echo.Context) error {
	name := c.Param("name")
	artifact, ok := h.source.Open(name)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "artifact not found")
	}

	h.log.Debug("Serving artifact %s (%d bytes)", name, len(artifact.Data))
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	return c.Blob(http.StatusOK, artifact.ContentType, artifact.Data)
}

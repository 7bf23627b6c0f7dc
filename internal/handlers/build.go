package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/Vincent-alt-spec/lego-builder-generator/internal/builder"
	"github.com/Vincent-alt-spec/lego-builder-generator/internal/catalog"
	"github.com/Vincent-alt-spec/lego-builder-generator/internal/generation"
	"github.com/Vincent-alt-spec/lego-builder-generator/internal/middleware"
	"github.com/Vincent-alt-spec/lego-builder-generator/internal/models"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("github.com/Vincent-alt-spec/lego-builder-generator/internal/handlers")

// BuildService is the part of builder.Service the handlers use
type BuildService interface {
	LoadInventory(ctx context.Context, setNumber string) (*builder.Overview, error)
	Generate(ctx context.Context, req builder.Request) (*builder.Result, error)
}

// BuildHandler serves the JSON build API
type BuildHandler struct {
	service BuildService
	logger  *zap.Logger
}

// NewBuildHandler creates a new build handler
func NewBuildHandler(service BuildService, logger *zap.Logger) *BuildHandler {
	return &BuildHandler{service: service, logger: logger}
}

// CreateBuildRequest is the request body for generating a build
type CreateBuildRequest struct {
	SetNumber      string `json:"set_number" binding:"required"`
	Size           string `json:"size" binding:"required,oneof=small medium large"`
	BuildType      string `json:"build_type"`
	AllowDowngrade bool   `json:"allow_downgrade"`
}

// GetInventory returns the aggregated inventory, scores and recommendations of a set
//
//	@Summary	Load a set inventory
//	@Tags		sets
//	@Produce	json
//	@Param		set	path		string	true	"Set number, e.g. 75192 or 75192-1"
//	@Success	200	{object}	builder.Overview
//	@Failure	404	{object}	middleware.APIError
//	@Failure	502	{object}	middleware.APIError
//	@Router		/sets/{set}/inventory [get]
func (h *BuildHandler) GetInventory(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "GetInventory")
	defer span.End()

	overview, err := h.service.LoadInventory(ctx, c.Param("set"))
	if err != nil {
		respondBuildError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

// CreateBuild runs a full build generation
//
//	@Summary	Generate an alternate build
//	@Tags		builds
//	@Accept		json
//	@Produce	json
//	@Param		request	body		CreateBuildRequest	true	"Build request"
//	@Success	200		{object}	builder.Result
//	@Failure	400		{object}	middleware.APIError
//	@Failure	422		{object}	middleware.APIError
//	@Failure	502		{object}	middleware.APIError
//	@Router		/builds [post]
func (h *BuildHandler) CreateBuild(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "CreateBuild")
	defer span.End()

	var req CreateBuildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.BadRequest(c, err.Error())
		return
	}
	size, _ := models.ParseSize(req.Size)

	result, err := h.service.Generate(ctx, builder.Request{
		SetNumber:      req.SetNumber,
		Size:           size,
		Theme:          strings.ToLower(strings.TrimSpace(req.BuildType)),
		AllowDowngrade: req.AllowDowngrade,
	})
	if err != nil {
		respondBuildError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// respondBuildError maps pipeline errors onto API errors
func respondBuildError(c *gin.Context, err error) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, catalog.ErrSetNotFound):
		middleware.SetNotFound(c, err.Error())
	case errors.Is(err, catalog.ErrFetchFailed):
		middleware.CatalogUnavailable(c, err.Error())
	case errors.Is(err, builder.ErrSelectionEmpty):
		middleware.SetTooSmall(c, err.Error())
	case errors.Is(err, generation.ErrGenerationFailed):
		middleware.GenerationFailed(c)
	default:
		middleware.InternalError(c, "internal server error")
	}
}

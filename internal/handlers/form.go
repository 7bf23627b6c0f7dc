package handlers

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strings"

	"github.com/Vincent-alt-spec/lego-builder-generator/internal/builder"
	"github.com/Vincent-alt-spec/lego-builder-generator/internal/catalog"
	"github.com/Vincent-alt-spec/lego-builder-generator/internal/generation"
	"github.com/Vincent-alt-spec/lego-builder-generator/internal/middleware"
	"github.com/Vincent-alt-spec/lego-builder-generator/internal/models"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Templates parses the embedded HTML templates
func Templates() (*template.Template, error) {
	return template.ParseFS(templatesFS, "templates/*.html")
}

// FormHandler serves the browser form front end
type FormHandler struct {
	service BuildService
	logger  *zap.Logger
}

// NewFormHandler creates a new form handler
func NewFormHandler(service BuildService, logger *zap.Logger) *FormHandler {
	return &FormHandler{service: service, logger: logger}
}

type formValues struct {
	SetNumber string
	Size      models.Size
	BuildType string
}

type formPage struct {
	Form    formValues
	Sizes   []models.Size
	Error   string
	Warning string
	Result  *builder.Result
}

// Index renders the empty form
func (h *FormHandler) Index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", formPage{
		Form:  formValues{Size: models.SizeSmall},
		Sizes: models.Sizes,
	})
}

// Submit runs a build from the posted form and renders the outcome
func (h *FormHandler) Submit(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "SubmitForm")
	defer span.End()

	page := formPage{
		Form: formValues{
			SetNumber: strings.TrimSpace(c.PostForm("set_number")),
			BuildType: strings.ToLower(strings.TrimSpace(c.PostForm("build_type"))),
		},
		Sizes: models.Sizes,
	}
	size, ok := models.ParseSize(c.PostForm("size"))
	if !ok {
		size = models.SizeSmall
	}
	page.Form.Size = size

	if page.Form.SetNumber == "" {
		page.Error = "Enter a LEGO set number."
		c.HTML(http.StatusBadRequest, "index.html", page)
		return
	}

	result, err := h.service.Generate(ctx, builder.Request{
		SetNumber: page.Form.SetNumber,
		Size:      size,
		Theme:     page.Form.BuildType,
	})
	if err != nil {
		status, msg := formError(err)
		if errors.Is(err, generation.ErrGenerationFailed) {
			middleware.MarkUpstreamFailure(c)
		}
		h.logger.Warn("form build failed", zap.String("set_number", page.Form.SetNumber), zap.Error(err))
		page.Error = msg
		c.HTML(status, "index.html", page)
		return
	}

	page.Result = result
	page.Warning = result.GuidanceWarning
	c.HTML(http.StatusOK, "index.html", page)
}

func formError(err error) (int, string) {
	switch {
	case errors.Is(err, catalog.ErrSetNotFound):
		return http.StatusNotFound, "Could not load set data."
	case errors.Is(err, catalog.ErrFetchFailed):
		return http.StatusBadGateway, "Could not load set data."
	case errors.Is(err, builder.ErrSelectionEmpty):
		return http.StatusUnprocessableEntity, "This set is too small for the selected build size."
	case errors.Is(err, generation.ErrGenerationFailed):
		return http.StatusBadGateway, "Build generation failed. Please try again."
	}
	return http.StatusInternalServerError, "Something went wrong."
}

// Package builder runs one alternate-build request end to end: load the set,
// score it, select parts, then ask for the build and its guidance.
package builder

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Vincent-alt-spec/lego-builder-generator/internal/catalog"
	"github.com/Vincent-alt-spec/lego-builder-generator/internal/inventory"
	"github.com/Vincent-alt-spec/lego-builder-generator/internal/metrics"
	"github.com/Vincent-alt-spec/lego-builder-generator/internal/models"
	"github.com/Vincent-alt-spec/lego-builder-generator/internal/scoring"
	"github.com/Vincent-alt-spec/lego-builder-generator/internal/selection"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("github.com/Vincent-alt-spec/lego-builder-generator/internal/builder")

// ErrSelectionEmpty means the set has too few parts for the requested size
var ErrSelectionEmpty = errors.New("set too small for requested size")

// SampleSize is how many part variants an overview previews
const SampleSize = 10

// Generator produces build text and guidance for a selection
type Generator interface {
	GenerateBuild(ctx context.Context, theme string, sel *models.Selection, size models.Size) (string, error)
	GenerateGuidance(ctx context.Context, build string, inv *models.Inventory) (models.Guidance, error)
}

// Service handles build runs. It holds no per-run state.
type Service struct {
	source    inventory.PartSource
	generator Generator
	logger    *zap.Logger
}

// NewService creates a build service
func NewService(source inventory.PartSource, generator Generator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		source:    source,
		generator: generator,
		logger:    logger,
	}
}

// Overview is everything known about a set before a size and theme are chosen
type Overview struct {
	SetNumber       string             `json:"set_number"`
	Inventory       *models.Inventory  `json:"inventory"`
	Sample          []models.Entry     `json:"sample"`
	Recommendations []string           `json:"recommendations"`
	Scores          models.Scores      `json:"scores"`
	Best            models.Archetype   `json:"best"`
	Tied            []models.Archetype `json:"tied,omitempty"`
	AvailableSizes  []models.Size      `json:"available_sizes"`
}

// Ambiguous reports whether several archetypes share the top score
func (o *Overview) Ambiguous() bool {
	return len(o.Tied) > 1
}

// NewOverview scores and summarizes an already aggregated inventory
func NewOverview(setNumber string, inv *models.Inventory) *Overview {
	scores := scoring.ScoreBuilds(inv)
	best, tied := scoring.ChooseBestBuild(scores)
	return &Overview{
		SetNumber:       setNumber,
		Inventory:       inv,
		Sample:          inventory.Sample(inv, SampleSize),
		Recommendations: scoring.RecommendBuildTypes(inv),
		Scores:          scores,
		Best:            best,
		Tied:            tied,
		AvailableSizes:  selection.AvailableSizes(inv.TotalParts),
	}
}

// LoadInventory fetches and aggregates a set. Failures wrap catalog.ErrFetchFailed.
func (s *Service) LoadInventory(ctx context.Context, setNumber string) (*Overview, error) {
	ctx, span := tracer.Start(ctx, "builder.LoadInventory")
	defer span.End()

	setNumber = catalog.NormalizeSetNumber(setNumber)
	span.SetAttributes(attribute.String("set_number", setNumber))
	if setNumber == "" {
		return nil, fmt.Errorf("%w: empty set number", catalog.ErrFetchFailed)
	}

	inv, err := inventory.Build(ctx, s.source, setNumber)
	if err != nil {
		s.logger.Warn("could not load set", zap.String("set_number", setNumber), zap.Error(err))
		if !errors.Is(err, catalog.ErrFetchFailed) {
			err = fmt.Errorf("%w: %v", catalog.ErrFetchFailed, err)
		}
		return nil, err
	}

	s.logger.Info("set loaded",
		zap.String("set_number", setNumber),
		zap.Int("total_parts", inv.TotalParts),
		zap.Int("variants", inv.Parts.Len()),
	)
	return NewOverview(setNumber, inv), nil
}

// Request describes one build run
type Request struct {
	SetNumber string
	Size      models.Size
	// Theme is free text; empty means the best-scoring archetype.
	Theme string
	// AllowDowngrade turns an unsupported medium or large request into small
	// instead of failing with ErrSelectionEmpty.
	AllowDowngrade bool
}

// Result is the outcome of a build run
type Result struct {
	RunID           string               `json:"run_id"`
	Overview        *Overview            `json:"overview"`
	Size            models.Size          `json:"size"`
	Downgrade       *selection.Downgrade `json:"downgrade,omitempty"`
	Theme           string               `json:"theme"`
	ThemeFromScores bool                 `json:"theme_from_scores"`
	Selection       *models.Selection    `json:"selection"`
	Build           string               `json:"build"`
	Guidance        models.Guidance      `json:"guidance,omitempty"`
	GuidanceWarning string               `json:"guidance_warning,omitempty"`
}

// Generate loads the set then runs the build
func (s *Service) Generate(ctx context.Context, req Request) (*Result, error) {
	overview, err := s.LoadInventory(ctx, req.SetNumber)
	if err != nil {
		metrics.Builds.WithLabelValues(string(req.Size), "fetch_failed").Inc()
		return nil, err
	}
	return s.GenerateFromOverview(ctx, overview, req)
}

// GenerateFromOverview runs a build against an already loaded set.
// req.SetNumber is ignored.
func (s *Service) GenerateFromOverview(ctx context.Context, overview *Overview, req Request) (*Result, error) {
	runID := uuid.NewString()
	ctx, span := tracer.Start(ctx, "builder.Generate")
	defer span.End()
	span.SetAttributes(attribute.String("run_id", runID), attribute.String("set_number", overview.SetNumber))

	log := s.logger.With(zap.String("run_id", runID), zap.String("set_number", overview.SetNumber))
	inv := overview.Inventory

	result := &Result{RunID: runID, Overview: overview, Size: req.Size}
	if req.AllowDowngrade {
		result.Size, result.Downgrade = selection.ResolveSize(string(req.Size), inv.TotalParts)
	}

	result.Selection = selection.SelectBuildParts(inv, result.Size)
	if result.Selection.Len() == 0 {
		metrics.Builds.WithLabelValues(string(result.Size), "selection_empty").Inc()
		log.Info("selection empty", zap.String("size", string(result.Size)), zap.Int("total_parts", inv.TotalParts))
		return nil, fmt.Errorf("%w: %s build needs more than %d parts", ErrSelectionEmpty, result.Size, inv.TotalParts)
	}

	result.Theme = strings.TrimSpace(req.Theme)
	if result.Theme == "" {
		result.Theme = string(overview.Best)
		result.ThemeFromScores = true
	}

	build, err := s.generator.GenerateBuild(ctx, result.Theme, result.Selection, result.Size)
	if err != nil {
		metrics.Builds.WithLabelValues(string(result.Size), "generation_failed").Inc()
		log.Error("build generation failed", zap.Error(err))
		return nil, err
	}
	result.Build = build

	guidance, err := s.generator.GenerateGuidance(ctx, build, inv)
	if err != nil {
		log.Warn("guidance generation failed", zap.Error(err))
		result.GuidanceWarning = "AI guidance failed."
	} else {
		result.Guidance = guidance
	}

	metrics.Builds.WithLabelValues(string(result.Size), "ok").Inc()
	log.Info("build generated",
		zap.String("size", string(result.Size)),
		zap.String("theme", result.Theme),
		zap.Int("selected_parts", result.Selection.Sum()),
		zap.Bool("guidance", result.GuidanceWarning == ""),
	)
	return result, nil
}

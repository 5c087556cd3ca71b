package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/timmy/producelens/internal/catalog"
	"github.com/timmy/producelens/internal/classifier"
	"github.com/timmy/producelens/internal/domain"
	"github.com/timmy/producelens/internal/logger"
	"github.com/timmy/producelens/internal/preprocess"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/timmy/producelens/internal/service"

// AnalyzerService runs the preprocess, classify and enrich pipeline for one image.
// It keeps no per-request state and is safe for concurrent use.
type AnalyzerService struct {
	store        *catalog.Store
	preprocessor *preprocess.Preprocessor
	classifier   classifier.Classifier
	logger       *logger.Logger
	tracer       trace.Tracer
}

// NewAnalyzerService creates a new analyzer service.
// Parameters:
//   - store: loaded reference catalog.
//   - preprocessor: image to tensor converter.
//   - clf: classifier engine.
//   - log: logger instance; nil uses the default logger.
//
// Returns:
//   - *AnalyzerService: initialized analyzer service.
func NewAnalyzerService(
	store *catalog.Store,
	preprocessor *preprocess.Preprocessor,
	clf classifier.Classifier,
	log *logger.Logger,
) *AnalyzerService {
	if log == nil {
		log = logger.GetDefault()
	}
	return &AnalyzerService{
		store:        store,
		preprocessor: preprocessor,
		classifier:   clf,
		logger:       log,
		tracer:       otel.Tracer(tracerName),
	}
}

// log returns a logger from context if available, otherwise returns the service logger
func (s *AnalyzerService) log(ctx context.Context) *logger.Logger {
	if l := logger.FromContext(ctx); l != nil && l != logger.GetDefault() {
		return l
	}
	return s.logger
}

// Analyze classifies an encoded image and joins the predicted class with its
// nutrition and health records. A class without reference data yields empty
// records, not an error. Every failure is a *domain.PredictionError.
func (s *AnalyzerService) Analyze(ctx context.Context, image []byte) (*domain.EnrichedResult, error) {
	ctx, span := s.tracer.Start(ctx, "AnalyzerService.Analyze",
		trace.WithAttributes(attribute.Int("image.size", len(image))))
	defer span.End()

	start := time.Now()
	result, err := s.analyze(ctx, image)
	durationMs := time.Since(start).Milliseconds()

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.log(ctx).WithFields(logger.Fields{
			logger.FieldSize:       len(image),
			logger.FieldDurationMs: durationMs,
		}).WithError(err).Warn("Analyze failed")
		return nil, err
	}

	span.SetAttributes(
		attribute.String("prediction.label", result.Prediction.Label),
		attribute.Float64("prediction.confidence", result.RoundedConfidence()),
	)
	s.log(ctx).WithFields(logger.Fields{
		logger.FieldLabel:      result.Prediction.Label,
		logger.FieldClassIndex: result.Prediction.Index,
		logger.FieldConfidence: result.RoundedConfidence(),
		logger.FieldNutrition:  !result.Nutrition.IsEmpty(),
		logger.FieldHealth:     !result.Health.IsEmpty(),
		logger.FieldSize:       len(image),
		logger.FieldDurationMs: durationMs,
	}).Info("Analyze completed")

	return result, nil
}

func (s *AnalyzerService) analyze(ctx context.Context, image []byte) (*domain.EnrichedResult, error) {
	tensor, err := s.preprocess(ctx, image)
	if err != nil {
		return nil, &domain.PredictionError{Stage: domain.StagePreprocess, Err: err}
	}

	prediction, err := s.predict(ctx, tensor)
	if err != nil {
		return nil, err
	}

	_, span := s.tracer.Start(ctx, "enrich")
	defer span.End()

	return &domain.EnrichedResult{
		Prediction: *prediction,
		Nutrition:  s.store.LookupNutrition(prediction.Label),
		Health:     s.store.LookupHealth(prediction.Label),
	}, nil
}

func (s *AnalyzerService) preprocess(ctx context.Context, image []byte) (*domain.Tensor, error) {
	_, span := s.tracer.Start(ctx, "preprocess")
	defer span.End()

	tensor, err := s.preprocessor.Process(image)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "decode failed")
		return nil, err
	}
	return tensor, nil
}

// predict runs inference and resolves the top class to a lowercase label.
func (s *AnalyzerService) predict(ctx context.Context, tensor *domain.Tensor) (*domain.PredictionResult, error) {
	ctx, span := s.tracer.Start(ctx, "inference")
	defer span.End()

	probs, err := s.classifier.Predict(ctx, tensor)
	if err == nil {
		span.SetAttributes(attribute.Int("inference.outputs", len(probs)))
		var idx int
		var confidence float32
		if idx, confidence, err = classifier.Argmax(probs); err == nil {
			return s.resolve(idx, confidence)
		}
	}

	if !errors.Is(err, domain.ErrInference) {
		err = fmt.Errorf("%w: %v", domain.ErrInference, err)
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, "inference failed")
	return nil, &domain.PredictionError{Stage: domain.StageInference, Err: err}
}

func (s *AnalyzerService) resolve(idx int, confidence float32) (*domain.PredictionResult, error) {
	label, err := s.store.ResolveLabel(idx)
	if err != nil {
		return nil, &domain.PredictionError{Stage: domain.StageResolve, Err: err}
	}
	return &domain.PredictionResult{
		Index:      idx,
		Label:      domain.NormalizeKey(label),
		Confidence: confidence,
	}, nil
}

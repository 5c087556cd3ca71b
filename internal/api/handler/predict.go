package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/producelens/internal/api/middleware"
	"github.com/timmy/producelens/internal/domain"
	"github.com/timmy/producelens/internal/logger"
)

// PredictHandler serves the JSON prediction endpoint.
type PredictHandler struct {
	analyzer       Analyzer
	maxUploadBytes int64
}

// NewPredictHandler creates a new predict handler.
// Parameters:
//   - analyzer: prediction pipeline.
//   - maxUploadBytes: request body limit; 0 disables the limit.
// Returns:
//   - *PredictHandler: initialized handler.
func NewPredictHandler(analyzer Analyzer, maxUploadBytes int64) *PredictHandler {
	return &PredictHandler{
		analyzer:       analyzer,
		maxUploadBytes: maxUploadBytes,
	}
}

// PredictionBody is the predicted class and its rounded confidence.
type PredictionBody struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

// HealthGuidance is the health record as served by the API. Absent lists are
// empty arrays and absent scalars are empty strings.
type HealthGuidance struct {
	BestFor        []string      `json:"best_for"`
	AvoidIf        []string      `json:"avoid_if"`
	Season         []string      `json:"season"`
	HealthBenefits []string      `json:"health_benefits"`
	Origin         string        `json:"origin"`
	FamousIn       []string      `json:"famous_in"`
	GlycemicIndex  domain.Scalar `json:"glycemic_index"`
	KeyNutrients   []string      `json:"key_nutrients"`
	PrepTip        string        `json:"prep_tip"`
	PairsWellWith  []string      `json:"pairs_well_with"`
}

// PredictResponse is the body of a successful POST /predict.
type PredictResponse struct {
	Prediction     PredictionBody         `json:"prediction"`
	Nutrition      domain.NutritionRecord `json:"nutrition"`
	HealthGuidance HealthGuidance         `json:"health_guidance"`
}

// NewPredictResponse builds the API body for an analyze result.
func NewPredictResponse(r *domain.EnrichedResult) *PredictResponse {
	h := r.Health
	return &PredictResponse{
		Prediction: PredictionBody{
			Name:       r.Prediction.Label,
			Confidence: r.RoundedConfidence(),
		},
		Nutrition: r.Nutrition,
		HealthGuidance: HealthGuidance{
			BestFor:        orEmpty(h.BestFor),
			AvoidIf:        orEmpty(h.AvoidIf),
			Season:         orEmpty(h.Season),
			HealthBenefits: orEmpty(h.HealthBenefits),
			Origin:         h.Origin,
			FamousIn:       orEmpty(h.FamousIn),
			GlycemicIndex:  h.GlycemicIndex,
			KeyNutrients:   orEmpty(h.KeyNutrients),
			PrepTip:        h.PrepTip,
			PairsWellWith:  orEmpty(h.PairsWellWith),
		},
	}
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Predict handles POST /predict.
// Parameters:
//   - c: Gin request context with a multipart "file" field.
// Returns: none (writes JSON response).
func (h *PredictHandler) Predict(c *gin.Context) {
	log := middleware.GetLogger(c)

	data, err := readUpload(c, h.maxUploadBytes)
	if err != nil {
		status := uploadStatus(err)
		msg := err.Error()
		if errors.Is(err, errNoFile) {
			msg = MessageNoFile
		}
		log.WithError(err).Warn("Rejected upload")
		c.JSON(status, gin.H{"error": msg})
		return
	}

	result, err := h.analyzer.Analyze(c.Request.Context(), data)
	if err != nil {
		logger.CtxError(c.Request.Context(), "Predict failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, NewPredictResponse(result))
}

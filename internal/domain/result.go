package domain

import "math"

// Tensor is a dense float32 tensor in row-major order.
type Tensor struct {
	Shape []int64
	Data  []float32
}

// NewImageTensor allocates a [1, size, size, 3] tensor.
func NewImageTensor(size int) *Tensor {
	return &Tensor{
		Shape: []int64{1, int64(size), int64(size), 3},
		Data:  make([]float32, size*size*3),
	}
}

// PredictionResult is the classifier's top class for one image.
type PredictionResult struct {
	Index      int
	Label      string
	Confidence float32
}

// EnrichedResult joins a prediction with its reference records.
// Either record may be empty.
type EnrichedResult struct {
	Prediction PredictionResult
	Nutrition  NutritionRecord
	Health     HealthRecord
}

// RoundedConfidence returns the confidence rounded to 4 decimal places.
func (r *EnrichedResult) RoundedConfidence() float64 {
	return RoundConfidence(r.Prediction.Confidence)
}

// RoundConfidence rounds a probability to 4 decimal places.
func RoundConfidence(p float32) float64 {
	return math.Round(float64(p)*1e4) / 1e4
}

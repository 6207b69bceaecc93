package models

import "time"

// AnalysisRequest is the body of POST /predict.
type AnalysisRequest struct {
	Text *string `json:"text"`
}

// PredictionResult is the only entity returned to clients.
type PredictionResult struct {
	Prediction  string  `json:"prediction"`
	Confidence  float64 `json:"confidence"`
	Explanation string  `json:"explanation"`
}

// ErrorResponse carries a human-readable failure reason.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// VerdictEvent describes one completed verification. It never carries the
// submitted text or anything derived from it.
type VerdictEvent struct {
	ID           string    `json:"id"`
	ModelID      string    `json:"model_id"`
	ModelVersion string    `json:"model_version"`
	Prediction   string    `json:"prediction"`
	Confidence   float64   `json:"confidence"`
	TextLength   int       `json:"text_length"`
	LatencyMS    float64   `json:"latency_ms"`
	Source       string    `json:"source"`
	Timestamp    time.Time `json:"timestamp"`
}

// VerifyJob is one asynchronous verification request read from Kafka.
type VerifyJob struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// VerifyJobResult answers a VerifyJob. Detail is set instead of the verdict
// fields when the job was rejected.
type VerifyJobResult struct {
	ID          string  `json:"id"`
	Prediction  string  `json:"prediction,omitempty"`
	Confidence  float64 `json:"confidence,omitempty"`
	Explanation string  `json:"explanation,omitempty"`
	Detail      string  `json:"detail,omitempty"`
}

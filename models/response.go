package models

// ScrapeResponse is the response for POST /api/scrape.
type ScrapeResponse struct {
	// Success indicates whether the full pipeline completed without errors.
	Success bool `json:"success"`

	// Message is a human-readable status message.
	Message string `json:"message"`

	// Data is the structured data extracted by the LLM.
	Data *ExtractedData `json:"data,omitempty"`

	// Filename is the generated output file name.
	Filename string `json:"filename,omitempty"`

	// DownloadURL is the API path for retrieving the output file.
	DownloadURL string `json:"download_url,omitempty"`

	// Timing provides duration breakdowns for the operation.
	Timing TimingInfo `json:"timing"`

	// Error is populated only when Success is false.
	Error *ErrorDetail `json:"error,omitempty"`
}

// TimingInfo breaks down the time spent in each pipeline stage.
type TimingInfo struct {
	// TotalMs is the end-to-end duration in milliseconds.
	TotalMs int64 `json:"total_ms"`

	// FetchMs is the time spent fetching and cleaning the page.
	FetchMs int64 `json:"fetch_ms"`

	// ExtractionMs is the time spent in the LLM call (including retries).
	ExtractionMs int64 `json:"extraction_ms"`

	// OutputMs is the time spent writing the output document.
	OutputMs int64 `json:"output_ms"`
}

// StatusResponse is the response for GET /api/status.
type StatusResponse struct {
	Status       string `json:"status"`
	LLMProvider  string `json:"llm_provider"`
	LLMAvailable bool   `json:"llm_available"`
	Version      string `json:"version"`
}

// HealthResponse is the response for GET /api/health.
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Uptime  string `json:"uptime"`
	Version string `json:"version"`
}

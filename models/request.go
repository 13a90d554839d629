package models

// Output format tags accepted by the scrape endpoint.
const (
	FormatText  = "text"
	FormatWord  = "word"
	FormatPDF   = "pdf"
	FormatExcel = "excel"
)

// ScrapeRequest is the payload for POST /api/scrape.
type ScrapeRequest struct {
	// URL is the target page to scrape. Must be an absolute http/https URL.
	URL string `json:"url" binding:"required"`

	// Prompt is the natural-language instruction describing what to extract.
	Prompt string `json:"prompt" binding:"required,min=1,max=1000"`

	// OutputFormat controls the generated document type.
	// Allowed: "text" (default), "word", "pdf", "excel".
	OutputFormat string `json:"output_format,omitempty" binding:"omitempty,oneof=text word pdf excel"`
}

// Defaults applies default values to unset fields.
func (r *ScrapeRequest) Defaults() {
	if r.OutputFormat == "" {
		r.OutputFormat = FormatText
	}
}

package catalog

// ImportRecord is one entry of a curated missing-episode metadata file.
type ImportRecord struct {
	Title       string `json:"title" yaml:"title"`
	URL         string `json:"url" yaml:"url"`
	AudioURL    string `json:"audio_url" yaml:"audio_url"`
	ImageURL    string `json:"image_url" yaml:"image_url"`
	Description string `json:"description" yaml:"description"`
	PublishDate string `json:"publish_date" yaml:"publish_date"`
}

// RecordError reports a single failed record of a batch operation.
type RecordError struct {
	Title string `json:"title"`
	Error string `json:"error"`
}

// ImportSummary reports the partial-success outcome of an import batch. A
// single bad record never aborts the batch.
type ImportSummary struct {
	ImportedCount int           `json:"imported_count"`
	SkippedCount  int           `json:"skipped_count"`
	TotalCount    int           `json:"total_count"`
	Errors        []RecordError `json:"errors"`
}

// MaintenanceSummary reports the outcome of a re-derivation pass.
type MaintenanceSummary struct {
	UpdatedCount int           `json:"updated_count"`
	TotalCount   int           `json:"total_count"`
	Errors       []RecordError `json:"errors"`
}

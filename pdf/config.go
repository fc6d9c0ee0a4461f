package pdf

import "time"

// Config holds PDF rendering settings. Values from the document's template
// take precedence over PageSize and Margin.
type Config struct {
	// PageSize applies when the template omits pageSize. Accepts the names
	// understood by rml.ParsePageSize.
	PageSize string
	// Margin is used for the implicit frame of documents without templates.
	Margin float64
	// FontName is the fallback face for unknown font names.
	FontName           string
	DisableCompression bool
	ShowBoundary       bool
	// CreationDate is stamped into the document info. A zero value uses a
	// fixed epoch so output is reproducible.
	CreationDate time.Time
	// BaseDir resolves relative image and font paths.
	BaseDir string
	Creator string
}

// defaultCreationDate keeps output byte-stable when no date is supplied.
var defaultCreationDate = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// DefaultConfig returns a baseline configuration.
func DefaultConfig() Config {
	return Config{
		PageSize: "A4",
		Margin:   72,
		FontName: "Helvetica",
		Creator:  "rml2pdf",
	}
}

func applyConfig(dst *Config, src Config) {
	if src.PageSize != "" {
		dst.PageSize = src.PageSize
	}
	if src.Margin > 0 {
		dst.Margin = src.Margin
	}
	if src.FontName != "" {
		dst.FontName = src.FontName
	}
	if src.DisableCompression {
		dst.DisableCompression = true
	}
	if src.ShowBoundary {
		dst.ShowBoundary = true
	}
	if !src.CreationDate.IsZero() {
		dst.CreationDate = src.CreationDate
	}
	if src.BaseDir != "" {
		dst.BaseDir = src.BaseDir
	}
	if src.Creator != "" {
		dst.Creator = src.Creator
	}
}

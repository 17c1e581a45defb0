// Package export handles exporting debate transcripts to various formats.
package export

import (
	"fmt"
	"io"
	"time"

	"synthetica/internal/core"
)

// Format represents an export format.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatHTML     Format = "html"
	FormatPDF      Format = "pdf"
)

// Exporter defines the interface for exporting transcripts.
type Exporter interface {
	Export(messages []core.Message, w io.Writer) error
	FileExtension() string
}

// GetExporter returns an exporter for the given format.
func GetExporter(format Format) (Exporter, error) {
	switch format {
	case FormatMarkdown:
		return &MarkdownExporter{}, nil
	case FormatJSON:
		return &JSONExporter{}, nil
	case FormatHTML:
		return &HTMLExporter{}, nil
	case FormatPDF:
		return &PDFExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported export format: %s", format)
	}
}

// GenerateFilename creates a dated filename for the export.
func GenerateFilename(now time.Time, ext string) string {
	return fmt.Sprintf("debate-%s.%s", now.Format("2006-01-02"), ext)
}

package export

import (
	"io"

	"github.com/jung-kurt/gofpdf"

	"synthetica/internal/core"
)

// PDFExporter exports transcripts to PDF format.
type PDFExporter struct{}

// Export writes the transcript as PDF.
func (e *PDFExporter) Export(messages []core.Message, w io.Writer) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	// Title
	pdf.SetFont("Arial", "B", 18)
	pdf.MultiCell(0, 10, "AI Debate Transcript", "", "C", false)
	pdf.Ln(5)

	if len(messages) == 0 {
		pdf.SetFont("Arial", "I", 10)
		pdf.Cell(0, 6, "No messages recorded.")
		pdf.Ln(6)
	}

	for _, msg := range messages {
		if pdf.GetY() > 250 {
			pdf.AddPage()
		}

		// Message header with a speaker-colored background
		r, g, b := speakerColor(msg.Speaker)
		pdf.SetFillColor(r, g, b)
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(0, 8, msg.Speaker.Label()+" - "+msg.Timestamp.Format("Jan 2, 2006 3:04 PM"),
			"", 1, "L", true, 0, "")
		pdf.Ln(1)

		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(0, 5, msg.Text, "", "L", false)
		pdf.Ln(4)
	}

	return pdf.Output(w)
}

func speakerColor(s core.Speaker) (r, g, b int) {
	switch s {
	case core.SpeakerOne:
		return 200, 230, 255 // Light blue
	case core.SpeakerTwo:
		return 200, 255, 200 // Light green
	default:
		return 230, 230, 230 // Gray
	}
}

// FileExtension returns the file extension for PDF.
func (e *PDFExporter) FileExtension() string {
	return "pdf"
}

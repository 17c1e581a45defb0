package export

import (
	"fmt"
	"io"
	"strings"

	"synthetica/internal/core"
)

// MarkdownExporter exports transcripts to Markdown format.
type MarkdownExporter struct{}

// Export writes the transcript as Markdown, one section per message.
func (e *MarkdownExporter) Export(messages []core.Message, w io.Writer) error {
	var sb strings.Builder

	for i, msg := range messages {
		sb.WriteString(fmt.Sprintf("## %s (%s)\n\n", msg.Speaker.Label(), msg.Timestamp.Format("Jan 2, 2006 3:04:05 PM")))
		sb.WriteString(msg.Text)
		sb.WriteString("\n")
		if i < len(messages)-1 {
			sb.WriteString("\n")
		}
	}

	_, err := w.Write([]byte(sb.String()))
	return err
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return "md"
}

package export

import (
	"fmt"
	"html"
	"io"
	"strings"
	"time"

	"synthetica/internal/core"
)

// HTMLExporter exports transcripts as a standalone HTML document.
type HTMLExporter struct{}

// Export writes the transcript as a self-contained HTML page.
func (e *HTMLExporter) Export(messages []core.Message, w io.Writer) error {
	var sb strings.Builder

	sb.WriteString("<!DOCTYPE html>\n<html>\n<head>\n")
	sb.WriteString("<meta charset=\"utf-8\" />\n")
	sb.WriteString("<title>AI Debate Transcript</title>\n")
	sb.WriteString("<style>\n")
	sb.WriteString("body { font-family: sans-serif; max-width: 880px; margin: 0 auto; padding: 40px; }\n")
	sb.WriteString("h1 { text-align: center; }\n")
	sb.WriteString(".message { margin-bottom: 20px; padding: 18px; border-radius: 8px; border: 1px solid #ddd; }\n")
	sb.WriteString(".message h3 { margin: 0 0 10px 0; font-size: 14px; text-transform: uppercase; }\n")
	sb.WriteString(".message pre { margin: 0; white-space: pre-wrap; font-family: inherit; }\n")
	sb.WriteString("</style>\n</head>\n<body>\n")
	sb.WriteString("<h1>AI Debate Transcript</h1>\n")
	sb.WriteString(fmt.Sprintf("<p>Generated on %s</p>\n", time.Now().Format("Jan 2, 2006 3:04 PM")))

	for _, msg := range messages {
		sb.WriteString("<div class=\"message\">\n")
		sb.WriteString(fmt.Sprintf("<h3>%s (%s)</h3>\n",
			html.EscapeString(msg.Speaker.Label()), msg.Timestamp.Format("Jan 2, 2006 3:04:05 PM")))
		sb.WriteString(fmt.Sprintf("<pre>%s</pre>\n", html.EscapeString(msg.Text)))
		sb.WriteString("</div>\n")
	}

	sb.WriteString("</body>\n</html>\n")

	_, err := w.Write([]byte(sb.String()))
	return err
}

// FileExtension returns the file extension for HTML.
func (e *HTMLExporter) FileExtension() string {
	return "html"
}

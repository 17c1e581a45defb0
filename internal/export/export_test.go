package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"synthetica/internal/core"
)

func sampleTranscript() []core.Message {
	ts := time.Date(2026, 3, 14, 15, 4, 5, 0, time.UTC)
	return []core.Message{
		{Speaker: core.SpeakerSystem, Text: "Let us begin the debate!", Timestamp: ts},
		{Speaker: core.SpeakerOne, Text: "Markets allocate <scarce> resources.", Timestamp: ts.Add(time.Minute)},
		{Speaker: core.SpeakerTwo, Text: "Only for those who can pay.", Timestamp: ts.Add(2 * time.Minute)},
	}
}

func TestGetExporter(t *testing.T) {
	for _, format := range []Format{FormatMarkdown, FormatJSON, FormatHTML, FormatPDF} {
		if _, err := GetExporter(format); err != nil {
			t.Errorf("GetExporter(%s) error = %v", format, err)
		}
	}
	if _, err := GetExporter(Format("docx")); err == nil {
		t.Error("GetExporter(docx) error = nil, want unsupported format error")
	}
}

func TestMarkdownExport(t *testing.T) {
	var buf bytes.Buffer
	e := &MarkdownExporter{}
	if err := e.Export(sampleTranscript(), &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"## System (Mar 14, 2026 3:04:05 PM)",
		"## AI 1 (Mar 14, 2026 3:05:05 PM)",
		"## AI 2 (Mar 14, 2026 3:06:05 PM)",
		"Markets allocate <scarce> resources.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown output missing %q:\n%s", want, out)
		}
	}
	if e.FileExtension() != "md" {
		t.Errorf("FileExtension() = %q, want md", e.FileExtension())
	}
}

func TestJSONRoundtrip(t *testing.T) {
	msgs := sampleTranscript()

	var buf bytes.Buffer
	if err := (&JSONExporter{}).Export(msgs, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	got, err := Import(&buf)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if len(got) != len(msgs) {
		t.Fatalf("len = %d, want %d", len(got), len(msgs))
	}
	for i := range msgs {
		if got[i].Speaker != msgs[i].Speaker || got[i].Text != msgs[i].Text {
			t.Errorf("message %d = %+v, want %+v", i, got[i], msgs[i])
		}
		if !got[i].Timestamp.Equal(msgs[i].Timestamp) {
			t.Errorf("message %d timestamp = %v, want %v", i, got[i].Timestamp, msgs[i].Timestamp)
		}
	}
}

func TestImportRejectsUnknownSpeaker(t *testing.T) {
	in := `[{"speaker":"narrator","text":"hi","timestamp":"2026-03-14T15:04:05Z"}]`
	if _, err := Import(strings.NewReader(in)); err == nil {
		t.Fatal("Import() error = nil, want unknown speaker error")
	}
}

func TestImportRejectsMalformedJSON(t *testing.T) {
	if _, err := Import(strings.NewReader(`{"not":"a list"`)); err == nil {
		t.Fatal("Import() error = nil, want parse error")
	}
}

func TestHTMLExportEscapesContent(t *testing.T) {
	var buf bytes.Buffer
	if err := (&HTMLExporter{}).Export(sampleTranscript(), &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "Markets allocate &lt;scarce&gt; resources.") {
		t.Error("html output does not escape message content")
	}
	if strings.Contains(out, "<scarce>") {
		t.Error("html output contains raw message markup")
	}
	if !strings.Contains(out, "<!DOCTYPE html>") {
		t.Error("html output is not a standalone document")
	}
}

func TestPDFExport(t *testing.T) {
	var buf bytes.Buffer
	if err := (&PDFExporter{}).Export(sampleTranscript(), &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Error("pdf output does not start with %PDF header")
	}
}

func TestGenerateFilename(t *testing.T) {
	now := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	if got, want := GenerateFilename(now, "md"), "debate-2026-03-14.md"; got != want {
		t.Errorf("GenerateFilename() = %q, want %q", got, want)
	}
}

package extractor

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

// writeTestPDF builds a single-page PDF with one text line and, optionally, one image XObject.
func writeTestPDF(t *testing.T, text string, withImage bool) string {
	t.Helper()

	content := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
	resources := "<< /Font << /F1 4 0 R >> >>"
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
	}
	if withImage {
		resources = "<< /Font << /F1 4 0 R >> /XObject << /Im1 6 0 R >> >>"
		objects = append(objects, "<< /Type /XObject /Subtype /Image /Width 1 /Height 1 /ColorSpace /DeviceGray /BitsPerComponent 8 /Length 1 >>\nstream\n\x00\nendstream")
	}
	objects[2] = fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources %s /Contents 5 0 R >>", resources)

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	path := filepath.Join(t.TempDir(), "statement.pdf")
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatalf("write pdf: %v", err)
	}
	return path
}

func TestExtractPages(t *testing.T) {
	path := writeTestPDF(t, "SANTANDER ESTADO DE CUENTA", false)
	e := NewPDFExtractor(zerolog.Nop())

	pages, err := e.ExtractPages(context.Background(), path)
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(pages))
	}
	if !strings.Contains(pages[0], "SANTANDER") {
		t.Fatalf("expected page text to contain SANTANDER, got %q", pages[0])
	}
}

func TestInspectPagesCountsImages(t *testing.T) {
	tests := []struct {
		name       string
		withImage  bool
		wantImages int
	}{
		{"text only", false, 0},
		{"with image", true, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTestPDF(t, "BBVA", tt.withImage)
			e := NewPDFExtractor(zerolog.Nop())

			stats, err := e.InspectPages(context.Background(), path, 3)
			if err != nil {
				t.Fatalf("inspect failed: %v", err)
			}
			if len(stats) != 1 {
				t.Fatalf("expected 1 page of stats, got %d", len(stats))
			}
			if stats[0].Images != tt.wantImages {
				t.Fatalf("expected %d images, got %d", tt.wantImages, stats[0].Images)
			}
		})
	}
}

func TestExtractPagesMissingFile(t *testing.T) {
	e := NewPDFExtractor(zerolog.Nop())

	_, err := e.ExtractPages(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestExtractPagesGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.pdf")
	if err := os.WriteFile(path, []byte("this is not a pdf at all"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	e := NewPDFExtractor(zerolog.Nop())

	if _, err := e.ExtractPages(context.Background(), path); err == nil {
		t.Fatalf("expected error for garbage input")
	}
	if _, err := e.InspectPages(context.Background(), path, 3); err == nil {
		t.Fatalf("expected error for garbage input")
	}
}

func TestExtractPagesCancelled(t *testing.T) {
	path := writeTestPDF(t, "BANORTE", false)
	e := NewPDFExtractor(zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := e.ExtractPages(ctx, path); err == nil {
		t.Fatalf("expected context error")
	}
}

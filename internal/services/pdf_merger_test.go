package services

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildPDF constructs a minimal but well-formed PDF with the given number of
// empty pages, including a correct xref table.
func buildPDF(t *testing.T, pages int) []byte {
	t.Helper()

	var buf bytes.Buffer
	var offsets []int

	writeObj := func(s string) {
		offsets = append(offsets, buf.Len())
		buf.WriteString(s)
	}

	buf.WriteString("%PDF-1.4\n")

	kids := make([]string, 0, pages)
	for i := 0; i < pages; i++ {
		kids = append(kids, fmt.Sprintf("%d 0 R", 3+i))
	}
	writeObj("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")
	writeObj(fmt.Sprintf("2 0 obj\n<< /Type /Pages /Kids [%s] /Count %d >>\nendobj\n", strings.Join(kids, " "), pages))

	const content = "BT ET"
	for i := 0; i < pages; i++ {
		writeObj(fmt.Sprintf("%d 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << >> /Contents %d 0 R >>\nendobj\n", 3+i, 3+pages+i))
	}
	for i := 0; i < pages; i++ {
		writeObj(fmt.Sprintf("%d 0 obj\n<< /Length %d >>\nstream\n%s\nendstream\nendobj\n", 3+pages+i, len(content), content))
	}

	xrefOffset := buf.Len()
	size := len(offsets) + 1
	buf.WriteString(fmt.Sprintf("xref\n0 %d\n", size))
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		buf.WriteString(fmt.Sprintf("%010d 00000 n \n", off))
	}
	buf.WriteString(fmt.Sprintf("trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", size, xrefOffset))

	return buf.Bytes()
}

func TestBuildPDFHelper(t *testing.T) {
	for _, pages := range []int{1, 2, 3} {
		count, err := pdfPageCount(buildPDF(t, pages))
		require.NoError(t, err)
		assert.Equal(t, pages, count)
	}
}

func TestMergePDFsPageCount(t *testing.T) {
	original := buildPDF(t, 3)
	receipt := buildPDF(t, 2)

	merged, err := mergePDFs(original, receipt)
	require.NoError(t, err)

	count, err := pdfPageCount(merged)
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestMergePDFsSinglePageEach(t *testing.T) {
	merged, err := mergePDFs(buildPDF(t, 1), buildPDF(t, 1))
	require.NoError(t, err)

	count, err := pdfPageCount(merged)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestMergePDFsRejectsGarbageOriginal(t *testing.T) {
	_, err := mergePDFs([]byte("this is not a pdf"), buildPDF(t, 1))
	require.Error(t, err)
}

func TestMergePDFsRejectsGarbageReceipt(t *testing.T) {
	_, err := mergePDFs(buildPDF(t, 1), []byte{})
	require.Error(t, err)
}

func TestIsMergedArtifactURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://storage.googleapis.com/company-documents/merged/doc-1-invoice.pdf", true},
		{"https://storage.googleapis.com/company-documents/uploads/invoice.pdf", false},
		{"https://example.com/files/merged/invoice.pdf", true},
		{"https://example.com/files/invoice.pdf", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isMergedArtifactURL(tt.url), "url %q", tt.url)
	}
}

package services

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// mergedObjectPrefix marks object paths holding previously merged artifacts.
// Merging an already-merged file would duplicate its pages on every webhook
// re-delivery.
const mergedObjectPrefix = "merged/"

// mergeOutcome is the result of the best-effort merge step. Merged is false
// whenever the step was skipped or failed; callers branch on it and never see
// an error.
type mergeOutcome struct {
	Merged bool
	URL    string
}

// isMergedArtifactURL reports whether fileURL already points at a merged
// artifact.
func isMergedArtifactURL(fileURL string) bool {
	return strings.Contains(fileURL, "/"+mergedObjectPrefix)
}

func relaxedConfiguration() *model.Configuration {
	// Uploaded invoices come from many sources; relaxed validation also opens
	// PDFs whose owner password only restricts editing, not viewing.
	cfg := model.NewDefaultConfiguration()
	cfg.ValidationMode = model.ValidationRelaxed
	return cfg
}

// mergePDFs concatenates two PDF documents page for page: all pages of
// original in order, then all pages of receipt. Pages are copied structurally,
// never re-rendered.
func mergePDFs(original, receipt []byte) ([]byte, error) {
	readers := []io.ReadSeeker{bytes.NewReader(original), bytes.NewReader(receipt)}

	var buf bytes.Buffer
	if err := api.MergeRaw(readers, &buf, false, relaxedConfiguration()); err != nil {
		return nil, fmt.Errorf("failed to merge PDFs: %w", err)
	}
	return buf.Bytes(), nil
}

// pdfPageCount returns the number of pages in an in-memory PDF.
func pdfPageCount(data []byte) (int, error) {
	return api.PageCount(bytes.NewReader(data), relaxedConfiguration())
}

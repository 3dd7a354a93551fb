package gcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("BACKOFFICE_TEST_KEY", "set-value")
	assert.Equal(t, "set-value", GetEnv("BACKOFFICE_TEST_KEY", "fallback"))
	assert.Equal(t, "fallback", GetEnv("BACKOFFICE_TEST_KEY_MISSING", "fallback"))
}

func TestPublicURL(t *testing.T) {
	assert.Equal(t,
		"https://storage.googleapis.com/attachments/acme/receipts/wise-receipt-12345.pdf",
		PublicURL("attachments", "acme/receipts/wise-receipt-12345.pdf"))
}

func TestParsePublicURL(t *testing.T) {
	bucket, object, ok := ParsePublicURL("https://storage.googleapis.com/attachments/acme/receipts/r.pdf")
	assert.True(t, ok)
	assert.Equal(t, "attachments", bucket)
	assert.Equal(t, "acme/receipts/r.pdf", object)

	for _, url := range []string{
		"https://example.com/attachments/r.pdf",
		"https://storage.googleapis.com/attachments",
		"https://storage.googleapis.com/",
		"",
	} {
		_, _, ok := ParsePublicURL(url)
		assert.False(t, ok, "url %q", url)
	}
}

func TestPublicURLRoundTrip(t *testing.T) {
	url := PublicURL("company-documents", "merged/doc-1-invoice.pdf")
	bucket, object, ok := ParsePublicURL(url)
	assert.True(t, ok)
	assert.Equal(t, "company-documents", bucket)
	assert.Equal(t, "merged/doc-1-invoice.pdf", object)
}

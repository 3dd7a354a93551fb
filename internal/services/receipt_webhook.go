package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/storage"
	"github.com/hwinelin/backoffice-functions/internal/gcp"
	"github.com/hwinelin/backoffice-functions/internal/models"
	"github.com/hwinelin/backoffice-functions/internal/wise"
)

// StatusPaymentRecorded is the workflow status stamped on a document once its
// payment receipt has been attached.
const StatusPaymentRecorded = "Payment"

var errTransferNotFound = errors.New("transfer is not linked to any workflow file")

// ReceiptWebhookConfig holds all configuration for the reconciliation
// pipeline.
type ReceiptWebhookConfig struct {
	ProjectID              string
	AttachmentsBucket      string
	DocumentsBucket        string
	FilesCollection        string
	LedgerCollection       string
	BankAccountsCollection string
}

// ReceiptWebhookFunction holds the dependencies for the reconciliation
// pipeline triggered by Wise transfer webhooks.
type ReceiptWebhookFunction struct {
	firestoreClient *firestore.Client
	storageClient   *storage.Client
	wiseClient      *wise.Client
	httpClient      *http.Client
	config          ReceiptWebhookConfig
}

// NewReceiptWebhook creates a new ReceiptWebhookFunction instance. A missing
// Wise API token fails the cold start; there is no fallback credential.
func NewReceiptWebhook(ctx context.Context) (*ReceiptWebhookFunction, error) {
	projectID := gcp.GetEnv("PROJECT_ID", "")
	if projectID == "" {
		return nil, fmt.Errorf("PROJECT_ID environment variable must be set")
	}
	wiseToken := gcp.GetEnv("WISE_API_TOKEN", "")
	if wiseToken == "" {
		return nil, fmt.Errorf("WISE_API_TOKEN environment variable must be set")
	}

	config := ReceiptWebhookConfig{
		ProjectID:              projectID,
		AttachmentsBucket:      gcp.GetEnv("ATTACHMENTS_BUCKET", "attachments"),
		DocumentsBucket:        gcp.GetEnv("COMPANY_DOCUMENTS_BUCKET", "company-documents"),
		FilesCollection:        gcp.GetEnv("FILES_COLLECTION", "workflow_files"),
		LedgerCollection:       gcp.GetEnv("LEDGER_COLLECTION", "financial_transactions"),
		BankAccountsCollection: gcp.GetEnv("BANK_ACCOUNTS_COLLECTION", "bank_accounts"),
	}

	firestoreClient, err := gcp.NewFirestoreClient(ctx, config.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	storageClient, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	wiseClient, err := wise.NewClient(gcp.GetEnv("WISE_API_BASE_URL", wise.DefaultBaseURL), wiseToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create wise client: %w", err)
	}

	f := &ReceiptWebhookFunction{
		firestoreClient: firestoreClient,
		storageClient:   storageClient,
		wiseClient:      wiseClient,
		httpClient:      http.DefaultClient,
		config:          config,
	}
	slog.Info("Wise receipt webhook logic initialized.", "filesCollection", config.FilesCollection)
	return f, nil
}

// Process runs the full pipeline for one classified trigger: lookup, the
// idempotency guard, receipt fetch, artifact upload, best-effort merge and the
// reconciliation writes. It always returns a response; the HTTP status to use
// is carried inside it.
func (f *ReceiptWebhookFunction) Process(ctx context.Context, trig Trigger) *models.WebhookResponse {
	logCtx := slog.With("transferId", trig.TransferID, "executionId", trig.ExecutionID, "source", trig.Source)
	logCtx.Info("Processing transfer.", "force", trig.Force)

	doc, docRef, err := f.lookupByTransferID(ctx, trig.TransferID)
	if err != nil {
		if errors.Is(err, errTransferNotFound) {
			logCtx.Info("Transfer is not tracked by any workflow file.")
			return &models.WebhookResponse{
				Success:    false,
				Error:      fmt.Sprintf("no workflow file tracks transfer %d", trig.TransferID),
				TransferID: trig.TransferID,
				StatusCode: http.StatusNotFound,
			}
		}
		logCtx.Error("Workflow file lookup failed", "error", err)
		return &models.WebhookResponse{
			Success:    false,
			Error:      "failed to query workflow files",
			TransferID: trig.TransferID,
			StatusCode: http.StatusInternalServerError,
		}
	}
	logCtx = logCtx.With("documentId", doc.ID)

	if doc.ReceiptURL != "" && !trig.Force {
		logCtx.Info("Receipt already attached. Skipping.", "receiptUrl", doc.ReceiptURL)
		return &models.WebhookResponse{
			Success:    true,
			Message:    "receipt already attached",
			DocumentID: doc.ID,
			TransferID: trig.TransferID,
			ReceiptURL: doc.ReceiptURL,
			FileName:   doc.FileName,
			StatusCode: http.StatusOK,
		}
	}

	receipt, err := f.wiseClient.FetchReceipt(ctx, trig.TransferID)
	if err != nil {
		// Not our fault; a 5xx here would only provoke the dispatcher into a
		// retry storm against a permanent upstream rejection.
		logCtx.Warn("Receipt download from Wise failed", "error", err)
		return &models.WebhookResponse{
			Success:    false,
			Error:      fmt.Sprintf("failed to fetch receipt from Wise: %v", err),
			DocumentID: doc.ID,
			TransferID: trig.TransferID,
			StatusCode: http.StatusOK,
		}
	}
	logCtx.Info("Receipt downloaded.", "sizeBytes", len(receipt))

	receiptURL, err := f.storeReceipt(ctx, doc, trig.TransferID, receipt)
	if err != nil {
		logCtx.Error("Receipt upload to storage failed", "error", err)
		return &models.WebhookResponse{
			Success:    false,
			Error:      "failed to store receipt artifact",
			DocumentID: doc.ID,
			TransferID: trig.TransferID,
			StatusCode: http.StatusInternalServerError,
		}
	}

	merge := f.mergeWithOriginal(ctx, logCtx, doc, receipt)

	updates := []firestore.Update{
		{Path: "receiptUrl", Value: receiptURL},
		{Path: "status", Value: StatusPaymentRecorded},
		{Path: "updatedAt", Value: time.Now()},
	}
	if merge.Merged {
		updates = append(updates, firestore.Update{Path: "fileUrl", Value: merge.URL})
	}
	if _, err := docRef.Update(ctx, updates); err != nil {
		logCtx.Error("Failed to update workflow file after storing receipt", "error", err)
		return &models.WebhookResponse{
			Success:    false,
			Error:      "failed to update workflow file",
			DocumentID: doc.ID,
			TransferID: trig.TransferID,
			StatusCode: http.StatusInternalServerError,
		}
	}

	f.reconcileLedger(ctx, logCtx, doc, merge)

	logCtx.Info("Reconciliation complete.", "receiptUrl", receiptURL, "merged", merge.Merged)
	return &models.WebhookResponse{
		Success:    true,
		Message:    "receipt attached",
		DocumentID: doc.ID,
		TransferID: trig.TransferID,
		ReceiptURL: receiptURL,
		FileName:   doc.FileName,
		StatusCode: http.StatusOK,
	}
}

func (f *ReceiptWebhookFunction) lookupByTransferID(ctx context.Context, transferID int64) (*models.WorkflowFile, *firestore.DocumentRef, error) {
	docs, err := f.firestoreClient.Collection(f.config.FilesCollection).
		Where("wiseTransferId", "==", transferID).
		Limit(1).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query workflow files: %w", err)
	}
	if len(docs) == 0 {
		return nil, nil, errTransferNotFound
	}

	var doc models.WorkflowFile
	if err := docs[0].DataTo(&doc); err != nil {
		return nil, nil, fmt.Errorf("failed to decode workflow file %s: %w", docs[0].Ref.ID, err)
	}
	doc.ID = docs[0].Ref.ID
	return &doc, docs[0].Ref, nil
}

// storeReceipt uploads the receipt bytes under a deterministic path so that
// webhook re-delivery overwrites instead of accumulating copies.
func (f *ReceiptWebhookFunction) storeReceipt(ctx context.Context, doc *models.WorkflowFile, transferID int64, receipt []byte) (string, error) {
	subject := doc.CompanyID
	if subject == "" {
		subject = "unassigned"
	}
	objectName := fmt.Sprintf("%s/receipts/wise-receipt-%d.pdf", subject, transferID)

	bucket := f.storageClient.Bucket(f.config.AttachmentsBucket)
	if err := gcp.UploadBytes(ctx, bucket, objectName, "application/pdf", receipt); err != nil {
		return "", err
	}
	return gcp.PublicURL(f.config.AttachmentsBucket, objectName), nil
}

// mergeWithOriginal produces the combined original+receipt artifact. The whole
// step is best effort: a document whose original cannot be fetched or parsed
// still gets its receipt attached, just not a combined PDF.
func (f *ReceiptWebhookFunction) mergeWithOriginal(ctx context.Context, logCtx *slog.Logger, doc *models.WorkflowFile, receipt []byte) mergeOutcome {
	if doc.FileURL == "" {
		logCtx.Info("Workflow file has no original document. Skipping merge.")
		return mergeOutcome{}
	}
	if isMergedArtifactURL(doc.FileURL) {
		logCtx.Info("Original is already a merged artifact. Skipping merge.", "fileUrl", doc.FileURL)
		return mergeOutcome{}
	}

	original, err := f.fetchOriginal(ctx, doc.FileURL)
	if err != nil {
		logCtx.Warn("Could not download original document. Skipping merge.", "error", err, "fileUrl", doc.FileURL)
		return mergeOutcome{}
	}

	merged, err := mergePDFs(original, receipt)
	if err != nil {
		logCtx.Warn("Could not merge original with receipt. Skipping merge.", "error", err)
		return mergeOutcome{}
	}

	fileName := doc.FileName
	if fileName == "" {
		fileName = "document.pdf"
	}
	objectName := fmt.Sprintf("%s%s-%s", mergedObjectPrefix, doc.ID, fileName)
	bucket := f.storageClient.Bucket(f.config.DocumentsBucket)
	if err := gcp.UploadBytes(ctx, bucket, objectName, "application/pdf", merged); err != nil {
		logCtx.Warn("Could not upload merged artifact. Skipping merge.", "error", err)
		return mergeOutcome{}
	}

	url := gcp.PublicURL(f.config.DocumentsBucket, objectName)
	logCtx.Info("Merged artifact stored.", "mergedUrl", url)
	return mergeOutcome{Merged: true, URL: url}
}

// fetchOriginal resolves the original document's bytes. URLs matching our own
// buckets' public shape are read through the storage client, which respects
// access control and skips the extra network hop; anything else is fetched
// over plain HTTP.
func (f *ReceiptWebhookFunction) fetchOriginal(ctx context.Context, fileURL string) ([]byte, error) {
	if bucketName, objectName, ok := gcp.ParsePublicURL(fileURL); ok {
		return gcp.ReadObject(ctx, f.storageClient, bucketName, objectName)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", fileURL, err)
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", fileURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch of %s returned status %d", fileURL, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

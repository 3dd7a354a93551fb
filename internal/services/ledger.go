package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/hwinelin/backoffice-functions/internal/models"
	"github.com/shopspring/decimal"
	"google.golang.org/api/iterator"
)

// paymentProviderName is used to pick the bank account the expense is paid
// from.
const paymentProviderName = "Wise"

// defaultLedgerCategory is used when a document category has no mapping.
const defaultLedgerCategory = "Services"

// ledgerCategoryByDocCategory maps the free-text document category to the
// fixed set of ledger categories used in reporting.
var ledgerCategoryByDocCategory = map[string]string{
	"software":     "Software",
	"subscription": "Software",
	"saas":         "Software",
	"travel":       "Travel",
	"hotel":        "Travel",
	"flights":      "Travel",
	"office":       "Office",
	"supplies":     "Office",
	"rent":         "Office",
	"equipment":    "Equipment",
	"hardware":     "Equipment",
	"marketing":    "Marketing",
	"advertising":  "Marketing",
}

// mapLedgerCategory resolves a document's free-text category to a ledger
// category, case-insensitively, defaulting to Services.
func mapLedgerCategory(docCategory string) string {
	if mapped, ok := ledgerCategoryByDocCategory[strings.ToLower(strings.TrimSpace(docCategory))]; ok {
		return mapped
	}
	return defaultLedgerCategory
}

// deriveVATRate computes the VAT percentage from the tax/subtotal ratio,
// rounded to two decimals. Zero when either amount is missing.
func deriveVATRate(taxAmount, subTotal float64) float64 {
	if taxAmount <= 0 || subTotal <= 0 {
		return 0
	}
	rate := decimal.NewFromFloat(taxAmount).
		Div(decimal.NewFromFloat(subTotal)).
		Mul(decimal.NewFromInt(100)).
		Round(2)
	f, _ := rate.Float64()
	return f
}

// roundAmount normalizes a monetary amount to two decimals.
func roundAmount(amount float64) float64 {
	f, _ := decimal.NewFromFloat(amount).Round(2).Float64()
	return f
}

// matchBankAccount picks the first account whose name mentions the provider,
// case-insensitively. Nil when nothing matches.
func matchBankAccount(accounts []models.BankAccount, provider string) *models.BankAccount {
	target := strings.ToLower(provider)
	for i := range accounts {
		if strings.Contains(strings.ToLower(accounts[i].Name), target) {
			return &accounts[i]
		}
	}
	return nil
}

// reconcileLedger performs the guarded ledger write. Every failure in here is
// logged and swallowed: the receipt attachment is the primary success
// criterion, the ledger entry a secondary best-effort side effect.
func (f *ReceiptWebhookFunction) reconcileLedger(ctx context.Context, logCtx *slog.Logger, doc *models.WorkflowFile, merge mergeOutcome) {
	existing, err := f.findLedgerEntry(ctx, doc)
	if err != nil {
		logCtx.Error("Ledger existence check failed. Skipping ledger write.", "error", err)
		return
	}

	if existing != nil {
		if !merge.Merged {
			logCtx.Info("Ledger entry already exists.", "ledgerEntryId", existing.ID)
			return
		}
		entryRef := f.firestoreClient.Collection(f.config.LedgerCollection).Doc(existing.ID)
		if _, err := entryRef.Update(ctx, []firestore.Update{{Path: "invoiceFileUrl", Value: merge.URL}}); err != nil {
			logCtx.Error("Failed to repoint existing ledger entry at merged artifact", "error", err, "ledgerEntryId", existing.ID)
			return
		}
		logCtx.Info("Existing ledger entry repointed at merged artifact.", "ledgerEntryId", existing.ID)
		return
	}

	if doc.CompanyID == "" || doc.TotalAmount == 0 {
		logCtx.Info("Workflow file lacks company or total amount. Skipping ledger entry.")
		return
	}

	invoiceURL := doc.FileURL
	if merge.Merged {
		invoiceURL = merge.URL
	}

	entry := models.FinancialTransaction{
		DocumentFileID: doc.ID,
		InvoiceFileURL: invoiceURL,
		Vendor:         doc.Vendor,
		Description:    fmt.Sprintf("Wise payment for %s", doc.FileName),
		Amount:         roundAmount(doc.TotalAmount),
		VATRate:        deriveVATRate(doc.TaxAmount, doc.SubTotal),
		Category:       mapLedgerCategory(doc.Category),
		Currency:       doc.Currency,
		CompanyID:      doc.CompanyID,
		ProjectID:      doc.ProjectID,
		BankAccountID:  f.matchProviderBankAccount(ctx, logCtx),
		Date:           time.Now(),
		CreatedAt:      time.Now(),
	}

	entryRef, _, err := f.firestoreClient.Collection(f.config.LedgerCollection).Add(ctx, entry)
	if err != nil {
		logCtx.Error("Failed to insert ledger entry", "error", err)
		return
	}
	logCtx.Info("Ledger entry created.", "ledgerEntryId", entryRef.ID, "amount", entry.Amount, "category", entry.Category)
}

// findLedgerEntry looks for an entry already referencing this document. The
// documentFileId match is authoritative; the invoice-URL match is a legacy
// fallback for entries created before the foreign key existed.
func (f *ReceiptWebhookFunction) findLedgerEntry(ctx context.Context, doc *models.WorkflowFile) (*models.FinancialTransaction, error) {
	collection := f.firestoreClient.Collection(f.config.LedgerCollection)

	docs, err := collection.Where("documentFileId", "==", doc.ID).Limit(1).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger by document id: %w", err)
	}
	if len(docs) == 0 && doc.FileURL != "" {
		docs, err = collection.Where("invoiceFileUrl", "==", doc.FileURL).Limit(1).Documents(ctx).GetAll()
		if err != nil {
			return nil, fmt.Errorf("failed to query ledger by invoice url: %w", err)
		}
	}
	if len(docs) == 0 {
		return nil, nil
	}

	var entry models.FinancialTransaction
	if err := docs[0].DataTo(&entry); err != nil {
		return nil, fmt.Errorf("failed to decode ledger entry %s: %w", docs[0].Ref.ID, err)
	}
	entry.ID = docs[0].Ref.ID
	return &entry, nil
}

// matchProviderBankAccount scans the bank accounts for one matching the
// payment provider. An empty id leaves the entry unattributed.
func (f *ReceiptWebhookFunction) matchProviderBankAccount(ctx context.Context, logCtx *slog.Logger) string {
	it := f.firestoreClient.Collection(f.config.BankAccountsCollection).Documents(ctx)
	defer it.Stop()

	var accounts []models.BankAccount
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			logCtx.Warn("Failed to list bank accounts. Leaving ledger entry unattributed.", "error", err)
			return ""
		}
		var account models.BankAccount
		if err := snap.DataTo(&account); err != nil {
			logCtx.Warn("Skipping undecodable bank account", "error", err, "bankAccountId", snap.Ref.ID)
			continue
		}
		account.ID = snap.Ref.ID
		accounts = append(accounts, account)
	}

	match := matchBankAccount(accounts, paymentProviderName)
	if match == nil {
		return ""
	}
	return match.ID
}

package models

import "time"

// WorkflowFile is the master record for a business document (invoice, bill,
// receipt) moving through the payment workflow. Rows are created by the upload
// flow; the reconciliation pipeline only mutates the payment-linkage fields.
type WorkflowFile struct {
	ID             string    `firestore:"-"`
	FileName       string    `firestore:"fileName,omitempty"`
	FileURL        string    `firestore:"fileUrl,omitempty"`
	WiseTransferID int64     `firestore:"wiseTransferId,omitempty"`
	ReceiptURL     string    `firestore:"receiptUrl,omitempty"`
	Vendor         string    `firestore:"vendor,omitempty"`
	SubTotal       float64   `firestore:"subTotal,omitempty"`
	TaxAmount      float64   `firestore:"taxAmount,omitempty"`
	TotalAmount    float64   `firestore:"totalAmount,omitempty"`
	Currency       string    `firestore:"currency,omitempty"`
	Category       string    `firestore:"category,omitempty"`
	CompanyID      string    `firestore:"companyId,omitempty"`
	ProjectID      string    `firestore:"projectId,omitempty"`
	Status         string    `firestore:"status,omitempty"`
	UpdatedAt      time.Time `firestore:"updatedAt,omitempty"`
}

// FinancialTransaction is a ledger entry recording one expense against a
// workflow file. At most one entry exists per document; the pipeline enforces
// this with a pre-insert existence check keyed on DocumentFileID.
type FinancialTransaction struct {
	ID             string    `firestore:"-"`
	DocumentFileID string    `firestore:"documentFileId,omitempty"`
	InvoiceFileURL string    `firestore:"invoiceFileUrl,omitempty"`
	Vendor         string    `firestore:"vendor,omitempty"`
	Description    string    `firestore:"description,omitempty"`
	Amount         float64   `firestore:"amount,omitempty"`
	VATRate        float64   `firestore:"vatRate,omitempty"`
	Category       string    `firestore:"category,omitempty"`
	Currency       string    `firestore:"currency,omitempty"`
	CompanyID      string    `firestore:"companyId,omitempty"`
	ProjectID      string    `firestore:"projectId,omitempty"`
	BankAccountID  string    `firestore:"bankAccountId,omitempty"`
	Date           time.Time `firestore:"date,omitempty"`
	CreatedAt      time.Time `firestore:"createdAt,omitempty"`
}

// BankAccount is a company bank account the ledger writer can attribute an
// expense to. Matching against the payment provider is by name, best effort.
type BankAccount struct {
	ID       string `firestore:"-"`
	Name     string `firestore:"name,omitempty"`
	Currency string `firestore:"currency,omitempty"`
}

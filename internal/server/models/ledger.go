package models

import "time"

// LedgerEntry is one line in a group's shared account book. Amount is in
// minor currency units (cents); positive for spending, negative for refunds.
type LedgerEntry struct {
	ID        string
	GroupID   string
	PaidBy    string
	Amount    int64
	Category  string
	Memo      string
	SpentAt   time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// LedgerSummary aggregates a group's spending over a period.
type LedgerSummary struct {
	Total      int64
	ByCategory map[string]int64
}

// AttachmentStatus tracks the lifecycle of a receipt upload.
type AttachmentStatus string

const (
	AttachmentPending  AttachmentStatus = "pending"
	AttachmentUploaded AttachmentStatus = "uploaded"
)

// Attachment is a receipt image stored in object storage, at most one per
// ledger entry. StorageKey is the S3 object key; the URL handed to clients
// is always presigned and short-lived.
type Attachment struct {
	ID           string
	EntryID      string
	StorageKey   string
	UploadStatus AttachmentStatus
	CreatedAt    time.Time
}

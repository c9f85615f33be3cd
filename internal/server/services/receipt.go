package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/grouptab/grouptab/internal/server/auth"
	sc "github.com/grouptab/grouptab/internal/server/config"
	"github.com/grouptab/grouptab/internal/server/models"
	"github.com/grouptab/grouptab/internal/server/repositories/repomanager"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

const presignValidity = 15 * time.Minute

// ReceiptService stores receipt images for ledger entries in S3-compatible
// object storage. The server never proxies bytes: clients upload and
// download through short-lived presigned URLs.
type ReceiptService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	ledger      *LedgerService
	config      *sc.Config
}

func NewReceiptService(db *sql.DB, m repomanager.RepositoryManager, ledger *LedgerService, cfg *sc.Config) *ReceiptService {
	return &ReceiptService{db: db, repomanager: m, ledger: ledger, config: cfg}
}

// randomStorageKey buckets objects by date to keep listings manageable.
func randomStorageKey() string {
	d := time.Now()
	return fmt.Sprintf("receipts/%d/%d/%d/%v", d.Year(), d.Month(), d.Day(), uuid.New())
}

func (s *ReceiptService) getPresignClient() (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(context.Background(),
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,     // MINIO_ROOT_USER
			s.config.S3RootPassword, // MINIO_ROOT_PASSWORD
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
	})

	return newS3PresignClient(client), nil
}

func (s *ReceiptService) presignedPutURL(ctx context.Context, key string) (string, error) {
	pc, err := s.getPresignClient()
	if err != nil {
		return "", err
	}
	req, err := presignPutObject(pc, ctx, &s3.PutObjectInput{
		Bucket: &s.config.S3Bucket,
		Key:    &key,
	}, s3.WithPresignExpires(presignValidity))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}

func (s *ReceiptService) presignedGetURL(ctx context.Context, key string) (string, error) {
	pc, err := s.getPresignClient()
	if err != nil {
		return "", err
	}
	req, err := presignGetObject(pc, ctx, &s3.GetObjectInput{
		Bucket: &s.config.S3Bucket,
		Key:    &key,
	}, s3.WithPresignExpires(presignValidity))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}

// CreateUpload records a pending attachment for the entry and returns a
// presigned PUT URL. At most one receipt per entry; a second request yields
// common.ErrAlreadyExists. Write rights follow the entry (payer or owner).
func (s *ReceiptService) CreateUpload(ctx context.Context, p auth.Principal, groupID, entryID string) (*models.Attachment, string, error) {
	if _, err := s.ledger.loadEntryForWrite(ctx, p, groupID, entryID); err != nil {
		return nil, "", err
	}

	a := &models.Attachment{
		EntryID:      entryID,
		StorageKey:   randomStorageKey(),
		UploadStatus: models.AttachmentPending,
	}
	a, err := s.repomanager.Attachments(s.db).Create(ctx, a)
	if err != nil {
		return nil, "", err
	}

	url, err := s.presignedPutURL(ctx, a.StorageKey)
	if err != nil {
		return nil, "", err
	}
	return a, url, nil
}

// ConfirmUpload marks the entry's attachment as uploaded.
func (s *ReceiptService) ConfirmUpload(ctx context.Context, p auth.Principal, groupID, entryID string) error {
	if _, err := s.ledger.loadEntryForWrite(ctx, p, groupID, entryID); err != nil {
		return err
	}
	a, err := s.repomanager.Attachments(s.db).GetByEntry(ctx, entryID)
	if err != nil {
		return err
	}
	return s.repomanager.Attachments(s.db).MarkUploaded(ctx, a.ID)
}

// GetURL returns a presigned GET URL for the entry's receipt. Any group
// member may view receipts; the entry must belong to the addressed group.
func (s *ReceiptService) GetURL(ctx context.Context, p auth.Principal, groupID, entryID string) (string, error) {
	if _, err := s.ledger.loadEntryForRead(ctx, p, groupID, entryID); err != nil {
		return "", err
	}
	a, err := s.repomanager.Attachments(s.db).GetByEntry(ctx, entryID)
	if err != nil {
		return "", err
	}
	return s.presignedGetURL(ctx, a.StorageKey)
}

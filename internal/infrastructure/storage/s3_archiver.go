// Package storage provides the S3-backed document archive for converted
// budgets.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/ddmpress/backend/internal/application/cascade"
	infraconfig "github.com/ddmpress/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Ensure S3DocumentArchiver implements DocumentArchiver
var _ cascade.DocumentArchiver = (*S3DocumentArchiver)(nil)

// S3DocumentArchiver stores conversion records in an S3-compatible bucket
// (AWS S3, MinIO, RustFS, etc.)
type S3DocumentArchiver struct {
	client *s3.Client
	bucket string
	logger *zap.Logger
}

// NewS3DocumentArchiver creates an archiver from storage configuration
func NewS3DocumentArchiver(cfg *infraconfig.StorageConfig, logger *zap.Logger) (*S3DocumentArchiver, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
		return nil, errors.New("storage credentials are required")
	}

	endpoint := cfg.Endpoint
	if endpoint != "" {
		if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
			endpoint = "https://" + endpoint
		}
		if _, err := url.Parse(endpoint); err != nil {
			return nil, fmt.Errorf("invalid storage endpoint: %w", err)
		}
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	if logger == nil {
		logger = zap.NewNop()
	}

	return &S3DocumentArchiver{
		client: client,
		bucket: cfg.Bucket,
		logger: logger,
	}, nil
}

// EnsureBucket creates the bucket if it doesn't exist.
// Call this during application startup.
func (a *S3DocumentArchiver) EnsureBucket(ctx context.Context) error {
	_, err := a.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(a.bucket),
	})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	a.logger.Info("creating storage bucket", zap.String("bucket", a.bucket))
	_, err = a.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(a.bucket),
	})
	if err != nil {
		var alreadyOwned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &alreadyOwned) {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}

	return nil
}

// conversionRecord is the JSON document archived for each converted budget
type conversionRecord struct {
	BudgetID      string    `json:"budget_id"`
	ClientID      string    `json:"client_id"`
	ClientCreated bool      `json:"client_created"`
	ClientNumber  int64     `json:"client_number,omitempty"`
	ProjectID     string    `json:"project_id"`
	OrderID       string    `json:"order_id"`
	InvoiceIDs    []string  `json:"invoice_ids"`
	Attempts      int       `json:"attempts"`
	ConvertedAt   time.Time `json:"converted_at"`
}

// ArchiveBudget writes a JSON record of the conversion to the bucket. The
// key is derived from the budget ID, so replays overwrite the same object.
func (a *S3DocumentArchiver) ArchiveBudget(ctx context.Context, result *cascade.Result) error {
	record := conversionRecord{
		BudgetID:      result.BudgetID.String(),
		ClientID:      result.ClientID.String(),
		ClientCreated: result.ClientCreated,
		ClientNumber:  result.ClientNumber,
		ProjectID:     result.ProjectID.String(),
		OrderID:       result.OrderID.String(),
		InvoiceIDs:    make([]string, 0, len(result.InvoiceIDs)),
		Attempts:      result.Attempts,
		ConvertedAt:   time.Now().UTC(),
	}
	for _, id := range result.InvoiceIDs {
		record.InvoiceIDs = append(record.InvoiceIDs, id.String())
	}

	payload, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal conversion record: %w", err)
	}

	key := fmt.Sprintf("conversions/%s.json", result.BudgetID)
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(payload),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to archive conversion record: %w", err)
	}

	a.logger.Debug("conversion record archived",
		zap.String("bucket", a.bucket),
		zap.String("key", key),
	)
	return nil
}

// ObjectExists checks if an object exists in the bucket
func (a *S3DocumentArchiver) ObjectExists(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, errors.New("storage key is required")
	}

	_, err := a.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *types.NotFound
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &notFound) || errors.As(err, &noSuchKey) {
			return false, nil
		}
		// Some S3-compatible services report not-found differently
		if strings.Contains(err.Error(), "NotFound") || strings.Contains(err.Error(), "NoSuchKey") {
			return false, nil
		}
		return false, fmt.Errorf("failed to check object existence: %w", err)
	}

	return true, nil
}

// GetBucket returns the bucket name
func (a *S3DocumentArchiver) GetBucket() string {
	return a.bucket
}

package storage

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	aws_config "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"pondy/classifieds/internal/config"
)

// IArchiveStorage defines the interface for tombstone archival. Hard-deleted
// listings are uploaded here before the document is removed from Mongo.
type IArchiveStorage interface {
	ArchiveListing(ctx context.Context, ppcID int64, document []byte) (string, error)
}

// s3Archive implements IArchiveStorage.
type s3Archive struct {
	cfg      *config.Config
	s3Client *s3.Client
}

// NewS3Archive creates a new S3-backed archive storage service.
func NewS3Archive(cfg *config.Config) (IArchiveStorage, error) {
	awsCfg, err := aws_config.LoadDefaultConfig(context.TODO(),
		aws_config.WithRegion(cfg.AwsRegion),
		// Static credentials from config for simplicity; prefer IAM roles in production.
		aws_config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AwsAccessKeyID,
			cfg.AwsSecretAccessKey,
			"", // session token
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &s3Archive{
		cfg:      cfg,
		s3Client: s3.NewFromConfig(awsCfg),
	}, nil
}

// ArchiveListing uploads the listing document JSON and returns the object key.
func (s *s3Archive) ArchiveListing(ctx context.Context, ppcID int64, document []byte) (string, error) {
	objectKey := fmt.Sprintf("%s/%d/%d.json", s.cfg.ArchivePrefix, ppcID, time.Now().UTC().Unix())

	_, err := s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.AwsS3Bucket),
		Key:         aws.String(objectKey),
		Body:        bytes.NewReader(document),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to archive listing %d to S3 key %s: %w", ppcID, objectKey, err)
	}

	log.Printf("Archived listing %d to S3 key %s", ppcID, objectKey)
	return objectKey, nil
}

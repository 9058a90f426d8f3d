package archive

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	appconfig "photo-exchange-bot/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// S3Archiver copies verified visitor photos into a bucket
type S3Archiver struct {
	client *s3.Client
	bucket string
}

// NewS3Archiver builds an S3 client from the archive configuration.
// Static keys and a custom endpoint are optional.
func NewS3Archiver(ctx context.Context, cfg appconfig.AWSConfig) (*S3Archiver, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Archiver{client: client, bucket: cfg.S3Bucket}, nil
}

// Archive uploads one photo under visitors/{visitor_id}/
func (a *S3Archiver) Archive(ctx context.Context, visitorID int64, photoID string, data []byte) error {
	contentType := http.DetectContentType(data)
	key := objectKey(visitorID, contentType)

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		Metadata:    map[string]string{"telegram-file-id": photoID},
	})
	if err != nil {
		return fmt.Errorf("failed to upload photo: %w", err)
	}

	log.Debug().Int64("visitor_id", visitorID).Str("key", key).Msg("Visitor photo archived")
	return nil
}

func objectKey(visitorID int64, contentType string) string {
	ext := ".jpg"
	switch contentType {
	case "image/png":
		ext = ".png"
	case "image/webp":
		ext = ".webp"
	}
	return fmt.Sprintf("visitors/%d/%s%s", visitorID, uuid.New().String(), ext)
}

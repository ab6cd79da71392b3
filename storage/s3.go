package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/raushankrgupta/flyer-price-scraper/models"
)

// S3Archive keeps every daily snapshot under snapshots/<date>.json
type S3Archive struct {
	Client  *s3.Client
	Presign *s3.PresignClient
	Bucket  string
}

// NewS3Archive initializes the S3 client from the default credential chain
func NewS3Archive(ctx context.Context, region, bucket string) (*S3Archive, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config, %w", err)
	}

	client := s3.NewFromConfig(cfg)
	log.Println("S3 Client Initialized")
	return &S3Archive{
		Client:  client,
		Presign: s3.NewPresignClient(client),
		Bucket:  bucket,
	}, nil
}

// ObjectKey returns where the snapshot for date is archived
func ObjectKey(date string) string {
	return fmt.Sprintf("snapshots/%s.json", date)
}

func (a *S3Archive) Save(ctx context.Context, snapshot *models.DailySnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}

	_, err = a.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.Bucket),
		Key:         aws.String(ObjectKey(snapshot.Date)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload snapshot to S3: %w", err)
	}
	log.Printf("[Storage] archived snapshot to s3://%s/%s", a.Bucket, ObjectKey(snapshot.Date))
	return nil
}

// PresignedURL returns a one-hour download link for the archived snapshot
func (a *S3Archive) PresignedURL(ctx context.Context, date string) (string, error) {
	request, err := a.Presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.Bucket),
		Key:    aws.String(ObjectKey(date)),
	}, s3.WithPresignExpires(1*time.Hour))
	if err != nil {
		return "", fmt.Errorf("failed to sign request: %w", err)
	}
	return request.URL, nil
}

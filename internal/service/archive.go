package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/pageza/alchemorsel-planner/backend/config"
	"github.com/pageza/alchemorsel-planner/backend/internal/planner"
)

// ObjectPutter is the part of the S3 client the archive needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// URLPresigner creates time-limited download links.
type URLPresigner interface {
	GeneratePresignedURL(ctx context.Context, objectKey string, expiration time.Duration) (string, error)
}

// S3Archive copies finished plans to an S3 bucket as JSON documents.
type S3Archive struct {
	client    ObjectPutter
	presigner URLPresigner
	bucket    string
	prefix    string
	expiry    time.Duration
}

// NewS3Archive creates an archive backed by the configured S3 client.
func NewS3Archive(s3cfg *config.S3Config, cfg config.ArchiveConfig) *S3Archive {
	return newS3Archive(s3cfg.Client, s3cfg, s3cfg.BucketName, cfg.Prefix, cfg.PresignExpiry)
}

func newS3Archive(client ObjectPutter, presigner URLPresigner, bucket, prefix string, expiry time.Duration) *S3Archive {
	if expiry <= 0 {
		expiry = 15 * time.Minute
	}
	return &S3Archive{
		client:    client,
		presigner: presigner,
		bucket:    bucket,
		prefix:    prefix,
		expiry:    expiry,
	}
}

// Key returns the object key for a plan.
func (a *S3Archive) Key(userID, planID uuid.UUID) string {
	return path.Join(a.prefix, userID.String(), planID.String()+".json")
}

// Put uploads the plan and returns its object key.
func (a *S3Archive) Put(ctx context.Context, userID, planID uuid.UUID, res *planner.PlanResult) (string, error) {
	body, err := json.Marshal(res)
	if err != nil {
		return "", fmt.Errorf("failed to encode plan: %w", err)
	}
	key := a.Key(userID, planID)
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
		Metadata: map[string]string{
			"plan-status": res.Solve.Status,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload plan %s: %w", planID, err)
	}
	return key, nil
}

// URL returns a presigned download link for an archived plan.
func (a *S3Archive) URL(ctx context.Context, key string) (string, error) {
	if a.presigner == nil {
		return "", fmt.Errorf("archive has no presigner")
	}
	return a.presigner.GeneratePresignedURL(ctx, key, a.expiry)
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"go-media-backend/internal/model"
	"go-media-backend/internal/util"
)

// S3Config describes an S3 compatible bucket.
type S3Config struct {
	Bucket        string
	Region        string
	Endpoint      string
	PublicBaseURL string
	UsePathStyle  bool
}

// objectAPI is the slice of the S3 client the store needs besides uploads.
type objectAPI interface {
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type uploadAPI interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// S3Store keeps uploaded media in an S3 compatible bucket and addresses it by
// public URL.
type S3Store struct {
	uploader uploadAPI
	client   objectAPI
	bucket   string
	baseURL  string
}

func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("s3 storage: bucket is required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint := strings.TrimSpace(cfg.Endpoint); endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	uploader := manager.NewUploader(client, func(u *manager.Uploader) {
		u.PartSize = 8 * 1024 * 1024
		u.LeavePartsOnError = false
	})

	baseURL := strings.TrimSuffix(strings.TrimSpace(cfg.PublicBaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL(cfg)
	}

	return &S3Store{
		uploader: uploader,
		client:   client,
		bucket:   cfg.Bucket,
		baseURL:  baseURL,
	}, nil
}

// Upload streams file to key and returns its public URL.
func (s *S3Store) Upload(ctx context.Context, key string, file model.LocalFile) (model.StoredObject, error) {
	key = strings.TrimLeft(key, "/")
	if key == "" {
		return model.StoredObject{}, fmt.Errorf("s3 storage: empty key")
	}

	body, err := os.Open(file.Path)
	if err != nil {
		return model.StoredObject{}, fmt.Errorf("s3 storage open %s: %w", file.Path, err)
	}
	defer body.Close()

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   body,
		ACL:    s3types.ObjectCannedACLPublicRead,
	}
	if file.ContentType != "" {
		input.ContentType = aws.String(file.ContentType)
	}
	if name, err := util.SanitizeFilename(file.Name); err == nil {
		input.ContentDisposition = aws.String(fmt.Sprintf("inline; filename=%q", name))
	}

	if _, err := s.uploader.Upload(ctx, input); err != nil {
		return model.StoredObject{}, fmt.Errorf("s3 storage upload %s: %w", key, err)
	}

	return model.StoredObject{URL: s.baseURL + "/" + key, Key: key}, nil
}

// Delete removes the object behind objectURL. URLs outside this store are
// rejected rather than guessed at.
func (s *S3Store) Delete(ctx context.Context, objectURL string) error {
	key, err := s.keyFor(objectURL)
	if err != nil {
		return err
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 storage delete %s: %w", key, err)
	}
	return nil
}

func (s *S3Store) keyFor(objectURL string) (string, error) {
	prefix := s.baseURL + "/"
	if !strings.HasPrefix(objectURL, prefix) {
		return "", fmt.Errorf("s3 storage: %q is not served by bucket %s", objectURL, s.bucket)
	}

	key, err := url.PathUnescape(strings.TrimPrefix(objectURL, prefix))
	if err != nil {
		return "", fmt.Errorf("s3 storage: bad object url: %w", err)
	}
	if key == "" {
		return "", errors.New("s3 storage: empty key")
	}
	return key, nil
}

func defaultBaseURL(cfg S3Config) string {
	if endpoint := strings.TrimSuffix(strings.TrimSpace(cfg.Endpoint), "/"); endpoint != "" {
		return endpoint + "/" + cfg.Bucket
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
}

package mirror

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3API is the subset of *s3.Client the store calls.
type S3API interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string // optional, e.g. MinIO
	Prefix          string
	PathStyle       bool
	AccessKeyID     string // optional, default credential chain otherwise
	SecretAccessKey string
	SessionToken    string
	BatchSize       int
}

// S3Store writes each mirror document as <prefix><key>.json. S3 has no
// multi-object transaction, so Commit reports the keys it failed to write
// through *PartialCommitError. The object's LastModified is the server-side
// write time.
type S3Store struct {
	client S3API
	bucket string
	prefix string
	batch  int
}

// NewS3Store builds an S3-backed mirror from cfg.
func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 mirror bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return NewS3StoreWithClient(client, cfg.Bucket, cfg.Prefix, cfg.BatchSize), nil
}

func NewS3StoreWithClient(client S3API, bucket, prefix string, batch int) *S3Store {
	if prefix == "" {
		prefix = "properties/"
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	if batch <= 0 {
		batch = DefaultBatchSize
	}
	return &S3Store{client: client, bucket: bucket, prefix: prefix, batch: batch}
}

func (s *S3Store) objectKey(key string) string {
	return s.prefix + key + ".json"
}

func (s *S3Store) MaxBatch() int { return s.batch }

func (s *S3Store) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err == nil {
		return true, nil
	}
	var notFound *types.NotFound
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &notFound) || errors.As(err, &noSuchKey) {
		return false, nil
	}
	return false, err
}

func (s *S3Store) Commit(ctx context.Context, docs []Document) error {
	if len(docs) > s.batch {
		return fmt.Errorf("batch of %d exceeds limit %d", len(docs), s.batch)
	}
	var (
		failed []string
		errs   []error
	)
	for _, d := range docs {
		body, err := json.Marshal(d.Data)
		if err == nil {
			_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
				Bucket:      aws.String(s.bucket),
				Key:         aws.String(s.objectKey(d.Key)),
				Body:        bytes.NewReader(body),
				ContentType: aws.String("application/json"),
				Metadata:    map[string]string{"firestore-synced": "true"},
			})
		}
		if err != nil {
			failed = append(failed, d.Key)
			errs = append(errs, fmt.Errorf("%s: %w", d.Key, err))
		}
	}
	if len(failed) > 0 {
		return &PartialCommitError{Failed: failed, Err: errors.Join(errs...)}
	}
	return nil
}

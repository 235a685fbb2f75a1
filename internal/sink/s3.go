package sink

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"acsgen/internal/acs/assemble"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config holds explicit construction parameters for the S3 sink.
// Credentials come from the default AWS credential chain.
type S3Config struct {
	Bucket   string
	Prefix   string
	Region   string
	Endpoint string // optional, enables S3-compatible stores such as MinIO
	RunID    string // attached as object metadata when set
}

// S3 stores CSVs as objects in one bucket. Keys are <prefix>/<name>.
type S3 struct {
	client *s3.Client
	cfg    S3Config
}

// NewS3 builds an S3 sink from cfg.
func NewS3(ctx context.Context, cfg S3Config) (*S3, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 sink: bucket is required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3{client: client, cfg: cfg}, nil
}

// WriteTable implements Sink.
func (s *S3) WriteTable(ctx context.Context, state string, tbl *assemble.Table) error {
	name := tableName(state, tbl)
	data, err := encodeTable(tbl)
	if err != nil {
		return errWrite(name, err)
	}
	if err := s.put(ctx, name, data); err != nil {
		return errWrite(name, err)
	}
	return nil
}

// WriteIndex implements Sink.
func (s *S3) WriteIndex(ctx context.Context, entries []IndexEntry) error {
	data, err := encodeIndex(entries)
	if err != nil {
		return errWrite(indexName, err)
	}
	if err := s.put(ctx, indexName, data); err != nil {
		return errWrite(indexName, err)
	}
	return nil
}

func (s *S3) put(ctx context.Context, name string, data []byte) error {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(path.Join(s.cfg.Prefix, name)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("text/csv"),
	}
	if s.cfg.RunID != "" {
		input.Metadata = map[string]string{"run-id": s.cfg.RunID}
	}
	_, err := s.client.PutObject(ctx, input)
	return err
}

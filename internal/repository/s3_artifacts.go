package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	domrepo "SmartRental/internal/domain/repository"
	"SmartRental/pkg/codec"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3API is the part of the S3 client the artifact source uses.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Artifacts reads artifacts from s3://bucket/prefix/<name>.json or .cbor.
type S3Artifacts struct {
	client S3API
	bucket string
	prefix string
}

// NewS3Artifacts builds a client from the default AWS credential chain.
func NewS3Artifacts(ctx context.Context, bucket, prefix, region string) (*S3Artifacts, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewS3ArtifactsWithClient(s3.NewFromConfig(cfg), bucket, prefix), nil
}

func NewS3ArtifactsWithClient(client S3API, bucket, prefix string) *S3Artifacts {
	return &S3Artifacts{client: client, bucket: bucket, prefix: prefix}
}

func (s *S3Artifacts) Name() string { return "s3" }

func (s *S3Artifacts) Fetch(ctx context.Context, name string) ([]byte, string, error) {
	for _, ext := range []string{".json", ".cbor"} {
		key := path.Join(s.prefix, name+ext)
		out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			var nsk *types.NoSuchKey
			if errors.As(err, &nsk) {
				continue
			}
			return nil, "", fmt.Errorf("get s3://%s/%s: %w", s.bucket, key, err)
		}
		data, err := io.ReadAll(out.Body)
		out.Body.Close()
		if err != nil {
			return nil, "", fmt.Errorf("read s3://%s/%s: %w", s.bucket, key, err)
		}
		return data, codec.FormatFor(key), nil
	}
	return nil, "", fmt.Errorf("%s in s3://%s/%s: %w", name, s.bucket, s.prefix, domrepo.ErrArtifactNotFound)
}

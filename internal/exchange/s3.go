package exchange

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// Archiver uploads export files to S3-compatible object storage
type Archiver struct {
	client *s3.Client
	bucket string
}

type ArchiveResult struct {
	Key      string
	Size     int64
	Checksum string
}

// NewArchiver creates an archiver for an S3-compatible endpoint
func NewArchiver(endpoint, region, bucket, accessKeyID, secretAccessKey string) (*Archiver, error) {
	customResolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		if service == s3.ServiceID {
			return aws.Endpoint{
				URL:           endpoint,
				SigningRegion: region,
			}, nil
		}
		return aws.Endpoint{}, fmt.Errorf("unknown endpoint requested")
	})

	cfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithEndpointResolverWithOptions(customResolver),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKeyID, secretAccessKey, "",
		)),
		awsconfig.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})

	return &Archiver{client: client, bucket: bucket}, nil
}

// ArchiveExport uploads one export under exports/{patientID}/{timestamp}.{format}
func (a *Archiver) ArchiveExport(ctx context.Context, patientID, format string, reader io.Reader) (*ArchiveResult, error) {
	contentType, err := ContentType(format)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("exports/%s/%s.%s", patientID, time.Now().UTC().Format("20060102T150405Z"), format)

	putInput := &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        reader,
		ContentType: aws.String(contentType),
		ACL:         types.ObjectCannedACLPrivate,
	}
	result, err := a.client.PutObject(ctx, putInput)
	if err != nil {
		return nil, fmt.Errorf("failed to upload export: %w", err)
	}

	headOutput, err := a.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object info: %w", err)
	}

	var size int64
	if headOutput.ContentLength != nil {
		size = *headOutput.ContentLength
	}

	return &ArchiveResult{
		Key:      key,
		Size:     size,
		Checksum: aws.ToString(result.ETag),
	}, nil
}

// ListArchives lists archived exports for one patient
func (a *Archiver) ListArchives(ctx context.Context, patientID string) ([]string, error) {
	prefix := fmt.Sprintf("exports/%s/", patientID)
	result, err := a.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(a.bucket),
		Prefix: aws.String(prefix),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list archives: %w", err)
	}

	var keys []string
	for _, obj := range result.Contents {
		keys = append(keys, aws.ToString(obj.Key))
	}
	return keys, nil
}

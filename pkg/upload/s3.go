package upload

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Resolver serves stored documents straight from S3 through presigned GET
// URLs. Objects are keyed <prefix><type>/<file>.
//
//	client := upload.NewS3Client(upload.S3Options{Region: "ap-southeast-3"})
//	resolver := upload.NewS3Resolver(client, "jamaah-docs", "uploads/")
type S3Resolver struct {
	presign   *s3.PresignClient
	bucket    string
	prefix    string
	urlExpiry time.Duration
}

// S3Options configures NewS3Client.
type S3Options struct {
	Region string

	// Endpoint overrides the S3 endpoint, for S3-compatible stores.
	Endpoint string

	// UsePathStyle addresses buckets as <endpoint>/<bucket>.
	UsePathStyle bool

	// Credentials default to EnvCredentials.
	Credentials aws.CredentialsProvider
}

// NewS3Client builds an S3 client without loading shared AWS config.
func NewS3Client(opts S3Options) *s3.Client {
	creds := opts.Credentials
	if creds == nil {
		creds = EnvCredentials()
	}
	return s3.New(s3.Options{
		Region:       opts.Region,
		Credentials:  aws.NewCredentialsCache(creds),
		UsePathStyle: opts.UsePathStyle,
	}, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
	})
}

// EnvCredentials reads static credentials from AWS_ACCESS_KEY_ID,
// AWS_SECRET_ACCESS_KEY and AWS_SESSION_TOKEN.
func EnvCredentials() aws.CredentialsProvider {
	return aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
		id := os.Getenv("AWS_ACCESS_KEY_ID")
		secret := os.Getenv("AWS_SECRET_ACCESS_KEY")
		if id == "" || secret == "" {
			return aws.Credentials{}, fmt.Errorf("upload: AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set")
		}
		return aws.Credentials{
			AccessKeyID:     id,
			SecretAccessKey: secret,
			SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
			Source:          "docwidget-env",
		}, nil
	})
}

// NewS3Resolver creates a resolver with a 15 minute URL expiry.
func NewS3Resolver(client *s3.Client, bucket, prefix string) *S3Resolver {
	return &S3Resolver{
		presign:   s3.NewPresignClient(client),
		bucket:    bucket,
		prefix:    prefix,
		urlExpiry: 15 * time.Minute,
	}
}

// WithURLExpiry sets how long presigned URLs are valid.
func (r *S3Resolver) WithURLExpiry(d time.Duration) *S3Resolver {
	if d > 0 {
		r.urlExpiry = d
	}
	return r
}

// Key returns the object key for a stored document.
func (r *S3Resolver) Key(filename, docType string) string {
	return r.prefix + docType + "/" + filename
}

// FileURL implements Resolver. Previews are served inline, downloads as
// attachments.
func (r *S3Resolver) FileURL(ctx context.Context, filename, docType string, action Action) (string, error) {
	disposition := "inline"
	if action == ActionDownload {
		disposition = fmt.Sprintf("attachment; filename=%q", filename)
	}

	req, err := r.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket:                     aws.String(r.bucket),
		Key:                        aws.String(r.Key(filename, docType)),
		ResponseContentDisposition: aws.String(disposition),
	}, s3.WithPresignExpires(r.urlExpiry))
	if err != nil {
		return "", fmt.Errorf("upload: presign %s: %w", r.Key(filename, docType), err)
	}
	return req.URL, nil
}

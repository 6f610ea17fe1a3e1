package spaces

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// Client archives uploaded documents to DigitalOcean Spaces through the
// S3-compatible API
type Client struct {
	s3Client *s3.S3
	bucket   string
	endpoint string
}

// Config holds configuration for the Spaces client
type Config struct {
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	Endpoint  string
}

// Enabled reports whether the config carries enough to talk to Spaces
func (c Config) Enabled() bool {
	return c.AccessKey != "" && c.SecretKey != "" && c.Bucket != "" && c.Endpoint != ""
}

// NewClient creates a new Spaces client
func NewClient(config Config) (*Client, error) {
	sess, err := session.NewSession(&aws.Config{
		Credentials: credentials.NewStaticCredentials(
			config.AccessKey,
			config.SecretKey,
			"",
		),
		Endpoint:         aws.String(config.Endpoint),
		Region:           aws.String(config.Region),
		S3ForcePathStyle: aws.Bool(false),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Spaces session: %w", err)
	}

	return &Client{
		s3Client: s3.New(sess),
		bucket:   config.Bucket,
		endpoint: config.Endpoint,
	}, nil
}

// UploadBytes stores an object and returns its public URL
func (c *Client) UploadBytes(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := c.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ACL:         aws.String("private"),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}

	return c.FileURL(key), nil
}

// DeleteFile removes an object
func (c *Client) DeleteFile(ctx context.Context, key string) error {
	_, err := c.s3Client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// FileURL returns the bucket URL for a key
func (c *Client) FileURL(key string) string {
	return fmt.Sprintf("https://%s.%s/%s", c.bucket, c.endpoint, key)
}

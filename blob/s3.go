package blob

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-site-backend/errs"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// PutObjectAPI is the slice of the S3 client the uploader needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Options configures an S3Uploader.
type Options struct {
	Bucket string
	Region string
	// Endpoint points at an S3-compatible service (R2, MinIO); empty uses AWS.
	Endpoint string
	// PublicBaseURL is prepended to object keys to build public URLs. When
	// empty the virtual-hosted AWS URL is used.
	PublicBaseURL string
	// Prefix is the key prefix under which thumbnails are stored.
	Prefix string
}

// S3Uploader writes thumbnails to a public bucket and returns their URL.
type S3Uploader struct {
	client PutObjectAPI
	opts   Options
	logger zerolog.Logger
	newID  func() string
}

// NewS3Uploader loads the default AWS credential chain and builds an uploader.
func NewS3Uploader(ctx context.Context, opts Options) (*S3Uploader, error) {
	if opts.Bucket == "" {
		return nil, errs.NewServiceConfigError("thumbnail upload", "S3_BUCKET")
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(opts.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewS3UploaderWithClient(client, opts), nil
}

// NewS3UploaderWithClient builds an uploader around an existing client.
func NewS3UploaderWithClient(client PutObjectAPI, opts Options) *S3Uploader {
	if opts.Prefix == "" {
		opts.Prefix = "thumbnails"
	}
	return &S3Uploader{
		client: client,
		opts:   opts,
		logger: log.With().Str("component", "s3Uploader").Str("bucket", opts.Bucket).Logger(),
		newID:  func() string { return uuid.NewString()[:8] },
	}
}

// Upload stores data under a collision-free key derived from fileName and
// returns the object's public URL.
func (u *S3Uploader) Upload(ctx context.Context, data []byte, fileName string) (string, error) {
	key := u.objectKey(fileName)
	contentType := mimetype.Detect(data).String()

	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.opts.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
		CacheControl:  aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		u.logger.Error().Err(err).Str("key", key).Msg("Failed to put object")
		return "", errs.NewUploadFailedError(fileName, err)
	}

	publicURL := u.PublicURL(key)
	u.logger.Info().Str("key", key).Int("bytes", len(data)).Msg("Stored thumbnail")
	return publicURL, nil
}

// PublicURL builds the public URL for an object key.
func (u *S3Uploader) PublicURL(key string) string {
	escaped := (&url.URL{Path: key}).EscapedPath()
	if u.opts.PublicBaseURL != "" {
		return strings.TrimSuffix(u.opts.PublicBaseURL, "/") + "/" + escaped
	}
	if u.opts.Region == "" || u.opts.Region == "us-east-1" {
		return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", u.opts.Bucket, escaped)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.opts.Bucket, u.opts.Region, escaped)
}

// objectKey turns "My Shot.PNG" into "thumbnails/my-shot-1a2b3c4d.png".
func (u *S3Uploader) objectKey(fileName string) string {
	base := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	ext := strings.ToLower(path.Ext(base))
	stem := sanitize(strings.TrimSuffix(base, path.Ext(base)))
	if stem == "" {
		stem = "thumbnail"
	}
	return path.Join(u.opts.Prefix, stem+"-"+u.newID()+ext)
}

func sanitize(s string) string {
	var b strings.Builder
	lastDash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastDash = false
		case !lastDash && b.Len() > 0:
			b.WriteByte('-')
			lastDash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

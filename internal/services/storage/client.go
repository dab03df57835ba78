package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/mlenoir/vidvault/internal/models"
	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

// ErrNotFound means the requested object does not exist
var ErrNotFound = errors.New("object not found")

const (
	// Presigned URLs expire after one hour; clients must not assume
	// issued URLs stay valid past that window.
	presignTTL = time.Hour

	// Cached signed GET URLs are reused well inside their validity
	urlCacheTTL = 45 * time.Minute
)

// Client wraps an S3-compatible backend for one resolved provider
type Client struct {
	s3       *s3.Client
	presign  *s3.PresignClient
	bucket   string
	provider models.Provider
	urls     *gocache.Cache
	logger   *logrus.Logger
}

// NewClient builds an object-store client from a resolved provider
// configuration. The urls cache is shared across requests by the factory
// so repeated stream-URL calls within a cache window reuse one signature.
func NewClient(pc ProviderConfig, urls *gocache.Cache, logger *logrus.Logger) *Client {
	awsCfg := aws.Config{
		Region:      pc.Region,
		Credentials: credentials.NewStaticCredentialsProvider(pc.AccessKeyID, pc.SecretAccessKey, ""),
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(pc.Endpoint)
	})

	return &Client{
		s3:       s3Client,
		presign:  s3.NewPresignClient(s3Client),
		bucket:   pc.Bucket,
		provider: pc.Provider,
		urls:     urls,
		logger:   logger,
	}
}

// Provider returns which backend this client talks to
func (c *Client) Provider() models.Provider {
	return c.provider
}

// List returns every object under the prefix, following pagination
func (c *Client) List(ctx context.Context, prefix string) ([]models.StorageObject, error) {
	var objects []models.StorageObject

	paginator := s3.NewListObjectsV2Paginator(c.s3, &s3.ListObjectsV2Input{
		Bucket: aws.String(c.bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", err)
		}
		for _, item := range page.Contents {
			obj := models.StorageObject{Key: aws.ToString(item.Key)}
			if item.Size != nil {
				obj.Size = *item.Size
			}
			if item.LastModified != nil {
				obj.LastModified = *item.LastModified
			}
			objects = append(objects, obj)
		}
	}

	c.logger.WithFields(logrus.Fields{
		"provider": c.provider,
		"prefix":   prefix,
		"count":    len(objects),
	}).Debug("Listed storage objects")
	return objects, nil
}

// SignedGetURL returns a time-limited URL granting GET on one object
func (c *Client) SignedGetURL(ctx context.Context, key string) (string, error) {
	cacheKey := string(c.provider) + "|" + key
	if cached, ok := c.urls.Get(cacheKey); ok {
		return cached.(string), nil
	}

	req, err := c.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(presignTTL))
	if err != nil {
		return "", fmt.Errorf("failed to presign get for %q: %w", key, err)
	}

	c.urls.Set(cacheKey, req.URL, urlCacheTTL)
	return req.URL, nil
}

// SignedPutURL returns a time-limited URL granting PUT on one object
func (c *Client) SignedPutURL(ctx context.Context, key, contentType string, metadata map[string]string) (string, error) {
	req, err := c.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
		Metadata:    metadata,
	}, s3.WithPresignExpires(presignTTL))
	if err != nil {
		return "", fmt.Errorf("failed to presign put for %q: %w", key, err)
	}
	return req.URL, nil
}

// Delete removes one object
func (c *Client) Delete(ctx context.Context, key string) error {
	_, err := c.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %q: %w", key, err)
	}
	return nil
}

// GetObject reads one object's full body
func (c *Client) GetObject(ctx context.Context, key string) ([]byte, error) {
	out, err := c.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get %q: %w", key, err)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", key, err)
	}
	return body, nil
}

// PutObject writes one object wholesale
func (c *Client) PutObject(ctx context.Context, key string, body []byte, contentType string) error {
	_, err := c.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to put %q: %w", key, err)
	}
	return nil
}

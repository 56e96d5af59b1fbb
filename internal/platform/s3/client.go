package s3

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/imamik/tzchain/internal/provisioning"
)

// Client wraps the S3 client for Hetzner Object Storage.
type Client struct {
	s3        *s3.Client
	region    string
	endpoint  *url.URL
	pathStyle bool
}

// NewClient creates a new S3 client for Hetzner Object Storage. Hetzner
// uses virtual-hosted style; pathStyle selects path-style addressing for
// stores such as MinIO.
func NewClient(endpoint, region, accessKey, secretKey string, pathStyle bool) (*Client, error) {
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid object storage endpoint %q", endpoint)
	}

	cfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")),
		config.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = pathStyle
	})

	return &Client{s3: client, region: region, endpoint: u, pathStyle: pathStyle}, nil
}

// CreatePublicBucket creates a bucket and attaches a policy allowing anyone
// to read its objects. An existing bucket owned by us is reused.
func (c *Client) CreatePublicBucket(ctx context.Context, bucketName string) error {
	if err := c.CreateBucket(ctx, bucketName); err != nil {
		return err
	}

	policy, err := publicReadPolicy(bucketName)
	if err != nil {
		return err
	}
	_, err = c.s3.PutBucketPolicy(ctx, &s3.PutBucketPolicyInput{
		Bucket: aws.String(bucketName),
		Policy: aws.String(policy),
	})
	if err != nil {
		return fmt.Errorf("failed to set public read policy on bucket %s: %w", bucketName, err)
	}
	return nil
}

// CreateBucket creates a new S3 bucket.
// Returns nil if the bucket already exists and is owned by us.
func (c *Client) CreateBucket(ctx context.Context, bucketName string) error {
	_, err := c.s3.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(bucketName),
	})
	if err != nil {
		// Check if bucket already exists (that's okay)
		if isBucketAlreadyOwnedByYou(err) {
			return nil
		}
		return fmt.Errorf("failed to create bucket %s: %w", bucketName, err)
	}
	return nil
}

// StageObject uploads the local file obj.Path to obj.Bucket under obj.Key
// and returns the object's public URL.
func (c *Client) StageObject(ctx context.Context, obj provisioning.Object) (string, error) {
	f, err := os.Open(obj.Path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", obj.Path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", obj.Path, err)
	}

	input := &s3.PutObjectInput{
		Bucket:        aws.String(obj.Bucket),
		Key:           aws.String(obj.Key),
		Body:          f,
		ContentLength: aws.Int64(info.Size()),
	}
	if obj.ContentType != "" {
		input.ContentType = aws.String(obj.ContentType)
	}
	if obj.PublicRead {
		input.ACL = types.ObjectCannedACLPublicRead
	}

	if _, err := c.s3.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("failed to put object %s in bucket %s: %w", obj.Key, obj.Bucket, err)
	}
	return c.ObjectURL(obj.Bucket, obj.Key), nil
}

// ObjectURL returns the public URL of an object.
func (c *Client) ObjectURL(bucketName, key string) string {
	u := *c.endpoint
	key = strings.TrimPrefix(key, "/")
	if c.pathStyle {
		u.Path = "/" + bucketName + "/" + key
	} else {
		u.Host = bucketName + "." + u.Host
		u.Path = "/" + key
	}
	return u.String()
}

type policyDocument struct {
	Version   string            `json:"Version"`
	Statement []policyStatement `json:"Statement"`
}

type policyStatement struct {
	Sid       string `json:"Sid"`
	Effect    string `json:"Effect"`
	Principal string `json:"Principal"`
	Action    string `json:"Action"`
	Resource  string `json:"Resource"`
}

func publicReadPolicy(bucketName string) (string, error) {
	doc := policyDocument{
		Version: "2012-10-17",
		Statement: []policyStatement{{
			Sid:       "PublicRead",
			Effect:    "Allow",
			Principal: "*",
			Action:    "s3:GetObject",
			Resource:  fmt.Sprintf("arn:aws:s3:::%s/*", bucketName),
		}},
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to encode bucket policy: %w", err)
	}
	return string(data), nil
}

// isBucketAlreadyOwnedByYou checks if the error indicates the bucket exists and is owned by us.
func isBucketAlreadyOwnedByYou(err error) bool {
	if err == nil {
		return false
	}

	// Check for typed S3 errors first
	var baoby *types.BucketAlreadyOwnedByYou
	if errors.As(err, &baoby) {
		return true
	}

	var bae *types.BucketAlreadyExists
	if errors.As(err, &bae) {
		return true
	}

	// Fall back to API error code checking for S3-compatible services
	// that may not return the exact SDK error types
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		return code == "BucketAlreadyOwnedByYou" || code == "BucketAlreadyExists"
	}

	return false
}

// utils/storage.go
package utils

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gosimple/slug"
)

// AllowedVideoTypes are the content types accepted for UGC uploads.
var AllowedVideoTypes = []string{"video/mp4", "video/webm", "video/quicktime", "video/x-msvideo"}

// AllowedVideoExtensions mirrors AllowedVideoTypes at the filename level.
var AllowedVideoExtensions = []string{".mp4", ".webm", ".mov", ".avi"}

// UploadURLTTL is how long a presigned PUT stays valid.
const UploadURLTTL = time.Hour

// StorageConfig carries the R2 connection settings read from the
// environment by main.
type StorageConfig struct {
	AccountID       string
	AccessKeyID     string
	AccessKeySecret string
	Bucket          string
	PublicBaseURL   string
}

// Storage wraps the R2 (S3-compatible) client. Constructed once in main and
// injected into the services that need it.
type Storage struct {
	client    *s3.Client
	presigner *s3.PresignClient
	bucket    string
	publicURL string
}

// PresignedUpload is what the upload-url endpoint hands back to clients.
type PresignedUpload struct {
	UploadURL string `json:"uploadUrl"`
	VideoKey  string `json:"videoKey"`
	PublicURL string `json:"publicUrl"`
}

func NewStorage(ctx context.Context, sc StorageConfig) (*Storage, error) {
	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", sc.AccountID)
	publicURL := sc.PublicBaseURL
	if publicURL == "" {
		publicURL = endpoint
	}

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion("auto"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			sc.AccessKeyID, sc.AccessKeySecret, "",
		)),
		config.WithEndpointResolver(aws.EndpointResolverFunc(
			func(service, region string) (aws.Endpoint, error) {
				return aws.Endpoint{URL: endpoint}, nil
			}),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load R2 config: %w", err)
	}

	client := s3.NewFromConfig(cfg)
	return &Storage{
		client:    client,
		presigner: s3.NewPresignClient(client),
		bucket:    sc.Bucket,
		publicURL: strings.TrimSuffix(publicURL, "/"),
	}, nil
}

// VideoKey builds the object key for a customer's video:
// ugc/<shop>/<customer>/<unixts>_<sanitized-filename>
func VideoKey(filename, customerID, shopDomain string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(filename))
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	return fmt.Sprintf("ugc/%s/%s/%d_%s%s", shopDomain, customerID, now.Unix(), slug.Make(base), ext)
}

// ValidVideoType reports whether contentType is an accepted video type.
func ValidVideoType(contentType string) bool {
	for _, t := range AllowedVideoTypes {
		if t == contentType {
			return true
		}
	}
	return false
}

// ValidVideoExtension reports whether filename carries an accepted extension.
func ValidVideoExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, e := range AllowedVideoExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

// PresignUpload returns a presigned PUT URL scoped to a fresh video key.
func (s *Storage) PresignUpload(ctx context.Context, filename, contentType, customerID, shopDomain string) (*PresignedUpload, error) {
	if !ValidVideoType(contentType) {
		return nil, fmt.Errorf("invalid file type %q, allowed: %s", contentType, strings.Join(AllowedVideoTypes, ", "))
	}

	key := VideoKey(filename, customerID, shopDomain, time.Now())
	req, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
		Metadata: map[string]string{
			"customer-id": customerID,
			"shop-domain": shopDomain,
		},
	}, s3.WithPresignExpires(UploadURLTTL))
	if err != nil {
		return nil, fmt.Errorf("failed to presign upload: %w", err)
	}

	return &PresignedUpload{
		UploadURL: req.URL,
		VideoKey:  key,
		PublicURL: s.PublicURL(key),
	}, nil
}

// UploadVideo pushes a multipart file straight to the bucket. Fallback for
// clients that cannot PUT to storage directly.
func (s *Storage) UploadVideo(ctx context.Context, fileHeader *multipart.FileHeader, customerID, shopDomain string) (string, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, file); err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	key := VideoKey(fileHeader.Filename, customerID, shopDomain, time.Now())
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        buf,
		ContentType: aws.String(fileHeader.Header.Get("Content-Type")),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to R2: %w", err)
	}
	return key, nil
}

// PublicURL returns the CDN-facing URL for a stored object.
func (s *Storage) PublicURL(key string) string {
	return fmt.Sprintf("%s/%s", s.publicURL, key)
}

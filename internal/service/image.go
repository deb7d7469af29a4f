package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/pageza/foodgram-v2/backend/config"
)

// ImageService stores recipe images submitted as base64 data URIs.
// With a bucket configured the decoded bytes go to S3; otherwise they
// land under the local media directory.
type ImageService struct {
	client   *s3.Client
	bucket   string
	mediaDir string
}

// NewImageService creates an ImageService from the application config.
func NewImageService(ctx context.Context, cfg *config.Config) (*ImageService, error) {
	svc := &ImageService{
		bucket:   cfg.S3Bucket,
		mediaDir: cfg.MediaDir,
	}

	if cfg.S3Bucket != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(cfg.S3Region),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		svc.client = s3.NewFromConfig(awsCfg)
	}

	return svc, nil
}

// StoreRecipeImage persists a "data:image/...;base64," payload and
// returns its URL. Anything else (an empty value or an already-stored
// URL) passes through unchanged.
func (s *ImageService) StoreRecipeImage(ctx context.Context, image string) (string, error) {
	if !strings.HasPrefix(image, "data:") {
		return image, nil
	}

	data, ext, err := decodeDataURI(image)
	if err != nil {
		return "", validationErr("invalid image payload")
	}

	fileName := fmt.Sprintf("recipes/%s.%s", uuid.New().String(), ext)

	if s.client != nil {
		return s.uploadToS3(ctx, data, fileName, "image/"+ext)
	}
	return s.writeLocal(data, fileName)
}

func (s *ImageService) uploadToS3(ctx context.Context, data []byte, fileName, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(fileName),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.bucket, fileName), nil
}

func (s *ImageService) writeLocal(data []byte, fileName string) (string, error) {
	path := filepath.Join(s.mediaDir, filepath.FromSlash(fileName))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return "/media/" + fileName, nil
}

// decodeDataURI splits "data:image/<ext>;base64,<payload>" into the
// decoded bytes and the extension.
func decodeDataURI(uri string) ([]byte, string, error) {
	header, payload, found := strings.Cut(uri, ",")
	if !found {
		return nil, "", fmt.Errorf("malformed data URI")
	}

	mediaType := strings.TrimPrefix(header, "data:")
	mediaType = strings.TrimSuffix(mediaType, ";base64")
	ext := strings.TrimPrefix(mediaType, "image/")
	if ext == "" || ext == mediaType {
		return nil, "", fmt.Errorf("unsupported media type %q", mediaType)
	}
	if ext == "jpeg" {
		ext = "jpg"
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", err
	}
	return data, ext, nil
}

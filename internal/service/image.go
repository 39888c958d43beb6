package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/logging"
)

// recipeImageDir is the key prefix of every uploaded recipe image.
const recipeImageDir = "recipes/images"

var dataURIRe = regexp.MustCompile(`^data:image/([a-zA-Z0-9.+-]+);base64,(.+)$`)

// ImageStore persists image bytes and returns the URL clients should use.
type ImageStore interface {
	Save(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, url string) error
}

// ImageService decodes uploaded recipe images and hands them to a store.
type ImageService struct {
	store ImageStore
}

func NewImageService(store ImageStore) *ImageService {
	return &ImageService{store: store}
}

// DecodeDataURI splits a data:image/<ext>;base64,<payload> value into the
// decoded bytes and the extension.
func DecodeDataURI(value string) ([]byte, string, error) {
	m := dataURIRe.FindStringSubmatch(strings.TrimSpace(value))
	if m == nil {
		return nil, "", NewFieldValidationError(map[string]string{
			"image": "expected a base64 data URI like data:image/png;base64,...",
		})
	}
	data, err := base64.StdEncoding.DecodeString(m[2])
	if err != nil || len(data) == 0 {
		return nil, "", NewFieldValidationError(map[string]string{"image": "invalid base64 payload"})
	}
	return data, strings.ToLower(m[1]), nil
}

// SaveDataURI stores an image given as a data URI.
func (s *ImageService) SaveDataURI(ctx context.Context, value string) (string, error) {
	data, ext, err := DecodeDataURI(value)
	if err != nil {
		return "", err
	}
	return s.Save(ctx, data, ext)
}

// Save stores data under a fresh name with extension ext.
func (s *ImageService) Save(ctx context.Context, data []byte, ext string) (string, error) {
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	if ext == "" {
		return "", NewFieldValidationError(map[string]string{"image": "image type is missing"})
	}
	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		if byExt := mime.TypeByExtension("." + ext); strings.HasPrefix(byExt, "image/") {
			contentType = byExt
		} else {
			contentType = "image/" + ext
		}
	}

	key := path.Join(recipeImageDir, uuid.NewString()+"."+ext)
	url, err := s.store.Save(ctx, key, data, contentType)
	if err != nil {
		return "", NewInternalError(fmt.Errorf("store image: %w", err))
	}
	return url, nil
}

// Delete removes a previously stored image. Failures are logged only.
func (s *ImageService) Delete(ctx context.Context, url string) {
	if url == "" {
		return
	}
	if err := s.store.Delete(ctx, url); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("image", url).Msg("failed to delete image")
	}
}

// LocalImageStore writes images below a media root served at a URL prefix.
type LocalImageStore struct {
	root    string
	baseURL string
}

func NewLocalImageStore(root, baseURL string) *LocalImageStore {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &LocalImageStore{root: root, baseURL: baseURL}
}

func (l *LocalImageStore) Save(_ context.Context, key string, data []byte, _ string) (string, error) {
	dest := filepath.Join(l.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return "", err
	}
	return l.baseURL + key, nil
}

func (l *LocalImageStore) Delete(_ context.Context, url string) error {
	key, ok := strings.CutPrefix(url, l.baseURL)
	if !ok {
		return nil
	}
	err := os.Remove(filepath.Join(l.root, filepath.FromSlash(key)))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// S3ImageStore uploads images to an S3 bucket.
type S3ImageStore struct {
	s3Config *config.S3Config
}

func NewS3ImageStore(s3Config *config.S3Config) *S3ImageStore {
	return &S3ImageStore{s3Config: s3Config}
}

func (s *S3ImageStore) Save(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}
	url := s.s3Config.PublicURL(key)
	logging.Ctx(ctx).Debug().Str("url", url).Msg("uploaded image to S3")
	return url, nil
}

func (s *S3ImageStore) Delete(ctx context.Context, url string) error {
	key, ok := strings.CutPrefix(url, s.s3Config.PublicURL(""))
	if !ok {
		return nil
	}
	_, err := s.s3Config.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.s3Config.BucketName),
		Key:    aws.String(key),
	})
	return err
}

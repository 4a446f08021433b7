package storage

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"schooladmin_go/config"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
)

// PhotoStore keeps student photos in S3 under a per-student prefix.
type PhotoStore struct {
	client *s3.S3
	bucket string
	region string
}

func NewPhotoStore() (*PhotoStore, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(config.AppConfig.AWSRegion),
		Credentials: credentials.NewStaticCredentials(
			config.AppConfig.AWSAccessKeyID,
			config.AppConfig.AWSSecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("aws session: %w", err)
	}

	return &PhotoStore{
		client: s3.New(sess),
		bucket: config.AppConfig.S3BucketName,
		region: config.AppConfig.AWSRegion,
	}, nil
}

// Upload stores the photo and returns its public URL. Re-uploads get a
// fresh key; callers delete the previous photo themselves.
func (ps *PhotoStore) Upload(file *multipart.FileHeader, studentID uint) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	body, err := io.ReadAll(src)
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}

	key := photoKey(studentID, file.Filename, time.Now())
	_, err = ps.client.PutObject(&s3.PutObjectInput{
		Bucket:      aws.String(ps.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentTypeFor(file.Filename)),
		ACL:         aws.String("public-read"),
	})
	if err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", ps.bucket, ps.region, key), nil
}

// Delete removes a previously uploaded photo given its public URL.
func (ps *PhotoStore) Delete(photoURL string) error {
	key := keyFromURL(photoURL)
	if key == "" {
		return fmt.Errorf("not a photo store URL: %s", photoURL)
	}

	_, err := ps.client.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(ps.bucket),
		Key:    aws.String(key),
	})
	return err
}

// photoKey builds the object key: students/photos/<id>/<yyyy>/<mm>/<uuid>.<ext>
func photoKey(studentID uint, filename string, now time.Time) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if ext == "" {
		ext = "jpg"
	}
	return fmt.Sprintf("students/photos/%d/%d/%02d/%s.%s",
		studentID, now.Year(), now.Month(), uuid.New().String()[:16], ext)
}

func contentTypeFor(filename string) string {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), ".")) {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}

func keyFromURL(url string) string {
	_, key, ok := strings.Cut(url, ".amazonaws.com/")
	if !ok {
		return ""
	}
	return key
}

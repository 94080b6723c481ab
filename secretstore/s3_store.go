package secretstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/sinugotshifhiwa4/pw-automation-framework-codebase/internal/debug"
	"github.com/sinugotshifhiwa4/pw-automation-framework-codebase/internal/misc"
)

const ctxTimeout = 10 * time.Second

// S3Store implements Store against an S3-compatible backend (MinIO). The
// path passed to the Store methods becomes the object key, below the
// optional key prefix. Serialization is per object key and in-process only,
// same as FileStore; S3 offers no cross-writer locking either.
type S3Store struct {
	client     *minio.Client
	bucketName string
	keyPrefix  string
	locks      *lockTable
}

// NewS3Store initializes an S3Store and verifies the bucket exists.
func NewS3Store(config S3Config) (*S3Store, error) {
	client, err := minio.New(config.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.AccessKeyID, config.SecretAccessKey, ""),
		Secure: config.UseSSL,
		Region: config.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	store := &S3Store{
		client:     client,
		bucketName: config.Bucket,
		keyPrefix:  config.KeyPrefix,
		locks:      newLockTable(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), ctxTimeout)
	defer cancel()

	exists, err := client.BucketExists(ctx, config.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", config.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, config.Bucket, minio.MakeBucketOptions{Region: config.Region}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", config.Bucket, err)
		}
	}

	return store, nil
}

func (s *S3Store) objectKey(path string) string {
	key := strings.TrimPrefix(path, "/")
	if s.keyPrefix != "" {
		key = strings.TrimSuffix(s.keyPrefix, "/") + "/" + key
	}
	return key
}

func (s *S3Store) readObject(ctx context.Context, key string) (string, bool, error) {
	obj, err := s.client.GetObject(ctx, s.bucketName, key, minio.GetObjectOptions{})
	if err != nil {
		if errResp := minio.ToErrorResponse(err); errResp.Code == "NoSuchKey" {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get object %s: %w", key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if errResp := minio.ToErrorResponse(err); errResp.Code == "NoSuchKey" {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read object %s: %w", key, err)
	}
	return string(data), true, nil
}

func (s *S3Store) writeObject(ctx context.Context, key, content string) error {
	reader := bytes.NewReader([]byte(content))
	_, err := s.client.PutObject(ctx, s.bucketName, key, reader, int64(reader.Len()), minio.PutObjectOptions{
		ContentType: "text/plain",
	})
	if err != nil {
		return fmt.Errorf("failed to put object %s: %w", key, err)
	}
	debug.Print("wrote %d bytes to s3://%s/%s\n", reader.Len(), s.bucketName, key)
	return nil
}

// GetValue implements Store.
func (s *S3Store) GetValue(path, key string) (string, bool, error) {
	objKey := s.objectKey(path)

	release := s.locks.acquire(objKey)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), ctxTimeout)
	defer cancel()

	content, found, err := s.readObject(ctx, objKey)
	if err != nil || !found {
		return "", false, err
	}

	value, found := lookupValue(parseEnvFile(content), key)
	return value, found, nil
}

// StoreValue implements Store.
func (s *S3Store) StoreValue(path, key, value string, opts StoreOptions) (bool, error) {
	if !misc.IsValidKeyName(key) {
		return false, fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}

	objKey := s.objectKey(path)

	release := s.locks.acquire(objKey)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), ctxTimeout)
	defer cancel()

	content, _, err := s.readObject(ctx, objKey)
	if err != nil {
		return false, err
	}

	lines := parseEnvFile(content)

	if opts.SkipIfExists {
		if existing, found := lookupValue(lines, key); found && existing != "" {
			return false, nil
		}
	}

	lines = upsertValue(lines, key, value)

	if err := s.writeObject(ctx, objKey, renderEnvFile(lines)); err != nil {
		return false, err
	}
	return true, nil
}

// EnsureFileExists implements Store.
func (s *S3Store) EnsureFileExists(path string) error {
	objKey := s.objectKey(path)

	release := s.locks.acquire(objKey)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), ctxTimeout)
	defer cancel()

	_, err := s.client.StatObject(ctx, s.bucketName, objKey, minio.StatObjectOptions{})
	if err == nil {
		return nil
	}
	if errResp := minio.ToErrorResponse(err); errResp.Code != "NoSuchKey" {
		return fmt.Errorf("failed to stat object %s: %w", objKey, err)
	}

	return s.writeObject(ctx, objKey, "")
}

// Ping implements Store.
func (s *S3Store) Ping() error {
	ctx, cancel := context.WithTimeout(context.Background(), ctxTimeout)
	defer cancel()

	exists, err := s.client.BucketExists(ctx, s.bucketName)
	if err != nil {
		return fmt.Errorf("s3 connectivity check failed: %w", err)
	}
	if !exists {
		return fmt.Errorf("bucket %s does not exist", s.bucketName)
	}
	return nil
}

// Close implements Store. The MinIO client holds no persistent connections.
func (s *S3Store) Close() error { return nil }

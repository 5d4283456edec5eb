package minio

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/minio/minio-go/v7"

	"github.com/turtacn/coalition-intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/coalition-intelligence/pkg/errors"
)

var (
	ErrObjectNotFound = errors.New(errors.CodeNotFound, "object not found")
	ErrUploadFailed   = errors.New(errors.CodeStorageError, "upload failed")
	ErrDownloadFailed = errors.New(errors.CodeStorageError, "download failed")
)

// ObjectInfo describes a stored dataset file.
type ObjectInfo struct {
	Name string
	Size int64
	ETag string
}

func contentType(name string) string {
	switch {
	case strings.HasSuffix(name, ".csv"):
		return "text/csv"
	case strings.HasSuffix(name, ".json"):
		return "application/json"
	case strings.HasSuffix(name, ".yaml"), strings.HasSuffix(name, ".yml"):
		return "application/yaml"
	default:
		return "application/octet-stream"
	}
}

func isNotFound(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound
}

// Put uploads a dataset file under name.
func (c *MinIOClient) Put(ctx context.Context, name string, r io.Reader, size int64) (*ObjectInfo, error) {
	if c.isClosed() {
		return nil, ErrMinIOClientClosed
	}
	key := c.objectKey(name)
	info, err := c.client.PutObject(ctx, c.config.Bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType(name),
	})
	if err != nil {
		return nil, ErrUploadFailed.WithCause(err).WithDetail(key)
	}
	c.logger.Debug("Object uploaded",
		logging.String("bucket", c.config.Bucket),
		logging.String("key", key),
		logging.Int64("size", info.Size))
	return &ObjectInfo{Name: name, Size: info.Size, ETag: info.ETag}, nil
}

// Open returns a reader over the named dataset file. A missing object is
// reported as CodeNotFound.
func (c *MinIOClient) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if c.isClosed() {
		return nil, ErrMinIOClientClosed
	}
	key := c.objectKey(name)
	obj, err := c.client.GetObject(ctx, c.config.Bucket, key, minio.GetObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return nil, ErrObjectNotFound.WithCause(err).WithDetail(key)
		}
		return nil, ErrDownloadFailed.WithCause(err).WithDetail(key)
	}
	// GetObject is lazy; Stat surfaces a missing key before parsing starts.
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		if isNotFound(err) {
			return nil, ErrObjectNotFound.WithCause(err).WithDetail(key)
		}
		return nil, ErrDownloadFailed.WithCause(err).WithDetail(key)
	}
	return obj, nil
}

// Exists reports whether the named dataset file is stored.
func (c *MinIOClient) Exists(ctx context.Context, name string) (bool, error) {
	if c.isClosed() {
		return false, ErrMinIOClientClosed
	}
	_, err := c.client.StatObject(ctx, c.config.Bucket, c.objectKey(name), minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, errors.Wrap(err, errors.CodeStorageError, "failed to stat object").WithDetail(name)
}

// List returns the stored dataset files below the configured prefix, with
// names relative to it.
func (c *MinIOClient) List(ctx context.Context) ([]ObjectInfo, error) {
	if c.isClosed() {
		return nil, ErrMinIOClientClosed
	}
	var out []ObjectInfo
	for obj := range c.client.ListObjects(ctx, c.config.Bucket, minio.ListObjectsOptions{Prefix: c.config.Prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, errors.Wrap(obj.Err, errors.CodeStorageError, "failed to list objects")
		}
		out = append(out, ObjectInfo{
			Name: strings.TrimPrefix(obj.Key, c.config.Prefix),
			Size: obj.Size,
			ETag: obj.ETag,
		})
	}
	return out, nil
}

//Personal.AI order the ending

package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/fileupload/service/internal/logging"
)

const (
	// sniffLen is how many leading bytes are inspected to pick a Content-Type.
	sniffLen = 3072
	// partSize bounds the buffer of an upload whose length is unknown.
	partSize = 16 << 20
)

// MinioStorage implements Storage using a MinIO (or any S3-compatible) backend.
// The root location is a key prefix inside the bucket; an empty prefix is the
// bucket itself.
type MinioStorage struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewMinioStorage creates a MinIO client for bucket. No request is made until Init.
func NewMinioStorage(endpoint, accessKey, secretKey, bucket, prefix string, useSSL bool) (*MinioStorage, error) {
	if strings.TrimSpace(bucket) == "" {
		return nil, &Error{Op: "open", Err: fmt.Errorf("bucket name can not be empty")}
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	return &MinioStorage{
		client: client,
		bucket: bucket,
		prefix: cleanPrefix(prefix),
	}, nil
}

// Init creates the bucket when it does not exist yet.
func (s *MinioStorage) Init(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return &Error{Op: "init", Name: s.bucket, Err: fmt.Errorf("check bucket existence: %w", err)}
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return &Error{Op: "init", Name: s.bucket, Err: fmt.Errorf("create bucket: %w", err)}
		}
		logging.Info("storage: created bucket", "bucket", s.bucket)
	}
	return nil
}

// Store uploads content under the prefix. Seekable content (multipart form
// files are) is sent with its length; anything else streams as a multipart
// upload in partSize chunks.
func (s *MinioStorage) Store(ctx context.Context, name string, content io.Reader) error {
	size, err := remaining(content)
	if err != nil {
		return &Error{Op: "store", Name: name, Err: err}
	}
	body, head, err := nonEmpty(content, sniffLen)
	if err != nil {
		return &Error{Op: "store", Name: name, Err: err}
	}
	if strings.TrimSpace(name) == "" {
		return &Error{Op: "store", Name: name, Err: ErrEmptyFilename}
	}

	key, err := containedKey(s.prefix, name)
	if err != nil {
		return &Error{Op: "store", Name: name, Err: err}
	}

	_, err = s.client.PutObject(ctx, s.bucket, key, body, size, minio.PutObjectOptions{
		ContentType: mimetype.Detect(head).String(),
		PartSize:    partSize,
	})
	if err != nil {
		return &Error{Op: "store", Name: name, Err: fmt.Errorf("put object %q: %w", key, err)}
	}
	return nil
}

// LoadAll lists the prefix without descending into sub-prefixes. Sub-prefixes
// are reported by name, like directories.
func (s *MinioStorage) LoadAll(ctx context.Context) (*Listing, error) {
	ctx, cancel := context.WithCancel(ctx)
	listPrefix := s.listPrefix()
	objects := s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    listPrefix,
		Recursive: false,
	})

	next := func() (string, error) {
		for obj := range objects {
			if obj.Err != nil {
				return "", &Error{Op: "list", Name: s.bucket, Err: obj.Err}
			}
			name := strings.TrimSuffix(strings.TrimPrefix(obj.Key, listPrefix), "/")
			if name == "" {
				continue
			}
			return name, nil
		}
		return "", io.EOF
	}

	return newListing(next, func() error {
		cancel()
		return nil
	}), nil
}

// Resolve returns the object key for name.
func (s *MinioStorage) Resolve(name string) string {
	return strings.TrimPrefix(path.Join(s.prefix, name), "/")
}

// LoadAsResource stats the object at Resolve(name).
func (s *MinioStorage) LoadAsResource(ctx context.Context, name string) (*Resource, error) {
	key := s.Resolve(name)

	info, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		switch minio.ToErrorResponse(err).Code {
		case "NoSuchKey", "NoSuchBucket", "AccessDenied":
			return nil, notFound(name)
		}
		return nil, &Error{Op: "load", Name: name, Err: err}
	}

	return &Resource{
		Filename: path.Base(key),
		Size:     info.Size,
		ModTime:  info.LastModified,
		open: func() (io.ReadSeekCloser, error) {
			obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
			if err != nil {
				return nil, fmt.Errorf("get object %q: %w", key, err)
			}
			return obj, nil
		},
	}, nil
}

// DeleteAll removes every object under the prefix. The bucket is kept.
func (s *MinioStorage) DeleteAll(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return &Error{Op: "delete", Name: s.bucket, Err: err}
	}
	if !exists {
		return nil
	}

	objects := s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    s.listPrefix(),
		Recursive: true,
	})

	var first error
	for rerr := range s.client.RemoveObjects(ctx, s.bucket, objects, minio.RemoveObjectsOptions{}) {
		if first == nil {
			first = &Error{Op: "delete", Name: rerr.ObjectName, Err: rerr.Err}
		}
	}
	return first
}

func (s *MinioStorage) listPrefix() string {
	if s.prefix == "/" {
		return ""
	}
	return strings.TrimPrefix(s.prefix, "/") + "/"
}

// cleanPrefix turns a prefix into a rooted, slash-separated path: "" and "/"
// both become "/", "uploads/" becomes "/uploads".
func cleanPrefix(prefix string) string {
	return path.Clean("/" + strings.Trim(prefix, "/"))
}

// containedKey is the object-key counterpart of containedPath: the cleaned
// key must sit directly under prefix.
func containedKey(prefix, name string) (string, error) {
	dest := path.Join(prefix, name)
	if dest == prefix || path.Dir(dest) != prefix {
		return "", ErrPathEscape
	}
	return strings.TrimPrefix(dest, "/"), nil
}

// remaining returns how many bytes are left in r, or -1 when r cannot seek.
// The read position is left unchanged.
func remaining(r io.Reader) (int64, error) {
	seeker, ok := r.(io.Seeker)
	if !ok {
		return -1, nil
	}
	cur, err := seeker.Seek(0, io.SeekCurrent)
	if err != nil {
		return -1, nil
	}
	end, err := seeker.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, fmt.Errorf("measure content: %w", err)
	}
	if _, err := seeker.Seek(cur, io.SeekStart); err != nil {
		return 0, fmt.Errorf("rewind content: %w", err)
	}
	return end - cur, nil
}

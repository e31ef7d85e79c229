// Package miniowr stores gallery uploads in a MinIO (or any S3 compatible)
// bucket.
package miniowr

import (
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/code19m/errx"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/rise-and-shine/gallery/filestore"
)

const codeNoSuchKey = "NoSuchKey"

// sniffSize is how much of an upload is buffered to detect its content type.
const sniffSize = 3072

// Client implements filestore.FileStore over one bucket.
type Client struct {
	api    *minio.Client
	bucket string
}

// New connects lazily; only CreateBucket makes New talk to the server.
func New(ctx context.Context, cfg Config) (*Client, error) {
	api, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, errx.Wrap(err, errx.WithDetails(errx.D{"endpoint": cfg.Endpoint}))
	}

	c := &Client{api: api, bucket: cfg.Bucket}
	if !cfg.CreateBucket {
		return c, nil
	}

	exists, err := api.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, c.wrap(err, "")
	}
	if !exists {
		if err = api.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, c.wrap(err, "")
		}
	}
	return c, nil
}

// Upload streams reader into the bucket. The content type is sniffed from
// the first bytes; the size is left to the multipart uploader.
func (c *Client) Upload(ctx context.Context, path string, reader io.Reader) (*filestore.FileInfo, error) {
	key, err := filestore.CleanKey(path)
	if err != nil {
		return nil, err
	}

	head := make([]byte, sniffSize)
	n, err := io.ReadFull(reader, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, errx.Wrap(err)
	}
	head = head[:n]
	contentType := filestore.DetectContentType(head)

	body := io.MultiReader(bytes.NewReader(head), reader)
	info, err := c.api.PutObject(ctx, c.bucket, key, body, -1, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return nil, c.wrap(err, key)
	}

	return &filestore.FileInfo{
		Path:         key,
		Size:         info.Size,
		ContentType:  contentType,
		ETag:         info.ETag,
		LastModified: info.LastModified,
	}, nil
}

func (c *Client) Get(ctx context.Context, path string) (*filestore.File, error) {
	key, err := filestore.CleanKey(path)
	if err != nil {
		return nil, err
	}

	obj, err := c.api.GetObject(ctx, c.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, c.wrap(err, key)
	}
	// GetObject is lazy; Stat surfaces a missing key.
	st, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		return nil, c.wrap(err, key)
	}

	return &filestore.File{Content: obj, Info: infoOf(key, st)}, nil
}

// Delete relies on S3 semantics: removing a missing key succeeds.
func (c *Client) Delete(ctx context.Context, path string) error {
	key, err := filestore.CleanKey(path)
	if err != nil {
		return err
	}
	if err = c.api.RemoveObject(ctx, c.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return c.wrap(err, key)
	}
	return nil
}

func (c *Client) Exists(ctx context.Context, path string) (bool, error) {
	key, err := filestore.CleanKey(path)
	if err != nil {
		return false, err
	}

	_, err = c.api.StatObject(ctx, c.bucket, key, minio.StatObjectOptions{})
	switch {
	case err == nil:
		return true, nil
	case isNoSuchKey(err):
		return false, nil
	default:
		return false, c.wrap(err, key)
	}
}

func infoOf(key string, st minio.ObjectInfo) filestore.FileInfo {
	return filestore.FileInfo{
		Path:         key,
		Size:         st.Size,
		ContentType:  st.ContentType,
		ETag:         st.ETag,
		LastModified: st.LastModified,
	}
}

func (c *Client) wrap(err error, key string) error {
	d := errx.D{"bucket": c.bucket}
	if key != "" {
		d["key"] = key
	}
	if isNoSuchKey(err) {
		return errx.New("file not found",
			errx.WithCode(filestore.CodeFileNotFound),
			errx.WithType(errx.T_NotFound),
			errx.WithDetails(d),
		)
	}
	return errx.Wrap(err, errx.WithDetails(d))
}

func isNoSuchKey(err error) bool {
	return minio.ToErrorResponse(err).Code == codeNoSuchKey
}

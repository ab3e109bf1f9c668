package source

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/joseph-ayodele/bol-intake/constants"
	"github.com/joseph-ayodele/bol-intake/internal/common"
)

var (
	ErrTooLarge       = errors.New("document exceeds size limit")
	ErrUnsupportedExt = errors.New("unsupported or missing extension")
	ErrNoS3           = errors.New("s3 source not configured")
)

// ObjectGetter is the part of the S3 client Open needs.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Document is a local, size-checked copy of an intake document. Close removes any temp copy.
type Document struct {
	Path    string
	Name    string
	Ext     string
	Size    int64
	HashHex string

	cleanup func()
}

func (d *Document) Close() error {
	if d.cleanup != nil {
		d.cleanup()
		d.cleanup = nil
	}
	return nil
}

type Opener struct {
	maxBytes int64
	s3       ObjectGetter
	logger   *slog.Logger
}

// NewOpener limits documents to maxSizeMB (0 = no limit). s3 may be nil when only local
// paths are used.
func NewOpener(maxSizeMB int, s3 ObjectGetter, logger *slog.Logger) *Opener {
	if logger == nil {
		logger = slog.Default()
	}
	return &Opener{maxBytes: int64(maxSizeMB) << 20, s3: s3, logger: logger}
}

// Open accepts a local path or an s3://bucket/key URI.
func (o *Opener) Open(ctx context.Context, uri string) (*Document, error) {
	if bucket, key, ok := ParseS3URI(uri); ok {
		return o.openS3(ctx, bucket, key)
	}
	return o.openLocal(uri)
}

func (o *Opener) openLocal(p string) (*Document, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return nil, err
	}
	ext, err := checkExt(abs)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrNotFound, err)
	}
	if err := o.checkSize(info.Size()); err != nil {
		return nil, err
	}

	f, err := os.Open(abs)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			o.logger.Warn("close document failed", "path", abs, "error", err)
		}
	}()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return nil, fmt.Errorf("hash document: %w", err)
	}
	return &Document{
		Path:    abs,
		Name:    filepath.Base(abs),
		Ext:     ext,
		Size:    info.Size(),
		HashHex: hashHex(h),
	}, nil
}

func (o *Opener) openS3(ctx context.Context, bucket, key string) (*Document, error) {
	if o.s3 == nil {
		return nil, ErrNoS3
	}
	ext, err := checkExt(key)
	if err != nil {
		return nil, err
	}
	out, err := o.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get s3://%s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()
	if out.ContentLength != nil {
		if err := o.checkSize(*out.ContentLength); err != nil {
			return nil, err
		}
	}

	tmp, err := os.CreateTemp("", "bol-src-*."+ext)
	if err != nil {
		return nil, err
	}
	cleanup := func() {
		if err := os.Remove(tmp.Name()); err != nil && !errors.Is(err, os.ErrNotExist) {
			o.logger.Warn("failed to remove temp document", "path", tmp.Name(), "error", err)
		}
	}

	h := sha256.New()
	n, err := copyLimited(io.MultiWriter(tmp, h), out.Body, o.maxBytes)
	closeErr := tmp.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil {
		err = o.checkSize(n)
	}
	if err != nil {
		cleanup()
		return nil, err
	}

	o.logger.Debug("fetched s3 document", "bucket", bucket, "key", key, "bytes", n)
	return &Document{
		Path:    tmp.Name(),
		Name:    path.Base(key),
		Ext:     ext,
		Size:    n,
		HashHex: hashHex(h),
		cleanup: cleanup,
	}, nil
}

// copyLimited stops one byte past limit so an oversized body is detected without reading it all.
func copyLimited(dst io.Writer, src io.Reader, limit int64) (int64, error) {
	if limit <= 0 {
		return io.Copy(dst, src)
	}
	return io.Copy(dst, io.LimitReader(src, limit+1))
}

func (o *Opener) checkSize(n int64) error {
	if o.maxBytes > 0 && n > o.maxBytes {
		return fmt.Errorf("%w: %d bytes > %d", ErrTooLarge, n, o.maxBytes)
	}
	return nil
}

func checkExt(p string) (string, error) {
	ext := constants.NormalizeExt(filepath.Ext(p))
	if _, ok := constants.AllowedExtensions[ext]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedExt, ext)
	}
	return ext, nil
}

func hashHex(h hash.Hash) string {
	return hex.EncodeToString(h.Sum(nil))
}

// ParseS3URI splits s3://bucket/key.
func ParseS3URI(uri string) (bucket, key string, ok bool) {
	rest, found := strings.CutPrefix(uri, "s3://")
	if !found {
		return "", "", false
	}
	bucket, key, found = strings.Cut(rest, "/")
	if !found || bucket == "" || key == "" {
		return "", "", false
	}
	return bucket, key, true
}

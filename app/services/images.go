package services

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shashiranjanraj/vastra/pkg/logger"
	"github.com/shashiranjanraj/vastra/pkg/metrics"
	"github.com/shashiranjanraj/vastra/pkg/storage"
	"github.com/shashiranjanraj/vastra/pkg/workerpool"
)

// MaxImageBytes is the largest accepted image upload.
const MaxImageBytes = 5 << 20

var imageTypes = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"webp": "image/webp",
}

var imageFolders = map[string]bool{"products": true, "brands": true, "categories": true, "collections": true}

// Upload is one file to store. Open may be called once per upload attempt.
type Upload struct {
	Filename string
	Size     int64
	Open     func() (io.ReadCloser, error)
}

// FromMultipart adapts a multipart form file.
func FromMultipart(fh *multipart.FileHeader) Upload {
	return Upload{
		Filename: fh.Filename,
		Size:     fh.Size,
		Open:     func() (io.ReadCloser, error) { return fh.Open() },
	}
}

// ImageService stores catalog images on the configured disk under
// "<bucket>/<folder>/<unix>-<uuid8>.<ext>".
type ImageService struct {
	disk   storage.Disk
	bucket string
	pool   *workerpool.Pool
	now    func() time.Time
}

func NewImageService(disk storage.Disk, bucket string, pool *workerpool.Pool) *ImageService {
	if bucket == "" {
		bucket = "product-images"
	}
	return &ImageService{disk: disk, bucket: bucket, pool: pool, now: time.Now}
}

// ValidateImage checks the extension and size of an upload and returns the
// normalized extension.
func ValidateImage(filename string, size int64) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(filename), "."))
	if _, ok := imageTypes[ext]; !ok {
		return "", invalid("image", "The image must be a jpeg, jpg, png or webp file.")
	}
	if size <= 0 {
		return "", invalid("image", "The image is empty.")
	}
	if size > MaxImageBytes {
		return "", invalid("image", "The image may not be greater than 5 MB.")
	}
	return ext, nil
}

// Store validates and uploads one image and returns its public URL.
func (s *ImageService) Store(ctx context.Context, folder string, up Upload) (string, error) {
	folder = strings.Trim(strings.ToLower(folder), "/")
	if folder == "" {
		folder = "products"
	}
	if !imageFolders[folder] {
		return "", invalid("folder", "The folder must be one of products, brands, categories or collections.")
	}
	ext, err := ValidateImage(up.Filename, up.Size)
	if err != nil {
		metrics.ImageUploads.WithLabelValues("rejected").Inc()
		return "", err
	}

	f, err := up.Open()
	if err != nil {
		return "", fmt.Errorf("images: open %s: %w", up.Filename, err)
	}
	defer f.Close()

	key := fmt.Sprintf("%s/%s/%d-%s.%s", s.bucket, folder, s.now().Unix(), uuid.NewString()[:8], ext)
	// One byte past the limit lets a lying Size header be caught.
	body := io.LimitReader(f, MaxImageBytes+1)
	counted := &countingReader{r: body}
	err = s.disk.Put(ctx, key, counted, storage.PutOptions{
		ContentType:  imageTypes[ext],
		CacheControl: "public, max-age=31536000, immutable",
	})
	if err == nil && counted.n > MaxImageBytes {
		_ = s.disk.Delete(ctx, key)
		metrics.ImageUploads.WithLabelValues("rejected").Inc()
		return "", invalid("image", "The image may not be greater than 5 MB.")
	}
	if err != nil {
		metrics.ImageUploads.WithLabelValues("error").Inc()
		return "", fmt.Errorf("images: put %s: %w", key, err)
	}
	metrics.ImageUploads.WithLabelValues("ok").Inc()
	return s.disk.URL(key), nil
}

// UploadResult reports a multi-upload: URLs of the stored files, in input
// order, and the errors of the rest keyed by filename.
type UploadResult struct {
	URLs   []string          `json:"urls"`
	Errors map[string]string `json:"errors,omitempty"`
}

// StoreMany uploads files concurrently on the worker pool.
func (s *ImageService) StoreMany(ctx context.Context, folder string, ups []Upload) UploadResult {
	urls := make([]string, len(ups))
	tasks := make([]func(context.Context) error, len(ups))
	for i, up := range ups {
		tasks[i] = func(ctx context.Context) error {
			u, err := s.Store(ctx, folder, up)
			urls[i] = u
			return err
		}
	}

	var errs []error
	if s.pool != nil {
		errs = s.pool.Run(ctx, tasks)
	} else {
		errs = make([]error, len(tasks))
		for i, t := range tasks {
			errs[i] = t(ctx)
		}
	}

	res := UploadResult{URLs: []string{}}
	for i, err := range errs {
		if err != nil {
			if res.Errors == nil {
				res.Errors = map[string]string{}
			}
			res.Errors[ups[i].Filename] = uploadMessage(err)
			continue
		}
		res.URLs = append(res.URLs, urls[i])
	}
	return res
}

func uploadMessage(err error) string {
	if v, ok := err.(*ValidationError); ok {
		for _, msg := range v.Fields {
			return msg
		}
	}
	return err.Error()
}

// Delete removes the object behind a public image URL. URLs outside the
// image bucket are rejected.
func (s *ImageService) Delete(ctx context.Context, url string) error {
	key, ok := storage.KeyFromURL(url, s.bucket)
	if !ok {
		return invalid("url", "The url does not point at a stored image.")
	}
	if err := s.disk.Delete(ctx, key); err != nil {
		return fmt.Errorf("images: delete %s: %w", key, err)
	}
	logger.WithCtx(ctx).Info("images: deleted", "key", key)
	return nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

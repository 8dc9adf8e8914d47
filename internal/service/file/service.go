package file

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // Import for PNG decoding support
	"io"
	"math"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/cmlabs-hris/conveyance-backend-go/internal/pkg/storage"
	"github.com/google/uuid"
	"golang.org/x/image/draw"
)

const (
	maxImageBytes    = 300 * 1024
	targetImageBytes = 200 * 1024
	minImageWidth    = 800
)

type FileService interface {
	// UploadBillAttachment stores a receipt and returns its storage key.
	// Photos are re-encoded as JPEG and shrunk when they are large.
	UploadBillAttachment(ctx context.Context, employeeID string, file io.Reader, filename string) (string, error)

	OpenFile(ctx context.Context, key string) (io.ReadCloser, error)
	FileExists(ctx context.Context, key string) (bool, error)
	GetFileURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}

type fileServiceImpl struct {
	storage storage.FileStorage
	now     func() time.Time
}

func NewFileService(storage storage.FileStorage) FileService {
	return &fileServiceImpl{
		storage: storage,
		now:     time.Now,
	}
}

// UploadBillAttachment implements FileService.
func (s *fileServiceImpl) UploadBillAttachment(ctx context.Context, employeeID string, file io.Reader, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	var (
		body        io.Reader = file
		contentType string
	)
	switch ext {
	case ".pdf":
		contentType = "application/pdf"
	case ".jpg", ".jpeg", ".png":
		buffer, err := io.ReadAll(file)
		if err != nil {
			return "", fmt.Errorf("failed to read image: %w", err)
		}
		compressed, err := compressImage(buffer, maxImageBytes)
		if err != nil {
			return "", fmt.Errorf("failed to compress image: %w", err)
		}
		body = bytes.NewReader(compressed)
		contentType = "image/jpeg"
		ext = ".jpg"
	default:
		return "", fmt.Errorf("invalid file type: only jpg, jpeg, png, pdf allowed")
	}

	// bills/{employeeID}/{yyyy-mm}/{uuid}.ext
	key := path.Join("bills", employeeID, s.now().Format("2006-01"), uuid.NewString()+ext)

	uploaded, err := s.storage.Upload(ctx, body, key, contentType)
	if err != nil {
		return "", fmt.Errorf("failed to upload bill attachment: %w", err)
	}

	return uploaded, nil
}

func (s *fileServiceImpl) OpenFile(ctx context.Context, key string) (io.ReadCloser, error) {
	return s.storage.Download(ctx, key)
}

func (s *fileServiceImpl) FileExists(ctx context.Context, key string) (bool, error) {
	return s.storage.Exists(ctx, key)
}

// GetFileURL generates URL to access file
func (s *fileServiceImpl) GetFileURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	return s.storage.GetURL(ctx, key, expiry)
}

// compressImage re-encodes an image as JPEG, lowering quality and then
// resolution until it fits in maxSize. Small inputs are only re-encoded.
func compressImage(buffer []byte, maxSize int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(buffer))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	var compressed []byte
	for quality := 85; quality >= 55; quality -= 10 {
		compressed, err = encodeJPEG(img, quality)
		if err != nil {
			return nil, err
		}
		if len(compressed) <= maxSize {
			return compressed, nil
		}
	}

	bounds := img.Bounds()
	ratio := math.Sqrt(float64(targetImageBytes) / float64(len(compressed)))
	width := int(float64(bounds.Dx()) * ratio)
	if width < minImageWidth {
		width = minImageWidth
	}
	if width >= bounds.Dx() {
		return compressed, nil
	}
	height := bounds.Dy() * width / bounds.Dx()

	return encodeJPEG(resizeImage(img, width, height), 70)
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode JPEG: %w", err)
	}
	return buf.Bytes(), nil
}

// resizeImage resizes an image to the specified dimensions using high-quality interpolation
func resizeImage(src image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst
}

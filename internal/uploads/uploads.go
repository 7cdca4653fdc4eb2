package uploads

import (
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/gofiber/fiber/v2"
)

// MaxFileSize is the per-file ceiling for listing media.
const MaxFileSize = 5 << 20

var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

// ChannelMedia holds the stored locations of a listing's media files.
type ChannelMedia struct {
	BannerURL string
	ImageURLs []string
	paths     []string
}

// SaveChannelMedia validates and persists a listing submission's files:
// exactly one banner and 2-4 gallery images, each an allowed image type
// within the size ceiling. Size is checked again on disk after the write
// so a mis-declared multipart header cannot smuggle an oversized file.
// On any failure every file already written for the request is removed
// before the error is returned.
func SaveChannelMedia(form *multipart.Form, dir string) (*ChannelMedia, error) {
	banner := form.File["banner"]
	images := form.File["images"]

	if len(banner) != 1 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "exactly one banner image is required")
	}
	if len(images) < 2 || len(images) > 4 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "between 2 and 4 channel images are required")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}

	media := &ChannelMedia{}

	bannerURL, err := media.saveFile(banner[0], "banner", dir)
	if err != nil {
		media.Remove()
		return nil, err
	}
	media.BannerURL = bannerURL

	for _, fh := range images {
		url, err := media.saveFile(fh, "images", dir)
		if err != nil {
			media.Remove()
			return nil, err
		}
		media.ImageURLs = append(media.ImageURLs, url)
	}

	return media, nil
}

// Remove deletes every file saved for this submission. Deletion failures
// are logged, not escalated.
func (m *ChannelMedia) Remove() {
	for _, p := range m.paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			log.Printf("[Uploads] Failed to remove %s: %v", p, err)
		}
	}
}

func (m *ChannelMedia) saveFile(fh *multipart.FileHeader, field, dir string) (string, error) {
	if !allowedTypes[fh.Header.Get("Content-Type")] {
		return "", fiber.NewError(fiber.StatusBadRequest, "invalid file type, only JPEG, PNG and GIF are allowed")
	}
	if fh.Size > MaxFileSize {
		return "", fiber.NewError(fiber.StatusBadRequest, "file size exceeds 5MB limit")
	}

	name := fmt.Sprintf("%s-%d-%s", field, time.Now().UnixNano(), sanitizeName(fh.Filename))
	path := filepath.Join(dir, name)

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}

	written, err := io.Copy(dst, io.LimitReader(src, MaxFileSize+1))
	closeErr := dst.Close()
	m.paths = append(m.paths, path)

	if err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	if closeErr != nil {
		return "", fmt.Errorf("close file: %w", closeErr)
	}
	if written > MaxFileSize {
		return "", fiber.NewError(fiber.StatusBadRequest, "file size exceeded limit after upload")
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("verify file: %w", err)
	}
	if info.Size() > MaxFileSize {
		return "", fiber.NewError(fiber.StatusBadRequest, "file size exceeded limit after upload")
	}

	return "/uploads/" + name, nil
}

func sanitizeName(name string) string {
	base := filepath.Base(name)
	return unsafeChars.ReplaceAllString(base, "_")
}

// Package images resizes uploaded photos before they are persisted to disk.
package images

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
)

const (
	userPhotoSize   = 500
	tourImageWidth  = 2000
	tourImageHeight = 1333
	jpegQuality     = 90
)

// Processor writes resized JPEGs under the public asset directory.
type Processor struct {
	baseDir string
}

// NewProcessor creates a Processor rooted at baseDir (e.g. "web/public/img").
func NewProcessor(baseDir string) *Processor {
	return &Processor{baseDir: baseDir}
}

// UserPhoto crops the upload to a 500x500 square JPEG and stores it under
// img/users. It returns the stored filename.
func (p *Processor) UserPhoto(data []byte, filename string) (string, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("decode photo: %w", err)
	}

	resized := imaging.Fill(img, userPhotoSize, userPhotoSize, imaging.Center, imaging.Lanczos)
	if err := p.save(resized, filepath.Join("users", filename)); err != nil {
		return "", err
	}
	return filename, nil
}

// TourImage resizes the upload to the 3:2 tour format and stores it under
// img/tours. It returns the stored filename.
func (p *Processor) TourImage(data []byte, filename string) (string, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	resized := imaging.Fill(img, tourImageWidth, tourImageHeight, imaging.Center, imaging.Lanczos)
	if err := p.save(resized, filepath.Join("tours", filename)); err != nil {
		return "", err
	}
	return filename, nil
}

func (p *Processor) save(img *image.NRGBA, rel string) error {
	path := filepath.Join(p.baseDir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("image dir: %w", err)
	}
	if err := imaging.Save(img, path, imaging.JPEGQuality(jpegQuality)); err != nil {
		return fmt.Errorf("image save: %w", err)
	}
	return nil
}

package ocr

import (
	"fmt"

	"github.com/disintegration/imaging"
)

// grayscaleInPlace rewrites the image at path as grayscale.
func grayscaleInPlace(path string) error {
	img, err := imaging.Open(path)
	if err != nil {
		return fmt.Errorf("open rendered page: %w", err)
	}
	if err := imaging.Save(imaging.Grayscale(img), path); err != nil {
		return fmt.Errorf("save grayscale page: %w", err)
	}
	return nil
}

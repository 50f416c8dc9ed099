package ocr

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Recognizer turns one page image into text.
type Recognizer interface {
	Recognize(ctx context.Context, imagePath string) (string, error)
}

// TesseractCLI runs the tesseract binary.
type TesseractCLI struct {
	Bin         string
	Lang        string
	PSM         int
	TessdataDir string
	Runner      Runner
}

func (t *TesseractCLI) Recognize(ctx context.Context, imagePath string) (string, error) {
	// tesseract <file> stdout -l <lang> --psm <n>
	args := []string{imagePath, "stdout", "-l", t.Lang, "--psm", strconv.Itoa(t.PSM)}
	if t.TessdataDir != "" {
		args = append(args, "--tessdata-dir", t.TessdataDir)
	}
	out, errb, err := t.Runner.Run(ctx, t.Bin, args...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, strings.TrimSpace(string(errb)))
	}
	return string(out), nil
}

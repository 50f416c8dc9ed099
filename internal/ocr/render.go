package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// PageRenderer rasterizes a single 1-based page of a PDF into outDir and returns the image path.
type PageRenderer interface {
	RenderPage(ctx context.Context, pdfPath string, page, dpi int, outDir string) (string, error)
}

// PdftoppmRenderer shells out to poppler's pdftoppm.
type PdftoppmRenderer struct {
	Bin    string
	Runner Runner
}

func (r *PdftoppmRenderer) RenderPage(ctx context.Context, pdfPath string, page, dpi int, outDir string) (string, error) {
	prefix := filepath.Join(outDir, fmt.Sprintf("page-%04d", page))
	p := strconv.Itoa(page)
	// pdftoppm -r <dpi> -f N -l N -png -singlefile <in.pdf> <prefix>
	_, errb, err := r.Runner.Run(ctx, r.Bin, "-r", strconv.Itoa(dpi), "-f", p, "-l", p, "-png", "-singlefile", pdfPath, prefix)
	if err != nil {
		return "", fmt.Errorf("pdftoppm page %d: %w: %s", page, err, strings.TrimSpace(string(errb)))
	}
	out := prefix + ".png"
	if _, statErr := os.Stat(out); statErr != nil {
		return "", fmt.Errorf("pdftoppm produced no image for page %d: %w", page, statErr)
	}
	return out, nil
}

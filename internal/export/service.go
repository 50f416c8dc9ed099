// Package export renders a batch's metadata records into an XLSX workbook.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/paper-summarizer/internal/entity"
)

const SheetName = "Metadata"

// Headers is the single header row of every export, in column order.
var Headers = []string{"DOI/ISSN", "Title", "Authors", "Summary"}

// Row is one exported record.
type Row struct {
	DOIISSN string
	Title   string
	Authors string
	Summary string
}

// RowFromRecord projects a stored record onto the exported columns.
func RowFromRecord(r entity.MetadataRecord) Row {
	return Row{DOIISSN: r.DOIISSN, Title: r.Title, Authors: r.Authors, Summary: r.Summary}
}

// Builder produces XLSX bytes for an ordered set of rows.
type Builder struct {
	logger *slog.Logger
}

func NewBuilder(logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{logger: logger}
}

// Build writes one row per record in the given order below a fixed header row.
func (b *Builder) Build(ctx context.Context, rows []Row) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if index, _ := f.GetSheetIndex(SheetName); index == -1 {
		if _, err := f.NewSheet(SheetName); err != nil {
			return nil, fmt.Errorf("xlsx sheet: %w", err)
		}
	}
	activeIndex, _ := f.GetSheetIndex(SheetName)
	f.SetActiveSheet(activeIndex)
	_ = f.DeleteSheet("Sheet1")

	for i, h := range Headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(SheetName, cell, h); err != nil {
			return nil, fmt.Errorf("xlsx header: %w", err)
		}
	}

	for i, r := range rows {
		row := i + 2
		for col, v := range []string{r.DOIISSN, r.Title, r.Authors, r.Summary} {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(SheetName, cell, v); err != nil {
				return nil, fmt.Errorf("xlsx row %d: %w", row, err)
			}
		}
	}

	_ = f.SetColWidth(SheetName, "A", "A", 26) // identifier
	_ = f.SetColWidth(SheetName, "B", "B", 48) // title
	_ = f.SetColWidth(SheetName, "C", "C", 40) // authors
	_ = f.SetColWidth(SheetName, "D", "D", 90) // summary

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	b.logger.InfoContext(ctx, "export.xlsx.ok",
		"rows", len(rows),
		"bytes", buf.Len(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

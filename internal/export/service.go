package export

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/bol-intake/internal/extract"
	"github.com/joseph-ayodele/bol-intake/internal/mapping"
)

// SheetName is the single worksheet of a jobs workbook.
const SheetName = "Jobs"

// Document is one extracted bill of lading.
type Document struct {
	SourcePath string
	Raw        extract.RawRecord
}

// Service turns extracted documents into an XLSX workbook, one row per job.
type Service struct {
	mapper *mapping.Mapper
	logger *slog.Logger
}

func NewService(mapper *mapping.Mapper, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{mapper: mapper, logger: logger}
}

var headers = []string{
	"Source File",
	"Order Number",
	"Job Type",
	"Client",
	"Customer",
	"Address",
	"Suite",
	"City",
	"State",
	"Zip",
	"Contact",
	"Serial Number",
	"Product",
	"Due Date",
	"Confidence",
}

// ExportJobsXLSX writes every document's jobs to a workbook. A document with several serial
// numbers contributes one row per serial.
func (s *Service) ExportJobsXLSX(ctx context.Context, docs []Document) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("export.xlsx.close_error", "error", err)
		}
	}()
	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("name sheet: %w", err)
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(SheetName, cell, h)
	}

	row := 2
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, job := range extract.SplitBySerial(doc.Raw) {
			rec := mapping.Normalize(s.mapper.Map(job))
			values := []any{
				doc.SourcePath,
				rec.ClientOrderNumber,
				rec.JobType,
				rec.ClientCodeID,
				rec.Customer,
				rec.Address,
				rec.Address2,
				rec.CityID,
				rec.StateID,
				rec.Zip,
				rec.Contact,
				rec.ProductSerialNumber,
				truncate(rec.ProductDescription, 140),
				job.DueDate,
				job.Confidence,
			}
			for col, v := range values {
				cell, _ := excelize.CoordinatesToCellName(col+1, row)
				_ = f.SetCellValue(SheetName, cell, v)
			}
			row++
		}
	}

	_ = f.SetColWidth(SheetName, "A", "A", 36) // source
	_ = f.SetColWidth(SheetName, "B", "D", 14)
	_ = f.SetColWidth(SheetName, "E", "F", 30) // customer, address
	_ = f.SetColWidth(SheetName, "K", "M", 28) // contact, serial, product

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"documents", len(docs),
		"rows", row-2,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

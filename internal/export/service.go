package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/receipt-engine/internal/repository"
)

// Service produces XLSX bytes from the receipt store: one sheet of receipts,
// one sheet of their line items.
type Service struct {
	repo   repository.ReceiptRepository
	logger *slog.Logger
}

func NewService(repo repository.ReceiptRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

const (
	receiptsSheet = "Receipts"
	itemsSheet    = "Line Items"
)

// ExportXLSX returns a workbook of every stored receipt and its line items.
func (s *Service) ExportXLSX(ctx context.Context) ([]byte, error) {
	start := time.Now()

	recs, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("query receipts: %w", err)
	}

	f := excelize.NewFile()
	// excelize seeds the workbook with "Sheet1"; rename it instead of
	// leaving an empty sheet behind.
	if err := f.SetSheetName("Sheet1", receiptsSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(itemsSheet); err != nil {
		return nil, err
	}

	receiptHeaders := []string{
		"ID", "Merchant", "Date", "Invoice Number",
		"Subtotal", "Tax", "Total", "Source File", "Uploaded At",
	}
	for i, h := range receiptHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(receiptsSheet, cell, h)
	}

	itemHeaders := []string{"Receipt ID", "Merchant", "Item", "Qty", "Price"}
	for i, h := range itemHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(itemsSheet, cell, h)
	}

	write := func(sheet string, row, col int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, cell, v)
	}

	itemRow := 2
	totalItems := 0
	for i, r := range recs {
		row := i + 2
		write(receiptsSheet, row, 1, r.ID.String())
		write(receiptsSheet, row, 2, r.Merchant)
		write(receiptsSheet, row, 3, r.Date)
		write(receiptsSheet, row, 4, r.InvoiceNumber)
		write(receiptsSheet, row, 5, r.Subtotal)
		write(receiptsSheet, row, 6, r.Tax)
		write(receiptsSheet, row, 7, r.Total)
		write(receiptsSheet, row, 8, r.SourceFilename)
		if !r.UploadedAt.IsZero() {
			write(receiptsSheet, row, 9, r.UploadedAt.Format(time.RFC3339))
		}

		items, err := s.repo.FetchLineItems(ctx, r.ID)
		if err != nil {
			return nil, fmt.Errorf("fetch line items for %s: %w", r.ID, err)
		}
		for _, it := range items {
			write(itemsSheet, itemRow, 1, r.ID.String())
			write(itemsSheet, itemRow, 2, r.Merchant)
			write(itemsSheet, itemRow, 3, it.Name)
			write(itemsSheet, itemRow, 4, it.Qty)
			write(itemsSheet, itemRow, 5, it.Price)
			itemRow++
			totalItems++
		}
	}

	// Widen a few columns
	_ = f.SetColWidth(receiptsSheet, "A", "A", 38) // uuid
	_ = f.SetColWidth(receiptsSheet, "B", "B", 28) // merchant
	_ = f.SetColWidth(receiptsSheet, "C", "D", 16)
	_ = f.SetColWidth(receiptsSheet, "E", "G", 12) // amounts
	_ = f.SetColWidth(receiptsSheet, "H", "H", 32) // filename
	_ = f.SetColWidth(receiptsSheet, "I", "I", 22)
	_ = f.SetColWidth(itemsSheet, "A", "A", 38)
	_ = f.SetColWidth(itemsSheet, "B", "C", 28)
	_ = f.SetColWidth(itemsSheet, "D", "E", 10)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"receipts", len(recs),
		"items", totalItems,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

package receipts

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/receipt-engine/internal/entity"
	"github.com/joseph-ayodele/receipt-engine/internal/export"
	"github.com/joseph-ayodele/receipt-engine/internal/pipeline"
	"github.com/joseph-ayodele/receipt-engine/internal/repository"
)

// Service handles receipt business logic on top of the processing pipeline
// and the receipt store.
type Service struct {
	processor *pipeline.Processor
	repo      repository.ReceiptRepository
	exporter  *export.Service
	logger    *slog.Logger
}

// NewService creates a new receipt service.
func NewService(processor *pipeline.Processor, repo repository.ReceiptRepository, exporter *export.Service, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		processor: processor,
		repo:      repo,
		exporter:  exporter,
		logger:    logger,
	}
}

// Process runs one upload through extraction, validation and persistence.
func (s *Service) Process(ctx context.Context, up pipeline.Upload) (*entity.PipelineResult, error) {
	return s.processor.Process(ctx, up)
}

// List returns every stored receipt, newest upload first.
func (s *Service) List(ctx context.Context) ([]entity.StoredReceipt, error) {
	recs, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("receipts.list.failed", "error", err)
		return nil, fmt.Errorf("list receipts: %w", err)
	}
	s.logger.Info("receipts.list.ok", "count", len(recs))
	return recs, nil
}

// LineItems returns the line items of one receipt in stored order.
func (s *Service) LineItems(ctx context.Context, receiptID uuid.UUID) ([]entity.LineItem, error) {
	items, err := s.repo.FetchLineItems(ctx, receiptID)
	if err != nil {
		s.logger.Error("receipts.items.failed", "receipt_id", receiptID, "error", err)
		return nil, fmt.Errorf("fetch line items: %w", err)
	}
	return items, nil
}

// Delete removes one receipt and its line items.
func (s *Service) Delete(ctx context.Context, receiptID uuid.UUID) error {
	if err := s.repo.Delete(ctx, receiptID); err != nil {
		s.logger.Error("receipts.delete.failed", "receipt_id", receiptID, "error", err)
		return fmt.Errorf("delete receipt: %w", err)
	}
	s.logger.Info("receipts.delete.ok", "receipt_id", receiptID)
	return nil
}

// Clear removes every stored receipt and returns how many were deleted.
func (s *Service) Clear(ctx context.Context) (int64, error) {
	n, err := s.repo.Clear(ctx)
	if err != nil {
		s.logger.Error("receipts.clear.failed", "error", err)
		return 0, fmt.Errorf("clear receipts: %w", err)
	}
	s.logger.Info("receipts.clear.ok", "deleted", n)
	return n, nil
}

// ExportXLSX renders every stored receipt into an XLSX workbook.
func (s *Service) ExportXLSX(ctx context.Context) ([]byte, error) {
	return s.exporter.ExportXLSX(ctx)
}

package ledgerService

import (
	"bytes"
	"context"
	"log/slog"

	"github.com/KotFed0t/gold_tracker/internal/model"
	"github.com/KotFed0t/gold_tracker/internal/service"
	"github.com/KotFed0t/gold_tracker/utils"
)

const reportFilePrefix = "gold-ledger-"

// ExportReport renders the whole ledger to a spreadsheet and returns it with a dated file name.
func (s *LedgerService) ExportReport(ctx context.Context) (fileBytes []byte, filename string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "LedgerService.ExportReport"

	slog.Debug("ExportReport start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		if err != nil {
			slog.Error("ExportReport failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
	}()

	lots, err := s.repo.Purchases(ctx)
	if err != nil {
		return nil, "", err
	}
	sales, err := s.repo.Sales(ctx)
	if err != nil {
		return nil, "", err
	}

	summary, err := s.PortfolioSummary(ctx)
	if err != nil {
		return nil, "", err
	}

	generatedAt := s.now()
	fileBytes, ext, err := s.reportGen.Generate(ctx, model.LedgerReport{
		GeneratedAt: generatedAt,
		Purchases:   lots,
		Sales:       sales,
		Summary:     summary,
	})
	if err != nil {
		return nil, "", err
	}

	filename = reportFilePrefix + generatedAt.Format("2006-01-02") + ext

	slog.Debug("ExportReport completed", slog.String("rqID", rqID), slog.String("op", op), slog.String("filename", filename))
	return fileBytes, filename, nil
}

// UploadReport exports the ledger and publishes it to cloud storage.
func (s *LedgerService) UploadReport(ctx context.Context) (downloadLink string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "LedgerService.UploadReport"

	if s.cloud == nil {
		return "", service.ErrUploadDisabled
	}

	fileBytes, filename, err := s.ExportReport(ctx)
	if err != nil {
		return "", err
	}

	downloadLink, err = s.cloud.UploadFile(ctx, bytes.NewReader(fileBytes), filename)
	if err != nil {
		slog.Error("got error from cloud.UploadFile", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return "", err
	}

	slog.Info("report uploaded", slog.String("rqID", rqID), slog.String("op", op), slog.String("link", downloadLink))
	return downloadLink, nil
}

package ledgerService

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/KotFed0t/gold_tracker/data/repository"
	"github.com/KotFed0t/gold_tracker/internal/service"
	"github.com/KotFed0t/gold_tracker/utils"
)

// ledgerBackup is the file format written by Backup.
type ledgerBackup struct {
	CreatedAt   time.Time                  `json:"createdAt"`
	Collections map[string]json.RawMessage `json:"collections"`
}

// Backup dumps every stored collection as one JSON document.
func (s *LedgerService) Backup(ctx context.Context) ([]byte, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "LedgerService.Backup"

	slog.Debug("Backup start", slog.String("rqID", rqID), slog.String("op", op))

	collections, err := s.repo.Backup(ctx)
	if err != nil {
		slog.Error("got error from repo.Backup", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	payload, err := json.MarshalIndent(ledgerBackup{CreatedAt: s.now(), Collections: collections}, "", "  ")
	if err != nil {
		return nil, err
	}

	slog.Debug("Backup finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int("collections", len(collections)))
	return payload, nil
}

// Restore replaces the ledger with a document produced by Backup. Nothing is
// written unless every collection in it decodes.
func (s *LedgerService) Restore(ctx context.Context, payload []byte) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "LedgerService.Restore"

	slog.Debug("Restore start", slog.String("rqID", rqID), slog.String("op", op))

	var backup ledgerBackup
	if err := json.Unmarshal(payload, &backup); err != nil {
		return service.NewValidationError("backup", "not a ledger backup: "+err.Error())
	}
	if backup.Collections == nil {
		return service.NewValidationError("backup", "no collections")
	}

	err := s.mutate(ctx, func(ctx context.Context) error {
		return s.repo.Restore(ctx, backup.Collections)
	})
	if errors.Is(err, repository.ErrMalformedSnapshot) {
		return service.NewValidationError("backup", err.Error())
	}
	if err != nil {
		slog.Error("got error from repo.Restore", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	slog.Info("ledger restored from backup", slog.String("rqID", rqID), slog.String("op", op), slog.Time("backupCreatedAt", backup.CreatedAt))
	return nil
}

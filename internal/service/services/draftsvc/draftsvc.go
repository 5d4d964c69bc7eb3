package draftsvc

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/orders/internal/dal/interfaces/idraftrepo"
	"github.com/shopfront/orders/internal/dal/postgres"
	draftrepo "github.com/shopfront/orders/internal/dal/repositories/draft/postgres"
	"github.com/shopfront/orders/internal/service/apperr"
	"github.com/shopfront/orders/internal/service/models/draft"
	"go.opentelemetry.io/otel"
)

// DefaultListLimit caps how many drafts a listing returns.
const DefaultListLimit = 100

// DraftService captures abandoned checkouts.
type DraftService struct {
	draftRepo idraftrepo.IDraftRepository
	listLimit int
	now       func() time.Time
}

// option is a function that configures the DraftService.
type option func(*DraftService)

// MustNewDraftService creates a new DraftService.
func MustNewDraftService(opts ...option) *DraftService {
	s := &DraftService{
		listLimit: DefaultListLimit,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.draftRepo == nil {
		panic("draftsvc: draft repository is required")
	}

	return s
}

// WithPostgresClient sets the draft store of the DraftService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *DraftService) {
		s.draftRepo = draftrepo.NewDraftRepository(pgClient.DB())
	}
}

// WithDraftRepository sets the draft store of the DraftService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithDraftRepository(repo idraftrepo.IDraftRepository) option {
	return func(s *DraftService) {
		s.draftRepo = repo
	}
}

// WithListLimit sets the maximum listing size.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithListLimit(limit int) option {
	return func(s *DraftService) {
		if limit > 0 {
			s.listLimit = limit
		}
	}
}

// WithClock overrides the time source.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithClock(now func() time.Time) option {
	return func(s *DraftService) {
		s.now = now
	}
}

// SaveDraft stores the checkout form. An empty id creates a new draft; an existing id is
// replaced entirely, the last write wins.
func (s *DraftService) SaveDraft(ctx context.Context, data draft.Data, rawID string) (uuid.UUID, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "DraftService.SaveDraft")
	defer span.End()

	id := uuid.New()
	if rawID != "" {
		parsed, err := uuid.Parse(rawID)
		if err != nil {
			return uuid.Nil, apperr.Wrap(apperr.CodeValidationFailed, err, "invalid draft id")
		}
		id = parsed
	}

	now := s.now()
	err := s.draftRepo.Upsert(ctx, draft.Draft{
		ID:        id,
		Data:      data,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return uuid.Nil, apperr.Downstream(err, "failed to save draft")
	}

	return id, nil
}

// ListDrafts returns the most recently updated drafts. Non-positive or oversized limits
// fall back to the configured cap.
func (s *DraftService) ListDrafts(ctx context.Context, limit int) ([]draft.Draft, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "DraftService.ListDrafts")
	defer span.End()

	if limit <= 0 || limit > s.listLimit {
		limit = s.listLimit
	}

	drafts, err := s.draftRepo.List(ctx, limit)
	if err != nil {
		return nil, apperr.Downstream(err, "failed to list drafts")
	}

	return drafts, nil
}

// DeleteDraft removes a draft. Missing drafts are not an error.
func (s *DraftService) DeleteDraft(ctx context.Context, id uuid.UUID) error {
	ctx, span := otel.Tracer("service").Start(ctx, "DraftService.DeleteDraft")
	defer span.End()

	if err := s.draftRepo.Delete(ctx, id); err != nil {
		return apperr.Downstream(err, "failed to delete draft")
	}

	return nil
}

// PruneDrafts keeps the keep most recently updated drafts and deletes the rest.
func (s *DraftService) PruneDrafts(ctx context.Context, keep int) (int64, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "DraftService.PruneDrafts")
	defer span.End()

	if keep < 0 {
		return 0, apperr.New(apperr.CodeValidationFailed, "keep must not be negative")
	}

	removed, err := s.draftRepo.Prune(ctx, keep)
	if err != nil {
		return 0, apperr.Downstream(err, "failed to prune drafts")
	}

	slog.Info("Drafts pruned", "kept", keep, "removed", removed)

	return removed, nil
}

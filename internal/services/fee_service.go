// Package services holds the application use cases that sit between the
// HTTP layer and storage.
package services

import (
	"context"
	"fmt"

	"schoolsite/internal/core"
	applog "schoolsite/internal/log"
	"schoolsite/internal/ports"
)

// Publisher announces fee changes to the export pipeline.
type Publisher interface {
	PublishFeeSync(ctx context.Context, id, version int64) error
	PublishFeeDelete(ctx context.Context, id int64) error
}

// FeeService persists fee records and returns them with derived amounts
// filled in. Every write is stored first and announced second; a failed
// announcement is logged and the periodic sweep picks the change up.
type FeeService struct {
	repo      ports.FeeRepository
	publisher Publisher
	policy    core.AggregatePolicy
	logger    *applog.Logger
}

// NewFeeService builds a service. publisher may be nil when no export
// pipeline is configured; logger may be nil.
func NewFeeService(repo ports.FeeRepository, publisher Publisher, policy core.AggregatePolicy, logger *applog.Logger) *FeeService {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &FeeService{
		repo:      repo,
		publisher: publisher,
		policy:    policy,
		logger:    logger.WithComponent(applog.ComponentFees),
	}
}

// List returns every stored record with AnnualFee and TotalAnnual recomputed.
func (s *FeeService) List(ctx context.Context) ([]core.FeeRecord, error) {
	records, err := s.repo.ListFees(ctx)
	if err != nil {
		return nil, fmt.Errorf("list fees: %w", err)
	}
	return core.RecomputeAll(records), nil
}

// Get returns one record with its derived amounts, or core.ErrNotFound.
func (s *FeeService) Get(ctx context.Context, id int64) (core.FeeRecord, error) {
	r, err := s.repo.GetFee(ctx, id)
	if err != nil {
		return core.FeeRecord{}, err
	}
	return r.WithDerived(), nil
}

// Summary loads the records and aggregates them under the service policy.
func (s *FeeService) Summary(ctx context.Context) (core.FeeSummary, error) {
	records, err := s.repo.ListFees(ctx)
	if err != nil {
		return core.FeeSummary{}, fmt.Errorf("summarize fees: %w", err)
	}
	return s.Summarize(records), nil
}

// Summarize aggregates records already in hand.
func (s *FeeService) Summarize(records []core.FeeRecord) core.FeeSummary {
	return s.policy.Summarize(records)
}

// Create validates and stores r, then announces it to the export queue.
func (s *FeeService) Create(ctx context.Context, r core.FeeRecord) (core.FeeRecord, error) {
	if err := r.Validate(); err != nil {
		return core.FeeRecord{}, err
	}
	created, err := s.repo.CreateFee(ctx, r)
	if err != nil {
		return core.FeeRecord{}, fmt.Errorf("save fee: %w", err)
	}
	created = created.WithDerived()

	s.logger.InfoContext(ctx, "Fee record created", applog.NewFields().
		Operation(applog.OpCreate).
		Fee(created.ID, created.ClassName, created.Category).
		Args()...)
	s.announceSync(ctx, created)
	return created, nil
}

// Update replaces the base fields of r.ID and announces the new version.
func (s *FeeService) Update(ctx context.Context, r core.FeeRecord) (core.FeeRecord, error) {
	if err := r.Validate(); err != nil {
		return core.FeeRecord{}, err
	}
	updated, err := s.repo.UpdateFee(ctx, r)
	if err != nil {
		return core.FeeRecord{}, err
	}
	updated = updated.WithDerived()

	s.logger.InfoContext(ctx, "Fee record updated", applog.NewFields().
		Operation(applog.OpUpdate).
		Fee(updated.ID, updated.ClassName, updated.Category).
		Args()...)
	s.announceSync(ctx, updated)
	return updated, nil
}

// Delete removes the record and publishes a delete message best effort.
func (s *FeeService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.DeleteFee(ctx, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Fee record deleted", applog.FieldFeeID, id)

	if s.publisher == nil {
		return nil
	}
	if err := s.publisher.PublishFeeDelete(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish delete message",
			applog.NewFields().Operation(applog.OpPublish).Err(err).Args()...)
	}
	return nil
}

func (s *FeeService) announceSync(ctx context.Context, r core.FeeRecord) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishFeeSync(ctx, r.ID, r.Version); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish sync message",
			applog.NewFields().Operation(applog.OpPublish).Err(err).
				Fee(r.ID, r.ClassName, r.Category).Args()...)
	}
}

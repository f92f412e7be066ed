package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fridgechef/internal/models"

	"go.uber.org/zap"
)

// Store is the subset of database.Store the service needs
type Store interface {
	Insert(ctx context.Context, rec *models.IngredientRecord) error
	List(ctx context.Context, filter string) ([]models.IngredientRecord, error)
	DeleteByName(ctx context.Context, name string) error
}

// AddInput is a validated-on-use request to put an ingredient in the fridge
type AddInput struct {
	Name  string
	Value *float64
	Unit  string
}

// ErrSnapshotUnavailable means the write was committed but the fridge could
// not be read back afterwards. The returned Mutation still carries the item.
var ErrSnapshotUnavailable = errors.New("fridge snapshot unavailable after write")

// Mutation is the outcome of a write: the affected item (if any) and the full
// snapshot read back after the write. Callers replace their state with Fridge.
type Mutation struct {
	Item   *models.IngredientRecord
	Fridge []models.IngredientRecord
}

// Service enforces normalization and uniqueness rules on top of a Store
type Service struct {
	store Store
	log   *zap.Logger
	now   func() time.Time
}

// NewService creates a new inventory service
func NewService(store Store, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store: store,
		log:   log.Named("inventory"),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// List returns items whose name contains filter (case-insensitive), or every
// item when filter is blank. Newest first in both cases.
func (s *Service) List(ctx context.Context, filter string) ([]models.IngredientRecord, error) {
	return s.store.List(ctx, models.NormalizeName(filter))
}

// Names returns the names of every ingredient in the fridge
func (s *Service) Names(ctx context.Context) ([]string, error) {
	items, err := s.store.List(ctx, "")
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, item.Name)
	}
	return names, nil
}

// Add stores a new ingredient. An existing ingredient with the same normalized
// name is a conflict; quantities are never merged.
func (s *Service) Add(ctx context.Context, in AddInput) (*Mutation, error) {
	name := models.NormalizeName(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: ingredient name is required", models.ErrValidation)
	}
	qty, err := models.NewQuantity(in.Value, in.Unit)
	if err != nil {
		return nil, err
	}

	now := s.now()
	rec := &models.IngredientRecord{
		Name:      name,
		Quantity:  qty,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Insert(ctx, rec); err != nil {
		return nil, err
	}
	s.log.Info("ingredient added", zap.String("name", rec.Name), zap.Stringer("quantity", rec.Quantity))

	fridge, err := s.store.List(ctx, "")
	if err != nil {
		s.log.Warn("ingredient saved but snapshot read failed", zap.String("name", rec.Name), zap.Error(err))
		return &Mutation{Item: rec}, fmt.Errorf("%w: %v", ErrSnapshotUnavailable, err)
	}
	return &Mutation{Item: rec, Fridge: fridge}, nil
}

// Remove deletes the ingredient whose normalized name matches name
func (s *Service) Remove(ctx context.Context, name string) (*Mutation, error) {
	key := models.NormalizeName(name)
	if key == "" {
		return nil, fmt.Errorf("%w: ingredient name is required", models.ErrValidation)
	}
	if err := s.store.DeleteByName(ctx, key); err != nil {
		return nil, err
	}
	s.log.Info("ingredient removed", zap.String("name", key))

	fridge, err := s.store.List(ctx, "")
	if err != nil {
		s.log.Warn("ingredient removed but snapshot read failed", zap.String("name", key), zap.Error(err))
		return &Mutation{}, fmt.Errorf("%w: %v", ErrSnapshotUnavailable, err)
	}
	return &Mutation{Fridge: fridge}, nil
}

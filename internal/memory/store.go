// Package memory is an in-process backend for development and tests.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"schoolsite/internal/core"
)

// Store keeps fees, alumni and gallery entries in mutex-guarded slices.
type Store struct {
	mu      sync.Mutex
	now     func() time.Time
	nextID  int64
	fees    []core.FeeRecord
	alumni  []core.Alumnus
	gallery []core.GalleryImage
}

// New returns a store holding a copy of seed. Seed ids are kept when set
// and assigned otherwise.
func New(seed Seed) *Store {
	s := &Store{now: time.Now}
	for _, r := range seed.Fees {
		r.ID = s.claimID(r.ID)
		r.AnnualFee, r.TotalAnnual = 0, 0
		if r.Version == 0 {
			r.Version = 1
		}
		r.UpdatedAt = s.now().UTC()
		s.fees = append(s.fees, r)
	}
	for _, a := range seed.Alumni {
		a.ID = s.claimID(a.ID)
		s.alumni = append(s.alumni, a)
	}
	for _, g := range seed.Gallery {
		g.ID = s.claimID(g.ID)
		g.Tags = slices.Clone(g.Tags)
		s.gallery = append(s.gallery, g)
	}
	return s
}

// NewFromDir loads the seed files in dir; see LoadSeed.
func NewFromDir(dir string) (*Store, error) {
	seed, err := LoadSeed(dir)
	if err != nil {
		return nil, err
	}
	return New(seed), nil
}

// claimID returns want when positive, otherwise the next free id. Ids are
// shared across collections so they stay unique in logs.
func (s *Store) claimID(want int64) int64 {
	if want > 0 {
		if want > s.nextID {
			s.nextID = want
		}
		return want
	}
	s.nextID++
	return s.nextID
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) ListFees(context.Context) ([]core.FeeRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.fees), nil
}

func (s *Store) GetFee(_ context.Context, id int64) (core.FeeRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.feeIndex(id)
	if i < 0 {
		return core.FeeRecord{}, core.ErrNotFound
	}
	return s.fees[i], nil
}

func (s *Store) CreateFee(_ context.Context, r core.FeeRecord) (core.FeeRecord, error) {
	if err := r.Validate(); err != nil {
		return core.FeeRecord{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = s.claimID(0)
	r.AnnualFee, r.TotalAnnual = 0, 0
	r.Version = 1
	r.UpdatedAt = s.now().UTC()
	s.fees = append(s.fees, r)
	return r, nil
}

func (s *Store) UpdateFee(_ context.Context, r core.FeeRecord) (core.FeeRecord, error) {
	if err := r.Validate(); err != nil {
		return core.FeeRecord{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.feeIndex(r.ID)
	if i < 0 {
		return core.FeeRecord{}, core.ErrNotFound
	}
	r.AnnualFee, r.TotalAnnual = 0, 0
	r.Version = s.fees[i].Version + 1
	r.UpdatedAt = s.now().UTC()
	s.fees[i] = r
	return r, nil
}

func (s *Store) DeleteFee(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.feeIndex(id)
	if i < 0 {
		return core.ErrNotFound
	}
	s.fees = slices.Delete(s.fees, i, i+1)
	return nil
}

func (s *Store) feeIndex(id int64) int {
	return slices.IndexFunc(s.fees, func(r core.FeeRecord) bool { return r.ID == id })
}

func (s *Store) ListAlumni(context.Context) ([]core.Alumnus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.alumni), nil
}

func (s *Store) CreateAlumnus(_ context.Context, a core.Alumnus) (core.Alumnus, error) {
	if err := a.Validate(); err != nil {
		return core.Alumnus{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = s.claimID(0)
	s.alumni = append(s.alumni, a)
	return a, nil
}

func (s *Store) DeleteAlumnus(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.alumni, func(a core.Alumnus) bool { return a.ID == id })
	if i < 0 {
		return core.ErrNotFound
	}
	s.alumni = slices.Delete(s.alumni, i, i+1)
	return nil
}

func (s *Store) ListGallery(context.Context) ([]core.GalleryImage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.GalleryImage, len(s.gallery))
	for i, g := range s.gallery {
		g.Tags = slices.Clone(g.Tags)
		out[i] = g
	}
	return out, nil
}

func (s *Store) CreateGalleryImage(_ context.Context, g core.GalleryImage) (core.GalleryImage, error) {
	if err := g.Validate(); err != nil {
		return core.GalleryImage{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	g.ID = s.claimID(0)
	g.Tags = slices.Clone(g.Tags)
	s.gallery = append(s.gallery, g)
	return g, nil
}

func (s *Store) DeleteGalleryImage(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.gallery, func(g core.GalleryImage) bool { return g.ID == id })
	if i < 0 {
		return core.ErrNotFound
	}
	s.gallery = slices.Delete(s.gallery, i, i+1)
	return nil
}

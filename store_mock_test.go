package main

import (
	"context"
	"slices"
	"sync"
	"time"
)

// storeMock is an in-memory profileStore. Setting err makes every call fail
// with it.
type storeMock struct {
	mu       sync.Mutex
	profiles map[string]profileRow
	weights  []weightSampleRow
	nextID   int64
	err      error
}

func newStoreMock() *storeMock {
	return &storeMock{profiles: make(map[string]profileRow), nextID: 1}
}

func (s *storeMock) UpsertProfile(_ context.Context, p profileRow) (profileRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return profileRow{}, s.err
	}
	if existing, ok := s.profiles[p.UserID]; ok && p.InitialWeightKG == nil {
		p.InitialWeightKG = existing.InitialWeightKG
	}
	s.profiles[p.UserID] = p
	return p, nil
}

func (s *storeMock) GetProfile(_ context.Context, userID string) (profileRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return profileRow{}, s.err
	}
	p, ok := s.profiles[userID]
	if !ok {
		return profileRow{}, errNotFound
	}
	return p, nil
}

func (s *storeMock) AddWeight(_ context.Context, userID string, weightKG float64, recordedAt time.Time) (weightSampleRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return weightSampleRow{}, s.err
	}
	if _, ok := s.profiles[userID]; !ok {
		return weightSampleRow{}, errNotFound
	}
	row := weightSampleRow{ID: s.nextID, UserID: userID, WeightKG: weightKG, RecordedAt: recordedAt}
	s.nextID++
	s.weights = append(s.weights, row)
	return row, nil
}

func (s *storeMock) ListWeights(_ context.Context, userID string) ([]weightSampleRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	var rows []weightSampleRow
	for _, w := range s.weights {
		if w.UserID == userID {
			rows = append(rows, w)
		}
	}
	slices.SortStableFunc(rows, func(a, b weightSampleRow) int {
		return a.RecordedAt.Compare(b.RecordedAt)
	})
	return rows, nil
}

func (s *storeMock) LatestWeight(ctx context.Context, userID string) (weightSampleRow, error) {
	rows, err := s.ListWeights(ctx, userID)
	if err != nil {
		return weightSampleRow{}, err
	}
	if len(rows) == 0 {
		return weightSampleRow{}, errNotFound
	}
	return rows[len(rows)-1], nil
}

func (s *storeMock) DeleteWeight(_ context.Context, userID string, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	for i, w := range s.weights {
		if w.ID == id && w.UserID == userID {
			s.weights = slices.Delete(s.weights, i, i+1)
			return nil
		}
	}
	return errNotFound
}

func (s *storeMock) Ping(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

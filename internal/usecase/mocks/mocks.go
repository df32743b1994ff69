package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/iho/banky/internal/domain"
)

// StubExtractor returns fixed pages from ExtractPages, or calls ExtractPagesFunc when set.
type StubExtractor struct {
	Pages []string
	Err   error

	ExtractPagesFunc func(ctx context.Context, locator string) ([]string, error)
}

func (s *StubExtractor) ExtractPages(ctx context.Context, locator string) ([]string, error) {
	if s.ExtractPagesFunc != nil {
		return s.ExtractPagesFunc(ctx, locator)
	}
	return s.Pages, s.Err
}

// StubOptical returns fixed recognized pages and counts its calls.
type StubOptical struct {
	mu    sync.Mutex
	calls int

	Pages []string
	Err   error
}

func (s *StubOptical) RecoverPages(_ context.Context, _ string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.Pages, s.Err
}

// Calls is the number of RecoverPages calls so far.
func (s *StubOptical) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// StubInspector returns fixed page statistics.
type StubInspector struct {
	Stats []domain.PageStats
	Err   error
}

func (s *StubInspector) InspectPages(_ context.Context, _ string, limit int) ([]domain.PageStats, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if limit > 0 && len(s.Stats) > limit {
		return s.Stats[:limit], nil
	}
	return s.Stats, nil
}

// RecordingDispatcher remembers dispatched document IDs.
type RecordingDispatcher struct {
	mu  sync.Mutex
	ids []string

	DispatchFunc func(ctx context.Context, documentID string) error
}

func (d *RecordingDispatcher) Dispatch(ctx context.Context, documentID string) error {
	if d.DispatchFunc != nil {
		if err := d.DispatchFunc(ctx, documentID); err != nil {
			return err
		}
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ids = append(d.ids, documentID)
	return nil
}

// Dispatched returns the IDs dispatched so far.
func (d *RecordingDispatcher) Dispatched() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.ids...)
}

// SequenceIDGenerator yields prefix-1, prefix-2, ...
type SequenceIDGenerator struct {
	mu     sync.Mutex
	next   int
	Prefix string
}

func (g *SequenceIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	prefix := g.Prefix
	if prefix == "" {
		prefix = "id"
	}
	return fmt.Sprintf("%s-%d", prefix, g.next)
}

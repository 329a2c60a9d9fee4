// Package history keeps a bounded, most-recent-first log of reports per
// session key. Each key is owned by a single worker goroutine, so
// operations on one key never interleave while distinct keys stay fully
// independent.
package history

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pageinsight/backend/report"
)

// Capacity bounds the per-key log. Older entries are evicted.
const Capacity = 50

// Persister stores one serialized report list per key.
type Persister interface {
	Load(ctx context.Context, key string) ([]report.Report, error)
	Save(ctx context.Context, key string, reports []report.Report) error
}

type opKind int

const (
	opAdd opKind = iota
	opList
)

type request struct {
	kind   opKind
	report report.Report
	resp   chan response
}

type response struct {
	reports []report.Report
	err     error
}

// Store serializes all operations for one key through its worker.
type Store struct {
	key      string
	requests chan request
}

func newStore(key string, persister Persister, logger *slog.Logger) *Store {
	s := &Store{
		key:      key,
		requests: make(chan request),
	}
	go s.run(persister, logger)
	return s
}

// run is the per-key worker. The initial load doubles as the cold-start
// barrier: requests sent before it completes sit in the channel and
// never observe a partially loaded log.
func (s *Store) run(persister Persister, logger *slog.Logger) {
	ctx := context.Background()

	log, loadErr := persister.Load(ctx, s.key)
	if loadErr != nil {
		// Serving an empty log after a failed load would let the next
		// Add overwrite durable history, so the store stays failed.
		logger.Error("history load failed", "key", s.key, "error", loadErr)
	}

	for req := range s.requests {
		if loadErr != nil {
			req.resp <- response{err: fmt.Errorf("history unavailable: %w", loadErr)}
			continue
		}

		switch req.kind {
		case opAdd:
			log = append([]report.Report{req.report}, log...)
			if len(log) > Capacity {
				log = log[:Capacity]
			}
			// Memory is updated before the write confirms; a failed
			// save leaves memory ahead of storage until the next
			// successful write. Known gap, no retry.
			err := persister.Save(ctx, s.key, log)
			req.resp <- response{err: err}
		case opList:
			snapshot := make([]report.Report, len(log))
			copy(snapshot, log)
			req.resp <- response{reports: snapshot}
		}
	}
}

// Add prepends a report, evicts past the capacity, and persists the
// whole log before acknowledging. Adds issued to one key complete in
// the order they were issued.
func (s *Store) Add(ctx context.Context, r report.Report) error {
	resp, err := s.send(ctx, request{kind: opAdd, report: r, resp: make(chan response, 1)})
	if err != nil {
		return err
	}
	return resp.err
}

// List returns an immutable snapshot of the log, most recent first.
func (s *Store) List(ctx context.Context) ([]report.Report, error) {
	resp, err := s.send(ctx, request{kind: opList, resp: make(chan response, 1)})
	if err != nil {
		return nil, err
	}
	if resp.err != nil {
		return nil, resp.err
	}
	if resp.reports == nil {
		resp.reports = []report.Report{}
	}
	return resp.reports, nil
}

func (s *Store) send(ctx context.Context, req request) (response, error) {
	select {
	case s.requests <- req:
	case <-ctx.Done():
		return response{}, ctx.Err()
	}
	select {
	case resp := <-req.resp:
		return resp, nil
	case <-ctx.Done():
		return response{}, ctx.Err()
	}
}

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package payload

import (
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/bureau-foundation/qrcloak/lib/clock"
	"github.com/bureau-foundation/qrcloak/lib/format"
)

// Session owns one merge state and serializes producers feeding it,
// such as a camera loop and a file importer. It remembers when each
// group first appeared so stale groups can be expired.
type Session struct {
	mu        sync.Mutex
	clock     clock.Clock
	logger    *slog.Logger
	pending   UnmergedPayloads
	firstSeen map[GroupKey]time.Time
}

// NewSession returns an empty session. A nil logger discards.
func NewSession(clk clock.Clock, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Session{
		clock:     clk,
		logger:    logger,
		firstSeen: make(map[GroupKey]time.Time),
	}
}

// Add merges payloads into the session and returns those now complete.
func (s *Session) Add(payloads ...format.Payload) []format.CompletePayload {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.pending
	result := Merge(before, payloads...)
	s.pending = result.Pending

	for _, part := range result.Pending.misconfigured[len(before.misconfigured):] {
		s.logger.Warn("misconfigured payload", "index", part.Index().String())
	}
	for _, part := range result.Pending.conflicts[len(before.conflicts):] {
		s.logger.Warn("conflicting duplicate",
			"index", part.Index().String(),
			"displaced", Fingerprint(part.Data()),
		)
	}

	completedAt := len(result.Complete) - len(result.Completed)
	for offset, key := range result.Completed {
		s.logger.Info("group completed",
			"group", key.String(),
			"bytes", len(result.Complete[completedAt+offset].Data),
			"fingerprint", Fingerprint(result.Complete[completedAt+offset].Data),
		)
		delete(s.firstSeen, key)
	}

	now := s.clock.Now()
	for key := range result.Pending.groups {
		if _, ok := s.firstSeen[key]; !ok {
			s.firstSeen[key] = now
			s.logger.Debug("group started", "group", key.String())
		}
	}
	return result.Complete
}

// Pending returns a copy of the session's merge state.
func (s *Session) Pending() UnmergedPayloads {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending.Clone()
}

// Restore replaces the session's state, typically with one loaded from
// a checkpoint. Restored groups count as first seen now.
func (s *Session) Restore(state UnmergedPayloads) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = state.Clone()
	s.firstSeen = make(map[GroupKey]time.Time, len(s.pending.groups))
	now := s.clock.Now()
	for key := range s.pending.groups {
		s.firstSeen[key] = now
	}
	s.logger.Debug("session restored", "groups", s.pending.Len())
}

// Expire discards groups first seen more than maxAge ago and returns
// their keys in ascending order.
func (s *Session) Expire(maxAge time.Duration) []GroupKey {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.clock.Now().Add(-maxAge)
	var expired []GroupKey
	for _, key := range s.pending.Keys() {
		if s.firstSeen[key].Before(cutoff) {
			s.pending.Discard(key)
			delete(s.firstSeen, key)
			expired = append(expired, key)
			s.logger.Info("group expired", "group", key.String())
		}
	}
	return expired
}

// Package session owns the one piece of shared mutable state in the client:
// who the user is, which CV is active, and the analysis cached for it. It is
// an explicit value object passed into every component that needs it instead
// of ambient globals.
package session

import (
	"sync"

	"go.uber.org/zap"

	"github.com/talentlink/talentlink/internal/platform"
)

const (
	RoleCandidate = "candidate"
	RoleRecruiter = "recruiter"
)

// Identity is the opaque, synchronously available authenticated user.
type Identity struct {
	UserID      string
	DisplayName string
	Role        string
}

type Session struct {
	mu       sync.Mutex
	identity Identity

	activeCV *platform.CVRecord

	// analysis is valid only for the short id it was computed for. An
	// in-flight analyze result whose tag no longer matches the active CV
	// is dropped, never merged.
	analysis    *platform.Analysis
	analysisFor string

	logger *zap.Logger
}

func New(identity Identity, logger *zap.Logger) *Session {
	return &Session{
		identity: identity,
		logger:   logger,
	}
}

// RequireUser short-circuits every operation before any network call is
// attempted when no identity is established.
func (s *Session) RequireUser() (Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.identity.UserID == "" {
		return Identity{}, platform.ErrNotAuthenticated
	}

	return s.identity, nil
}

func (s *Session) Identity() Identity {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.identity
}

// ActiveCV returns the current pointer, nil when none is selected.
func (s *Session) ActiveCV() *platform.CVRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.activeCV
}

// SelectCV sets the active-CV pointer. A cached analysis computed for a
// different short id is invalidated at the same time.
func (s *Session) SelectCV(cv *platform.CVRecord) {
	if cv == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.analysis != nil && s.analysisFor != cv.ShortID() {
		s.analysis = nil
		s.analysisFor = ""
	}
	s.activeCV = cv

	s.logger.Debug("active cv selected",
		zap.String("cv_id", cv.ID),
		zap.String("short_id", cv.ShortID()),
	)
}

// ClearActiveCV drops the pointer and cached analysis together when the
// given record is the active one. Callers invoke it only after the registry
// confirmed the delete; a failed delete leaves the session untouched.
func (s *Session) ClearActiveCV(cvID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.activeCV == nil || s.activeCV.ID != cvID {
		return
	}

	s.activeCV = nil
	s.analysis = nil
	s.analysisFor = ""

	s.logger.Debug("active cv cleared", zap.String("cv_id", cvID))
}

// CacheAnalysis records an analysis result tagged with the short id it was
// requested for. Results for a CV that is no longer active are discarded.
func (s *Session) CacheAnalysis(shortID string, analysis *platform.Analysis) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.activeCV == nil || s.activeCV.ShortID() != shortID {
		s.logger.Debug("dropping stale analysis", zap.String("short_id", shortID))
		return
	}

	s.analysis = analysis
	s.analysisFor = shortID
}

// CachedAnalysis returns the analysis for the active CV, nil when absent or
// computed for another document.
func (s *Session) CachedAnalysis() *platform.Analysis {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.activeCV == nil || s.analysisFor != s.activeCV.ShortID() {
		return nil
	}

	return s.analysis
}

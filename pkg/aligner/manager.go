package aligner

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
)

var logger = log.With().Str("component", "aligner-manager").Logger()

// Manager tries each configured backend in order and falls back to the next
// on failure. The uniform placeholder is expected to sit last in the chain,
// so a job never fails just because the real model is unreachable.
type Manager struct {
	backends []Aligner
	primary  Aligner
}

// NewManager creates a manager over an ordered backend chain.
func NewManager(backends []Aligner) *Manager {
	if len(backends) == 0 {
		logger.Warn().Msg("No aligner backends configured")
		return &Manager{}
	}

	primary := backends[0]
	logger.Info().
		Int("backend_count", len(backends)).
		Str("primary_backend", primary.Name()).
		Msg("Aligner manager initialized")

	return &Manager{
		backends: backends,
		primary:  primary,
	}
}

// Align implements Aligner with backend fallback.
func (m *Manager) Align(ctx context.Context, req Request) ([]TimedUnit, error) {
	units, _, err := m.AlignWithBackend(ctx, req)
	return units, err
}

// AlignWithBackend aligns and reports which backend produced the result, so
// callers can record it in result metadata.
func (m *Manager) AlignWithBackend(ctx context.Context, req Request) ([]TimedUnit, string, error) {
	if len(m.backends) == 0 {
		return nil, "", fmt.Errorf("no aligner backends available")
	}

	var lastErr error
	for i, backend := range m.backends {
		logger.Info().
			Str("backend", backend.Name()).
			Int("attempt", i+1).
			Int("total_backends", len(m.backends)).
			Msg("Trying aligner backend")

		units, err := backend.Align(ctx, req)
		if err == nil && len(units) == 0 {
			err = ErrNoUnits
		}
		if err == nil {
			logger.Info().
				Str("backend", backend.Name()).
				Int("unit_count", len(units)).
				Msg("Alignment succeeded")
			return units, backend.Name(), nil
		}

		// Empty lyrics cannot be rescued by another backend.
		if errors.Is(err, ErrInvalidInput) {
			return nil, "", err
		}

		logger.Warn().
			Str("backend", backend.Name()).
			Err(err).
			Msg("Backend failed")
		lastErr = err
	}

	return nil, "", fmt.Errorf("all aligner backends failed, last error: %w", lastErr)
}

// Name identifies the manager in logs (implements Aligner).
func (m *Manager) Name() string {
	if m.primary != nil {
		return fmt.Sprintf("Manager[Primary: %s]", m.primary.Name())
	}
	return "Manager[No Backends]"
}

// GetBackendCount returns the number of configured backends.
func (m *Manager) GetBackendCount() int {
	return len(m.backends)
}

// GetBackendNames returns the names of all configured backends in order.
func (m *Manager) GetBackendNames() []string {
	names := make([]string, len(m.backends))
	for i, backend := range m.backends {
		names[i] = backend.Name()
	}
	return names
}

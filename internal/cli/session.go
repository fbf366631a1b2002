package cli

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mesh-intelligence/launchpad/internal/api"
	"github.com/mesh-intelligence/launchpad/internal/fallback"
	"github.com/mesh-intelligence/launchpad/internal/launchpad"
	"github.com/mesh-intelligence/launchpad/pkg/store"
	"github.com/mesh-intelligence/launchpad/pkg/types"
)

// session is an endpoint table ready to serve calls. v2 sessions own an
// attached store; the caller must Close the session.
type session struct {
	api     *api.API
	store   types.Store
	metrics *prometheus.Registry
}

// openStore attaches the configured store.
func (a *app) openStore() (types.Store, error) {
	cfg, err := a.storeConfig()
	if err != nil {
		return nil, err
	}
	s, err := store.Open(cfg)
	if err != nil {
		return nil, sysError("%w", err)
	}
	logger.Debugf("attached %s store", cfg.Backend)
	return s, nil
}

// openSession builds the endpoint table for the selected api version.
func (a *app) openSession() (*session, error) {
	version := a.apiVersion()
	reg, err := fallback.DefaultRegistry()
	if err != nil {
		return nil, sysError("load fallback payloads: %w", err)
	}

	s := &session{metrics: prometheus.NewRegistry()}
	var (
		svc      *launchpad.Service
		policy   *fallback.Policy
		registry fallback.Registry = reg
	)
	switch version {
	case api.V1:
		registry, err = api.MocksV1(reg)
		if err != nil {
			return nil, sysError("%w", err)
		}
	case api.V2:
		st, err := a.openStore()
		if err != nil {
			return nil, err
		}
		s.store = st
		svc = launchpad.New(st)
		policy = fallback.NewPolicy(reg, fallback.WithRecorder(fallback.NewPrometheusRecorder(s.metrics)))
	}

	s.api, err = api.New(version, svc, policy, registry)
	if err != nil {
		if errors.Is(err, api.ErrUnknownVersion) {
			return nil, userError("%w (want %s or %s)", err, api.V1, api.V2)
		}
		return nil, sysError("%w", err)
	}
	return s, nil
}

// Close detaches the store, if any.
func (s *session) Close() error {
	if s.store == nil {
		return nil
	}
	if err := s.store.Detach(); err != nil {
		return sysError("detach store: %w", err)
	}
	return nil
}

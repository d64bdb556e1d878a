package tasks

import (
	"context"
	"fmt"

	"github.com/desertthunder/tvtrack/internal/models"
	"github.com/desertthunder/tvtrack/internal/services"
	"github.com/desertthunder/tvtrack/internal/shared"
)

// SetIdentity switches the signed-in user.
//
// remote is the store authorized for identity and is ignored when signing out.
// On sign-in the remote snapshot, when present, replaces the local collection.
// Signing out leaves local data untouched. Identity observers run after the pull.
func (m *Manager) SetIdentity(ctx context.Context, identity models.Identity, remote services.RemoteStore) error {
	m.mu.Lock()
	m.identity = identity
	if identity.SignedIn() {
		m.remote = remote
	} else {
		m.remote = nil
	}
	observers := append([]IdentityObserver(nil), m.identityObservers...)
	m.mu.Unlock()

	var err error
	if identity.SignedIn() {
		m.logger.Info("signed in", "uid", identity.UID, "name", identity.DisplayName)
		_, err = m.Pull(ctx, nil)
	} else {
		m.logger.Info("signed out")
	}

	for _, observer := range observers {
		observer(identity)
	}
	return err
}

// Pull replaces the local collection with the remote snapshot.
//
// Returns false without error when the remote document has no shows field.
func (m *Manager) Pull(ctx context.Context, progress chan<- ProgressUpdate) (bool, error) {
	identity, remote, err := m.remoteSession()
	if err != nil {
		return false, err
	}

	sendProgress(progress, pullRemoteUpdate(identity.UID))
	remoteShows, ok, err := remote.Read(ctx, identity.UID)
	if err != nil {
		m.logger.Error("failed to load remote shows", "uid", identity.UID, "error", err)
		return false, err
	}
	if !ok {
		m.logger.Debug("no remote shows", "uid", identity.UID)
		return false, nil
	}

	m.Replace(remoteShows)
	m.logger.Info("loaded remote shows", "uid", identity.UID, "count", len(remoteShows))
	return true, nil
}

// Push writes the local collection to the remote store immediately.
func (m *Manager) Push(ctx context.Context, progress chan<- ProgressUpdate) error {
	identity, remote, err := m.remoteSession()
	if err != nil {
		return err
	}

	snapshot := m.Snapshot()
	sendProgress(progress, pushRemoteUpdate(len(snapshot)))
	if err := remote.Write(ctx, identity.UID, snapshot); err != nil {
		m.logger.Error("failed to save shows remotely", "uid", identity.UID, "error", err)
		return err
	}
	return nil
}

func (m *Manager) remoteSession() (models.Identity, services.RemoteStore, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.identity.SignedIn() {
		return models.Identity{}, nil, fmt.Errorf("%w: sign in first", shared.ErrNotAuthenticated)
	}
	if m.remote == nil {
		return models.Identity{}, nil, fmt.Errorf("%w: remote store not configured", shared.ErrServiceUnavailable)
	}
	return m.identity, m.remote, nil
}

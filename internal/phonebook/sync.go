// Package phonebook keeps a local copy of a remote record collection in
// step with the server. Local state changes only after the remote call
// settles; a record the server reports missing is dropped locally.
package phonebook

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/marcus/phonebook/internal/models"
	"github.com/marcus/phonebook/internal/phonebookclient"
)

var (
	ErrDuplicate     = errors.New("already added to phonebook")
	ErrInvalidDraft  = errors.New("name is required")
	ErrUnknownRecord = errors.New("no such record")
	ErrNotLoaded     = errors.New("phonebook not loaded yet")
)

// Remote is the CRUD surface of the server resource.
// *phonebookclient.Client implements it.
type Remote interface {
	List(ctx context.Context) ([]models.Record, error)
	Create(ctx context.Context, draft models.Draft) (models.Record, error)
	Update(ctx context.Context, id models.ID, rec models.Record) (models.Record, error)
	Remove(ctx context.Context, id models.ID) error
}

// Confirmer asks the user a yes/no question and waits for the answer.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}

// Notifier receives the status message describing an operation's outcome.
type Notifier interface {
	Notify(text string, kind models.StatusKind)
}

// NotifyFunc adapts a function to Notifier.
type NotifyFunc func(text string, kind models.StatusKind)

func (f NotifyFunc) Notify(text string, kind models.StatusKind) {
	f(text, kind)
}

// Result says what an operation did to the local collection.
type Result int

const (
	ResultCreated  Result = iota + 1 // record appended
	ResultUpdated                    // record replaced in place
	ResultDeleted                    // record removed after a successful delete
	ResultStale                      // server no longer had the record; removed locally
	ResultDeclined                   // user said no; nothing changed
)

func (r Result) String() string {
	switch r {
	case ResultCreated:
		return "created"
	case ResultUpdated:
		return "updated"
	case ResultDeleted:
		return "deleted"
	case ResultStale:
		return "stale"
	case ResultDeclined:
		return "declined"
	}
	return "unknown"
}

// Outcome describes a settled operation.
type Outcome struct {
	Result Result
	Record models.Record
	// ClearDraft tells the view to reset its pending inputs.
	ClearDraft bool
}

// Synchronizer owns the local collection. Operations run one at a time;
// snapshots may be taken while an operation is in flight.
type Synchronizer struct {
	remote    Remote
	confirmer Confirmer
	notifier  Notifier

	opMu sync.Mutex

	mu     sync.RWMutex
	coll   *collection
	loaded bool
}

// New creates a synchronizer. A nil notifier discards status messages;
// a nil confirmer declines every prompt.
func New(remote Remote, confirmer Confirmer, notifier Notifier) *Synchronizer {
	return &Synchronizer{
		remote:    remote,
		confirmer: confirmer,
		notifier:  notifier,
		coll:      newCollection(nil),
	}
}

// Load replaces the collection with the server's full listing. On failure
// the previous state is kept and Loaded stays as it was.
func (s *Synchronizer) Load(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	recs, err := s.remote.List(ctx)
	if err != nil {
		return fmt.Errorf("load phonebook: %w", err)
	}

	s.mu.Lock()
	s.coll = newCollection(recs)
	s.loaded = true
	s.mu.Unlock()

	slog.Debug("phonebook loaded", "records", len(recs))
	return nil
}

// Loaded reports whether a listing has ever succeeded.
func (s *Synchronizer) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Records returns a copy of the collection in insertion order.
func (s *Synchronizer) Records() []models.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.coll.snapshot()
}

// Lookup finds a record by exact name.
func (s *Synchronizer) Lookup(name string) (models.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.coll.lookupName(name)
}

// Get finds a record by id.
func (s *Synchronizer) Get(id models.ID) (models.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.coll.lookupID(id)
}

// AddOrReplace creates a record for a new name, or, after confirmation,
// replaces the number of the record already holding that name.
func (s *Synchronizer) AddOrReplace(ctx context.Context, draft models.Draft) (Outcome, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	if draft.Blank() {
		return Outcome{}, ErrInvalidDraft
	}
	if !s.Loaded() {
		return Outcome{}, ErrNotLoaded
	}

	existing, found := s.Lookup(draft.Name)
	if !found {
		return s.create(ctx, draft)
	}
	if existing.Number == draft.Number {
		return Outcome{}, fmt.Errorf("%s is %w", draft.Name, ErrDuplicate)
	}

	ok, err := s.confirm(ctx, fmt.Sprintf("%s is already added to phonebook, replace the old number with a new one?", existing.Name))
	if err != nil {
		return Outcome{}, err
	}
	if !ok {
		return Outcome{Result: ResultDeclined, Record: existing}, nil
	}
	return s.update(ctx, existing, draft.Number)
}

func (s *Synchronizer) create(ctx context.Context, draft models.Draft) (Outcome, error) {
	rec, err := s.remote.Create(ctx, draft)
	if err != nil {
		return Outcome{}, fmt.Errorf("add %s: %w", draft.Name, err)
	}

	s.mu.Lock()
	s.coll.append(rec)
	s.mu.Unlock()

	slog.Debug("record created", "id", rec.ID, "name", rec.Name)
	s.notify("Added "+rec.Name, models.StatusSuccess)
	return Outcome{Result: ResultCreated, Record: rec, ClearDraft: true}, nil
}

func (s *Synchronizer) update(ctx context.Context, existing models.Record, number string) (Outcome, error) {
	changed := existing
	changed.Number = number

	rec, err := s.remote.Update(ctx, existing.ID, changed)
	switch {
	case errors.Is(err, phonebookclient.ErrNotFound):
		s.dropLocal(existing.ID)
		slog.Debug("update target gone, removed locally", "id", existing.ID, "name", existing.Name)
		s.notify(fmt.Sprintf("Information of %s has already been removed from server", existing.Name), models.StatusError)
		return Outcome{Result: ResultStale, Record: existing, ClearDraft: true}, nil
	case err != nil:
		return Outcome{}, fmt.Errorf("update %s: %w", existing.Name, err)
	}

	s.mu.Lock()
	s.coll.replace(existing.ID, rec)
	s.mu.Unlock()

	slog.Debug("record updated", "id", rec.ID, "name", rec.Name)
	s.notify("Changed number of "+rec.Name, models.StatusSuccess)
	return Outcome{Result: ResultUpdated, Record: rec, ClearDraft: true}, nil
}

// Delete removes a record after confirmation. A record the server no longer
// has is removed locally too; only the status message differs.
func (s *Synchronizer) Delete(ctx context.Context, id models.ID) (Outcome, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	rec, ok := s.Get(id)
	if !ok {
		return Outcome{}, fmt.Errorf("delete %s: %w", id, ErrUnknownRecord)
	}

	yes, err := s.confirm(ctx, fmt.Sprintf("Delete %s?", rec.Name))
	if err != nil {
		return Outcome{}, err
	}
	if !yes {
		return Outcome{Result: ResultDeclined, Record: rec}, nil
	}

	err = s.remote.Remove(ctx, id)
	switch {
	case errors.Is(err, phonebookclient.ErrNotFound):
		s.dropLocal(id)
		s.notify(fmt.Sprintf("%s was already removed from server", rec.Name), models.StatusError)
		return Outcome{Result: ResultStale, Record: rec}, nil
	case err != nil:
		return Outcome{}, fmt.Errorf("delete %s: %w", rec.Name, err)
	}

	s.dropLocal(id)
	slog.Debug("record deleted", "id", id, "name", rec.Name)
	s.notify("Deleted "+rec.Name, models.StatusSuccess)
	return Outcome{Result: ResultDeleted, Record: rec}, nil
}

// FindByNameOrID resolves a user-supplied reference, preferring an exact
// name match, then an id, then a unique case-insensitive name match.
func (s *Synchronizer) FindByNameOrID(ref string) (models.Record, bool) {
	if rec, ok := s.Lookup(ref); ok {
		return rec, true
	}
	if rec, ok := s.Get(models.ID(ref)); ok {
		return rec, true
	}

	var match models.Record
	n := 0
	for _, r := range s.Records() {
		if strings.EqualFold(r.Name, ref) {
			match = r
			n++
		}
	}
	return match, n == 1
}

func (s *Synchronizer) dropLocal(id models.ID) {
	s.mu.Lock()
	s.coll.remove(id)
	s.mu.Unlock()
}

func (s *Synchronizer) confirm(ctx context.Context, prompt string) (bool, error) {
	if s.confirmer == nil {
		return false, nil
	}
	ok, err := s.confirmer.Confirm(ctx, prompt)
	if err != nil {
		return false, fmt.Errorf("confirm: %w", err)
	}
	return ok, nil
}

func (s *Synchronizer) notify(text string, kind models.StatusKind) {
	if s.notifier != nil {
		s.notifier.Notify(text, kind)
	}
}

// Package dashboard keeps the local lead list consistent with the server and
// drives the single create/edit form.
//
// The list is never patched locally. Every successful mutation is followed by
// a full refetch, and the server is the source of truth.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/hay-kot/leadr/internal/core/lead"
)

// Sentinel errors for dashboard operations.
var (
	// ErrSubmitInFlight is returned when Submit is called while a previous
	// submission has not resolved.
	ErrSubmitInFlight = errors.New("a submission is already in progress")
	// ErrClosed is returned when the dashboard was closed before or during the
	// call. Results of such calls are discarded.
	ErrClosed = errors.New("dashboard closed")
)

const listKey = "leads"

// Repository performs CRUD operations against the lead collection.
type Repository interface {
	List(ctx context.Context) ([]lead.Lead, error)
	Create(ctx context.Context, fields lead.Fields) (lead.Lead, error)
	Update(ctx context.Context, id string, fields lead.Fields) (lead.Lead, error)
	Delete(ctx context.Context, id string) error
}

// Options configures a Reconciler.
type Options struct {
	// ClearDraftOnDelete resets the draft to Creating when the lead it is
	// editing gets deleted. When false the stale draft is left in place.
	ClearDraftOnDelete bool
	Logger             zerolog.Logger
}

// Snapshot is a copy of the reconciler state.
type Snapshot struct {
	Leads      []lead.Lead
	Loaded     bool
	Draft      Draft
	Submitting bool
	// RefreshErr is the error of the most recent list fetch, if it failed.
	RefreshErr error
}

type listResult struct {
	seq   uint64
	leads []lead.Lead
}

// Reconciler owns the draft, its mode and the local list.
type Reconciler struct {
	repo   Repository
	opts   Options
	logger zerolog.Logger
	group  singleflight.Group

	mu         sync.Mutex
	closed     bool
	// rev counts draft changes made through Edit, SetFields and Cancel.
	rev        uint64
	seq        uint64
	appliedSeq uint64
	leads      []lead.Lead
	loaded     bool
	draft      Draft
	submitting bool
	refreshErr error
}

// New creates a Reconciler in the Creating state with an empty list.
func New(repo Repository, opts Options) *Reconciler {
	return &Reconciler{
		repo:   repo,
		opts:   opts,
		logger: opts.Logger,
		draft:  EmptyDraft(),
	}
}

// Snapshot returns a copy of the current state.
func (r *Reconciler) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	return Snapshot{
		Leads:      slices.Clone(r.leads),
		Loaded:     r.loaded,
		Draft:      r.draft,
		Submitting: r.submitting,
		RefreshErr: r.refreshErr,
	}
}

// Load performs the initial list fetch.
func (r *Reconciler) Load(ctx context.Context) error {
	return r.Refresh(ctx)
}

// Refresh refetches the list. Concurrent refreshes share one request.
func (r *Reconciler) Refresh(ctx context.Context) error {
	return r.fetch(ctx, false)
}

// refetch is the refresh that follows a mutation. It never joins a request
// that was issued before the mutation resolved.
func (r *Reconciler) refetch(ctx context.Context) error {
	return r.fetch(ctx, true)
}

func (r *Reconciler) fetch(ctx context.Context, fresh bool) error {
	if r.isClosed() {
		return ErrClosed
	}

	if fresh {
		r.group.Forget(listKey)
	}

	v, err, _ := r.group.Do(listKey, func() (any, error) {
		seq := r.nextSeq()
		leads, err := r.repo.List(ctx)
		return listResult{seq: seq, leads: leads}, err
	})

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}

	res, _ := v.(listResult)
	// an older response arriving late must not overwrite a newer one
	current := res.seq > r.appliedSeq

	if err != nil {
		if current {
			r.refreshErr = err
		}
		return fmt.Errorf("list leads: %w", err)
	}

	if current {
		r.appliedSeq = res.seq
		r.leads = res.leads
		r.loaded = true
		r.refreshErr = nil
	}
	return nil
}

// Edit binds the draft to l, replacing any unsaved changes. The fields are a
// snapshot taken now.
func (r *Reconciler) Edit(l lead.Lead) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.draft.Mode.EditingID(); ok && id != l.ID {
		r.logger.Debug().Str("discarded", id).Str("lead_id", l.ID).Msg("switching edit target")
	}

	r.draft = Draft{Fields: l.EditFields(), Mode: Editing(l.ID)}
	r.rev++
}

// EditByID starts editing the lead with id from the current list.
func (r *Reconciler) EditByID(id string) error {
	r.mu.Lock()
	idx := slices.IndexFunc(r.leads, func(l lead.Lead) bool { return l.ID == id })
	var target lead.Lead
	if idx >= 0 {
		target = r.leads[idx]
	}
	r.mu.Unlock()

	if idx < 0 {
		return fmt.Errorf("edit %q: %w", id, lead.ErrNotFound)
	}

	r.Edit(target)
	return nil
}

// SetFields replaces the draft fields with user input. The mode is unchanged.
func (r *Reconciler) SetFields(fields lead.Fields) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.draft.Fields = fields
	r.rev++
}

// Cancel abandons the draft and returns to Creating.
func (r *Reconciler) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.draft = EmptyDraft()
	r.rev++
}

// Submit creates or updates according to the draft mode. Invalid fields are
// rejected before any request. On failure the draft and mode are kept. On
// success the draft resets and the list is refetched.
func (r *Reconciler) Submit(ctx context.Context) (lead.Lead, error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return lead.Lead{}, ErrClosed
	}
	if r.submitting {
		r.mu.Unlock()
		return lead.Lead{}, ErrSubmitInFlight
	}

	draft, rev := r.draft, r.rev
	if err := draft.Fields.Validate(); err != nil {
		r.mu.Unlock()
		return lead.Lead{}, err
	}
	r.submitting = true
	r.mu.Unlock()

	var (
		saved lead.Lead
		err   error
		verb  = "create"
	)
	if id, ok := draft.Mode.EditingID(); ok {
		verb = "update"
		saved, err = r.repo.Update(ctx, id, draft.Fields)
	} else {
		saved, err = r.repo.Create(ctx, draft.Fields)
	}

	r.mu.Lock()
	r.submitting = false
	if r.closed {
		r.mu.Unlock()
		return lead.Lead{}, ErrClosed
	}
	if err != nil {
		r.mu.Unlock()
		r.logger.Warn().Err(err).Str("mode", draft.Mode.String()).Msg("submit failed")
		return lead.Lead{}, fmt.Errorf("%s lead: %w", verb, err)
	}
	// a draft touched while the request was out belongs to a newer form
	if r.rev == rev {
		r.draft = EmptyDraft()
		r.rev++
	}
	r.mu.Unlock()

	r.logger.Info().Str("lead_id", saved.ID).Str("op", verb).Msg("lead saved")

	if err := r.refetch(ctx); err != nil && !errors.Is(err, ErrClosed) {
		r.logger.Warn().Err(err).Msg("refetch after submit failed")
	}
	return saved, nil
}

// Delete removes the lead and always refetches, even when the delete failed.
// A lead that is already gone counts as deleted.
func (r *Reconciler) Delete(ctx context.Context, id string) error {
	if r.isClosed() {
		return ErrClosed
	}

	err := r.repo.Delete(ctx, id)
	if errors.Is(err, lead.ErrNotFound) {
		err = nil
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrClosed
	}
	if err == nil && r.opts.ClearDraftOnDelete {
		if editing, ok := r.draft.Mode.EditingID(); ok && editing == id {
			r.draft = EmptyDraft()
			r.rev++
		}
	}
	r.mu.Unlock()

	if err != nil {
		r.logger.Warn().Err(err).Str("lead_id", id).Msg("delete failed")
	}

	if rerr := r.refetch(ctx); rerr != nil && !errors.Is(rerr, ErrClosed) {
		r.logger.Warn().Err(rerr).Msg("refetch after delete failed")
	}

	if err != nil {
		return fmt.Errorf("delete lead: %w", err)
	}
	return nil
}

// Close detaches the reconciler from its view for good. Calls still in flight
// finish but their results are discarded.
func (r *Reconciler) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true
}

func (r *Reconciler) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

func (r *Reconciler) nextSeq() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	return r.seq
}

package usecase

import (
	"context"
	"sync/atomic"
	"time"

	"alumni-prep-backend/internal/domain"
	"alumni-prep-backend/pkg/metrics"
)

// directoryState is one stored view. seq is the start order of the refresh
// that produced profiles; failedSeq is the latest-started refresh that failed.
type directoryState struct {
	seq       uint64
	failedSeq uint64
	profiles  []domain.CandidateProfile
}

// AlumniDirectory is the shared in-memory view of the record store. It is
// only ever replaced wholesale by Refresh; readers get an immutable snapshot.
//
// Refreshes may overlap across sessions. A result is stored only if no
// refresh started later has stored one already, so a slow read can never
// replace a newer view.
type AlumniDirectory struct {
	repo    domain.AlumniRepository
	timeout time.Duration

	nextSeq atomic.Uint64
	state   atomic.Pointer[directoryState]
}

func NewAlumniDirectory(repo domain.AlumniRepository, timeout time.Duration) *AlumniDirectory {
	d := &AlumniDirectory{repo: repo, timeout: timeout}
	d.state.Store(&directoryState{profiles: []domain.CandidateProfile{}})
	return d
}

// Snapshot returns the current collection. Callers must not modify it.
func (d *AlumniDirectory) Snapshot() []domain.CandidateProfile {
	return d.state.Load().profiles
}

// Stale reports whether a refresh newer than the stored view failed, so the
// view may be behind the record store.
func (d *AlumniDirectory) Stale() bool {
	st := d.state.Load()
	return st.failedSeq > st.seq
}

// Refresh re-reads the full collection and swaps it in. On failure the
// previous collection is kept and the directory is marked stale.
func (d *AlumniDirectory) Refresh(ctx context.Context) error {
	seq := d.nextSeq.Add(1)

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	profiles, err := d.repo.List(ctx)
	if err != nil {
		d.markFailed(seq)
		return domain.MarkTimeout(err)
	}
	if profiles == nil {
		profiles = []domain.CandidateProfile{}
	}

	for {
		cur := d.state.Load()
		if cur.seq > seq {
			// A later-started read already landed
			return nil
		}
		next := &directoryState{seq: seq, failedSeq: cur.failedSeq, profiles: profiles}
		if d.state.CompareAndSwap(cur, next) {
			metrics.DirectorySize.Set(float64(len(profiles)))
			return nil
		}
	}
}

func (d *AlumniDirectory) markFailed(seq uint64) {
	for {
		cur := d.state.Load()
		if cur.failedSeq >= seq {
			return
		}
		next := &directoryState{seq: cur.seq, failedSeq: seq, profiles: cur.profiles}
		if d.state.CompareAndSwap(cur, next) {
			return
		}
	}
}

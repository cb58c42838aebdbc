//go:build linux

package ring

import (
	"errors"
	"fmt"
	"sync/atomic"
	"unsafe"

	"github.com/aleksandar-had/feedback-arc-set/pkg/sema"
	"github.com/aleksandar-had/feedback-arc-set/pkg/shmem"
)

// ErrExists is returned by Create when the session's shared objects are
// already present, usually left behind by a crashed supervisor.
var ErrExists = shmem.ErrExists

// ErrNotExist is returned by Open when no supervisor has created the
// session yet.
var ErrNotExist = shmem.ErrNotExist

// Session is one process's attachment to a run's shared resources: the
// mapped ring block and the three semaphores, plus this process's local ring
// cursor. It is the explicit context object passed to the search and
// supervisor loops; nothing here lives in package globals.
//
// A Session is confined to the goroutine running its role's loop. The
// cross-process synchronization is the semaphores' job, not the Session's.
type Session struct {
	name  string
	owner bool

	m  *shmem.Mapping
	st *state

	excl *sema.Sem // binary: at most one producer in the write path
	used *sema.Sem // counting: occupied slots, consumer's wait target
	free *sema.Sem // counting: empty slots, producer's wait target

	cursor int // local scan position; occupancy markers are the truth
}

func ringName(session string) string { return session + "-ring" }
func exclName(session string) string { return session + "-excl" }
func usedName(session string) string { return session + "-used" }
func freeName(session string) string { return session + "-free" }

// Create builds the shared resources for a new session: the ring block and
// the semaphore triple, all named after the session. Only the supervisor
// calls Create, and it must do so before any generator attaches. The
// returned session owns the resources: its Close removes them.
func Create(session string) (*Session, error) {
	m, err := shmem.Create(ringName(session), stateSize)
	if err != nil {
		return nil, err
	}
	s := &Session{name: session, owner: true, m: m, st: castState(m)}

	atomic.StoreInt32(&s.st.best, UnsetBest)
	atomic.StoreUint32(&s.st.magic, layoutMagic)

	if s.excl, err = sema.Create(exclName(session), 1); err != nil {
		s.unwindCreate()
		return nil, err
	}
	if s.used, err = sema.Create(usedName(session), 0); err != nil {
		s.unwindCreate()
		return nil, err
	}
	if s.free, err = sema.Create(freeName(session), Capacity); err != nil {
		s.unwindCreate()
		return nil, err
	}
	return s, nil
}

// Open attaches to an existing session by name. Generators call this; the
// returned session does not own the shared resources and its Close only
// detaches.
func Open(session string) (*Session, error) {
	m, err := shmem.Open(ringName(session), stateSize)
	if err != nil {
		return nil, err
	}
	s := &Session{name: session, m: m, st: castState(m)}

	if atomic.LoadUint32(&s.st.magic) != layoutMagic {
		s.Close()
		return nil, fmt.Errorf("ring: %s is not an initialized ring buffer", ringName(session))
	}
	if s.excl, err = sema.Open(exclName(session)); err != nil {
		s.Close()
		return nil, err
	}
	if s.used, err = sema.Open(usedName(session)); err != nil {
		s.Close()
		return nil, err
	}
	if s.free, err = sema.Open(freeName(session)); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Name returns the session name the shared object names derive from.
func (s *Session) Name() string { return s.name }

// Close detaches every resource this process holds. On the owning
// (supervisor) session it also removes the named objects, so removal
// happens exactly once system-wide; generator sessions only unmap.
func (s *Session) Close() error {
	var errs []error
	for _, sem := range []*sema.Sem{s.excl, s.used, s.free} {
		if sem != nil {
			errs = append(errs, sem.Close())
		}
	}
	s.excl, s.used, s.free = nil, nil, nil
	if s.m != nil {
		errs = append(errs, s.m.Close())
		s.m, s.st = nil, nil
	}
	if s.owner {
		errs = append(errs, Destroy(s.name))
		s.owner = false
	}
	return errors.Join(errs...)
}

// Destroy removes a session's named objects without attaching to them.
// Safe to call on names that are partially or fully gone; used by the
// supervisor's --force path to clear leftovers of a crashed run.
func Destroy(session string) error {
	return errors.Join(
		shmem.Unlink(ringName(session)),
		sema.Unlink(exclName(session)),
		sema.Unlink(usedName(session)),
		sema.Unlink(freeName(session)),
	)
}

// unwindCreate tears down a half-built owning session.
func (s *Session) unwindCreate() {
	_ = s.Close()
}

func castState(m *shmem.Mapping) *state {
	return (*state)(unsafe.Pointer(&m.Bytes()[0]))
}

//go:build linux

// Package sema provides named counting semaphores shared between processes.
//
// Each semaphore is a one-page shared-memory object (see pkg/shmem) holding a
// single 32-bit counter. Blocking is done with the futex syscall on that
// counter, which works across unrelated processes as long as both map the
// same pages. Acquire decrements the counter or blocks while it is zero;
// Release increments it and wakes one waiter. Interrupted waits are retried,
// never surfaced to the caller.
//
// This is the semaphore triple's home in the ring-buffer protocol: one binary
// semaphore serializing producers and two counting semaphores tracking free
// and occupied slots.
package sema

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/aleksandar-had/feedback-arc-set/pkg/shmem"
)

const (
	// objectSize is one page; a semaphore only needs 8 bytes but mappings
	// are page-granular anyway.
	objectSize = 4096

	// stateMagic guards against attaching to something that is not a
	// semaphore. Written last during Create so a half-initialized object is
	// never mistaken for a ready one.
	stateMagic = 0x53454d31 // "SEM1"

	// cancelPoll bounds how long a context-aware Acquire sleeps in the
	// kernel before rechecking ctx. Cancellation is cooperative; the wait
	// itself is never aborted mid-decrement.
	cancelPoll = 25 * time.Millisecond
)

// Futex operation codes, from <linux/futex.h>. x/sys exports the syscall
// number but not these; the shared (non-private) variants are required here
// because the word is mapped into unrelated processes.
const (
	futexWaitOp = 0 // FUTEX_WAIT
	futexWakeOp = 1 // FUTEX_WAKE
)

// state is the wire layout of the shared page. Fixed-width fields only; the
// futex syscall requires the counter to be 4-byte aligned, which the page
// alignment of the mapping guarantees.
type state struct {
	magic uint32
	value uint32
}

// Sem is a handle to a named cross-process counting semaphore.
type Sem struct {
	m  *shmem.Mapping
	st *state
}

// Create makes a new named semaphore with the given initial value.
// The name must be unused; stale objects from dead runs are an error.
func Create(name string, initial uint32) (*Sem, error) {
	m, err := shmem.Create(name, objectSize)
	if err != nil {
		return nil, err
	}
	s := attach(m)
	atomic.StoreUint32(&s.st.value, initial)
	atomic.StoreUint32(&s.st.magic, stateMagic)
	return s, nil
}

// Open attaches to a semaphore previously created under the same name.
func Open(name string) (*Sem, error) {
	m, err := shmem.Open(name, objectSize)
	if err != nil {
		return nil, err
	}
	s := attach(m)
	if atomic.LoadUint32(&s.st.magic) != stateMagic {
		s.Close()
		return nil, fmt.Errorf("sema: %s is not an initialized semaphore", name)
	}
	return s, nil
}

func attach(m *shmem.Mapping) *Sem {
	return &Sem{m: m, st: (*state)(unsafe.Pointer(&m.Bytes()[0]))}
}

// Acquire decrements the semaphore, blocking while its value is zero.
//
// With a cancellable ctx, the kernel wait is chopped into short timed waits
// so cancellation is observed between them; Acquire then returns ctx.Err()
// without having decremented. With context.Background() the wait is a plain
// untimed futex sleep. EINTR and spurious wakeups are always retried.
func (s *Sem) Acquire(ctx context.Context) error {
	for {
		if s.TryAcquire() {
			return nil
		}
		if ctx.Done() != nil {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := futexWait(&s.st.value, 0, cancelPoll); err != nil {
				return err
			}
			continue
		}
		if err := futexWait(&s.st.value, 0, 0); err != nil {
			return err
		}
	}
}

// TryAcquire decrements the semaphore if its value is positive and reports
// whether it did. It never blocks.
func (s *Sem) TryAcquire() bool {
	for {
		v := atomic.LoadUint32(&s.st.value)
		if v == 0 {
			return false
		}
		if atomic.CompareAndSwapUint32(&s.st.value, v, v-1) {
			return true
		}
	}
}

// Release increments the semaphore and wakes one blocked waiter, if any.
func (s *Sem) Release() error {
	atomic.AddUint32(&s.st.value, 1)
	return futexWake(&s.st.value, 1)
}

// Value returns the current counter. Purely informational; by the time the
// caller looks at it another process may have changed it.
func (s *Sem) Value() uint32 {
	return atomic.LoadUint32(&s.st.value)
}

// Name returns the semaphore's object name.
func (s *Sem) Name() string { return s.m.Name() }

// Close detaches this process's mapping. The semaphore itself stays alive
// until the creator calls Unlink.
func (s *Sem) Close() error { return s.m.Close() }

// Unlink removes the named semaphore. Idempotent; only the creating process
// should ever call it.
func Unlink(name string) error { return shmem.Unlink(name) }

// futexWait sleeps until the word at addr changes away from val, the timeout
// expires (timeout 0 means wait forever), or the wait is interrupted. All
// three outcomes return nil: the caller re-examines the counter and decides.
func futexWait(addr *uint32, val uint32, timeout time.Duration) error {
	var tsp *unix.Timespec
	if timeout > 0 {
		ts := unix.NsecToTimespec(timeout.Nanoseconds())
		tsp = &ts
	}
	_, _, errno := unix.Syscall6(unix.SYS_FUTEX,
		uintptr(unsafe.Pointer(addr)), futexWaitOp, uintptr(val),
		uintptr(unsafe.Pointer(tsp)), 0, 0)
	switch errno {
	case 0, unix.EAGAIN, unix.EINTR, unix.ETIMEDOUT:
		return nil
	default:
		return fmt.Errorf("sema: futex wait: %w", errno)
	}
}

// futexWake wakes up to n processes blocked on the word at addr.
func futexWake(addr *uint32, n int) error {
	_, _, errno := unix.Syscall6(unix.SYS_FUTEX,
		uintptr(unsafe.Pointer(addr)), futexWakeOp, uintptr(n), 0, 0, 0)
	if errno != 0 {
		return fmt.Errorf("sema: futex wake: %w", errno)
	}
	return nil
}

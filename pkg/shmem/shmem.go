//go:build linux

// Package shmem manages named POSIX shared-memory objects.
//
// Objects live under /dev/shm, which is where shm_open places them on Linux.
// A Mapping created here in one process and opened by name in another refers
// to the same physical pages, so writes through one mapping are visible
// through the other. The creator is expected to be the sole owner of Unlink;
// other processes only Close (detach) their own mapping.
package shmem

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

// shmDir is the tmpfs mount backing POSIX shared memory on Linux.
const shmDir = "/dev/shm"

var (
	// ErrBadName is returned when a shared-memory name is empty or contains
	// a path separator. Names are plain identifiers, not paths.
	ErrBadName = errors.New("shmem: invalid object name")

	// ErrExists is returned by Create when an object with the same name is
	// already present, usually a leftover from a crashed run.
	ErrExists = errors.New("shmem: object already exists")

	// ErrNotExist is returned by Open when no object with the given name has
	// been created yet.
	ErrNotExist = errors.New("shmem: object does not exist")
)

// Mapping is a shared-memory object mapped into this process.
// The zero value is not usable; obtain one from Create or Open.
type Mapping struct {
	name string
	data []byte
}

// Create makes a new shared-memory object of the given size and maps it.
// Creation is exclusive: an existing object with the same name is an error
// rather than silently reused, so stale state from a dead run never leaks
// into a new one. The object's pages are zeroed by the kernel.
func Create(name string, size int) (*Mapping, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(objectPath(name), os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("%w: %s", ErrExists, name)
		}
		return nil, fmt.Errorf("shmem: create %s: %w", name, err)
	}
	defer f.Close()

	if err := f.Truncate(int64(size)); err != nil {
		os.Remove(objectPath(name))
		return nil, fmt.Errorf("shmem: truncate %s: %w", name, err)
	}
	return mapFile(f, name, size)
}

// Open attaches to an existing shared-memory object of the given size.
// The size must match what the creator used; the layout check beyond raw
// size is the caller's responsibility.
func Open(name string, size int) (*Mapping, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(objectPath(name), os.O_RDWR, 0o600)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotExist, name)
		}
		return nil, fmt.Errorf("shmem: open %s: %w", name, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("shmem: stat %s: %w", name, err)
	}
	if info.Size() != int64(size) {
		return nil, fmt.Errorf("shmem: %s is %d bytes, want %d", name, info.Size(), size)
	}
	return mapFile(f, name, size)
}

// Bytes returns the mapped region. The slice stays valid until Close.
func (m *Mapping) Bytes() []byte { return m.data }

// Name returns the object name the mapping was created or opened with.
func (m *Mapping) Name() string { return m.name }

// Close unmaps the region. It does not remove the underlying object;
// that is Unlink's job and belongs to the creator alone.
func (m *Mapping) Close() error {
	if m.data == nil {
		return nil
	}
	data := m.data
	m.data = nil
	if err := unix.Munmap(data); err != nil {
		return fmt.Errorf("shmem: unmap %s: %w", m.name, err)
	}
	return nil
}

// Unlink removes the named object so the name becomes reusable. Removing a
// name that is already gone is a no-op, which makes teardown idempotent.
// Mappings other processes still hold stay valid until they unmap.
func Unlink(name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	if err := os.Remove(objectPath(name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("shmem: unlink %s: %w", name, err)
	}
	return nil
}

func mapFile(f *os.File, name string, size int) (*Mapping, error) {
	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("shmem: mmap %s: %w", name, err)
	}
	return &Mapping{name: name, data: data}, nil
}

func objectPath(name string) string {
	return filepath.Join(shmDir, name)
}

func checkName(name string) error {
	if name == "" || strings.ContainsRune(name, '/') {
		return fmt.Errorf("%w: %q", ErrBadName, name)
	}
	return nil
}

//go:build linux

package shmem

import (
	"errors"
	"fmt"
	"os"
	"testing"
)

func testName(t *testing.T) string {
	return fmt.Sprintf("fbarc-test-%d-%s", os.Getpid(), t.Name())
}

func TestCreateOpenRoundTrip(t *testing.T) {
	name := testName(t)
	t.Cleanup(func() { Unlink(name) })

	creator, err := Create(name, 128)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	defer creator.Close()

	creator.Bytes()[0] = 0xAB
	creator.Bytes()[127] = 0xCD

	attached, err := Open(name, 128)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer attached.Close()

	if attached.Bytes()[0] != 0xAB || attached.Bytes()[127] != 0xCD {
		t.Errorf("attached mapping does not see creator's writes")
	}

	// Writes travel the other way too.
	attached.Bytes()[1] = 0x42
	if creator.Bytes()[1] != 0x42 {
		t.Errorf("creator mapping does not see attached mapping's writes")
	}
}

func TestCreateZeroed(t *testing.T) {
	name := testName(t)
	t.Cleanup(func() { Unlink(name) })

	m, err := Create(name, 64)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	defer m.Close()

	for i, b := range m.Bytes() {
		if b != 0 {
			t.Fatalf("byte %d = %#x, want 0", i, b)
		}
	}
}

func TestCreateExclusive(t *testing.T) {
	name := testName(t)
	t.Cleanup(func() { Unlink(name) })

	m, err := Create(name, 32)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	defer m.Close()

	if _, err := Create(name, 32); !errors.Is(err, ErrExists) {
		t.Errorf("second Create() error = %v, want ErrExists", err)
	}
}

func TestOpenMissing(t *testing.T) {
	if _, err := Open(testName(t), 32); !errors.Is(err, ErrNotExist) {
		t.Errorf("Open() error = %v, want ErrNotExist", err)
	}
}

func TestOpenSizeMismatch(t *testing.T) {
	name := testName(t)
	t.Cleanup(func() { Unlink(name) })

	m, err := Create(name, 64)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	defer m.Close()

	if _, err := Open(name, 128); err == nil {
		t.Errorf("Open() with wrong size succeeded, want error")
	}
}

func TestUnlinkIdempotent(t *testing.T) {
	name := testName(t)

	m, err := Create(name, 32)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	m.Close()

	if err := Unlink(name); err != nil {
		t.Errorf("Unlink() error: %v", err)
	}
	if err := Unlink(name); err != nil {
		t.Errorf("second Unlink() error: %v, want nil", err)
	}
}

func TestBadNames(t *testing.T) {
	for _, name := range []string{"", "a/b"} {
		if _, err := Create(name, 32); !errors.Is(err, ErrBadName) {
			t.Errorf("Create(%q) error = %v, want ErrBadName", name, err)
		}
	}
}

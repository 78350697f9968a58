// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

// ErrEmpty is returned when a secret source yields no bytes.
var ErrEmpty = errors.New("secret is empty")

// Buffer holds secret bytes in locked, non-dumpable memory. A Buffer
// must not be copied. After Close, reading the contents panics.
type Buffer struct {
	mu     sync.Mutex
	data   []byte
	closed bool
}

// New allocates a zeroed buffer of size bytes.
func New(size int) (*Buffer, error) {
	if size <= 0 {
		return nil, fmt.Errorf("secret: buffer size must be positive, got %d", size)
	}

	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, fmt.Errorf("secret: mmap failed: %w", err)
	}

	if err := unix.Mlock(data); err != nil {
		unix.Munmap(data)
		return nil, fmt.Errorf("secret: mlock failed: %w", err)
	}

	// MADV_DONTDUMP is unsupported on some kernels. The region is still
	// locked against swap, so carry on without it.
	_ = unix.Madvise(data, unix.MADV_DONTDUMP)

	return &Buffer{data: data}, nil
}

// NewFromBytes copies source into a new buffer and zeroes source.
func NewFromBytes(source []byte) (*Buffer, error) {
	if len(source) == 0 {
		return nil, ErrEmpty
	}

	buffer, err := New(len(source))
	if err != nil {
		Zero(source)
		return nil, err
	}
	copy(buffer.data, source)
	Zero(source)
	return buffer, nil
}

// Bytes returns the secret. The slice aliases the locked region and is
// invalid after Close.
func (b *Buffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		panic("secret: read from closed buffer")
	}
	return b.data
}

// String returns a heap copy of the secret, for APIs such as age's
// that only take strings. Keep its lifetime short.
func (b *Buffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		panic("secret: read from closed buffer")
	}
	return string(b.data)
}

// Len returns the secret's length, or zero after Close.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.data)
}

// Clone copies the secret into an independent buffer.
func (b *Buffer) Clone() (*Buffer, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, errors.New("secret: clone of closed buffer")
	}
	clone, err := New(len(b.data))
	if err != nil {
		return nil, err
	}
	copy(clone.data, b.data)
	return clone, nil
}

// Close zeroes, unlocks and unmaps the buffer. Close is idempotent.
func (b *Buffer) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	Zero(b.data)

	var firstError error
	if err := unix.Munlock(b.data); err != nil {
		firstError = fmt.Errorf("secret: munlock failed: %w", err)
	}
	if err := unix.Munmap(b.data); err != nil && firstError == nil {
		firstError = fmt.Errorf("secret: munmap failed: %w", err)
	}
	b.data = nil
	return firstError
}

// Zero overwrites data with zeroes.
func Zero(data []byte) {
	clear(data)
}

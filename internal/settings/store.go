package settings

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ImageSize is the size of the persisted settings image.
const ImageSize = 128

// erased is the value of a never-written byte.
const erased = 0xFF

// ErrOffset is returned for reads or writes outside the image.
var ErrOffset = errors.New("settings: offset out of range")

// Store is a scalar get/put store addressed by fixed byte offsets. Writes
// are staged until Commit.
type Store interface {
	GetInt(offset int) (int32, error)
	PutInt(offset int, v int32) error
	GetBool(offset int) (bool, error)
	PutBool(offset int, v bool) error
	Commit() error
}

// Image is an in-memory settings image. Integers are little-endian int32,
// booleans one byte.
type Image struct {
	data []byte
}

// NewImage returns an erased image.
func NewImage() *Image {
	data := make([]byte, ImageSize)
	for i := range data {
		data[i] = erased
	}
	return &Image{data: data}
}

func (m *Image) span(offset, n int) ([]byte, error) {
	if offset < 0 || offset+n > len(m.data) {
		return nil, fmt.Errorf("offset %d: %w", offset, ErrOffset)
	}
	return m.data[offset : offset+n], nil
}

// GetInt reads the int32 at offset.
func (m *Image) GetInt(offset int) (int32, error) {
	b, err := m.span(offset, 4)
	if err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(b)), nil
}

// PutInt writes v at offset.
func (m *Image) PutInt(offset int, v int32) error {
	b, err := m.span(offset, 4)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(b, uint32(v))
	return nil
}

// GetBool reads the byte at offset. Any value other than 0 or 1 is an
// erased or corrupt cell and reported as an error.
func (m *Image) GetBool(offset int) (bool, error) {
	b, err := m.span(offset, 1)
	if err != nil {
		return false, err
	}
	switch b[0] {
	case 0:
		return false, nil
	case 1:
		return true, nil
	}
	return false, fmt.Errorf("offset %d: invalid bool 0x%02x", offset, b[0])
}

// PutBool writes v at offset.
func (m *Image) PutBool(offset int, v bool) error {
	b, err := m.span(offset, 1)
	if err != nil {
		return err
	}
	b[0] = 0
	if v {
		b[0] = 1
	}
	return nil
}

// Bytes returns a copy of the image.
func (m *Image) Bytes() []byte {
	return append([]byte(nil), m.data...)
}

// MemStore keeps the image in memory. Commits are counted.
type MemStore struct {
	*Image
	Commits     int
	CommitError error
}

// NewMemStore returns an erased in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{Image: NewImage()}
}

// Commit counts the commit.
func (s *MemStore) Commit() error {
	if s.CommitError != nil {
		return s.CommitError
	}
	s.Commits++
	return nil
}

// FileStore persists the image to a file.
type FileStore struct {
	*Image
	path string
}

// OpenFileStore loads the image at path. A missing file yields an erased image.
func OpenFileStore(path string) (*FileStore, error) {
	img := NewImage()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read settings %s: %w", path, err)
	default:
		copy(img.data, data)
	}
	return &FileStore{Image: img, path: path}, nil
}

// Commit writes the image atomically.
func (s *FileStore) Commit() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("commit settings: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, s.data, 0o644); err != nil {
		return fmt.Errorf("commit settings: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("commit settings: %w", err)
	}
	return nil
}

// Package binimg maps flat 8086 binaries (nasm -f bin output) into memory
// and hands out windows of their bytes.
package binimg

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"syscall"
)

// Image is a read-only view of a flat binary.
type Image struct {
	Path string
	All  []byte
	f    *os.File

	mapped bool
}

// Open maps the file at path read-only.
func Open(path string) (*Image, error) {
	f, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat file: %w", err)
	}
	if fi.IsDir() {
		f.Close()
		return nil, fmt.Errorf("%s is a directory", path)
	}

	im := &Image{Path: path, f: f}
	if fi.Size() == 0 {
		// mmap rejects zero-length mappings
		return im, nil
	}

	all, err := syscall.Mmap(int(f.Fd()), 0, int(fi.Size()), syscall.PROT_READ, syscall.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("mmap file: %w", err)
	}
	im.All = all
	im.mapped = true
	return im, nil
}

// FromBytes wraps an in-memory buffer, e.g. data read from stdin.
func FromBytes(name string, data []byte) *Image {
	return &Image{Path: name, All: data}
}

// Close unmaps the memory and closes the underlying file.
func (im *Image) Close() error {
	var err1, err2 error
	if im.mapped && im.All != nil {
		err1 = syscall.Munmap(im.All)
	}
	im.All = nil
	im.mapped = false
	if im.f != nil {
		err2 = im.f.Close()
		im.f = nil
	}
	if err1 != nil {
		return err1
	}
	return err2
}

// Len is the image size in bytes.
func (im *Image) Len() int {
	return len(im.All)
}

// Digest returns the hex SHA-256 of the image contents.
func (im *Image) Digest() string {
	sum := sha256.Sum256(im.All)
	return hex.EncodeToString(sum[:])
}

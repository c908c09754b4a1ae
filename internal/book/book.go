// Package book is an in-memory search book with a flat binary file format,
// for sessions that run without the database.
package book

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/hailam/latrones/internal/board"
	"github.com/hailam/latrones/internal/engine"
)

// entrySize is the on-disk size of one entry:
// 8 bytes: position key (big-endian)
// 1 byte:  from square
// 1 byte:  to square
// 2 bytes: weight (big-endian)
// 4 bytes: reserved
const entrySize = 16

// BookEntry represents a single book entry.
type BookEntry struct {
	Move   board.Move
	Weight uint16
}

// Book maps search keys to moves. Storing the same move again raises its
// weight; Lookup returns the heaviest move. It is safe for concurrent use.
type Book struct {
	mu      sync.RWMutex
	entries map[uint64][]BookEntry
}

var _ engine.Book = (*Book)(nil)

// New creates an empty book.
func New() *Book {
	return &Book{
		entries: make(map[uint64][]BookEntry),
	}
}

// Load reads a book file. A missing file yields an empty book.
func Load(filename string) (*Book, error) {
	file, err := os.Open(filename)
	if errors.Is(err, os.ErrNotExist) {
		return New(), nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	b, err := LoadReader(bufio.NewReader(file))
	if err != nil {
		return nil, fmt.Errorf("read book %s: %w", filename, err)
	}
	return b, nil
}

// LoadReader reads book entries until EOF.
func LoadReader(r io.Reader) (*Book, error) {
	book := New()

	var entry [entrySize]byte
	for {
		_, err := io.ReadFull(r, entry[:])
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		key := binary.BigEndian.Uint64(entry[0:8])
		move := board.NewMove(board.Square(entry[8]), board.Square(entry[9]))
		weight := binary.BigEndian.Uint16(entry[10:12])

		if move.From.IsValid() && move.To.IsValid() && move.From != move.To {
			book.entries[key] = append(book.entries[key], BookEntry{
				Move:   move,
				Weight: weight,
			})
		}
	}

	return book, nil
}

// Lookup returns the heaviest move stored for key. Ties go to the move
// stored first.
func (b *Book) Lookup(key uint64) (board.Move, bool) {
	if b == nil {
		return board.NoMove, false
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	entries := b.entries[key]
	if len(entries) == 0 {
		return board.NoMove, false
	}
	best := entries[0]
	for _, e := range entries[1:] {
		if e.Weight > best.Weight {
			best = e
		}
	}
	return best.Move, true
}

// Store records m for key.
func (b *Book) Store(key uint64, m board.Move) error {
	if m.IsNone() {
		return errors.New("book: cannot store an empty move")
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	entries := b.entries[key]
	for i := range entries {
		if entries[i].Move == m {
			if entries[i].Weight < ^uint16(0) {
				entries[i].Weight++
			}
			return nil
		}
	}
	b.entries[key] = append(entries, BookEntry{Move: m, Weight: 1})
	return nil
}

// ProbeAll returns all moves for key, sorted by weight.
func (b *Book) ProbeAll(key uint64) []BookEntry {
	if b == nil {
		return nil
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	entries, ok := b.entries[key]
	if !ok {
		return nil
	}

	// Sort by weight (highest first)
	result := make([]BookEntry, len(entries))
	copy(result, entries)
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Weight > result[j].Weight
	})

	return result
}

// WriteTo writes every entry in key order.
func (b *Book) WriteTo(w io.Writer) (int64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	keys := make([]uint64, 0, len(b.entries))
	for k := range b.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	var n int64
	var entry [entrySize]byte
	for _, k := range keys {
		for _, e := range b.entries[k] {
			binary.BigEndian.PutUint64(entry[0:8], k)
			entry[8] = byte(e.Move.From)
			entry[9] = byte(e.Move.To)
			binary.BigEndian.PutUint16(entry[10:12], e.Weight)
			m, err := w.Write(entry[:])
			n += int64(m)
			if err != nil {
				return n, err
			}
		}
	}
	return n, nil
}

// Save writes the book to filename, replacing it atomically.
func (b *Book) Save(filename string) error {
	tmp, err := os.CreateTemp(filepath.Dir(filename), filepath.Base(filename)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	if _, err := b.WriteTo(w); err != nil {
		tmp.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), filename)
}

// Size returns the number of unique positions in the book.
func (b *Book) Size() int {
	if b == nil {
		return 0
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}

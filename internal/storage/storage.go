package storage

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/hailam/latrones/internal/board"
	"github.com/hailam/latrones/internal/engine"
)

// Storage keys
const (
	keyPreferences = "preferences"
	keyFirstLaunch = "first_launch"
	bookPrefix     = "book/"
)

// bookTTL bounds how long a searched move is reused.
const bookTTL = 30 * 24 * time.Hour

// Preferences stores the user's game setup.
type Preferences struct {
	BoardWidth      int       `json:"board_width"`
	BoardHeight     int       `json:"board_height"`
	UserColor       string    `json:"user_color"`
	PlayAgainstBot  bool      `json:"play_against_bot"`
	GameTimeSeconds int       `json:"game_time_seconds"`
	Difficulty      string    `json:"difficulty"`
	LastPlayed      time.Time `json:"last_played"`
}

// Validate checks that the preferences describe a playable game.
func (p Preferences) Validate() error {
	if _, err := board.NewGeometry(p.BoardWidth, p.BoardHeight); err != nil {
		return err
	}
	if _, ok := board.ParseColor(p.UserColor); !ok {
		return fmt.Errorf("invalid user color %q", p.UserColor)
	}
	if _, err := engine.ParseDifficulty(p.Difficulty); err != nil {
		return err
	}
	if p.GameTimeSeconds < 0 {
		return fmt.Errorf("game time %d: must not be negative", p.GameTimeSeconds)
	}
	return nil
}

// Storage wraps BadgerDB for persistent storage.
type Storage struct {
	db *badger.DB
}

// Open opens the database under root, or under the platform data directory
// when root is empty.
func Open(root string) (*Storage, error) {
	dbDir, err := GetDatabaseDir(root)
	if err != nil {
		return nil, err
	}

	opts := badger.DefaultOptions(dbDir)
	opts.Logger = nil // Disable logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", dbDir, err)
	}
	log.Printf("[storage] database directory: %s", dbDir)

	return &Storage{db: db}, nil
}

// Close closes the database.
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// IsFirstLaunch returns true if no launch has been recorded yet.
func (s *Storage) IsFirstLaunch() (bool, error) {
	firstLaunch := true

	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(keyFirstLaunch))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		firstLaunch = false
		return nil
	})

	return firstLaunch, err
}

// MarkFirstLaunchComplete records that first launch setup is complete.
func (s *Storage) MarkFirstLaunchComplete() error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyFirstLaunch), []byte("done"))
	})
}

// SavePreferences validates and saves prefs.
func (s *Storage) SavePreferences(prefs Preferences) error {
	if err := prefs.Validate(); err != nil {
		return err
	}
	prefs.LastPlayed = time.Now()

	data, err := json.Marshal(prefs)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPreferences), data)
	})
}

// LoadPreferences loads the stored preferences, returning defaults if none
// were saved. Fields missing from the stored record keep their default.
func (s *Storage) LoadPreferences(defaults Preferences) (Preferences, error) {
	prefs := defaults

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPreferences))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil // Use defaults
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &prefs)
		})
	})

	return prefs, err
}

func bookKey(key uint64) []byte {
	k := make([]byte, len(bookPrefix)+8)
	copy(k, bookPrefix)
	binary.BigEndian.PutUint64(k[len(bookPrefix):], key)
	return k
}

// Lookup returns the stored move for a search key.
func (s *Storage) Lookup(key uint64) (board.Move, bool) {
	var m board.Move
	found := false

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(bookKey(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if len(val) != 2 {
				return fmt.Errorf("book entry %x: %d bytes", key, len(val))
			}
			m = board.NewMove(board.Square(val[0]), board.Square(val[1]))
			found = true
			return nil
		})
	})
	if err != nil {
		log.Printf("[storage] book lookup: %v", err)
		return board.NoMove, false
	}
	return m, found
}

// Store saves the move found for a search key. Entries expire after bookTTL.
func (s *Storage) Store(key uint64, m board.Move) error {
	return s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(bookKey(key), []byte{byte(m.From), byte(m.To)}).WithTTL(bookTTL)
		return txn.SetEntry(e)
	})
}

// BookSize returns the number of stored book entries.
func (s *Storage) BookSize() (int, error) {
	n := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(bookPrefix)

		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

// ClearBook removes every book entry.
func (s *Storage) ClearBook() error {
	return s.db.DropPrefix([]byte(bookPrefix))
}

var _ engine.Book = (*Storage)(nil)

package papertrading

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
)

// Store file names under a store root.
const (
	UsersFile     = "users.json"
	PositionsFile = "positions.json"
	OrdersFile    = "orders.json"
)

// StoreFiles lists the store files in the order they are processed.
var StoreFiles = []string{UsersFile, PositionsFile, OrdersFile}

// Collection is the content of a store file: a JSON object of opaque records.
type Collection map[string]json.RawMessage

// ReadCollection reads a whole store file. A missing file is reported with
// an error matching fs.ErrNotExist.
func ReadCollection(path string) (Collection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %q: %w", path, err)
	}
	c := make(Collection)
	if len(bytes.TrimSpace(data)) == 0 {
		return c, nil
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("format error %q: %w", path, err)
	}
	if c == nil { // the file contained null
		c = make(Collection)
	}
	return c, nil
}

// WriteCollection rewrites a whole store file.
//
// The content is first written to a temporary file in the same folder and
// then renamed over path, so that a failure never leaves a partially written
// store file. Keys are written in sorted order, indented by two spaces.
func WriteCollection(path string, c Collection) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if c == nil {
		c = Collection{}
	}
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("cannot encode %q: %w", path, err)
	}

	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, base+".tmp*")
	if err != nil {
		return fmt.Errorf("cannot create temporary file for %q: %w", path, err)
	}
	// Remove is a no-op after a successful rename.
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("cannot write %q: %w", tmp.Name(), err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("cannot sync %q: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("cannot close %q: %w", tmp.Name(), err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("cannot chmod %q: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("cannot replace %q: %w", path, err)
	}
	return nil
}

// writeCollection is replaced in tests to simulate write failures.
var writeCollection = WriteCollection

// FileStore is a Store on the JSON files of a store root directory.
//
// Every operation reads and rewrites whole files, nothing is cached.
type FileStore struct {
	root string
}

// OpenFileStore opens the store in the root folder, creating the folder if
// needed. Missing store files are treated as empty.
func OpenFileStore(root string) (*FileStore, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("cannot create store folder %q: %w", root, err)
	}
	return &FileStore{root: root}, nil
}

// Root returns the store root folder.
func (s *FileStore) Root() string { return s.root }

func (s *FileStore) path(name string) string { return filepath.Join(s.root, name) }

// read a collection, a missing file is an empty collection.
func (s *FileStore) read(name string) (Collection, bool, error) {
	c, err := ReadCollection(s.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return make(Collection), false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return c, true, nil
}

func (s *FileStore) Account(userID string) (Account, bool, error) {
	users, _, err := s.read(UsersFile)
	if err != nil {
		return Account{}, false, err
	}
	raw, ok := users[userID]
	if !ok {
		return Account{}, false, nil
	}
	var a Account
	if err := json.Unmarshal(raw, &a); err != nil {
		return Account{}, false, fmt.Errorf("format error %q: account %q: %w", s.path(UsersFile), userID, err)
	}
	return a, true, nil
}

func (s *FileStore) SaveAccount(userID string, a Account) error {
	users, _, err := s.read(UsersFile)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("cannot encode account %q: %w", userID, err)
	}
	users[userID] = raw
	return writeCollection(s.path(UsersFile), users)
}

// DeleteAccountAndPositions removes the account of userID, then its
// positions. The two files are not rewritten atomically: a failure on the
// positions file leaves the account deleted and its positions in place.
func (s *FileStore) DeleteAccountAndPositions(userID string) error {
	users, _, err := s.read(UsersFile)
	if err != nil {
		return err
	}
	positions, hasPositions, err := s.read(PositionsFile)
	if err != nil {
		return err
	}

	// Both files are read before anything is written.
	if _, ok := users[userID]; ok {
		delete(users, userID)
		if err := writeCollection(s.path(UsersFile), users); err != nil {
			return err
		}
		log.Printf("delete-account user=%q", userID)
	}
	if _, ok := positions[userID]; ok && hasPositions {
		delete(positions, userID)
		if err := writeCollection(s.path(PositionsFile), positions); err != nil {
			return err
		}
		log.Printf("delete-positions user=%q", userID)
	}
	return nil
}

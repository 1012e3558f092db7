package papertrading

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// writeFile creates a file with content in dir.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %q: %v", path, err)
	}
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read %q: %v", path, err)
	}
	return string(data)
}

func TestReadCollection(t *testing.T) {
	tmp := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		_, err := ReadCollection(filepath.Join(tmp, "nope.json"))
		if !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("ReadCollection() error = %v, want fs.ErrNotExist", err)
		}
	})

	t.Run("empty file", func(t *testing.T) {
		c, err := ReadCollection(writeFile(t, tmp, "empty.json", "  \n"))
		if err != nil || len(c) != 0 {
			t.Errorf("ReadCollection() = %v, %v; want empty collection", c, err)
		}
	})

	t.Run("null", func(t *testing.T) {
		c, err := ReadCollection(writeFile(t, tmp, "null.json", "null"))
		if err != nil || c == nil {
			t.Errorf("ReadCollection() = %v, %v; want empty collection", c, err)
		}
	})

	t.Run("not an object", func(t *testing.T) {
		if _, err := ReadCollection(writeFile(t, tmp, "list.json", "[1,2]")); err == nil {
			t.Error("ReadCollection() expected a format error, got nil")
		}
	})
}

func TestWriteCollection(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "orders.json")

	c := Collection{
		"o2": []byte(`{"user_id":"u:2:2","note":"<fast> & 快"}`),
		"o1": []byte(`{"user_id":"u:1:1","price":10.50}`),
	}
	if err := WriteCollection(path, c); err != nil {
		t.Fatalf("WriteCollection(): %v", err)
	}

	want := `{
  "o1": {
    "user_id": "u:1:1",
    "price": 10.50
  },
  "o2": {
    "user_id": "u:2:2",
    "note": "<fast> & 快"
  }
}
`
	if diff := cmp.Diff(want, readFile(t, path)); diff != "" {
		t.Errorf("file content mismatch (-want +got):\n%s", diff)
	}

	entries, err := os.ReadDir(tmp)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("temporary files left behind: %v", entries)
	}

	back, err := ReadCollection(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(back) != 2 {
		t.Errorf("read back %d records, want 2", len(back))
	}
}

func TestFileStore(t *testing.T) {
	root := filepath.Join(t.TempDir(), "papertrading")
	store, err := OpenFileStore(root)
	if err != nil {
		t.Fatalf("OpenFileStore(): %v", err)
	}

	cfg := DefaultConfig()
	l := NewLedger(store, cfg)

	if _, err := l.Register("qq:1:99", "Alice"); err != nil {
		t.Fatalf("Register(): %v", err)
	}
	if _, err := l.Deposit("qq:1:99", d("100")); err != nil {
		t.Fatalf("Deposit(): %v", err)
	}

	a, err := l.Account("qq:1:99")
	if err != nil {
		t.Fatal(err)
	}
	if !a.Balance.Equal(d("1000100")) {
		t.Errorf("balance = %v, want 1000100", a.Balance)
	}
	content := readFile(t, filepath.Join(root, UsersFile))
	if !strings.Contains(content, `"balance": 1000100`) {
		t.Errorf("users.json does not hold the balance as a number:\n%s", content)
	}
}

// Fields written by the trading engine survive a ledger operation.
func TestFileStore_PreservesUnknownFields(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, UsersFile, `{"qq:1:99":{"user_id":"qq:1:99","username":"Alice","balance":100,"total_assets":150,"register_time":1,"last_login":2,"frozen_funds":25}}`)

	store, err := OpenFileStore(root)
	if err != nil {
		t.Fatal(err)
	}
	l := NewLedger(store, DefaultConfig())
	if _, err := l.Withdraw("qq:1:99", d("50")); err != nil {
		t.Fatalf("Withdraw(): %v", err)
	}

	content := readFile(t, filepath.Join(root, UsersFile))
	for _, want := range []string{`"frozen_funds": 25`, `"balance": 50`, `"total_assets": 100`} {
		if !strings.Contains(content, want) {
			t.Errorf("users.json is missing %s:\n%s", want, content)
		}
	}
}

func TestFileStore_DeleteAccountAndPositions(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, UsersFile, `{"a":{"user_id":"a","balance":1,"total_assets":1},"b":{"user_id":"b","balance":2,"total_assets":2}}`)
	writeFile(t, root, PositionsFile, `{"a":{"600000":{"quantity":100}},"b":{}}`)
	orders := writeFile(t, root, OrdersFile, `{"o1":{"user_id":"a"}}`)
	ordersBefore := readFile(t, orders)

	store, err := OpenFileStore(root)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.DeleteAccountAndPositions("a"); err != nil {
		t.Fatalf("DeleteAccountAndPositions(): %v", err)
	}

	users, err := ReadCollection(filepath.Join(root, UsersFile))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := users["a"]; ok || len(users) != 1 {
		t.Errorf("users after delete = %v, want only b", users)
	}
	positions, err := ReadCollection(filepath.Join(root, PositionsFile))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := positions["a"]; ok || len(positions) != 1 {
		t.Errorf("positions after delete = %v, want only b", positions)
	}
	if got := readFile(t, orders); got != ordersBefore {
		t.Errorf("orders were modified:\n%s", got)
	}
}

func TestFileStore_NoPositionsFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, UsersFile, `{"a":{"user_id":"a","balance":1,"total_assets":1}}`)

	store, err := OpenFileStore(root)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.DeleteAccountAndPositions("a"); err != nil {
		t.Fatalf("DeleteAccountAndPositions(): %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, PositionsFile)); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("positions.json was created: %v", err)
	}
}

// A failed users.json write keeps both the account and its positions.
func TestFileStore_DeleteUsersWriteFailed(t *testing.T) {
	root := t.TempDir()
	usersBefore := readFile(t, writeFile(t, root, UsersFile, `{"a":{"user_id":"a","balance":1,"total_assets":1}}`))
	positionsBefore := readFile(t, writeFile(t, root, PositionsFile, `{"a":{"600000":{"quantity":100}}}`))

	failure := errors.New("disk full")
	old := writeCollection
	writeCollection = func(path string, c Collection) error {
		if filepath.Base(path) == UsersFile {
			return failure
		}
		return old(path, c)
	}
	defer func() { writeCollection = old }()

	store, err := OpenFileStore(root)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.DeleteAccountAndPositions("a"); !errors.Is(err, failure) {
		t.Fatalf("DeleteAccountAndPositions() error = %v, want %v", err, failure)
	}
	if got := readFile(t, filepath.Join(root, UsersFile)); got != usersBefore {
		t.Errorf("users.json modified:\n%s", got)
	}
	if got := readFile(t, filepath.Join(root, PositionsFile)); got != positionsBefore {
		t.Errorf("positions.json modified:\n%s", got)
	}
}

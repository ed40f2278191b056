package jsonstore

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// JSON-backed key/value storage. One file per key, human-readable, portable.
// No locking; fine for a local single-user tool.

const fileExt = ".json"

type Store struct {
	Dir string
}

// Open ensures dir exists (0700) and returns a store rooted there.
func Open(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("jsonstore: empty dir")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("mkdir: %w", err)
	}
	return &Store{Dir: dir}, nil
}

func (s *Store) path(key string) (string, error) {
	if key == "" {
		return "", errors.New("empty key")
	}
	for _, r := range key {
		ok := r == '_' || r == '-' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
		if !ok {
			return "", fmt.Errorf("key %q: unsupported character %q", key, r)
		}
	}
	return filepath.Join(s.Dir, key+fileExt), nil
}

// Get returns the stored value. JSON values come back compacted, exactly as
// they were handed to Set.
func (s *Store) Get(key string) (string, bool, error) {
	p, err := s.path(key)
	if err != nil {
		return "", false, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read file: %w", err)
	}
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return "", false, fmt.Errorf("json unmarshal: %w", err)
		}
		return str, true, nil
	}
	var out bytes.Buffer
	if err := json.Compact(&out, b); err != nil {
		// Hand-edited into something that is not JSON; let the caller decide.
		return string(b), true, nil
	}
	return out.String(), true, nil
}

// Set writes value under key. JSON values are indented on disk; anything else
// is stored as a JSON string.
func (s *Store) Set(key, value string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if strings.HasPrefix(strings.TrimSpace(value), "{") && json.Valid([]byte(value)) {
		if err := json.Indent(&buf, []byte(value), "", "  "); err != nil {
			return fmt.Errorf("json indent: %w", err)
		}
	} else {
		b, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("json marshal: %w", err)
		}
		buf.Write(b)
	}
	buf.WriteByte('\n')

	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	if err := os.Rename(tmp, p); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

func (s *Store) Delete(key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove: %w", err)
	}
	return nil
}

// Keys lists stored keys with the given prefix, sorted.
func (s *Store) Keys(prefix string) ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var out []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, fileExt) {
			continue
		}
		key := strings.TrimSuffix(name, fileExt)
		if strings.HasPrefix(key, prefix) {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out, nil
}

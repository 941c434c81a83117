package costfolio

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// The canonical transaction stream is stored as jsonl: one JSON object per
// line, ordered by timestamp. Reports are written the same way.

// maxLine bounds a single jsonl record.
const maxLine = 1024 * 1024

// ReadJSONL decodes one record per line. name is used in error messages,
// usually the file path, so a broken line reads name:line.
func ReadJSONL[T any](r io.Reader, name string) ([]T, error) {
	var out []T
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)
	line := 0
	for sc.Scan() {
		line++
		b := sc.Bytes()
		if len(b) == 0 {
			continue
		}
		var v T
		if err := json.Unmarshal(b, &v); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", name, line, err)
		}
		out = append(out, v)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

// WriteJSONL encodes one record per line.
func WriteJSONL[T any](w io.Writer, items []T) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	for _, v := range items {
		if err := enc.Encode(v); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// LoadTransactions reads a canonical stream file and returns it in
// canonical order. Unsorted input is tolerated on read.
func LoadTransactions(path string) ([]Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	txs, err := ReadJSONL[Transaction](f, path)
	if err != nil {
		return nil, err
	}
	SortTransactions(txs)
	return txs, nil
}

// SaveTransactions writes the stream in canonical order, atomically
// replacing any previous file.
func SaveTransactions(path string, txs []Transaction) error {
	ordered := make([]Transaction, len(txs))
	copy(ordered, txs)
	SortTransactions(ordered)
	return writeFileAtomic(path, func(w io.Writer) error {
		return WriteJSONL(w, ordered)
	})
}

// SaveJSONL writes records to path, atomically replacing any previous file.
func SaveJSONL[T any](path string, items []T) error {
	return writeFileAtomic(path, func(w io.Writer) error {
		return WriteJSONL(w, items)
	})
}

// writeFileAtomic writes to a temp file in the target directory and
// renames it into place, so readers never see a half-written file.
func writeFileAtomic(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

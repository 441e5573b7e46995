package internal

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/syndtr/goleveldb/leveldb"
	leveldbstorage "github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
)

var ErrEmptyCaseName = errors.New("empty case name")

// History keeps past reports in LevelDB. Keys are
// "run/<CASE>/<big endian start nanos><run id>" so a prefix scan per case
// walks its runs in chronological order.
type History struct {
	db *leveldb.DB
}

// OpenHistory opens or creates the database at path. An empty path keeps
// everything in memory.
func OpenHistory(path string) (*History, error) {
	var (
		db  *leveldb.DB
		err error
	)
	if path == "" {
		db, err = leveldb.Open(leveldbstorage.NewMemStorage(), nil)
	} else {
		db, err = leveldb.OpenFile(path, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open history at %s: %w", path, err)
	}
	return &History{db: db}, nil
}

func casePrefix(caseName string) []byte {
	return []byte("run/" + strings.ToUpper(caseName) + "/")
}

func runKey(r *Report) []byte {
	key := casePrefix(r.Case)
	key = binary.BigEndian.AppendUint64(key, uint64(r.Started.UnixNano()))
	return append(key, r.RunID...)
}

// Record stores r.
func (h *History) Record(r *Report) error {
	if strings.TrimSpace(r.Case) == "" {
		return ErrEmptyCaseName
	}
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return h.db.Put(runKey(r), data, nil)
}

// List returns up to limit runs of caseName, newest first. A limit of zero
// or less returns all of them.
func (h *History) List(caseName string, limit int) ([]*Report, error) {
	if strings.TrimSpace(caseName) == "" {
		return nil, ErrEmptyCaseName
	}
	iter := h.db.NewIterator(util.BytesPrefix(casePrefix(caseName)), nil)
	defer iter.Release()

	var reports []*Report
	for ok := iter.Last(); ok; ok = iter.Prev() {
		if limit > 0 && len(reports) >= limit {
			break
		}
		var r Report
		if err := json.Unmarshal(iter.Value(), &r); err != nil {
			return nil, fmt.Errorf("corrupt history entry %q: %w", iter.Key(), err)
		}
		reports = append(reports, &r)
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}
	return reports, nil
}

// Previous returns the latest run of caseName started before r, or nil.
func (h *History) Previous(r *Report) (*Report, error) {
	iter := h.db.NewIterator(util.BytesPrefix(casePrefix(r.Case)), nil)
	defer iter.Release()

	key := runKey(r)
	if !iter.Seek(key) {
		if !iter.Last() {
			return nil, iter.Error()
		}
	} else if !iter.Prev() {
		return nil, iter.Error()
	}
	var prev Report
	if err := json.Unmarshal(iter.Value(), &prev); err != nil {
		return nil, fmt.Errorf("corrupt history entry %q: %w", iter.Key(), err)
	}
	return &prev, nil
}

func (h *History) Close() error {
	return h.db.Close()
}

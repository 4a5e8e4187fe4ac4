package state

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/halcyonchain/nodectl/pkg/consts"
)

// Snapshot is the supervisor's persisted view of the node, loaded at the
// start of every action. HavePID mirrors the existence of the PID file; the
// PID inside may be stale and must be re-validated before it is trusted.
type Snapshot struct {
	PID     int
	HavePID bool
	Mode    consts.RunMode
}

// Store persists the two bookkeeping files. The file-backed implementation
// is the real thing; tests substitute in-memory state via a temp dir.
type Store interface {
	Load() (Snapshot, error)
	SavePID(pid int) error
	ClearPID() error
	SaveMode(m consts.RunMode) error
	ClearMode() error
}

// FileStore keeps the PID and mode files on disk, one token per file.
type FileStore struct {
	pidPath  string
	modePath string
}

func NewFileStore(pidPath, modePath string) *FileStore {
	return &FileStore{pidPath: pidPath, modePath: modePath}
}

// Load reads both files. A missing PID file means no process was launched;
// a missing or unrecognized mode file means the mode is unknown. A PID file
// that does not hold an integer is reported as an error so the caller can
// decide to self-heal.
func (fs *FileStore) Load() (Snapshot, error) {
	snap := Snapshot{Mode: consts.ModeUnknown}

	if data, err := os.ReadFile(fs.modePath); err == nil {
		m := consts.RunMode(strings.TrimSpace(string(data)))
		if m.Valid() {
			snap.Mode = m
		}
	}

	data, err := os.ReadFile(fs.pidPath)
	if os.IsNotExist(err) {
		return snap, nil
	}
	if err != nil {
		return snap, err
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		snap.HavePID = true
		return snap, fmt.Errorf("pid file %s is corrupt: %w", fs.pidPath, err)
	}

	snap.PID = pid
	snap.HavePID = true
	return snap, nil
}

func (fs *FileStore) SavePID(pid int) error {
	return os.WriteFile(fs.pidPath, []byte(strconv.Itoa(pid)+"\n"), 0644)
}

func (fs *FileStore) ClearPID() error {
	err := os.Remove(fs.pidPath)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (fs *FileStore) SaveMode(m consts.RunMode) error {
	return os.WriteFile(fs.modePath, []byte(string(m)+"\n"), 0644)
}

func (fs *FileStore) ClearMode() error {
	err := os.Remove(fs.modePath)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

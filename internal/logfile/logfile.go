package logfile

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/halcyonchain/nodectl/pkg/errors"
)

const tailChunk = 8192

// Tail returns the last n lines of the log file. The file is read backwards
// in chunks so a large node log is never loaded whole.
func Tail(path string, n int) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeMissingArtifact, "Tail", "log file does not exist", err)
		}
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	size := info.Size()
	if size == 0 || n <= 0 {
		return nil, nil
	}

	var buf []byte
	offset := size
	for offset > 0 {
		chunk := int64(tailChunk)
		if chunk > offset {
			chunk = offset
		}
		offset -= chunk

		part := make([]byte, chunk)
		if _, err := f.ReadAt(part, offset); err != nil {
			return nil, err
		}
		buf = append(part, buf...)

		// One extra newline accounts for a missing trailing one.
		if bytes.Count(buf, []byte{'\n'}) > n {
			break
		}
	}

	text := strings.TrimRight(string(buf), "\n")
	if text == "" {
		return nil, nil
	}
	lines := strings.Split(text, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines, nil
}

// Truncate empties the log file in place. The file must already exist;
// truncation never creates one.
func Truncate(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return errors.New(errors.ErrCodeMissingArtifact, "PurgeLogs", "log file does not exist", err)
		}
		return err
	}
	return os.Truncate(path, 0)
}

// Follow streams bytes appended to the log file to out until ctx is done.
// The caller prints the existing tail first; Follow starts at end of file.
func Follow(ctx context.Context, path string, out io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.New(errors.ErrCodeMissingArtifact, "Follow", "log file does not exist", err)
		}
		return err
	}
	defer f.Close()

	if _, err := f.Seek(0, io.SeekEnd); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Write) {
				if _, err := io.Copy(out, f); err != nil {
					return err
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return err
		}
	}
}

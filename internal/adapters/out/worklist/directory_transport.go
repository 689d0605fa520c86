package worklist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"radiology/internal/core/domain/model/worklist"
	"radiology/internal/core/ports"
)

// ItemSuffix is appended to the accession number to name a worklist item file.
const ItemSuffix = ".wl.json"

// DirectoryTransport maintains one item file per active order in a directory
// watched by the order filler. Void and Discontinue remove the item; every
// other operation rewrites it. Files are replaced atomically so the filler
// never reads a partial item.
type DirectoryTransport struct {
	dir string
}

func NewDirectoryTransport(dir string) (*DirectoryTransport, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("worklist directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create worklist directory %s: %w", dir, err)
	}
	return &DirectoryTransport{dir: dir}, nil
}

// Send writes or removes the item file. File system failures are reported as
// OutcomeFailed with the error text as the reason.
func (t *DirectoryTransport) Send(
	ctx context.Context,
	op worklist.Operation,
	descriptor ports.StudyDescriptor,
) (ports.SendResult, error) {
	if err := op.Validate(); err != nil {
		return ports.SendResult{}, err
	}
	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ports.SendResult{Outcome: worklist.OutcomeTimeout, Reason: err.Error()}, nil
		}
		return ports.SendResult{}, err
	}

	name, err := t.itemPath(descriptor.AccessionNumber)
	if err != nil {
		return ports.SendResult{Outcome: worklist.OutcomeFailed, Reason: err.Error()}, nil
	}

	switch op {
	case worklist.Void, worklist.Discontinue:
		err = os.Remove(name)
		if errors.Is(err, fs.ErrNotExist) {
			err = nil
		}
	default:
		err = t.write(name, message{Operation: op.String(), Study: descriptor})
	}
	if err != nil {
		return ports.SendResult{Outcome: worklist.OutcomeFailed, Reason: err.Error()}, nil
	}

	return ports.SendResult{Outcome: worklist.OutcomeOK}, nil
}

func (t *DirectoryTransport) itemPath(accession string) (string, error) {
	accession = strings.TrimSpace(accession)
	if accession == "" {
		return "", errors.New("accession number is required")
	}
	if strings.ContainsAny(accession, `/\`) || accession == "." || accession == ".." {
		return "", fmt.Errorf("accession number %q is not a valid file name", accession)
	}
	return filepath.Join(t.dir, accession+ItemSuffix), nil
}

func (t *DirectoryTransport) write(name string, item message) (err error) {
	payload, err := json.MarshalIndent(item, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(t.dir, ".item-*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(payload); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), name)
}

// ReadItems returns the studies currently published in dir, ordered by
// accession number. Temporary files and foreign files are skipped.
func ReadItems(dir string) ([]ports.StudyDescriptor, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read worklist directory %s: %w", dir, err)
	}

	items := make([]ports.StudyDescriptor, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ItemSuffix) {
			continue
		}
		payload, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if errors.Is(err, fs.ErrNotExist) {
			// removed by a concurrent void
			continue
		}
		if err != nil {
			return nil, err
		}
		var item message
		if err := json.Unmarshal(payload, &item); err != nil {
			return nil, fmt.Errorf("failed to decode worklist item %s: %w", entry.Name(), err)
		}
		items = append(items, item.Study)
	}
	return items, nil
}

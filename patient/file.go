package patient

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/google/renameio/v2"

	"github.com/careledger/ledger/codec"
	"github.com/careledger/ledger/id"
)

// FileDirectory keeps patients in a delimited text file, one record per
// line: id,name. It exists so the command line front end works end to end;
// a deployment with a real patient system supplies its own Directory.
type FileDirectory struct {
	path   string
	logger *slog.Logger

	mu       sync.Mutex
	patients map[string]*Patient
	seq      *id.Sequence
}

type FileOption func(*FileDirectory)

func WithFileLogger(l *slog.Logger) FileOption {
	return func(d *FileDirectory) { d.logger = l }
}

// OpenFileDirectory loads the directory from path. A missing file is an
// empty directory, not an error. Malformed lines are skipped with a
// warning so one bad record never hides the rest.
func OpenFileDirectory(path string, opts ...FileOption) (*FileDirectory, error) {
	d := &FileDirectory{
		path:     path,
		logger:   slog.Default(),
		patients: make(map[string]*Patient),
		seq:      id.NewSequence(id.PrefixPatient),
	}
	for _, opt := range opts {
		opt(d)
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return d, nil
		}
		return nil, fmt.Errorf("open patient directory %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Text()
		if strings.TrimSpace(raw) == "" {
			continue
		}
		fields := codec.DecodeRecord(raw)
		if len(fields) < 2 || fields[0] == "" {
			d.logger.Warn("skipping malformed patient record", "path", path, "line", line)
			continue
		}
		p := &Patient{ID: fields[0], Name: fields[1]}
		d.patients[p.ID] = p
		d.seq.Observe(p.ID)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read patient directory %s: %w", path, err)
	}
	return d, nil
}

func (d *FileDirectory) FindByID(_ context.Context, patientID string) (*Patient, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if p, ok := d.patients[patientID]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, ErrNotFound
}

// Add registers a patient and rewrites the file. An empty ID is assigned
// from the directory's sequence.
func (d *FileDirectory) Add(_ context.Context, p *Patient) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if p.ID == "" {
		p.ID = d.seq.Next()
	} else {
		d.seq.Observe(p.ID)
	}
	if _, exists := d.patients[p.ID]; exists {
		return ErrExists
	}
	cp := *p
	d.patients[p.ID] = &cp
	return d.save()
}

func (d *FileDirectory) List(_ context.Context) ([]*Patient, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]*Patient, 0, len(d.patients))
	for _, p := range d.patients {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// save rewrites the whole file, writing to a temporary file first and
// renaming it into place so a crash mid-write never truncates the
// directory. Callers hold d.mu.
func (d *FileDirectory) save() error {
	ids := make([]string, 0, len(d.patients))
	for pid := range d.patients {
		ids = append(ids, pid)
	}
	sort.Strings(ids)

	var sb strings.Builder
	for _, pid := range ids {
		p := d.patients[pid]
		sb.WriteString(codec.EncodeRecord([]string{p.ID, p.Name}))
		sb.WriteByte('\n')
	}
	if err := renameio.WriteFile(d.path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("write patient directory %s: %w", d.path, err)
	}
	return nil
}

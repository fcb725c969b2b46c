package patient

import (
	"context"
	"sort"
	"sync"

	"github.com/careledger/ledger/id"
)

// MemoryDirectory is a map-backed Directory for tests and embedding
// library users that manage patients elsewhere.
type MemoryDirectory struct {
	mu       sync.RWMutex
	patients map[string]*Patient
	seq      *id.Sequence
}

func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{
		patients: make(map[string]*Patient),
		seq:      id.NewSequence(id.PrefixPatient),
	}
}

func (d *MemoryDirectory) FindByID(_ context.Context, patientID string) (*Patient, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if p, ok := d.patients[patientID]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, ErrNotFound
}

// Add registers a patient. An empty ID is assigned from the directory's
// sequence; a duplicate ID returns ErrExists.
func (d *MemoryDirectory) Add(_ context.Context, p *Patient) error {
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
	return nil
}

func (d *MemoryDirectory) List(_ context.Context) ([]*Patient, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]*Patient, 0, len(d.patients))
	for _, p := range d.patients {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

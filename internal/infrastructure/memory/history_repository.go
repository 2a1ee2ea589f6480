package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/jhoicas/Facturas-api/internal/domain/entity"
	"github.com/jhoicas/Facturas-api/internal/domain/repository"
)

var _ repository.InvoiceHistoryRepository = (*InvoiceHistoryRepo)(nil)

// InvoiceHistoryRepo snapshots en memoria, solo inserción.
type InvoiceHistoryRepo struct {
	store *Store
}

// Create inserta el snapshot; (InvoiceID, Version) es único.
func (r *InvoiceHistoryRepo) Create(_ context.Context, snapshot *entity.InvoiceSnapshot) error {
	if snapshot.ID == "" {
		snapshot.ID = uuid.New().String()
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, s := range r.store.history[snapshot.InvoiceID] {
		if s.Version == snapshot.Version {
			return fmt.Errorf("snapshot %s v%d already exists", snapshot.InvoiceID, snapshot.Version)
		}
	}
	c := *snapshot
	c.InvoiceData = append([]byte(nil), snapshot.InvoiceData...)
	r.store.history[snapshot.InvoiceID] = append(r.store.history[snapshot.InvoiceID], &c)
	return nil
}

// ListByInvoiceID versión descendente.
func (r *InvoiceHistoryRepo) ListByInvoiceID(_ context.Context, invoiceID string) ([]*entity.InvoiceSnapshot, error) {
	r.store.mu.RLock()
	list := make([]*entity.InvoiceSnapshot, 0, len(r.store.history[invoiceID]))
	for _, s := range r.store.history[invoiceID] {
		c := *s
		list = append(list, &c)
	}
	r.store.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool { return list[i].Version > list[j].Version })
	return list, nil
}

// GetByVersion nil si no existe.
func (r *InvoiceHistoryRepo) GetByVersion(_ context.Context, invoiceID string, version int) (*entity.InvoiceSnapshot, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, s := range r.store.history[invoiceID] {
		if s.Version == version {
			c := *s
			return &c, nil
		}
	}
	return nil, nil
}

// GetLatest snapshot de mayor versión o nil.
func (r *InvoiceHistoryRepo) GetLatest(ctx context.Context, invoiceID string) (*entity.InvoiceSnapshot, error) {
	list, err := r.ListByInvoiceID(ctx, invoiceID)
	if err != nil || len(list) == 0 {
		return nil, err
	}
	return list[0], nil
}

// CountByInvoiceID número de snapshots.
func (r *InvoiceHistoryRepo) CountByInvoiceID(_ context.Context, invoiceID string) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return int64(len(r.store.history[invoiceID])), nil
}

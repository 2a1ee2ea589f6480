package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Facturas-api/internal/domain"
	"github.com/jhoicas/Facturas-api/internal/domain/entity"
	"github.com/jhoicas/Facturas-api/internal/domain/repository"
	"github.com/jhoicas/Facturas-api/internal/infrastructure/memory"
)

func newInvoice(id, number string) *entity.Invoice {
	now := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	return &entity.Invoice{
		ID:            id,
		InvoiceNumber: number,
		ClientName:    "Cliente",
		Currency:      entity.DefaultCurrency,
		InvoiceDate:   now,
		Subtotal:      decimal.NewFromInt(10),
		TotalAmount:   decimal.NewFromInt(10),
		Status:        entity.InvoiceStatusDraft,
		Version:       1,
		CreatedBy:     "u1",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Transacciones
// ──────────────────────────────────────────────────────────────────────────────

func TestRunInvoice_CommitPublicaEscrituras(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	err := store.RunInvoice(ctx, func(invRepo repository.InvoiceRepository, _ repository.ShipmentRepository) error {
		require.NoError(t, invRepo.Create(ctx, newInvoice("inv-1", "INV-1")))
		return invRepo.CreateItem(ctx, &entity.InvoiceItem{InvoiceID: "inv-1", Description: "x", Quantity: 1})
	})
	require.NoError(t, err)

	got, err := store.Invoices().GetByID(ctx, "inv-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	items, err := store.Invoices().GetItemsByInvoiceID(ctx, "inv-1")
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestRunInvoice_ErrorDescartaTodo(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	store.RegisterShipment("S1")
	boom := errors.New("boom")

	err := store.RunInvoice(ctx, func(invRepo repository.InvoiceRepository, _ repository.ShipmentRepository) error {
		require.NoError(t, invRepo.Create(ctx, newInvoice("inv-1", "INV-1")))
		require.NoError(t, invRepo.CreateShipmentLink(ctx, &entity.InvoiceShipment{InvoiceID: "inv-1", ShipmentID: "S1"}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, _ := store.Invoices().GetByID(ctx, "inv-1")
	assert.Nil(t, got)
	owner, _ := store.Invoices().FindShipmentOwner(ctx, "S1")
	assert.Empty(t, owner)
}

func TestRunInvoice_ContextoCancelado(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	store := memory.New()

	called := false
	err := store.RunInvoice(ctx, func(repository.InvoiceRepository, repository.ShipmentRepository) error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

// ──────────────────────────────────────────────────────────────────────────────
// Restricciones
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateShipmentLink_Unico(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	repo := store.Invoices()
	require.NoError(t, repo.Create(ctx, newInvoice("a", "INV-A")))
	require.NoError(t, repo.Create(ctx, newInvoice("b", "INV-B")))

	require.NoError(t, repo.CreateShipmentLink(ctx, &entity.InvoiceShipment{InvoiceID: "a", ShipmentID: "S1"}))
	err := repo.CreateShipmentLink(ctx, &entity.InvoiceShipment{InvoiceID: "b", ShipmentID: "S1"})
	require.ErrorIs(t, err, domain.ErrConflictingLink)

	owner, err := repo.FindShipmentOwner(ctx, "S1")
	require.NoError(t, err)
	assert.Equal(t, "a", owner)
}

func TestCreate_NumeroDuplicado(t *testing.T) {
	ctx := context.Background()
	repo := memory.New().Invoices()
	require.NoError(t, repo.Create(ctx, newInvoice("a", "INV-A")))
	require.Error(t, repo.Create(ctx, newInvoice("b", "INV-A")))
}

func TestUpdateWithVersion(t *testing.T) {
	ctx := context.Background()
	repo := memory.New().Invoices()
	inv := newInvoice("a", "INV-A")
	require.NoError(t, repo.Create(ctx, inv))

	inv.ClientName = "Otro"
	require.NoError(t, repo.UpdateWithVersion(ctx, inv, 1))
	assert.Equal(t, 2, inv.Version)

	stale := newInvoice("a", "INV-A")
	stale.ClientName = "Perdido"
	err := repo.UpdateWithVersion(ctx, stale, 1)
	require.ErrorIs(t, err, domain.ErrVersionConflict)

	got, _ := repo.GetByID(ctx, "a")
	assert.Equal(t, "Otro", got.ClientName)
	assert.Equal(t, 2, got.Version)
}

func TestGetByID_DevuelveCopia(t *testing.T) {
	ctx := context.Background()
	repo := memory.New().Invoices()
	require.NoError(t, repo.Create(ctx, newInvoice("a", "INV-A")))

	got, _ := repo.GetByID(ctx, "a")
	got.ClientName = "mutado"

	again, _ := repo.GetByID(ctx, "a")
	assert.Equal(t, "Cliente", again.ClientName)
}

func TestShipments_Exists(t *testing.T) {
	store := memory.New()
	store.RegisterShipment("S1")

	ok, err := store.Shipments().Exists(context.Background(), "S1")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, _ = store.Shipments().Exists(context.Background(), "S2")
	assert.False(t, ok)
}

// ──────────────────────────────────────────────────────────────────────────────
// Historial y auditoría
// ──────────────────────────────────────────────────────────────────────────────

func TestHistory_OrdenYUnicidad(t *testing.T) {
	ctx := context.Background()
	repo := memory.New().History()
	for v := 1; v <= 3; v++ {
		require.NoError(t, repo.Create(ctx, &entity.InvoiceSnapshot{InvoiceID: "a", Version: v, InvoiceData: []byte(`{}`)}))
	}
	require.Error(t, repo.Create(ctx, &entity.InvoiceSnapshot{InvoiceID: "a", Version: 2}))

	list, err := repo.ListByInvoiceID(ctx, "a")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []int{3, 2, 1}, []int{list[0].Version, list[1].Version, list[2].Version})

	latest, _ := repo.GetLatest(ctx, "a")
	assert.Equal(t, 3, latest.Version)
	missing, _ := repo.GetByVersion(ctx, "a", 9)
	assert.Nil(t, missing)
	n, _ := repo.CountByInvoiceID(ctx, "a")
	assert.Equal(t, int64(3), n)
}

func TestAuditLogs_Consultas(t *testing.T) {
	ctx := context.Background()
	repo := memory.New().AuditLogs()
	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	events := []*entity.AuditLog{
		{EntityType: entity.EntityTypeInvoice, EntityID: "a", Action: entity.AuditActionCreate, ChangedBy: "u1", CreatedAt: base},
		{EntityType: entity.EntityTypeInvoice, EntityID: "a", Action: entity.AuditActionUpdate, ChangedBy: "u2", CreatedAt: base.Add(time.Hour)},
		{EntityType: entity.EntityTypeInvoice, EntityID: "b", Action: entity.AuditActionCreate, ChangedBy: "u1", CreatedAt: base.Add(2 * time.Hour)},
	}
	for _, e := range events {
		require.NoError(t, repo.Create(ctx, e))
	}

	byEntity, _ := repo.ListByEntity(ctx, entity.EntityTypeInvoice, "a")
	require.Len(t, byEntity, 2)
	assert.Equal(t, entity.AuditActionUpdate, byEntity[0].Action)

	byAction, _ := repo.ListByAction(ctx, entity.AuditActionCreate)
	assert.Len(t, byAction, 2)
	assert.Equal(t, "b", byAction[0].EntityID)

	byActor, _ := repo.ListByActor(ctx, "u2")
	assert.Len(t, byActor, 1)

	byRange, _ := repo.ListByDateRange(ctx, base, base.Add(time.Hour))
	assert.Len(t, byRange, 2)
}

func TestReadInvoice_VistaDeSoloLectura(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	require.NoError(t, store.Invoices().Create(ctx, newInvoice("inv-1", "INV-1")))

	err := store.ReadInvoice(ctx, func(invRepo repository.InvoiceRepository) error {
		got, err := invRepo.GetByID(ctx, "inv-1")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Error(t, invRepo.Create(ctx, newInvoice("inv-2", "INV-2")))
		return nil
	})
	require.NoError(t, err)

	missing, err := store.Invoices().GetByID(ctx, "inv-2")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestReadInvoice_ContextoCancelado(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := memory.New().ReadInvoice(ctx, func(repository.InvoiceRepository) error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestListAll_MasRecientesPrimero(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	older := newInvoice("inv-1", "INV-1")
	newer := newInvoice("inv-2", "INV-2")
	newer.CreatedAt = older.CreatedAt.Add(time.Hour)
	newer.Status = entity.InvoiceStatusIssued
	require.NoError(t, store.Invoices().Create(ctx, older))
	require.NoError(t, store.Invoices().Create(ctx, newer))

	list, err := store.Invoices().ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "inv-2", list[0].ID)
	assert.Equal(t, "inv-1", list[1].ID)
}

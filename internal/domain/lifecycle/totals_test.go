package lifecycle_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Facturas-api/internal/domain"
	"github.com/jhoicas/Facturas-api/internal/domain/entity"
	"github.com/jhoicas/Facturas-api/internal/domain/lifecycle"
)

func item(desc string, qty int, price string) entity.InvoiceItem {
	return entity.InvoiceItem{Description: desc, Quantity: qty, UnitPrice: decimal.RequireFromString(price)}
}

func TestComputeTotals_Escenario(t *testing.T) {
	items := []entity.InvoiceItem{item("Flete", 2, "10.00"), item("Seguro", 1, "5.00")}

	totals, err := lifecycle.ComputeTotals(items, decimal.RequireFromString("1.50"))
	require.NoError(t, err)

	assert.True(t, decimal.RequireFromString("20.00").Equal(items[0].TotalPrice))
	assert.True(t, decimal.RequireFromString("25.00").Equal(totals.Subtotal), "subtotal: %s", totals.Subtotal)
	assert.True(t, decimal.RequireFromString("26.50").Equal(totals.Total), "total: %s", totals.Total)
}

func TestComputeTotals_ImpuestoNegativo(t *testing.T) {
	_, err := lifecycle.ComputeTotals([]entity.InvoiceItem{item("Flete", 1, "1")}, decimal.NewFromInt(-1))
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestValidateItems(t *testing.T) {
	testCases := []struct {
		name  string
		items []entity.InvoiceItem
		ok    bool
	}{
		{name: "valido", items: []entity.InvoiceItem{item("Flete", 1, "0.01")}, ok: true},
		{name: "lista_vacia", items: nil},
		{name: "descripcion_vacia", items: []entity.InvoiceItem{item(" ", 1, "1")}},
		{name: "cantidad_cero", items: []entity.InvoiceItem{item("Flete", 0, "1")}},
		{name: "cantidad_maxima", items: []entity.InvoiceItem{item("Flete", lifecycle.MaxQuantity, "1")}, ok: true},
		{name: "cantidad_excede_integer", items: []entity.InvoiceItem{item("Flete", lifecycle.MaxQuantity + 1, "1")}},
		{name: "precio_cero", items: []entity.InvoiceItem{item("Flete", 1, "0")}},
		{name: "precio_negativo", items: []entity.InvoiceItem{item("Flete", 1, "-3")}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := lifecycle.ValidateItems(tc.items)
			if tc.ok {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, domain.ErrValidation)
			assert.Equal(t, domain.KindValidation, domain.Kind(err))
		})
	}
}

func TestValidateShipmentIDs(t *testing.T) {
	require.NoError(t, lifecycle.ValidateShipmentIDs([]string{"S-1", "S-2"}))
	require.ErrorIs(t, lifecycle.ValidateShipmentIDs([]string{"S-1", "S-1"}), domain.ErrValidation)
	require.ErrorIs(t, lifecycle.ValidateShipmentIDs([]string{""}), domain.ErrValidation)
}

func TestCheckTotals(t *testing.T) {
	items := []entity.InvoiceItem{item("Flete", 3, "2.50")}
	totals, err := lifecycle.ComputeTotals(items, decimal.RequireFromString("0.75"))
	require.NoError(t, err)

	inv := &entity.Invoice{Items: items, Subtotal: totals.Subtotal, TaxAmount: totals.Tax, TotalAmount: totals.Total}
	require.NoError(t, lifecycle.CheckTotals(inv))

	inv.TotalAmount = inv.TotalAmount.Add(decimal.NewFromInt(1))
	require.ErrorIs(t, lifecycle.CheckTotals(inv), domain.ErrValidation)
}

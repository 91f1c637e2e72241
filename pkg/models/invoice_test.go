package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvoices_Helpers(t *testing.T) {
	invoices := Invoices{
		{ID: "1", Subtotal: 100, Tax: 21, Total: 121},
		{ID: "2", Subtotal: 10000, Tax: 2100, Total: 12100},
		{ID: "3", Subtotal: 8265, Tax: 1735, Total: 10000},
	}

	assert.Equal(t, int64(18365), invoices.Subtotal())
	assert.Equal(t, int64(3856), invoices.Tax())
	assert.Equal(t, int64(22221), invoices.Total())

	over := invoices.Over(10000)
	require.Len(t, over, 1)
	assert.Equal(t, "2", over[0].ID)

	upTo := invoices.UpTo(10000)
	require.Len(t, upTo, 2)
	assert.Equal(t, "1", upTo[0].ID)
	assert.Equal(t, "3", upTo[1].ID)
}

func TestExpenses_Helpers(t *testing.T) {
	var empty Expenses
	assert.Zero(t, empty.Total())
	assert.NotNil(t, empty.Over(10000))
	assert.Empty(t, empty.UpTo(10000))

	expenses := Expenses{
		{ID: "a", Subtotal: 50000, Tax: 10500, Total: 60500},
		{ID: "b", Subtotal: 1000, Tax: 210, Total: 1210},
	}
	assert.Equal(t, int64(10710), expenses.Tax())
	assert.Len(t, expenses.Over(10000), 1)
	assert.Len(t, expenses.UpTo(10000), 1)
}

func TestAmount_UnmarshalJSON(t *testing.T) {
	var rec struct {
		A Amount `json:"a"`
		B Amount `json:"b"`
		C Amount `json:"c"`
	}
	err := json.Unmarshal([]byte(`{"a": "100.40", "b": 121.0, "c": null}`), &rec)
	require.NoError(t, err)

	assert.Equal(t, Amount("100.40"), rec.A)
	assert.Equal(t, Amount("121.0"), rec.B)
	assert.Equal(t, Amount(""), rec.C)

	assert.Error(t, json.Unmarshal([]byte(`{"a": true}`), &rec))
}

func TestDocumentID_UnmarshalJSON(t *testing.T) {
	var recs []CachedExpenseRecord
	err := json.Unmarshal([]byte(`[{"id": 123}, {"id": "abc-1"}, {"id": null}, {}]`), &recs)
	require.NoError(t, err)
	require.Len(t, recs, 4)

	assert.Equal(t, DocumentID("123"), recs[0].ID)
	assert.Equal(t, DocumentID("abc-1"), recs[1].ID)
	assert.Empty(t, recs[2].ID)
	assert.Empty(t, recs[3].ID)
}

func TestVatAllowList_Contains(t *testing.T) {
	list := VatAllowList{"CZ12345678": "Client s.r.o."}
	assert.True(t, list.Contains("CZ12345678"))
	assert.False(t, list.Contains("CZ87654321"))
	assert.False(t, list.Contains(""))
	assert.True(t, list.Contains(" CZ12345678\t"))
}

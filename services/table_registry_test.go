package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/tableorder/models"
	"github.com/yeremiapane/tableorder/services"
)

func TestClaimIsLastWriteWins(t *testing.T) {
	f := newFixture(t)
	x := f.tenant(t, "bistro-x")
	a := f.waiter(t, x.ID, "Ana", "1111")
	b := f.waiter(t, x.ID, "Budi", "2222")
	table := f.table(t, x.ID, "12")

	claimed, err := f.tables.Claim(f.ctx, x.ID, table.ID, a.ID)
	require.NoError(t, err)
	require.NotNil(t, claimed.WaiterID)
	assert.Equal(t, a.ID, *claimed.WaiterID)
	assert.NotNil(t, claimed.ClaimedAt)

	claimed, err = f.tables.Claim(f.ctx, x.ID, table.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, *claimed.WaiterID)
	require.NotNil(t, claimed.Waiter)
	assert.Equal(t, "Budi", claimed.Waiter.Name)

	mine, err := f.tables.ClaimedBy(f.ctx, x.ID, a.ID)
	require.NoError(t, err)
	assert.Empty(t, mine)
}

func TestReleaseOnlyClearsOwnClaim(t *testing.T) {
	f := newFixture(t)
	x := f.tenant(t, "bistro-x")
	a := f.waiter(t, x.ID, "Ana", "1111")
	b := f.waiter(t, x.ID, "Budi", "2222")
	table := f.table(t, x.ID, "12")

	_, err := f.tables.Claim(f.ctx, x.ID, table.ID, b.ID)
	require.NoError(t, err)

	got, err := f.tables.Release(f.ctx, x.ID, table.ID, a.ID)
	require.NoError(t, err)
	require.NotNil(t, got.WaiterID)
	assert.Equal(t, b.ID, *got.WaiterID)

	got, err = f.tables.Release(f.ctx, x.ID, table.ID, b.ID)
	require.NoError(t, err)
	assert.Nil(t, got.WaiterID)
	assert.Nil(t, got.ClaimedAt)
}

func TestAssignValidatesWaiter(t *testing.T) {
	f := newFixture(t)
	x := f.tenant(t, "bistro-x")
	y := f.tenant(t, "bistro-y")
	a := f.waiter(t, x.ID, "Ana", "1111")
	foreign := f.waiter(t, y.ID, "Citra", "1111")
	table := f.table(t, x.ID, "12")

	_, err := f.tables.Assign(f.ctx, x.ID, table.ID, &foreign.ID)
	assert.ErrorIs(t, err, services.ErrNotFound)

	_, err = f.waiters.SetActive(f.ctx, x.ID, a.ID, false)
	require.NoError(t, err)
	_, err = f.tables.Assign(f.ctx, x.ID, table.ID, &a.ID)
	assert.ErrorIs(t, err, services.ErrNotFound)

	_, err = f.waiters.SetActive(f.ctx, x.ID, a.ID, true)
	require.NoError(t, err)
	got, err := f.tables.Assign(f.ctx, x.ID, table.ID, &a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, *got.WaiterID)

	got, err = f.tables.Assign(f.ctx, x.ID, table.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, got.WaiterID)
}

func TestTablesAreTenantScoped(t *testing.T) {
	f := newFixture(t)
	x := f.tenant(t, "bistro-x")
	y := f.tenant(t, "bistro-y")
	table := f.table(t, x.ID, "12")
	f.table(t, y.ID, "1")

	_, err := f.tables.Get(f.ctx, y.ID, table.ID)
	assert.ErrorIs(t, err, services.ErrNotFound)

	list, err := f.tables.List(f.ctx, x.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "12", list[0].Label)
}

func TestLookupParsesTokenIdentifier(t *testing.T) {
	f := newFixture(t)
	x := f.tenant(t, "bistro-x")
	table := f.table(t, x.ID, "12")

	got, err := f.tables.Lookup(f.ctx, x.ID, uintString(table.ID))
	require.NoError(t, err)
	assert.Equal(t, table.ID, got.ID)

	for _, id := range []string{"", "0", "-1", "12a", "99999"} {
		_, err := f.tables.Lookup(f.ctx, x.ID, id)
		assert.ErrorIs(t, err, services.ErrNotFound, id)
	}
}

func TestDeleteBlockedWhileOrdersOpen(t *testing.T) {
	f := newFixture(t)
	x := f.tenant(t, "bistro-x")
	f.menuItem(t, x.ID, "A", "Nasi Goreng", 5)
	table := f.table(t, x.ID, "12")
	order := f.submit(t, x, table.ID, services.LineRequest{ItemID: "A", Quantity: 1})

	assert.ErrorIs(t, f.tables.Delete(f.ctx, x.ID, table.ID), services.ErrTableInUse)

	_, err := f.orders.Advance(f.ctx, x.ID, order.ID, models.OrderFulfilled, services.Actor{UserID: 1})
	require.NoError(t, err)

	require.NoError(t, f.tables.Delete(f.ctx, x.ID, table.ID))
	assert.ErrorIs(t, f.tables.Delete(f.ctx, x.ID, table.ID), services.ErrNotFound)

	// the order keeps its snapshot of the table
	kept, err := f.orders.GetByReference(f.ctx, x.ID, order.Reference)
	require.NoError(t, err)
	assert.Equal(t, "12", kept.TableLabel)
}

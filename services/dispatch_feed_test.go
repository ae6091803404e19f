package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/tableorder/models"
	"github.com/yeremiapane/tableorder/services"
)

func TestFeedFollowsClaimHandoff(t *testing.T) {
	f := newFixture(t)
	x := f.tenant(t, "bistro-x")
	f.menuItem(t, x.ID, "A", "Nasi Goreng", 5)
	a := f.waiter(t, x.ID, "Ana", "1111")
	b := f.waiter(t, x.ID, "Budi", "2222")
	table := f.table(t, x.ID, "12")
	_, err := f.tables.Claim(f.ctx, x.ID, table.ID, a.ID)
	require.NoError(t, err)

	order := f.submit(t, x, table.ID, services.LineRequest{ItemID: "A", Quantity: 2})

	feedA, err := f.feed.OrdersForWaiter(f.ctx, x.ID, a.ID)
	require.NoError(t, err)
	require.Len(t, feedA, 1)
	assert.Equal(t, order.ID, feedA[0].ID)
	require.Len(t, feedA[0].Items, 1)
	assert.Equal(t, 2, feedA[0].Items[0].Quantity)

	_, err = f.tables.Assign(f.ctx, x.ID, table.ID, &b.ID)
	require.NoError(t, err)

	feedA, err = f.feed.OrdersForWaiter(f.ctx, x.ID, a.ID)
	require.NoError(t, err)
	assert.Empty(t, feedA)

	feedB, err := f.feed.OrdersForWaiter(f.ctx, x.ID, b.ID)
	require.NoError(t, err)
	require.Len(t, feedB, 1)
	assert.Equal(t, order.ID, feedB[0].ID)
}

func TestFeedShowsOnlyNonTerminalNewestFirst(t *testing.T) {
	f := newFixture(t)
	x := f.tenant(t, "bistro-x")
	f.menuItem(t, x.ID, "A", "Nasi Goreng", 5)
	a := f.waiter(t, x.ID, "Ana", "1111")
	t12 := f.table(t, x.ID, "12")
	t14 := f.table(t, x.ID, "14")
	unclaimed := f.table(t, x.ID, "20")
	for _, table := range []models.Table{t12, t14} {
		_, err := f.tables.Claim(f.ctx, x.ID, table.ID, a.ID)
		require.NoError(t, err)
	}

	first := f.submit(t, x, t12.ID, services.LineRequest{ItemID: "A", Quantity: 1})
	second := f.submit(t, x, t14.ID, services.LineRequest{ItemID: "A", Quantity: 1})
	done := f.submit(t, x, t12.ID, services.LineRequest{ItemID: "A", Quantity: 1})
	f.submit(t, x, unclaimed.ID, services.LineRequest{ItemID: "A", Quantity: 1})

	_, err := f.orders.Advance(f.ctx, x.ID, first.ID, models.OrderInProgress, services.Actor{WaiterID: a.ID})
	require.NoError(t, err)
	_, err = f.orders.Advance(f.ctx, x.ID, done.ID, models.OrderFulfilled, services.Actor{WaiterID: a.ID})
	require.NoError(t, err)

	feed, err := f.feed.OrdersForWaiter(f.ctx, x.ID, a.ID)
	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.Equal(t, second.ID, feed[0].ID)
	assert.Equal(t, first.ID, feed[1].ID)
	assert.Equal(t, models.OrderInProgress, feed[1].Status)

	// stateless: polling again gives the same answer
	again, err := f.feed.OrdersForWaiter(f.ctx, x.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{feed[0].ID, feed[1].ID}, []uint{again[0].ID, again[1].ID})
}

func TestFeedWithoutClaimsIsEmpty(t *testing.T) {
	f := newFixture(t)
	x := f.tenant(t, "bistro-x")
	y := f.tenant(t, "bistro-y")
	f.menuItem(t, x.ID, "A", "Nasi Goreng", 5)
	a := f.waiter(t, x.ID, "Ana", "1111")
	table := f.table(t, x.ID, "12")
	f.submit(t, x, table.ID, services.LineRequest{ItemID: "A", Quantity: 1})

	feed, err := f.feed.OrdersForWaiter(f.ctx, x.ID, a.ID)
	require.NoError(t, err)
	assert.NotNil(t, feed)
	assert.Empty(t, feed)

	// a claim only counts inside its own tenant
	_, err = f.tables.Claim(f.ctx, x.ID, table.ID, a.ID)
	require.NoError(t, err)
	feed, err = f.feed.OrdersForWaiter(f.ctx, y.ID, a.ID)
	require.NoError(t, err)
	assert.Empty(t, feed)
}

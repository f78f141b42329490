package powerswitch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addTestEntry(t *testing.T, c *Client, host string, outlet int) AutoPingEntry {
	t.Helper()

	e, err := c.AutoPing.Add(context.Background(), AutoPingParams{
		Host:     host,
		Outlet:   outlet,
		Enabled:  true,
		Interval: 60,
		Retries:  3,
	})
	require.NoError(t, err)
	return e
}

func TestAutoPingAddThenGet(t *testing.T) {
	d := newFakeDevice(t)
	c := d.client()

	created := addTestEntry(t, c, "192.168.1.50", 2)

	got, err := c.AutoPing.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"192.168.1.50"}, got.Addresses)
	assert.Equal(t, []int{2}, got.Outlets)
	assert.True(t, got.Enabled)
	assert.Equal(t, 60, got.Interval)
	assert.Equal(t, 3, got.Retries)
}

func TestAutoPingIDsAssignedByDevice(t *testing.T) {
	d := newFakeDevice(t)
	c := d.client()

	first := addTestEntry(t, c, "192.168.1.50", 0)
	second := addTestEntry(t, c, "192.168.1.51", 1)

	assert.NotEqual(t, first.ID, second.ID)
}

func TestAutoPingList(t *testing.T) {
	d := newFakeDevice(t)
	c := d.client()

	entries, err := c.AutoPing.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)

	addTestEntry(t, c, "192.168.1.50", 2)
	addTestEntry(t, c, "192.168.1.51", 3)

	entries, err = c.AutoPing.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "192.168.1.50", entries[0].Host())
	assert.Equal(t, 3, entries[1].Outlet())
	require.NotNil(t, entries[0].Status)
	require.Len(t, entries[0].Status.Hosts, 1)
	assert.True(t, entries[0].Status.Hosts[0].State)
}

func TestAutoPingPartialUpdate(t *testing.T) {
	d := newFakeDevice(t)
	c := d.client()
	ctx := context.Background()

	e := addTestEntry(t, c, "192.168.1.50", 2)

	interval := 120
	require.NoError(t, c.AutoPing.Update(ctx, e.ID, AutoPingUpdate{Interval: &interval}))

	got, err := c.AutoPing.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 120, got.Interval)
	// Everything not named in the update keeps its value.
	assert.Equal(t, []string{"192.168.1.50"}, got.Addresses)
	assert.Equal(t, []int{2}, got.Outlets)
	assert.True(t, got.Enabled)
	assert.Equal(t, 3, got.Retries)
}

func TestAutoPingEmptyUpdateSkipsRoundTrip(t *testing.T) {
	d := newFakeDevice(t)
	c := d.client()

	e := addTestEntry(t, c, "192.168.1.50", 2)

	before := len(d.requestLog())
	require.NoError(t, c.AutoPing.Update(context.Background(), e.ID, AutoPingUpdate{}))
	assert.Len(t, d.requestLog(), before)
}

func TestAutoPingEnableDisable(t *testing.T) {
	d := newFakeDevice(t)
	c := d.client()
	ctx := context.Background()

	e := addTestEntry(t, c, "192.168.1.50", 2)

	require.NoError(t, c.AutoPing.Disable(ctx, e.ID))
	got, err := c.AutoPing.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.False(t, got.Enabled)

	require.NoError(t, c.AutoPing.Enable(ctx, e.ID))
	got, err = c.AutoPing.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.True(t, got.Enabled)
}

func TestAutoPingDelete(t *testing.T) {
	d := newFakeDevice(t)
	c := d.client()
	ctx := context.Background()

	e := addTestEntry(t, c, "192.168.1.50", 2)
	require.NoError(t, c.AutoPing.Delete(ctx, e.ID))

	_, err := c.AutoPing.Get(ctx, e.ID)
	require.Error(t, err)

	var devErr *Error
	require.ErrorAs(t, err, &devErr)
	assert.Equal(t, 404, devErr.StatusCode)
}

func TestAutoPingEntryAccessors(t *testing.T) {
	assert.Equal(t, "", AutoPingEntry{}.Host())
	assert.Equal(t, -1, AutoPingEntry{}.Outlet())

	e := AutoPingEntry{Addresses: []string{"h"}, Outlets: []int{5}}
	assert.Equal(t, "h", e.Host())
	assert.Equal(t, 5, e.Outlet())
}

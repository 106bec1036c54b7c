package turf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func sampleGrid() *Grid {
	return NewGrid([]Slot{
		{ID: "s1", Day: "monday", TimeRange: "09:00-10:00", Price: 500},
		{ID: "s2", Day: "monday", TimeRange: "10:00-11:00", Price: 600, IsBooked: true},
		{ID: "s3", Day: "tuesday", TimeRange: "18:00-19:00", Price: 800},
		{ID: "s4", Day: "sunday", TimeRange: "07:00-08:00", Price: 400},
	})
}

func TestGrid_FindAndAvailability(t *testing.T) {
	g := sampleGrid()

	s, ok := g.Find("Monday", "9:00-10:00")
	require.True(t, ok)
	assert.Equal(t, "s1", s.ID)

	assert.True(t, g.IsAvailable("monday", "09:00-10:00"))
	assert.False(t, g.IsAvailable("monday", "10:00-11:00"), "booked slot")
	assert.False(t, g.IsAvailable("friday", "09:00-10:00"), "missing slot")
	assert.False(t, g.IsAvailable("noday", "09:00-10:00"), "invalid day")

	price, ok := g.PriceOf("tuesday", "18:00-19:00")
	require.True(t, ok)
	assert.Equal(t, 800.0, price)

	_, ok = g.PriceOf("tuesday", "19:00-20:00")
	assert.False(t, ok)
}

func TestGrid_FindReturnsCopy(t *testing.T) {
	g := sampleGrid()
	s, _ := g.Find("monday", "09:00-10:00")
	s.IsBooked = true
	assert.True(t, g.IsAvailable("monday", "09:00-10:00"))
}

func TestGrid_SetBooked(t *testing.T) {
	g := sampleGrid()

	require.NoError(t, g.SetBooked("monday", "09:00-10:00", true))
	require.NoError(t, g.SetBooked("monday", "09:00-10:00", true))
	assert.False(t, g.IsAvailable("monday", "09:00-10:00"))

	require.NoError(t, g.SetBooked("MONDAY", "09:00-10:00", false))
	assert.True(t, g.IsAvailable("monday", "09:00-10:00"))

	assert.ErrorIs(t, g.SetBooked("friday", "09:00-10:00", true), ErrSlotNotFound)
}

func TestGrid_Slots_Ordered(t *testing.T) {
	g := NewGrid([]Slot{
		{ID: "c", Day: "sunday", TimeRange: "07:00-08:00", Price: 1},
		{ID: "b", Day: "monday", TimeRange: "18:00-19:00", Price: 1},
		{ID: "a", Day: "monday", TimeRange: "09:00-10:00", Price: 1},
	})

	var ids []string
	for _, s := range g.Slots() {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids)
}

func TestGrid_Add(t *testing.T) {
	g := sampleGrid()

	added, err := g.Add([]Slot{
		{Day: "Friday", TimeRange: "7:00-8:00", Price: 300},
		{Day: "friday", TimeRange: "08:00-09:00", Price: 300},
	})
	require.NoError(t, err)
	require.Len(t, added, 2)
	assert.NotEmpty(t, added[0].ID)
	assert.Equal(t, "friday", added[0].Day)
	assert.Equal(t, "07:00-08:00", added[0].TimeRange)
	assert.Len(t, g.Slots(), 6)
}

func TestGrid_Add_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		units []Slot
		want  error
	}{
		{"empty batch", nil, ErrNoSlots},
		{"duplicate of existing", []Slot{{Day: "MONDAY", TimeRange: "09:00-10:00", Price: 1}}, ErrDuplicateSlot},
		{"duplicate within batch", []Slot{
			{Day: "friday", TimeRange: "09:00-10:00", Price: 1},
			{Day: "Friday", TimeRange: "9:00-10:00", Price: 1},
		}, ErrDuplicateSlot},
		{"zero price", []Slot{{Day: "friday", TimeRange: "09:00-10:00"}}, ErrInvalidPrice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := sampleGrid()
			_, err := g.Add(tt.units)
			assert.ErrorIs(t, err, tt.want)
			assert.Len(t, g.Slots(), 4, "grid must be unchanged")
		})
	}

	g := sampleGrid()
	_, err := g.Add([]Slot{{Day: "someday", TimeRange: "09:00-10:00", Price: 1}})
	assert.Error(t, err)
	_, err = g.Add([]Slot{{Day: "friday", TimeRange: "late", Price: 1}})
	assert.Error(t, err)
}

func TestGrid_Update(t *testing.T) {
	g := sampleGrid()

	s, err := g.Update("s1", SlotPatch{Price: ptr(550.0), TimeRange: ptr("08:00-09:00")})
	require.NoError(t, err)
	assert.Equal(t, 550.0, s.Price)
	assert.Equal(t, "08:00-09:00", s.TimeRange)
	assert.Equal(t, "monday", s.Day)

	_, ok := g.Find("monday", "09:00-10:00")
	assert.False(t, ok)

	_, err = g.Update("s1", SlotPatch{TimeRange: ptr("10:00-11:00")})
	assert.ErrorIs(t, err, ErrDuplicateSlot)

	_, err = g.Update("missing", SlotPatch{Price: ptr(1.0)})
	assert.ErrorIs(t, err, ErrSlotNotFound)

	_, err = g.Update("s1", SlotPatch{Price: ptr(-1.0)})
	assert.ErrorIs(t, err, ErrInvalidPrice)
}

func TestGrid_Remove(t *testing.T) {
	g := sampleGrid()

	removed, err := g.Remove("s3")
	require.NoError(t, err)
	assert.Equal(t, "s3", removed.ID)
	assert.Len(t, g.Slots(), 3)

	_, err = g.Remove("s3")
	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestGrid_ApplyUpdates_SkipsUnresolvable(t *testing.T) {
	g := sampleGrid()

	applied, err := g.ApplyUpdates([]SlotUpdate{
		{SlotID: "s1", IsBooked: true},
		{SlotID: "does-not-exist", IsBooked: true},
		{SlotID: "s3", IsBooked: true, Price: ptr(900.0)},
		{Day: "Sunday", TimeRange: "07:00-08:00", IsBooked: true},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, applied)

	assert.False(t, g.IsAvailable("monday", "09:00-10:00"))
	assert.False(t, g.IsAvailable("tuesday", "18:00-19:00"))
	assert.False(t, g.IsAvailable("sunday", "07:00-08:00"))
	price, _ := g.PriceOf("tuesday", "18:00-19:00")
	assert.Equal(t, 900.0, price)
}

func TestGrid_ApplyUpdates_AllOrNothing(t *testing.T) {
	g := sampleGrid()

	_, err := g.ApplyUpdates([]SlotUpdate{
		{SlotID: "s1", IsBooked: true},
		{SlotID: "s3", IsBooked: false, Price: ptr(0.0)},
	})
	assert.ErrorIs(t, err, ErrInvalidPrice)
	assert.True(t, g.IsAvailable("monday", "09:00-10:00"), "first update must not stick")

	_, err = g.ApplyUpdates([]SlotUpdate{
		{SlotID: "s1", IsBooked: false, NewTime: ptr("10:00-11:00")},
	})
	assert.ErrorIs(t, err, ErrDuplicateSlot)
}

func TestGrid_ApplyUpdates_SwapTimes(t *testing.T) {
	g := sampleGrid()

	applied, err := g.ApplyUpdates([]SlotUpdate{
		{SlotID: "s1", NewTime: ptr("10:00-11:00")},
		{SlotID: "s2", NewTime: ptr("09:00-10:00"), IsBooked: true},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, applied)

	s, ok := g.Find("monday", "10:00-11:00")
	require.True(t, ok)
	assert.Equal(t, "s1", s.ID)
}

func TestDiffSlots(t *testing.T) {
	before := sampleGrid().Slots()
	g := sampleGrid()
	_, err := g.Remove("s4")
	require.NoError(t, err)
	_, err = g.Update("s1", SlotPatch{IsBooked: ptr(true)})
	require.NoError(t, err)
	added, err := g.Add([]Slot{{Day: "friday", TimeRange: "09:00-10:00", Price: 1}})
	require.NoError(t, err)

	d := diffSlots(before, g.Slots())
	assert.Equal(t, []string{"s4"}, d.deleted)
	require.Len(t, d.updated, 1)
	assert.Equal(t, "s1", d.updated[0].ID)
	require.Len(t, d.inserted, 1)
	assert.Equal(t, added[0].ID, d.inserted[0].ID)

	assert.True(t, diffSlots(before, before).empty())
}

func TestVacatedKeys(t *testing.T) {
	before := sampleGrid().Slots()

	g := sampleGrid()
	_, err := g.Remove("s4")
	require.NoError(t, err)
	_, err = g.Update("s3", SlotPatch{Day: ptr("friday")})
	require.NoError(t, err)
	_, err = g.Update("s1", SlotPatch{Price: ptr(999.0)})
	require.NoError(t, err)

	assert.ElementsMatch(t, []unitKey{
		{day: "sunday", timeRange: "07:00-08:00"},
		{day: "tuesday", timeRange: "18:00-19:00"},
	}, vacatedKeys(before, g.Slots()))

	swapped := sampleGrid()
	_, err = swapped.ApplyUpdates([]SlotUpdate{
		{SlotID: "s1", NewTime: ptr("10:00-11:00")},
		{SlotID: "s2", NewTime: ptr("09:00-10:00"), IsBooked: true},
	})
	require.NoError(t, err)
	assert.Empty(t, vacatedKeys(before, swapped.Slots()), "swapped keys stay occupied")
}

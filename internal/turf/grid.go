package turf

import (
	"cmp"
	"slices"

	"github.com/google/uuid"

	"github.com/nekogravitycat/turf-booking-backend/internal/schedule"
)

// Grid is a turf's weekly schedule: at most one slot per (day, time range).
// It is a plain value; persistence and locking live in the repository.
type Grid struct {
	slots []Slot
}

func NewGrid(slots []Slot) *Grid {
	return &Grid{slots: slices.Clone(slots)}
}

// Slots returns the slots ordered by weekday (monday first) and start time.
func (g *Grid) Slots() []Slot {
	out := slices.Clone(g.slots)
	SortSlots(out)
	return out
}

func SortSlots(slots []Slot) {
	slices.SortStableFunc(slots, func(a, b Slot) int {
		if c := cmp.Compare(schedule.DayOrder(a.Day), schedule.DayOrder(b.Day)); c != 0 {
			return c
		}
		return cmp.Compare(startMinute(a.TimeRange), startMinute(b.TimeRange))
	})
}

func startMinute(label string) int {
	tr, err := schedule.ParseTimeRange(label)
	if err != nil {
		return -1
	}
	return tr.Start
}

type unitKey struct {
	day       string
	timeRange string
}

// keyOf canonicalizes a (day, time range) pair. Unparseable pairs have no key.
func keyOf(day, timeRange string) (unitKey, bool) {
	d, err := schedule.NormalizeDay(day)
	if err != nil {
		return unitKey{}, false
	}
	tr, err := schedule.NormalizeTimeRange(timeRange)
	if err != nil {
		return unitKey{}, false
	}
	return unitKey{day: d, timeRange: tr}, true
}

func indexOfKey(slots []Slot, k unitKey) int {
	return slices.IndexFunc(slots, func(s Slot) bool {
		sk, ok := keyOf(s.Day, s.TimeRange)
		return ok && sk == k
	})
}

func indexOfID(slots []Slot, id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(slots, func(s Slot) bool { return s.ID == id })
}

// Find looks up the slot for a (day, time range) pair.
func (g *Grid) Find(day, timeRange string) (*Slot, bool) {
	k, ok := keyOf(day, timeRange)
	if !ok {
		return nil, false
	}
	i := indexOfKey(g.slots, k)
	if i < 0 {
		return nil, false
	}
	s := g.slots[i]
	return &s, true
}

// IsAvailable is true iff the slot exists and is not booked.
func (g *Grid) IsAvailable(day, timeRange string) bool {
	s, ok := g.Find(day, timeRange)
	return ok && !s.IsBooked
}

func (g *Grid) PriceOf(day, timeRange string) (float64, bool) {
	s, ok := g.Find(day, timeRange)
	if !ok {
		return 0, false
	}
	return s.Price, true
}

// SetBooked flips the booked flag of the slot at (day, time range).
func (g *Grid) SetBooked(day, timeRange string, booked bool) error {
	k, ok := keyOf(day, timeRange)
	if !ok {
		return ErrSlotNotFound
	}
	i := indexOfKey(g.slots, k)
	if i < 0 {
		return ErrSlotNotFound
	}
	g.slots[i].IsBooked = booked
	return nil
}

// normalizeSlot validates a slot and rewrites day and time range into storage form.
func normalizeSlot(s Slot) (Slot, error) {
	day, err := schedule.NormalizeDay(s.Day)
	if err != nil {
		return Slot{}, err
	}
	tr, err := schedule.NormalizeTimeRange(s.TimeRange)
	if err != nil {
		return Slot{}, err
	}
	if s.Price <= 0 {
		return Slot{}, ErrInvalidPrice
	}
	s.Day = day
	s.TimeRange = tr
	return s, nil
}

// Add appends new slots. New slots start unbooked unless stated otherwise
// and get an ID if they have none. Nothing is added if any slot is invalid or
// duplicates an existing one or another in the batch.
func (g *Grid) Add(units []Slot) ([]Slot, error) {
	if len(units) == 0 {
		return nil, ErrNoSlots
	}

	work := slices.Clone(g.slots)
	added := make([]Slot, 0, len(units))
	for _, u := range units {
		s, err := normalizeSlot(u)
		if err != nil {
			return nil, err
		}
		if indexOfKey(work, unitKey{day: s.Day, timeRange: s.TimeRange}) >= 0 {
			return nil, ErrDuplicateSlot
		}
		if s.ID == "" {
			s.ID = uuid.NewString()
		}
		work = append(work, s)
		added = append(added, s)
	}

	g.slots = work
	return added, nil
}

func applyPatch(s Slot, p SlotPatch) Slot {
	if p.Day != nil {
		s.Day = *p.Day
	}
	if p.TimeRange != nil {
		s.TimeRange = *p.TimeRange
	}
	if p.Price != nil {
		s.Price = *p.Price
	}
	if p.IsBooked != nil {
		s.IsBooked = *p.IsBooked
	}
	return s
}

// Update replaces the given fields of one slot.
func (g *Grid) Update(id string, p SlotPatch) (Slot, error) {
	i := indexOfID(g.slots, id)
	if i < 0 {
		return Slot{}, ErrSlotNotFound
	}

	s, err := normalizeSlot(applyPatch(g.slots[i], p))
	if err != nil {
		return Slot{}, err
	}
	if j := indexOfKey(g.slots, unitKey{day: s.Day, timeRange: s.TimeRange}); j >= 0 && j != i {
		return Slot{}, ErrDuplicateSlot
	}

	g.slots[i] = s
	return s, nil
}

// Remove deletes one slot by ID.
func (g *Grid) Remove(id string) (Slot, error) {
	i := indexOfID(g.slots, id)
	if i < 0 {
		return Slot{}, ErrSlotNotFound
	}
	removed := g.slots[i]
	g.slots = slices.Delete(slices.Clone(g.slots), i, i+1)
	return removed, nil
}

// ApplyUpdates applies a batch of slot updates as one unit and reports how
// many resolved. Updates whose reference matches no slot are skipped. If any
// resolved update is invalid, or the result would hold two slots for the same
// day and time range, the grid is left unchanged.
func (g *Grid) ApplyUpdates(updates []SlotUpdate) (int, error) {
	work := slices.Clone(g.slots)
	applied := 0

	for _, u := range updates {
		i := indexOfID(work, u.SlotID)
		if i < 0 && u.SlotID == "" {
			if k, ok := keyOf(u.Day, u.TimeRange); ok {
				i = indexOfKey(work, k)
			}
		}
		if i < 0 {
			continue
		}

		booked := u.IsBooked
		s, err := normalizeSlot(applyPatch(work[i], SlotPatch{
			Day:       u.NewDay,
			TimeRange: u.NewTime,
			Price:     u.Price,
			IsBooked:  &booked,
		}))
		if err != nil {
			return 0, err
		}
		work[i] = s
		applied++
	}

	if hasDuplicates(work) {
		return 0, ErrDuplicateSlot
	}

	g.slots = work
	return applied, nil
}

func hasDuplicates(slots []Slot) bool {
	seen := make(map[unitKey]struct{}, len(slots))
	for _, s := range slots {
		k, ok := keyOf(s.Day, s.TimeRange)
		if !ok {
			continue
		}
		if _, dup := seen[k]; dup {
			return true
		}
		seen[k] = struct{}{}
	}
	return false
}

// slotDiff is the set of row changes turning one schedule into another.
type slotDiff struct {
	inserted []Slot
	updated  []Slot
	deleted  []string
}

func (d slotDiff) empty() bool {
	return len(d.inserted) == 0 && len(d.updated) == 0 && len(d.deleted) == 0
}

func diffSlots(before, after []Slot) slotDiff {
	var d slotDiff
	old := make(map[string]Slot, len(before))
	for _, s := range before {
		old[s.ID] = s
	}
	for _, s := range after {
		prev, ok := old[s.ID]
		switch {
		case !ok:
			d.inserted = append(d.inserted, s)
		case prev != s:
			d.updated = append(d.updated, s)
		}
		delete(old, s.ID)
	}
	for _, s := range before {
		if _, gone := old[s.ID]; gone {
			d.deleted = append(d.deleted, s.ID)
		}
	}
	return d
}

// vacatedKeys lists the (day, time range) pairs held in before that no slot
// holds in after, i.e. the keys given up by removed or moved slots.
func vacatedKeys(before, after []Slot) []unitKey {
	kept := make(map[unitKey]struct{}, len(after))
	for _, s := range after {
		if k, ok := keyOf(s.Day, s.TimeRange); ok {
			kept[k] = struct{}{}
		}
	}
	var out []unitKey
	for _, s := range before {
		k, ok := keyOf(s.Day, s.TimeRange)
		if !ok {
			continue
		}
		if _, still := kept[k]; !still {
			out = append(out, k)
		}
	}
	return out
}

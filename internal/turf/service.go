package turf

import (
	"context"
	"slices"
	"strings"

	"github.com/nekogravitycat/turf-booking-backend/internal/auth"
	"github.com/nekogravitycat/turf-booking-backend/internal/policy"
)

type CreateRequest struct {
	Name         string
	City         string
	Address      string
	SportTypes   []string
	PricePerHour float64
	Slots        []Slot
}

type UpdateRequest struct {
	Name         *string
	City         *string
	Address      *string
	SportTypes   []string
	PricePerHour *float64
}

type Service interface {
	Create(ctx context.Context, actor auth.Actor, req CreateRequest) (*Turf, error)
	GetByID(ctx context.Context, id string) (*Turf, error)
	List(ctx context.Context, filter Filter) ([]*Turf, int, error)
	Update(ctx context.Context, id string, actor auth.Actor, req UpdateRequest) (*Turf, error)
	Delete(ctx context.Context, id string, actor auth.Actor) error

	// CheckCanMutate fails unless actor may change the turf.
	CheckCanMutate(ctx context.Context, id string, actor auth.Actor) error
	AddImage(ctx context.Context, id string, actor auth.Actor, fileID string) error

	ListSlots(ctx context.Context, id string) ([]Slot, error)
	AddSlots(ctx context.Context, id string, actor auth.Actor, slots []Slot) ([]Slot, error)
	UpdateSlot(ctx context.Context, id, slotID string, actor auth.Actor, patch SlotPatch) (*Slot, error)
	RemoveSlot(ctx context.Context, id, slotID string, actor auth.Actor) error
	// BulkUpdateSlots applies all updates or none and reports how many matched a slot.
	BulkUpdateSlots(ctx context.Context, id string, actor auth.Actor, updates []SlotUpdate) (int, []Slot, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func cleanSportTypes(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" && !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}

func (s *service) Create(ctx context.Context, actor auth.Actor, req CreateRequest) (*Turf, error) {
	if !policy.CanCreateTurf(actor) {
		return nil, ErrPermissionDenied
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrEmptyName
	}
	if strings.TrimSpace(req.City) == "" {
		return nil, ErrEmptyCity
	}
	if req.PricePerHour < 0 {
		return nil, ErrInvalidPrice
	}

	t := &Turf{
		OwnerID:      actor.UserID,
		Name:         strings.TrimSpace(req.Name),
		City:         strings.TrimSpace(req.City),
		Address:      strings.TrimSpace(req.Address),
		SportTypes:   cleanSportTypes(req.SportTypes),
		PricePerHour: req.PricePerHour,
		Images:       []string{},
		Slots:        []Slot{},
	}

	if len(req.Slots) > 0 {
		g := NewGrid(nil)
		if _, err := g.Add(req.Slots); err != nil {
			return nil, err
		}
		t.Slots = g.Slots()
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Turf, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Turf, int, error) {
	filter.SportType = strings.ToLower(strings.TrimSpace(filter.SportType))
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, id string, actor auth.Actor, req UpdateRequest) (*Turf, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanMutateTurf(actor, t.OwnerID) {
		return nil, ErrPermissionDenied
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, ErrEmptyName
		}
		t.Name = strings.TrimSpace(*req.Name)
	}
	if req.City != nil {
		if strings.TrimSpace(*req.City) == "" {
			return nil, ErrEmptyCity
		}
		t.City = strings.TrimSpace(*req.City)
	}
	if req.Address != nil {
		t.Address = strings.TrimSpace(*req.Address)
	}
	if req.SportTypes != nil {
		t.SportTypes = cleanSportTypes(req.SportTypes)
	}
	if req.PricePerHour != nil {
		if *req.PricePerHour < 0 {
			return nil, ErrInvalidPrice
		}
		t.PricePerHour = *req.PricePerHour
	}

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *service) Delete(ctx context.Context, id string, actor auth.Actor) error {
	if err := s.CheckCanMutate(ctx, id, actor); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *service) CheckCanMutate(ctx context.Context, id string, actor auth.Actor) error {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !policy.CanMutateTurf(actor, t.OwnerID) {
		return ErrPermissionDenied
	}
	return nil
}

func (s *service) AddImage(ctx context.Context, id string, actor auth.Actor, fileID string) error {
	if err := s.CheckCanMutate(ctx, id, actor); err != nil {
		return err
	}
	return s.repo.AddImage(ctx, id, fileID)
}

func (s *service) ListSlots(ctx context.Context, id string) ([]Slot, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return t.Grid().Slots(), nil
}

// mutate runs fn against the locked grid after the ownership check.
func (s *service) mutate(ctx context.Context, id string, actor auth.Actor, fn func(g *Grid) error) ([]Slot, error) {
	return s.repo.ModifyGrid(ctx, id, func(ownerID string, g *Grid) error {
		if !policy.CanMutateTurf(actor, ownerID) {
			return ErrPermissionDenied
		}
		return fn(g)
	})
}

func (s *service) AddSlots(ctx context.Context, id string, actor auth.Actor, slots []Slot) ([]Slot, error) {
	var added []Slot
	_, err := s.mutate(ctx, id, actor, func(g *Grid) error {
		var err error
		added, err = g.Add(slots)
		return err
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}

func (s *service) UpdateSlot(ctx context.Context, id, slotID string, actor auth.Actor, patch SlotPatch) (*Slot, error) {
	var updated Slot
	_, err := s.mutate(ctx, id, actor, func(g *Grid) error {
		var err error
		updated, err = g.Update(slotID, patch)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *service) RemoveSlot(ctx context.Context, id, slotID string, actor auth.Actor) error {
	_, err := s.mutate(ctx, id, actor, func(g *Grid) error {
		_, err := g.Remove(slotID)
		return err
	})
	return err
}

func (s *service) BulkUpdateSlots(ctx context.Context, id string, actor auth.Actor, updates []SlotUpdate) (int, []Slot, error) {
	var applied int
	slots, err := s.mutate(ctx, id, actor, func(g *Grid) error {
		var err error
		applied, err = g.ApplyUpdates(updates)
		return err
	})
	if err != nil {
		return 0, nil, err
	}
	return applied, slots, nil
}

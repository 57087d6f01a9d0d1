package units

import (
	"context"
	"fmt"
	"strings"

	"github.com/elvenwooddev-web/designquote/internal/platform/httpx"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]Unit, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (Unit, error) {
	if id <= 0 {
		return Unit{}, fmt.Errorf("%w: invalid unit ID", httpx.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, unit Unit) (Unit, error) {
	if err := s.validate(ctx, unit); err != nil {
		return Unit{}, err
	}
	return s.repo.Create(ctx, unit)
}

func (s *Service) Update(ctx context.Context, id int64, unit Unit) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid unit ID", httpx.ErrValidation)
	}
	if err := s.validate(ctx, unit); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, unit)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid unit ID", httpx.ErrValidation)
	}
	return s.repo.Delete(ctx, id)
}

// ConvertByCode converts a quantity between two units addressed by code.
func (s *Service) ConvertByCode(ctx context.Context, qty float64, fromCode, toCode string) (float64, error) {
	from, err := s.repo.GetByCode(ctx, fromCode)
	if err != nil {
		return 0, fmt.Errorf("resolve unit %q: %w", fromCode, err)
	}
	to, err := s.repo.GetByCode(ctx, toCode)
	if err != nil {
		return 0, fmt.Errorf("resolve unit %q: %w", toCode, err)
	}
	return Convert(qty, from, to)
}

func (s *Service) validate(ctx context.Context, u Unit) error {
	if strings.TrimSpace(u.Code) == "" {
		return fmt.Errorf("%w: unit code is required", httpx.ErrValidation)
	}
	if strings.TrimSpace(u.Name) == "" {
		return fmt.Errorf("%w: unit name is required", httpx.ErrValidation)
	}
	if u.BaseUnitID != nil {
		if u.Factor <= 0 {
			return fmt.Errorf("%w: derived unit needs a positive factor", httpx.ErrValidation)
		}
		base, err := s.repo.Get(ctx, *u.BaseUnitID)
		if err != nil {
			return fmt.Errorf("resolve base unit: %w", err)
		}
		// Conversion families are one level deep.
		if base.BaseUnitID != nil {
			return fmt.Errorf("%w: base unit must not itself be derived", httpx.ErrValidation)
		}
	}
	return nil
}

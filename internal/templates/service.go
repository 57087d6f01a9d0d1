package templates

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/elvenwooddev-web/designquote/internal/platform/httpx"
)

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]Template, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (Template, error) {
	if id <= 0 {
		return Template{}, fmt.Errorf("%w: invalid template ID", httpx.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

// Resolve returns the requested template, falling back to the configured
// default and finally to the built-in fallback.
func (s *Service) Resolve(ctx context.Context, id *int64) (Template, error) {
	if id != nil {
		return s.repo.Get(ctx, *id)
	}
	t, err := s.repo.GetDefault(ctx)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return Fallback(), nil
		}
		return Template{}, err
	}
	return t, nil
}

func (s *Service) Create(ctx context.Context, template Template) (Template, error) {
	if err := s.validate(template); err != nil {
		return Template{}, err
	}
	return s.repo.Create(ctx, template)
}

func (s *Service) Update(ctx context.Context, id int64, template Template) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid template ID", httpx.ErrValidation)
	}
	if err := s.validate(template); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, template)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid template ID", httpx.ErrValidation)
	}
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if existing.IsDefault {
		return fmt.Errorf("%w: cannot delete the default template", httpx.ErrConflict)
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) SetDefault(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid template ID", httpx.ErrValidation)
	}
	return s.repo.SetDefault(ctx, id)
}

func (s *Service) validate(t Template) error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: template name is required", httpx.ErrValidation)
	}
	switch t.PageSize {
	case "A4", "Letter", "Legal":
	default:
		return fmt.Errorf("%w: unsupported page size %q", httpx.ErrValidation, t.PageSize)
	}
	if !hexColor.MatchString(t.AccentColor) {
		return fmt.Errorf("%w: accent color must be a #rrggbb value", httpx.ErrValidation)
	}
	return nil
}

package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/couchcryptid/metar-card-service/internal/domain"
)

// Favorites returns the saved station codes in insertion order. A corrupt
// stored value reads as an empty list.
func (s *Service) Favorites(ctx context.Context) ([]domain.StationCode, error) {
	raw, ok, err := s.store.Get(ctx, KeyFavorites)
	if err != nil {
		return nil, fmt.Errorf("read favorites: %w", err)
	}
	if !ok || raw == "" {
		return []domain.StationCode{}, nil
	}

	var list []domain.StationCode
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		s.logger.Warn("discarding unreadable favorites", "error", err)
		return []domain.StationCode{}, nil
	}
	if list == nil {
		list = []domain.StationCode{}
	}
	return list, nil
}

// AddFavorite appends code unless it is already present.
func (s *Service) AddFavorite(ctx context.Context, code string) ([]domain.StationCode, error) {
	c, err := domain.ParseStationCode(code)
	if err != nil {
		return nil, err
	}

	s.favMu.Lock()
	defer s.favMu.Unlock()
	list, err := s.Favorites(ctx)
	if err != nil {
		return nil, err
	}
	if slices.Contains(list, c) {
		return list, nil
	}
	list = append(list, c)
	return list, s.saveFavorites(ctx, list)
}

// RemoveFavorite drops code from the list. Removing a non-member is a no-op.
func (s *Service) RemoveFavorite(ctx context.Context, code string) ([]domain.StationCode, error) {
	c, err := domain.ParseStationCode(code)
	if err != nil {
		return nil, err
	}

	s.favMu.Lock()
	defer s.favMu.Unlock()
	list, err := s.Favorites(ctx)
	if err != nil {
		return nil, err
	}
	i := slices.Index(list, c)
	if i < 0 {
		return list, nil
	}
	list = slices.Delete(list, i, i+1)
	return list, s.saveFavorites(ctx, list)
}

func (s *Service) saveFavorites(ctx context.Context, list []domain.StationCode) error {
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode favorites: %w", err)
	}
	if err := s.store.Set(ctx, KeyFavorites, string(data)); err != nil {
		return fmt.Errorf("write favorites: %w", err)
	}
	return nil
}

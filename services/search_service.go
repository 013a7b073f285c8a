package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ladder-gg/ladder/config"
	"github.com/ladder-gg/ladder/models"
	"github.com/ladder-gg/ladder/repositories"
)

// SearchResult — подходящие соперники плюс канонизированные параметры поиска.
type SearchResult struct {
	Mode       string           `json:"mode"`
	Server     string           `json:"server"`
	RatingMin  int              `json:"rating_min"`
	RatingMax  int              `json:"rating_max"`
	Candidates []*models.Player `json:"candidates"`
}

type SearchService interface {
	// FindCandidates возвращает всех подходящих соперников в диапазоне
	// ±SearchRange. Пустой результат — нормальный исход, не ошибка.
	FindCandidates(ctx context.Context, playerID int, mode, server string) (*SearchResult, error)
}

type searchService struct {
	playerRepo repositories.PlayerRepository
	catalog    *config.Catalog
}

func NewSearchService(playerRepo repositories.PlayerRepository, catalog *config.Catalog) SearchService {
	return &searchService{playerRepo: playerRepo, catalog: catalog}
}

func (s *searchService) FindCandidates(ctx context.Context, playerID int, mode, server string) (*SearchResult, error) {
	if !s.catalog.ValidMode(mode) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
	canonical, ok := s.catalog.CanonicalServer(server)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidServer, server)
	}

	player, err := s.playerRepo.GetByID(ctx, nil, playerID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to get player %d: %w", playerID, err)
	}
	if player.Suspended(time.Now()) {
		return nil, ErrPlayerSuspended
	}

	rules := s.catalog.Rating
	min := player.Rating - rules.SearchRange
	if min < rules.Floor {
		min = rules.Floor
	}
	max := player.Rating + rules.SearchRange

	candidates, err := s.playerRepo.ListByRatingRange(ctx, repositories.RatingRange{
		Min:                    min,
		Max:                    max,
		ExcludePlayerID:        player.ID,
		ExcludeActiveLobbyMode: mode,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}

	return &SearchResult{
		Mode:       mode,
		Server:     canonical,
		RatingMin:  min,
		RatingMax:  max,
		Candidates: candidates,
	}, nil
}

package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/ladder-gg/ladder/config"
	"github.com/ladder-gg/ladder/models"
	"github.com/ladder-gg/ladder/repositories"
)

// LevelForRating — целочисленное деление с насыщением: монотонно
// неубывает по рейтингу и не превышает MaxLevel.
func LevelForRating(rules config.RatingRules, rating int) int {
	if rating < rules.Floor {
		rating = rules.Floor
	}
	level := rating / rules.LevelThreshold
	if level > rules.MaxLevel {
		level = rules.MaxLevel
	}
	return level
}

// TierColor — отображаемый цвет ранга, чистая функция уровня.
func TierColor(level int) string {
	switch {
	case level <= 2:
		return "#808080" // серый
	case level <= 5:
		return "#4169E1" // голубой
	case level <= 8:
		return "#0000CD" // синий
	default:
		return "#4B0082" // темно-фиолетовый
	}
}

type RatingService interface {
	// ApplyOutcome применяет дельту результата к игроку внутри
	// транзакции вызывающего. Рейтинг и уровень пересчитываются
	// атомарно одним запросом.
	ApplyOutcome(ctx context.Context, exec repositories.SQLExecutor, playerID int, outcome models.Outcome) (*models.Player, error)

	// DeltaFor возвращает дельту GGP за результат.
	DeltaFor(outcome models.Outcome) int
}

type ratingService struct {
	playerRepo repositories.PlayerRepository
	rules      config.RatingRules
}

func NewRatingService(playerRepo repositories.PlayerRepository, rules config.RatingRules) RatingService {
	return &ratingService{playerRepo: playerRepo, rules: rules}
}

func (s *ratingService) DeltaFor(outcome models.Outcome) int {
	if outcome == models.OutcomeWin {
		return s.rules.WinDelta
	}
	return s.rules.LossDelta
}

func (s *ratingService) ApplyOutcome(ctx context.Context, exec repositories.SQLExecutor, playerID int, outcome models.Outcome) (*models.Player, error) {
	if !outcome.Valid() {
		return nil, ErrInvalidOutcome
	}

	player, err := s.playerRepo.ApplyRatingDelta(ctx, exec, playerID,
		s.DeltaFor(outcome), s.rules.Floor, s.rules.LevelThreshold, s.rules.MaxLevel)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to apply rating delta to player %d: %w", playerID, err)
	}
	return player, nil
}

package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/ladder-gg/ladder/config"
	"github.com/ladder-gg/ladder/models"
	"github.com/ladder-gg/ladder/repositories"
)

type PartyService interface {
	CreateParty(ctx context.Context, leaderID int, mode, server string) (*models.Party, error)

	// InviteToParty добавляет игрока в группу. Только лидер; отказ при
	// заполненной группе или если игрок уже сгруппирован в этом режиме.
	InviteToParty(ctx context.Context, partyID, leaderID, playerID int) error

	// LeaveParty: уход лидера распускает группу, уход участника — нет.
	LeaveParty(ctx context.Context, partyID, playerID int) error

	GetParty(ctx context.Context, partyID int) (*models.Party, error)
}

type partyService struct {
	partyRepo repositories.PartyRepository
	lobbyRepo repositories.LobbyRepository
	tx        TxRunner
	catalog   *config.Catalog
}

func NewPartyService(
	partyRepo repositories.PartyRepository,
	lobbyRepo repositories.LobbyRepository,
	tx TxRunner,
	catalog *config.Catalog,
) PartyService {
	return &partyService{
		partyRepo: partyRepo,
		lobbyRepo: lobbyRepo,
		tx:        tx,
		catalog:   catalog,
	}
}

// alreadyGrouped проверяет, не занят ли игрок другой группой или
// активным лобби того же режима.
func (s *partyService) alreadyGrouped(ctx context.Context, playerID int, mode string, ignorePartyID int) error {
	party, err := s.partyRepo.FindByMemberAndMode(ctx, playerID, mode)
	switch {
	case err == nil:
		if party.ID != ignorePartyID {
			return ErrAlreadyGrouped
		}
	case !errors.Is(err, repositories.ErrPartyNotFound):
		return fmt.Errorf("failed to check party membership for player %d: %w", playerID, err)
	}

	_, err = s.lobbyRepo.FindActiveIDByPlayerAndMode(ctx, playerID, mode)
	switch {
	case err == nil:
		return ErrAlreadyGrouped
	case !errors.Is(err, repositories.ErrLobbyNotFound):
		return fmt.Errorf("failed to check lobby membership for player %d: %w", playerID, err)
	}

	return nil
}

func (s *partyService) CreateParty(ctx context.Context, leaderID int, mode, server string) (*models.Party, error) {
	if !s.catalog.ValidMode(mode) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
	canonical, ok := s.catalog.CanonicalServer(server)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidServer, server)
	}

	if err := s.alreadyGrouped(ctx, leaderID, mode, 0); err != nil {
		return nil, err
	}

	party := &models.Party{
		LeaderID: leaderID,
		Mode:     mode,
		Server:   canonical,
	}

	err := s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.partyRepo.Create(ctx, exec, party)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create party: %w", err)
	}
	return party, nil
}

func (s *partyService) InviteToParty(ctx context.Context, partyID, leaderID, playerID int) error {
	party, err := s.partyRepo.GetByID(ctx, nil, partyID)
	if err != nil {
		if errors.Is(err, repositories.ErrPartyNotFound) {
			return ErrPartyNotFound
		}
		return fmt.Errorf("failed to get party %d: %w", partyID, err)
	}

	if party.LeaderID != leaderID {
		return ErrNotPartyLeader
	}

	if err := s.alreadyGrouped(ctx, playerID, party.Mode, 0); err != nil {
		return err
	}

	teamSize, _ := s.catalog.TeamSize(party.Mode)

	return s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		count, err := s.partyRepo.CountMembers(ctx, exec, partyID)
		if err != nil {
			return fmt.Errorf("failed to count party members: %w", err)
		}
		if count >= teamSize {
			return ErrPartyFull
		}

		member := &models.PartyMember{PartyID: partyID, PlayerID: playerID}
		if err := s.partyRepo.AddMember(ctx, exec, member); err != nil {
			if errors.Is(err, repositories.ErrPartyMemberConflict) {
				return ErrAlreadyGrouped
			}
			return fmt.Errorf("failed to add party member: %w", err)
		}
		return nil
	})
}

func (s *partyService) LeaveParty(ctx context.Context, partyID, playerID int) error {
	party, err := s.partyRepo.GetByID(ctx, nil, partyID)
	if err != nil {
		if errors.Is(err, repositories.ErrPartyNotFound) {
			return ErrPartyNotFound
		}
		return fmt.Errorf("failed to get party %d: %w", partyID, err)
	}

	return s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		if party.LeaderID == playerID {
			// Лидер уходит — группа распускается целиком.
			if err := s.partyRepo.Delete(ctx, exec, partyID); err != nil {
				if errors.Is(err, repositories.ErrPartyNotFound) {
					return ErrPartyNotFound
				}
				return fmt.Errorf("failed to disband party %d: %w", partyID, err)
			}
			return nil
		}

		if err := s.partyRepo.RemoveMember(ctx, exec, partyID, playerID); err != nil {
			if errors.Is(err, repositories.ErrPartyMemberNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to remove party member: %w", err)
		}
		return nil
	})
}

func (s *partyService) GetParty(ctx context.Context, partyID int) (*models.Party, error) {
	party, err := s.partyRepo.GetByID(ctx, nil, partyID)
	if err != nil {
		if errors.Is(err, repositories.ErrPartyNotFound) {
			return nil, ErrPartyNotFound
		}
		return nil, fmt.Errorf("failed to get party %d: %w", partyID, err)
	}

	members, err := s.partyRepo.ListMembers(ctx, nil, partyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list party members: %w", err)
	}
	party.Members = make([]models.PartyMember, 0, len(members))
	for _, m := range members {
		party.Members = append(party.Members, *m)
	}
	return party, nil
}

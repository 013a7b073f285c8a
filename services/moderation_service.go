package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ladder-gg/ladder/models"
	"github.com/ladder-gg/ladder/repositories"
)

// BanParams — параметры глобального бана игрока.
type BanParams struct {
	TargetID int
	Reason   string
	Type     models.BanType
	Duration time.Duration // обязателен для temporary, игнорируется для permanent
}

// ModerationService — привилегированные операции. Каждая мутация
// дописывает AdminAction в той же транзакции: действие без следа в
// журнале невозможно.
type ModerationService interface {
	BanPlayer(ctx context.Context, adminID int, adminPrivilege models.PrivilegeLevel, params BanParams) (*models.PlayerBan, error)
	UnbanPlayer(ctx context.Context, adminID int, adminPrivilege models.PrivilegeLevel, targetID int, reason string) error

	// SetPrivilegeLevel доступен только OWNER.
	SetPrivilegeLevel(ctx context.Context, adminID int, adminPrivilege models.PrivilegeLevel, targetID int, level models.PrivilegeLevel, reason string) error

	BanFromLobby(ctx context.Context, adminID int, adminPrivilege models.PrivilegeLevel, lobbyID, targetID int, reason string) error
	UnbanFromLobby(ctx context.Context, adminID int, adminPrivilege models.PrivilegeLevel, lobbyID, targetID int, reason string) error

	// DeleteLobby — принудительный снос лобби модератором, в обход
	// проверки создателя.
	DeleteLobby(ctx context.Context, adminID int, adminPrivilege models.PrivilegeLevel, lobbyID int, reason string) error

	ListAdminActions(ctx context.Context, filter repositories.AdminActionFilter) ([]*models.AdminAction, error)

	// SweepExpiredBans снимает истекшие временные баны. Вызывается
	// фоновым планировщиком.
	SweepExpiredBans(ctx context.Context) (int64, error)
}

type moderationService struct {
	playerRepo   repositories.PlayerRepository
	banRepo      repositories.BanRepository
	lobbyRepo    repositories.LobbyRepository
	lobbyBanRepo repositories.LobbyBanRepository
	actionRepo   repositories.AdminActionRepository
	tx           TxRunner
	notifier     LobbyNotifier
}

func NewModerationService(
	playerRepo repositories.PlayerRepository,
	banRepo repositories.BanRepository,
	lobbyRepo repositories.LobbyRepository,
	lobbyBanRepo repositories.LobbyBanRepository,
	actionRepo repositories.AdminActionRepository,
	tx TxRunner,
	notifier LobbyNotifier,
) ModerationService {
	return &moderationService{
		playerRepo:   playerRepo,
		banRepo:      banRepo,
		lobbyRepo:    lobbyRepo,
		lobbyBanRepo: lobbyBanRepo,
		actionRepo:   actionRepo,
		tx:           tx,
		notifier:     notifier,
	}
}

func (s *moderationService) BanPlayer(ctx context.Context, adminID int, adminPrivilege models.PrivilegeLevel, params BanParams) (*models.PlayerBan, error) {
	if !adminPrivilege.CanBanPlayers() {
		return nil, ErrInsufficientPrivilege
	}
	if strings.TrimSpace(params.Reason) == "" {
		return nil, ErrReasonRequired
	}

	var expires *time.Time
	switch params.Type {
	case models.BanTypePermanent:
		if !adminPrivilege.CanBanPermanently() {
			return nil, ErrInsufficientPrivilege
		}
	case models.BanTypeTemporary:
		if params.Duration <= 0 {
			return nil, ErrInvalidBanDuration
		}
		t := time.Now().Add(params.Duration)
		expires = &t
	default:
		return nil, fmt.Errorf("%w: unknown ban type %q", ErrValidationFailed, params.Type)
	}

	ban := &models.PlayerBan{
		PlayerID:  params.TargetID,
		AdminID:   adminID,
		Reason:    params.Reason,
		Type:      params.Type,
		ExpiresAt: expires,
		IsActive:  true,
	}

	err := s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		if _, err := s.playerRepo.GetByID(ctx, exec, params.TargetID); err != nil {
			if errors.Is(err, repositories.ErrPlayerNotFound) {
				return ErrPlayerNotFound
			}
			return fmt.Errorf("failed to get player %d: %w", params.TargetID, err)
		}
		if err := s.banRepo.Create(ctx, exec, ban); err != nil {
			return fmt.Errorf("failed to create ban: %w", err)
		}
		if err := s.playerRepo.SetBanState(ctx, exec, params.TargetID, true, expires); err != nil {
			return fmt.Errorf("failed to flag player banned: %w", err)
		}
		return s.appendAction(ctx, exec, &models.AdminAction{
			AdminID:        adminID,
			Action:         models.ActionBan,
			TargetPlayerID: params.TargetID,
			Reason:         &params.Reason,
			Details:        mustDetails(map[string]interface{}{"ban_type": params.Type, "expires_at": expires}),
		})
	})
	if err != nil {
		return nil, err
	}
	return ban, nil
}

func (s *moderationService) UnbanPlayer(ctx context.Context, adminID int, adminPrivilege models.PrivilegeLevel, targetID int, reason string) error {
	if !adminPrivilege.CanUnbanPlayers() {
		return ErrInsufficientPrivilege
	}
	if strings.TrimSpace(reason) == "" {
		return ErrReasonRequired
	}

	return s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		if _, err := s.playerRepo.GetByID(ctx, exec, targetID); err != nil {
			if errors.Is(err, repositories.ErrPlayerNotFound) {
				return ErrPlayerNotFound
			}
			return fmt.Errorf("failed to get player %d: %w", targetID, err)
		}
		// Снятие бана без активных банов тоже журналируется: это
		// осознанное действие модератора.
		if _, err := s.banRepo.DeactivateByPlayer(ctx, exec, targetID); err != nil {
			return fmt.Errorf("failed to deactivate bans: %w", err)
		}
		if err := s.playerRepo.SetBanState(ctx, exec, targetID, false, nil); err != nil {
			return fmt.Errorf("failed to clear ban flag: %w", err)
		}
		return s.appendAction(ctx, exec, &models.AdminAction{
			AdminID:        adminID,
			Action:         models.ActionUnban,
			TargetPlayerID: targetID,
			Reason:         &reason,
		})
	})
}

func (s *moderationService) SetPrivilegeLevel(ctx context.Context, adminID int, adminPrivilege models.PrivilegeLevel, targetID int, level models.PrivilegeLevel, reason string) error {
	if !adminPrivilege.CanAssignRoles() {
		return ErrInsufficientPrivilege
	}
	if !level.Valid() {
		return ErrInvalidPrivilege
	}
	if strings.TrimSpace(reason) == "" {
		return ErrReasonRequired
	}

	return s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		target, err := s.playerRepo.GetByID(ctx, exec, targetID)
		if err != nil {
			if errors.Is(err, repositories.ErrPlayerNotFound) {
				return ErrPlayerNotFound
			}
			return fmt.Errorf("failed to get player %d: %w", targetID, err)
		}
		if err := s.playerRepo.SetPrivilege(ctx, exec, targetID, level); err != nil {
			return fmt.Errorf("failed to set privilege: %w", err)
		}
		return s.appendAction(ctx, exec, &models.AdminAction{
			AdminID:        adminID,
			Action:         models.ActionRoleChange,
			TargetPlayerID: targetID,
			Reason:         &reason,
			Details:        mustDetails(map[string]interface{}{"from": target.Privilege, "to": level}),
		})
	})
}

func (s *moderationService) BanFromLobby(ctx context.Context, adminID int, adminPrivilege models.PrivilegeLevel, lobbyID, targetID int, reason string) error {
	if !adminPrivilege.CanBanPlayers() {
		return ErrInsufficientPrivilege
	}
	if strings.TrimSpace(reason) == "" {
		return ErrReasonRequired
	}

	return s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		if _, err := s.lobbyRepo.GetByID(ctx, exec, lobbyID); err != nil {
			if errors.Is(err, repositories.ErrLobbyNotFound) {
				return ErrLobbyNotFound
			}
			return fmt.Errorf("failed to get lobby %d: %w", lobbyID, err)
		}
		if err := s.lobbyBanRepo.Create(ctx, exec, &models.LobbyBan{
			LobbyID:  lobbyID,
			PlayerID: targetID,
			AdminID:  adminID,
			Reason:   reason,
		}); err != nil {
			if errors.Is(err, repositories.ErrLobbyBanConflict) {
				return nil // уже в списке, идемпотентно
			}
			return fmt.Errorf("failed to create lobby ban: %w", err)
		}
		return s.appendAction(ctx, exec, &models.AdminAction{
			AdminID:        adminID,
			Action:         models.ActionLobbyBan,
			TargetPlayerID: targetID,
			Reason:         &reason,
			Details:        mustDetails(map[string]interface{}{"lobby_id": lobbyID}),
		})
	})
}

func (s *moderationService) UnbanFromLobby(ctx context.Context, adminID int, adminPrivilege models.PrivilegeLevel, lobbyID, targetID int, reason string) error {
	if !adminPrivilege.CanBanPlayers() {
		return ErrInsufficientPrivilege
	}
	if strings.TrimSpace(reason) == "" {
		return ErrReasonRequired
	}

	return s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.lobbyBanRepo.Delete(ctx, exec, lobbyID, targetID); err != nil {
			if errors.Is(err, repositories.ErrLobbyBanNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to delete lobby ban: %w", err)
		}
		return s.appendAction(ctx, exec, &models.AdminAction{
			AdminID:        adminID,
			Action:         models.ActionLobbyUnban,
			TargetPlayerID: targetID,
			Reason:         &reason,
			Details:        mustDetails(map[string]interface{}{"lobby_id": lobbyID}),
		})
	})
}

func (s *moderationService) DeleteLobby(ctx context.Context, adminID int, adminPrivilege models.PrivilegeLevel, lobbyID int, reason string) error {
	if !adminPrivilege.CanDeleteLobbies() {
		return ErrInsufficientPrivilege
	}
	if strings.TrimSpace(reason) == "" {
		return ErrReasonRequired
	}

	var creatorID int
	err := s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		lobby, err := s.lobbyRepo.GetByID(ctx, exec, lobbyID)
		if err != nil {
			if errors.Is(err, repositories.ErrLobbyNotFound) {
				return ErrLobbyNotFound
			}
			return fmt.Errorf("failed to get lobby %d: %w", lobbyID, err)
		}
		creatorID = lobby.CreatorID
		if err := s.lobbyRepo.Delete(ctx, exec, lobbyID); err != nil {
			return fmt.Errorf("failed to delete lobby %d: %w", lobbyID, err)
		}
		return s.appendAction(ctx, exec, &models.AdminAction{
			AdminID:        adminID,
			Action:         models.ActionLobbyDelete,
			TargetPlayerID: creatorID,
			Reason:         &reason,
			Details:        mustDetails(map[string]interface{}{"lobby_id": lobbyID}),
		})
	})
	if err != nil {
		return err
	}

	if s.notifier != nil {
		s.notifier.NotifyLobby(lobbyID, EventLobbyCancelled, map[string]interface{}{"reason": "removed by moderator"})
	}
	return nil
}

func (s *moderationService) ListAdminActions(ctx context.Context, filter repositories.AdminActionFilter) ([]*models.AdminAction, error) {
	actions, err := s.actionRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list admin actions: %w", err)
	}
	return actions, nil
}

func (s *moderationService) SweepExpiredBans(ctx context.Context) (int64, error) {
	return s.playerRepo.ClearExpiredBans(ctx)
}

func (s *moderationService) appendAction(ctx context.Context, exec repositories.SQLExecutor, action *models.AdminAction) error {
	if err := s.actionRepo.Create(ctx, exec, action); err != nil {
		return fmt.Errorf("failed to append admin action: %w", err)
	}
	return nil
}

func mustDetails(v map[string]interface{}) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return b
}

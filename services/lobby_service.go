package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ladder-gg/ladder/config"
	"github.com/ladder-gg/ladder/models"
	"github.com/ladder-gg/ladder/repositories"
	"golang.org/x/crypto/bcrypt"
)

const (
	minLobbyName     = 3
	minLobbyCapacity = 2
	maxLobbyCapacity = 10
)

// CreateLobbyParams — параметры создания лобби.
type CreateLobbyParams struct {
	Name        string
	Description *string
	Mode        string
	Server      string
	Capacity    int
	IsPublic    bool
	Password    string
}

// JoinCredentials — пароль и/или инвайт-код, предъявленные при входе.
// Валидный инвайт обходит проверку пароля и приватности.
type JoinCredentials struct {
	Password   string
	InviteCode string
}

// JoinOutcome — результат входа; Rejoined выставлен при идемпотентном
// повторном входе уже состоящего участника.
type JoinOutcome struct {
	Lobby    *models.Lobby
	Rejoined bool
}

type LobbyService interface {
	Create(ctx context.Context, creatorID int, params CreateLobbyParams) (*models.Lobby, error)
	Get(ctx context.Context, lobbyID int) (*models.Lobby, error)
	ListPublic(ctx context.Context, status models.LobbyStatus, limit, offset int) ([]*models.Lobby, error)

	// Join реализует контракт входа: not-found → бан → статус → инвайт →
	// пароль → идемпотентный повторный вход → атомарное занятие места.
	Join(ctx context.Context, lobbyID, playerID int, creds JoinCredentials) (*JoinOutcome, error)

	Leave(ctx context.Context, lobbyID, playerID int) error
	Kick(ctx context.Context, lobbyID, actorID, targetID int) error

	// Start закрывает лобби для новых игроков. Только создатель.
	Start(ctx context.Context, lobbyID, actorID int) error

	// Cancel удаляет лобби со всеми дочерними записями. Только создатель;
	// идемпотентен — повторный вызов даёт ErrLobbyNotFound.
	Cancel(ctx context.Context, lobbyID, actorID int) error

	PostMessage(ctx context.Context, lobbyID, playerID int, text string) (*models.LobbyMessage, error)
	ListMessages(ctx context.Context, lobbyID, limit int) ([]*models.LobbyMessage, error)
}

type lobbyService struct {
	lobbyRepo   repositories.LobbyRepository
	memberRepo  repositories.LobbyMemberRepository
	banRepo     repositories.LobbyBanRepository
	inviteRepo  repositories.InviteRepository
	messageRepo repositories.LobbyMessageRepository
	playerRepo  repositories.PlayerRepository
	tx          TxRunner
	catalog     *config.Catalog
	notifier    LobbyNotifier
}

func NewLobbyService(
	lobbyRepo repositories.LobbyRepository,
	memberRepo repositories.LobbyMemberRepository,
	banRepo repositories.LobbyBanRepository,
	inviteRepo repositories.InviteRepository,
	messageRepo repositories.LobbyMessageRepository,
	playerRepo repositories.PlayerRepository,
	tx TxRunner,
	catalog *config.Catalog,
	notifier LobbyNotifier,
) LobbyService {
	return &lobbyService{
		lobbyRepo:   lobbyRepo,
		memberRepo:  memberRepo,
		banRepo:     banRepo,
		inviteRepo:  inviteRepo,
		messageRepo: messageRepo,
		playerRepo:  playerRepo,
		tx:          tx,
		catalog:     catalog,
		notifier:    notifier,
	}
}

func (s *lobbyService) notify(lobbyID int, event string, payload interface{}) {
	if s.notifier != nil {
		s.notifier.NotifyLobby(lobbyID, event, payload)
	}
}

func (s *lobbyService) requireActivePlayer(ctx context.Context, playerID int) (*models.Player, error) {
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
	return player, nil
}

func (s *lobbyService) Create(ctx context.Context, creatorID int, params CreateLobbyParams) (*models.Lobby, error) {
	if len(strings.TrimSpace(params.Name)) < minLobbyName {
		return nil, ErrLobbyNameTooShort
	}
	if !s.catalog.ValidMode(params.Mode) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, params.Mode)
	}
	canonical, ok := s.catalog.CanonicalServer(params.Server)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidServer, params.Server)
	}
	if params.Capacity < minLobbyCapacity || params.Capacity > maxLobbyCapacity {
		return nil, ErrInvalidCapacity
	}

	if _, err := s.requireActivePlayer(ctx, creatorID); err != nil {
		return nil, err
	}

	var passwordHash *string
	if !params.IsPublic && params.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash lobby password: %w", err)
		}
		h := string(hash)
		passwordHash = &h
	}

	lobby := &models.Lobby{
		Name:           strings.TrimSpace(params.Name),
		Description:    params.Description,
		CreatorID:      creatorID,
		Mode:           params.Mode,
		Server:         canonical,
		IsPublic:       params.IsPublic,
		PasswordHash:   passwordHash,
		MaxPlayers:     params.Capacity,
		CurrentPlayers: 1,
		Status:         models.LobbyStatusOpen,
	}

	// Создатель становится первым участником в той же транзакции.
	err := s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.lobbyRepo.Create(ctx, exec, lobby); err != nil {
			return fmt.Errorf("failed to create lobby: %w", err)
		}
		member := &models.LobbyMember{LobbyID: lobby.ID, PlayerID: creatorID, Team: 1}
		if err := s.memberRepo.Create(ctx, exec, member); err != nil {
			return fmt.Errorf("failed to add creator as member: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return lobby, nil
}

func (s *lobbyService) Get(ctx context.Context, lobbyID int) (*models.Lobby, error) {
	lobby, err := s.lobbyRepo.GetByID(ctx, nil, lobbyID)
	if err != nil {
		if errors.Is(err, repositories.ErrLobbyNotFound) {
			return nil, ErrLobbyNotFound
		}
		return nil, fmt.Errorf("failed to get lobby %d: %w", lobbyID, err)
	}

	members, err := s.memberRepo.ListByLobby(ctx, nil, lobbyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list lobby members: %w", err)
	}
	lobby.Members = make([]models.LobbyMember, 0, len(members))
	for _, m := range members {
		lobby.Members = append(lobby.Members, *m)
	}
	return lobby, nil
}

func (s *lobbyService) ListPublic(ctx context.Context, status models.LobbyStatus, limit, offset int) ([]*models.Lobby, error) {
	lobbies, err := s.lobbyRepo.ListPublic(ctx, repositories.LobbyFilter{
		Status: status,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list lobbies: %w", err)
	}
	return lobbies, nil
}

func (s *lobbyService) Join(ctx context.Context, lobbyID, playerID int, creds JoinCredentials) (*JoinOutcome, error) {
	if _, err := s.requireActivePlayer(ctx, playerID); err != nil {
		return nil, err
	}

	outcome := &JoinOutcome{}

	err := s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		lobby, err := s.lobbyRepo.GetByID(ctx, exec, lobbyID)
		if err != nil {
			if errors.Is(err, repositories.ErrLobbyNotFound) {
				return ErrLobbyNotFound
			}
			return fmt.Errorf("failed to get lobby %d: %w", lobbyID, err)
		}

		// Бан проверяется раньше всего остального: валидный пароль или
		// инвайт забаненному не помогают.
		banned, err := s.banRepo.Exists(ctx, exec, lobbyID, playerID)
		if err != nil {
			return fmt.Errorf("failed to check lobby ban: %w", err)
		}
		if banned {
			return ErrLobbyBanned
		}

		switch lobby.Status {
		case models.LobbyStatusFull:
			return ErrLobbyFull
		case models.LobbyStatusStarted:
			return ErrLobbyStarted
		}

		var invite *models.LobbyInvite
		if creds.InviteCode != "" {
			invite, err = s.inviteRepo.GetByLobbyID(ctx, exec, lobbyID)
			if err != nil && !errors.Is(err, repositories.ErrInviteNotFound) {
				return fmt.Errorf("failed to get lobby invite: %w", err)
			}
			if invite == nil || invite.Code != creds.InviteCode {
				return ErrInviteInvalid
			}
			if invite.Expired(time.Now()) {
				return ErrInviteExpired
			}
			if invite.Exhausted() {
				return ErrInviteExhausted
			}
		} else if !lobby.IsPublic {
			if lobby.PasswordHash == nil ||
				bcrypt.CompareHashAndPassword([]byte(*lobby.PasswordHash), []byte(creds.Password)) != nil {
				return ErrWrongPassword
			}
		}

		// Повторный вход состоящего участника идемпотентен: возврат
		// после обрыва связи — не ошибка, occupancy не меняется.
		if _, err := s.memberRepo.Get(ctx, exec, lobbyID, playerID); err == nil {
			outcome.Lobby = lobby
			outcome.Rejoined = true
			return nil
		} else if !errors.Is(err, repositories.ErrLobbyMemberNotFound) {
			return fmt.Errorf("failed to check existing membership: %w", err)
		}

		// Условный UPDATE — единственная точка, где занимается место.
		// Конкурентные входы сериализуются здесь, occupancy не превышает capacity.
		claimed, err := s.lobbyRepo.ClaimSlot(ctx, exec, lobbyID)
		if err != nil {
			if errors.Is(err, repositories.ErrLobbySlotUnavailable) {
				return ErrLobbyFull
			}
			return fmt.Errorf("failed to claim lobby slot: %w", err)
		}

		// Номер команды — чередование по порядку входа.
		team := 1 + (claimed.CurrentPlayers-1)%2
		member := &models.LobbyMember{LobbyID: lobbyID, PlayerID: playerID, Team: team}
		if err := s.memberRepo.Create(ctx, exec, member); err != nil {
			return fmt.Errorf("failed to create lobby member: %w", err)
		}

		if invite != nil {
			if err := s.inviteRepo.ConsumeUse(ctx, exec, invite.ID); err != nil {
				if errors.Is(err, repositories.ErrInviteUsesExhausted) {
					return ErrInviteExhausted
				}
				return fmt.Errorf("failed to consume invite use: %w", err)
			}
		}

		outcome.Lobby = claimed
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !outcome.Rejoined {
		s.notify(lobbyID, EventMemberJoined, map[string]interface{}{
			"player_id":       playerID,
			"current_players": outcome.Lobby.CurrentPlayers,
			"status":          outcome.Lobby.Status,
		})
	}
	return outcome, nil
}

func (s *lobbyService) Leave(ctx context.Context, lobbyID, playerID int) error {
	var after *models.Lobby

	err := s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.memberRepo.Delete(ctx, exec, lobbyID, playerID); err != nil {
			if errors.Is(err, repositories.ErrLobbyMemberNotFound) {
				return ErrNotLobbyMember
			}
			return fmt.Errorf("failed to remove lobby member: %w", err)
		}

		lobby, err := s.lobbyRepo.ReleaseSlot(ctx, exec, lobbyID)
		if err != nil {
			if errors.Is(err, repositories.ErrLobbyNotFound) {
				return ErrLobbyNotFound
			}
			return fmt.Errorf("failed to release lobby slot: %w", err)
		}
		after = lobby
		return nil
	})
	if err != nil {
		return err
	}

	s.notify(lobbyID, EventMemberLeft, map[string]interface{}{
		"player_id":       playerID,
		"current_players": after.CurrentPlayers,
		"status":          after.Status,
	})
	return nil
}

func (s *lobbyService) Kick(ctx context.Context, lobbyID, actorID, targetID int) error {
	lobby, err := s.lobbyRepo.GetByID(ctx, nil, lobbyID)
	if err != nil {
		if errors.Is(err, repositories.ErrLobbyNotFound) {
			return ErrLobbyNotFound
		}
		return fmt.Errorf("failed to get lobby %d: %w", lobbyID, err)
	}
	if lobby.CreatorID != actorID {
		return ErrNotLobbyCreator
	}
	if actorID == targetID {
		return ErrForbiddenOperation
	}

	err = s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.memberRepo.Delete(ctx, exec, lobbyID, targetID); err != nil {
			if errors.Is(err, repositories.ErrLobbyMemberNotFound) {
				return ErrNotLobbyMember
			}
			return fmt.Errorf("failed to remove lobby member: %w", err)
		}
		if _, err := s.lobbyRepo.ReleaseSlot(ctx, exec, lobbyID); err != nil {
			return fmt.Errorf("failed to release lobby slot: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.notify(lobbyID, EventMemberKicked, map[string]interface{}{"player_id": targetID})
	return nil
}

func (s *lobbyService) Start(ctx context.Context, lobbyID, actorID int) error {
	lobby, err := s.lobbyRepo.GetByID(ctx, nil, lobbyID)
	if err != nil {
		if errors.Is(err, repositories.ErrLobbyNotFound) {
			return ErrLobbyNotFound
		}
		return fmt.Errorf("failed to get lobby %d: %w", lobbyID, err)
	}
	if lobby.CreatorID != actorID {
		return ErrNotLobbyCreator
	}

	err = s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		err := s.lobbyRepo.UpdateStatus(ctx, exec, lobbyID,
			[]models.LobbyStatus{models.LobbyStatusOpen, models.LobbyStatusFull},
			models.LobbyStatusStarted)
		if err != nil {
			if errors.Is(err, repositories.ErrLobbyStateConflict) {
				return ErrLobbyStarted
			}
			return fmt.Errorf("failed to start lobby %d: %w", lobbyID, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.notify(lobbyID, EventLobbyStarted, nil)
	return nil
}

func (s *lobbyService) Cancel(ctx context.Context, lobbyID, actorID int) error {
	lobby, err := s.lobbyRepo.GetByID(ctx, nil, lobbyID)
	if err != nil {
		if errors.Is(err, repositories.ErrLobbyNotFound) {
			return ErrLobbyNotFound
		}
		return fmt.Errorf("failed to get lobby %d: %w", lobbyID, err)
	}
	if lobby.CreatorID != actorID {
		return ErrNotLobbyCreator
	}

	err = s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.lobbyRepo.Delete(ctx, exec, lobbyID); err != nil {
			if errors.Is(err, repositories.ErrLobbyNotFound) {
				return ErrLobbyNotFound
			}
			return fmt.Errorf("failed to delete lobby %d: %w", lobbyID, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.notify(lobbyID, EventLobbyCancelled, nil)
	return nil
}

func (s *lobbyService) PostMessage(ctx context.Context, lobbyID, playerID int, text string) (*models.LobbyMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrMessageEmpty
	}

	if _, err := s.memberRepo.Get(ctx, nil, lobbyID, playerID); err != nil {
		if errors.Is(err, repositories.ErrLobbyMemberNotFound) {
			return nil, ErrNotLobbyMember
		}
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}

	message := &models.LobbyMessage{LobbyID: lobbyID, PlayerID: playerID, Message: text}
	if err := s.messageRepo.Create(ctx, message); err != nil {
		if errors.Is(err, repositories.ErrLobbyMessageInvalid) {
			return nil, ErrLobbyNotFound
		}
		return nil, fmt.Errorf("failed to store lobby message: %w", err)
	}

	s.notify(lobbyID, EventChatMessage, message)
	return message, nil
}

func (s *lobbyService) ListMessages(ctx context.Context, lobbyID, limit int) ([]*models.LobbyMessage, error) {
	if _, err := s.lobbyRepo.GetByID(ctx, nil, lobbyID); err != nil {
		if errors.Is(err, repositories.ErrLobbyNotFound) {
			return nil, ErrLobbyNotFound
		}
		return nil, fmt.Errorf("failed to get lobby %d: %w", lobbyID, err)
	}
	messages, err := s.messageRepo.ListByLobby(ctx, lobbyID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list lobby messages: %w", err)
	}
	return messages, nil
}

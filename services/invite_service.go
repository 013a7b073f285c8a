package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/ladder-gg/ladder/models"
	"github.com/ladder-gg/ladder/repositories"
	"golang.org/x/sync/singleflight"
)

const (
	inviteCodeLength = 16 // Длина кода в байтах (32 символа в hex)
	inviteMintTries  = 3  // Попытки сгенерировать уникальный код
)

var ErrInviteCodeGeneration = errors.New("failed to generate unique invite code")

// InviteOptions — опциональные ограничения нового кода. Игнорируются,
// если у лобби уже есть живой код (идемпотентность).
type InviteOptions struct {
	TTL     time.Duration // 0 — без срока действия
	MaxUses int           // 0 — без лимита
}

type InviteService interface {
	// EnsureInviteCode идемпотентно возвращает код лобби: существующий,
	// либо свежесминченный. У лобби не бывает двух живых кодов.
	EnsureInviteCode(ctx context.Context, lobbyID, requesterID int, opts InviteOptions) (*models.LobbyInvite, error)
}

type inviteService struct {
	inviteRepo repositories.InviteRepository
	lobbyRepo  repositories.LobbyRepository
	memberRepo repositories.LobbyMemberRepository
	mint       singleflight.Group
}

func NewInviteService(
	inviteRepo repositories.InviteRepository,
	lobbyRepo repositories.LobbyRepository,
	memberRepo repositories.LobbyMemberRepository,
) InviteService {
	return &inviteService{
		inviteRepo: inviteRepo,
		lobbyRepo:  lobbyRepo,
		memberRepo: memberRepo,
	}
}

func generateSecureCode(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

func (s *inviteService) EnsureInviteCode(ctx context.Context, lobbyID, requesterID int, opts InviteOptions) (*models.LobbyInvite, error) {
	if _, err := s.lobbyRepo.GetByID(ctx, nil, lobbyID); err != nil {
		if errors.Is(err, repositories.ErrLobbyNotFound) {
			return nil, ErrLobbyNotFound
		}
		return nil, fmt.Errorf("failed to get lobby %d: %w", lobbyID, err)
	}

	if _, err := s.memberRepo.Get(ctx, nil, lobbyID, requesterID); err != nil {
		if errors.Is(err, repositories.ErrLobbyMemberNotFound) {
			return nil, ErrNotLobbyMember
		}
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}

	// singleflight схлопывает конкурентные запросы к одному лобби;
	// уникальный индекс по lobby_id — вторая линия против двойного минта.
	v, err, _ := s.mint.Do(strconv.Itoa(lobbyID), func() (interface{}, error) {
		return s.ensure(ctx, lobbyID, requesterID, opts)
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.LobbyInvite), nil
}

func (s *inviteService) ensure(ctx context.Context, lobbyID, requesterID int, opts InviteOptions) (*models.LobbyInvite, error) {
	invite, err := s.inviteRepo.GetByLobbyID(ctx, nil, lobbyID)
	if err == nil {
		return invite, nil
	}
	if !errors.Is(err, repositories.ErrInviteNotFound) {
		return nil, fmt.Errorf("failed to get invite for lobby %d: %w", lobbyID, err)
	}

	var expiresAt *time.Time
	if opts.TTL > 0 {
		t := time.Now().Add(opts.TTL)
		expiresAt = &t
	}
	var maxUses *int
	if opts.MaxUses > 0 {
		maxUses = &opts.MaxUses
	}

	for attempt := 0; attempt < inviteMintTries; attempt++ {
		code, err := generateSecureCode(inviteCodeLength)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInviteCodeGeneration, err)
		}

		invite = &models.LobbyInvite{
			LobbyID:   lobbyID,
			Code:      code,
			CreatedBy: requesterID,
			ExpiresAt: expiresAt,
			MaxUses:   maxUses,
		}

		err = s.inviteRepo.Create(ctx, nil, invite)
		if err == nil {
			return invite, nil
		}

		if errors.Is(err, repositories.ErrInviteLobbyConflict) {
			// Конкурент успел первым — возвращаем его код.
			existing, getErr := s.inviteRepo.GetByLobbyID(ctx, nil, lobbyID)
			if getErr != nil {
				return nil, fmt.Errorf("failed to get invite for lobby %d: %w", lobbyID, getErr)
			}
			return existing, nil
		}
		if errors.Is(err, repositories.ErrInviteLobbyInvalid) {
			return nil, ErrLobbyNotFound
		}
		if !errors.Is(err, repositories.ErrInviteCodeConflict) {
			return nil, fmt.Errorf("failed to create invite: %w", err)
		}
		// Коллизия кода — новая попытка.
	}

	return nil, fmt.Errorf("%w after %d attempts", ErrInviteCodeGeneration, inviteMintTries)
}

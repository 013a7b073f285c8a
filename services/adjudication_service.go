package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ladder-gg/ladder/models"
	"github.com/ladder-gg/ladder/repositories"
)

// Decision — решение проверяющего по заявке.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// RatingRecorder получает свежий рейтинг после успешного коммита
// (кеш лидерборда). Best-effort; nil-реализация допустима.
type RatingRecorder interface {
	Record(ctx context.Context, playerID, rating int)
}

// ReviewResult — применённые изменения рейтинга по итогам approve.
type ReviewResult struct {
	Submission *models.ResultSubmission `json:"submission"`
	Updated    []*models.Player         `json:"updated_players,omitempty"`
	Outcomes   map[int]models.Outcome   `json:"outcomes,omitempty"`
}

type AdjudicationService interface {
	// Submit создает pending-заявку на результат. Требует членства в
	// лобби и статуса started; не более одной живой заявки на лобби.
	Submit(ctx context.Context, lobbyID, playerID int, outcome models.Outcome, evidenceKey *string, hint *models.EvidenceHint) (*models.ResultSubmission, error)

	// Review — единственная точка, где заявка порождает побочные
	// эффекты. Approve применяет дельты рейтинга каждому участнику ровно
	// один раз и удаляет лобби с потомками в той же транзакции; reject
	// удаляет лобби без изменения рейтингов. Повторный Review по
	// терминальной заявке — ErrSubmissionReviewed.
	Review(ctx context.Context, submissionID int, decision Decision, reviewerID int, reviewerPrivilege models.PrivilegeLevel, notes *string) (*ReviewResult, error)

	List(ctx context.Context, status models.SubmissionStatus, limit, offset int) ([]*models.ResultSubmission, error)
}

type adjudicationService struct {
	submissionRepo repositories.SubmissionRepository
	lobbyRepo      repositories.LobbyRepository
	memberRepo     repositories.LobbyMemberRepository
	actionRepo     repositories.AdminActionRepository
	rating         RatingService
	tx             TxRunner
	notifier       LobbyNotifier
	recorder       RatingRecorder
}

func NewAdjudicationService(
	submissionRepo repositories.SubmissionRepository,
	lobbyRepo repositories.LobbyRepository,
	memberRepo repositories.LobbyMemberRepository,
	actionRepo repositories.AdminActionRepository,
	rating RatingService,
	tx TxRunner,
	notifier LobbyNotifier,
	recorder RatingRecorder,
) AdjudicationService {
	return &adjudicationService{
		submissionRepo: submissionRepo,
		lobbyRepo:      lobbyRepo,
		memberRepo:     memberRepo,
		actionRepo:     actionRepo,
		rating:         rating,
		tx:             tx,
		notifier:       notifier,
		recorder:       recorder,
	}
}

func (s *adjudicationService) Submit(ctx context.Context, lobbyID, playerID int, outcome models.Outcome, evidenceKey *string, hint *models.EvidenceHint) (*models.ResultSubmission, error) {
	if !outcome.Valid() {
		return nil, ErrInvalidOutcome
	}

	lobby, err := s.lobbyRepo.GetByID(ctx, nil, lobbyID)
	if err != nil {
		if errors.Is(err, repositories.ErrLobbyNotFound) {
			return nil, ErrLobbyNotFound
		}
		return nil, fmt.Errorf("failed to get lobby %d: %w", lobbyID, err)
	}
	if lobby.Status != models.LobbyStatusStarted {
		return nil, ErrLobbyNotStarted
	}

	if _, err := s.memberRepo.Get(ctx, nil, lobbyID, playerID); err != nil {
		if errors.Is(err, repositories.ErrLobbyMemberNotFound) {
			return nil, ErrNotLobbyMember
		}
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}

	sub := &models.ResultSubmission{
		LobbyID:     lobbyID,
		PlayerID:    playerID,
		Result:      outcome,
		EvidenceKey: evidenceKey,
		Hint:        hint,
		Status:      models.SubmissionStatusPending,
	}

	if err := s.submissionRepo.Create(ctx, nil, sub); err != nil {
		if errors.Is(err, repositories.ErrSubmissionPendingConflict) {
			return nil, ErrSubmissionConflict
		}
		if errors.Is(err, repositories.ErrSubmissionInvalid) {
			return nil, ErrLobbyNotFound
		}
		return nil, fmt.Errorf("failed to create submission: %w", err)
	}

	if s.notifier != nil {
		s.notifier.NotifyLobby(lobbyID, EventSubmissionCreated, map[string]interface{}{
			"submission_id": sub.ID,
			"player_id":     playerID,
		})
	}
	return sub, nil
}

func (s *adjudicationService) Review(ctx context.Context, submissionID int, decision Decision, reviewerID int, reviewerPrivilege models.PrivilegeLevel, notes *string) (*ReviewResult, error) {
	if decision != DecisionApprove && decision != DecisionReject {
		return nil, fmt.Errorf("%w: unknown decision %q", ErrValidationFailed, decision)
	}
	if !reviewerPrivilege.CanReviewSubmissions() {
		return nil, ErrInsufficientPrivilege
	}

	result := &ReviewResult{}

	err := s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		sub, err := s.submissionRepo.GetByID(ctx, exec, submissionID)
		if err != nil {
			if errors.Is(err, repositories.ErrSubmissionNotFound) {
				return ErrSubmissionNotFound
			}
			return fmt.Errorf("failed to get submission %d: %w", submissionID, err)
		}

		// Условный переход pending→terminal: повторная проверка той же
		// заявки проигрывает здесь и никогда не применяет дельты дважды.
		status := models.SubmissionStatusApproved
		if decision == DecisionReject {
			status = models.SubmissionStatusRejected
		}
		if err := s.submissionRepo.MarkReviewed(ctx, exec, submissionID, status, reviewerID, notes, time.Now()); err != nil {
			if errors.Is(err, repositories.ErrSubmissionNotPending) {
				return ErrSubmissionReviewed
			}
			return fmt.Errorf("failed to mark submission reviewed: %w", err)
		}

		members, err := s.memberRepo.ListByLobby(ctx, exec, sub.LobbyID)
		if err != nil {
			return fmt.Errorf("failed to list lobby members: %w", err)
		}

		if decision == DecisionApprove {
			// Команда подавшего получает заявленный результат, противник —
			// обратный. OCR-подсказка на дельты не влияет.
			submitterTeam := 1
			for _, m := range members {
				if m.PlayerID == sub.PlayerID {
					submitterTeam = m.Team
					break
				}
			}

			result.Outcomes = make(map[int]models.Outcome, len(members))
			for _, m := range members {
				outcome := sub.Result
				if m.Team != submitterTeam {
					outcome = sub.Result.Opposite()
				}
				updated, err := s.rating.ApplyOutcome(ctx, exec, m.PlayerID, outcome)
				if err != nil {
					return fmt.Errorf("failed to apply outcome to player %d: %w", m.PlayerID, err)
				}
				result.Updated = append(result.Updated, updated)
				result.Outcomes[m.PlayerID] = outcome
			}
		}

		// Обработка заявки — терминальный шаг жизни лобби: агрегат
		// удаляется с потомками в этой же транзакции.
		if err := s.lobbyRepo.Delete(ctx, exec, sub.LobbyID); err != nil {
			return fmt.Errorf("failed to tear down lobby %d: %w", sub.LobbyID, err)
		}

		details, _ := json.Marshal(map[string]interface{}{
			"submission_id": submissionID,
			"lobby_id":      sub.LobbyID,
			"decision":      decision,
		})
		action := &models.AdminAction{
			AdminID:        reviewerID,
			Action:         models.ActionSubmissionReview,
			TargetPlayerID: sub.PlayerID,
			Reason:         notes,
			Details:        details,
		}
		if err := s.actionRepo.Create(ctx, exec, action); err != nil {
			return fmt.Errorf("failed to append admin action: %w", err)
		}

		sub.Status = status
		sub.ReviewedBy = &reviewerID
		sub.Notes = notes
		result.Submission = sub
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.recorder != nil {
		for _, p := range result.Updated {
			s.recorder.Record(ctx, p.ID, p.Rating)
		}
	}
	if s.notifier != nil {
		event := EventLobbyFinished
		if decision == DecisionReject {
			event = EventLobbyCancelled
		}
		s.notifier.NotifyLobby(result.Submission.LobbyID, event, map[string]interface{}{
			"submission_id": submissionID,
			"decision":      decision,
		})
	}
	return result, nil
}

func (s *adjudicationService) List(ctx context.Context, status models.SubmissionStatus, limit, offset int) ([]*models.ResultSubmission, error) {
	subs, err := s.submissionRepo.List(ctx, repositories.SubmissionFilter{
		Status: status,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	return subs, nil
}

package models

import "time"

// Outcome — заявленный игроком результат матча.
type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeLoss Outcome = "loss"
)

func (o Outcome) Valid() bool {
	return o == OutcomeWin || o == OutcomeLoss
}

// Opposite возвращает результат противоположной команды.
func (o Outcome) Opposite() Outcome {
	if o == OutcomeWin {
		return OutcomeLoss
	}
	return OutcomeWin
}

// SubmissionStatus представляет статусы заявки на результат.
type SubmissionStatus string

const (
	SubmissionStatusPending  SubmissionStatus = "pending"
	SubmissionStatusApproved SubmissionStatus = "approved"
	SubmissionStatusRejected SubmissionStatus = "rejected"
)

// EvidenceHint — необязательная подсказка от OCR-анализатора скриншота.
// Она никогда не применяется автоматически: решение принимает человек.
type EvidenceHint struct {
	Outcome    *Outcome `json:"outcome,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
	RawText    *string  `json:"raw_text,omitempty"`
}

// ResultSubmission — заявка участника лобби на результат матча.
// Терминальна после approve/reject; обработка ровно одной заявки
// на лобби сносит само лобби.
type ResultSubmission struct {
	ID          int              `json:"id" db:"id"`
	LobbyID     int              `json:"lobby_id" db:"lobby_id"`
	PlayerID    int              `json:"player_id" db:"player_id"`
	Result      Outcome          `json:"result" db:"result"`
	EvidenceKey *string          `json:"evidence_key,omitempty" db:"evidence_key"`
	EvidenceURL *string          `json:"evidence_url,omitempty" db:"-"`
	Hint        *EvidenceHint    `json:"hint,omitempty" db:"hint"`
	Status      SubmissionStatus `json:"status" db:"status"`
	ReviewedBy  *int             `json:"reviewed_by,omitempty" db:"reviewed_by"`
	ReviewedAt  *time.Time       `json:"reviewed_at,omitempty" db:"reviewed_at"`
	Notes       *string          `json:"notes,omitempty" db:"notes"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`
}

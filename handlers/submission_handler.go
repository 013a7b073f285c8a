package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ladder-gg/ladder/middleware"
	"github.com/ladder-gg/ladder/models"
	"github.com/ladder-gg/ladder/services"
	"github.com/ladder-gg/ladder/storage"
)

const maxEvidenceBytes = 10 << 20 // 10MB

type SubmissionHandler struct {
	adjudicationService services.AdjudicationService
	uploader            storage.FileUploader
}

func NewSubmissionHandler(as services.AdjudicationService, uploader storage.FileUploader) *SubmissionHandler {
	return &SubmissionHandler{adjudicationService: as, uploader: uploader}
}

// SubmitHandler обрабатывает POST /lobbies/{lobbyID}/submissions.
// Multipart-форма: outcome (обязательно), evidence (файл, опционально),
// hint_outcome/hint_confidence/hint_text (опционально).
func (h *SubmissionHandler) SubmitHandler(w http.ResponseWriter, r *http.Request) {
	playerID, err := middleware.GetPlayerIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to submit result")
		return
	}

	lobbyID, err := getIDFromURL(r, "lobbyID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := r.ParseMultipartForm(maxEvidenceBytes); err != nil {
		badRequestResponse(w, r, fmt.Errorf("failed to parse multipart form: %w", err))
		return
	}

	outcome := models.Outcome(r.FormValue("outcome"))
	if !outcome.Valid() {
		badRequestResponse(w, r, errors.New("outcome must be 'win' or 'loss'"))
		return
	}

	var evidenceKey *string
	file, header, err := r.FormFile("evidence")
	if err == nil {
		defer file.Close()

		contentType := header.Header.Get("Content-Type")
		if !strings.HasPrefix(contentType, "image/") {
			badRequestResponse(w, r, errors.New("evidence must be an image"))
			return
		}

		key := storage.EvidenceKey(lobbyID, filepath.Ext(header.Filename))
		if h.uploader == nil {
			mapServiceErrorToHTTP(w, r, services.ErrEvidenceUnavailable)
			return
		}
		result, err := h.uploader.Upload(r.Context(), key, contentType, file)
		if err != nil {
			serverErrorResponse(w, r, err)
			return
		}
		evidenceKey = &result.Key
	} else if !errors.Is(err, http.ErrMissingFile) {
		badRequestResponse(w, r, err)
		return
	}

	hint := parseEvidenceHint(r)

	submission, err := h.adjudicationService.Submit(r.Context(), lobbyID, playerID, outcome, evidenceKey, hint)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"submission": submission}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ReviewHandler обрабатывает POST /submissions/{submissionID}/review
func (h *SubmissionHandler) ReviewHandler(w http.ResponseWriter, r *http.Request) {
	reviewerID, err := middleware.GetPlayerIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}
	privilege, err := middleware.GetPrivilegeFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	submissionID, err := getIDFromURL(r, "submissionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Decision string  `json:"decision"`
		Notes    *string `json:"notes"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.adjudicationService.Review(r.Context(), submissionID, services.Decision(input.Decision), reviewerID, privilege, input.Notes)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"review": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListHandler обрабатывает GET /submissions?status=pending — очередь модератора.
func (h *SubmissionHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	status := models.SubmissionStatus(r.URL.Query().Get("status"))
	limit := queryInt(r, "limit", "50")
	offset := queryInt(r, "offset", "0")

	submissions, err := h.adjudicationService.List(r.Context(), status, limit, offset)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	// Публичные URL доказательств собираются на выдаче, ключи наружу
	// не уходят.
	type submissionView struct {
		*models.ResultSubmission
		EvidenceURL string `json:"evidence_url,omitempty"`
	}
	views := make([]submissionView, 0, len(submissions))
	for _, s := range submissions {
		v := submissionView{ResultSubmission: s}
		if s.EvidenceKey != nil && h.uploader != nil {
			v.EvidenceURL = h.uploader.GetPublicURL(*s.EvidenceKey)
		}
		views = append(views, v)
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"submissions": views}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// parseEvidenceHint читает необязательную OCR-подсказку из формы.
// Подсказка хранится как есть и ни на что не влияет до ручной проверки.
func parseEvidenceHint(r *http.Request) *models.EvidenceHint {
	hintOutcome := models.Outcome(r.FormValue("hint_outcome"))
	hintText := r.FormValue("hint_text")
	if !hintOutcome.Valid() && hintText == "" {
		return nil
	}

	hint := &models.EvidenceHint{}
	if hintOutcome.Valid() {
		hint.Outcome = &hintOutcome
	}
	if hintText != "" {
		hint.RawText = &hintText
	}
	if v := r.FormValue("hint_confidence"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			hint.Confidence = &f
		}
	}
	return hint
}

package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/grouptab/grouptab/internal/common"
	"github.com/grouptab/grouptab/internal/server/models"
)

type entryResponse struct {
	ID       string    `json:"id"`
	GroupID  string    `json:"group_id"`
	PaidBy   string    `json:"paid_by"`
	Amount   int64     `json:"amount"`
	Category string    `json:"category"`
	Memo     string    `json:"memo"`
	SpentAt  time.Time `json:"spent_at"`
}

func toEntryResponse(e *models.LedgerEntry) entryResponse {
	return entryResponse{
		ID:       e.ID,
		GroupID:  e.GroupID,
		PaidBy:   e.PaidBy,
		Amount:   e.Amount,
		Category: e.Category,
		Memo:     e.Memo,
		SpentAt:  e.SpentAt,
	}
}

type entryRequest struct {
	Amount   int64     `json:"amount"`
	Category string    `json:"category"`
	Memo     string    `json:"memo"`
	SpentAt  time.Time `json:"spent_at"`
}

func (s *Server) handleAddEntry(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	var req entryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, err)
		return
	}

	e, err := s.ledger.Add(r.Context(), p, chi.URLParam(r, "groupID"), req.Amount, req.Category, req.Memo, req.SpentAt)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, toEntryResponse(e))
}

// handleListEntries lists entries for a month given as ?month=2026-08
// (defaults to the current month).
func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	from, to, err := monthRange(r.URL.Query().Get("month"))
	if err != nil {
		respondError(w, err)
		return
	}

	es, err := s.ledger.List(r.Context(), p, chi.URLParam(r, "groupID"), from, to)
	if err != nil {
		respondError(w, err)
		return
	}
	out := make([]entryResponse, 0, len(es))
	for _, e := range es {
		out = append(out, toEntryResponse(e))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	var req entryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, err)
		return
	}

	e, err := s.ledger.Update(r.Context(), p, chi.URLParam(r, "groupID"), chi.URLParam(r, "entryID"),
		req.Amount, req.Category, req.Memo, req.SpentAt)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toEntryResponse(e))
}

func (s *Server) handleRemoveEntry(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	if err := s.ledger.Remove(r.Context(), p, chi.URLParam(r, "groupID"), chi.URLParam(r, "entryID")); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLedgerSummary(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	from, _, err := monthRange(r.URL.Query().Get("month"))
	if err != nil {
		respondError(w, err)
		return
	}

	summary, err := s.ledger.MonthSummary(r.Context(), p, chi.URLParam(r, "groupID"), from)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, struct {
		Total      int64            `json:"total"`
		ByCategory map[string]int64 `json:"by_category"`
	}{summary.Total, summary.ByCategory})
}

func (s *Server) handleCreateReceipt(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	a, url, err := s.receipts.CreateUpload(r.Context(), p, chi.URLParam(r, "groupID"), chi.URLParam(r, "entryID"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, struct {
		AttachmentID string `json:"attachment_id"`
		UploadURL    string `json:"upload_url"`
	}{a.ID, url})
}

func (s *Server) handleConfirmReceipt(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	if err := s.receipts.ConfirmUpload(r.Context(), p, chi.URLParam(r, "groupID"), chi.URLParam(r, "entryID")); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetReceipt(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	url, err := s.receipts.GetURL(r.Context(), p, chi.URLParam(r, "groupID"), chi.URLParam(r, "entryID"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, struct {
		DownloadURL string `json:"download_url"`
	}{url})
}

// monthRange parses "2006-01" into [first of month, first of next month).
// Empty input means the current month.
func monthRange(month string) (time.Time, time.Time, error) {
	var from time.Time
	if month == "" {
		now := time.Now().UTC()
		from = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	} else {
		parsed, err := time.Parse("2006-01", month)
		if err != nil {
			return time.Time{}, time.Time{}, common.ErrInvalidArgument
		}
		from = parsed
	}
	return from, from.AddDate(0, 1, 0), nil
}

/*
handlers.go - HTTP handlers for the ingestion listener

PURPOSE:
  Translates HTTP requests into validated transaction records and hands
  them to a producer handle on the ingestion channel. The handler never
  touches engine state directly: submissions go through the channel, and
  the report is only readable once the stream has closed and the engine
  has finalized.
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/PawelBis/transaction-system/ledger"
)

// SnapshotFunc returns the final report rows and whether the engine has
// finished consuming the stream.
type SnapshotFunc func() ([]ledger.AccountSnapshot, bool)

type Handler struct {
	producer *ledger.Producer
	snapshot SnapshotFunc
}

func NewHandler(producer *ledger.Producer, snapshot SnapshotFunc) *Handler {
	return &Handler{producer: producer, snapshot: snapshot}
}

// =============================================================================
// DTOs
// =============================================================================

type transactionRequest struct {
	Type   string           `json:"type"`
	Client uint16           `json:"client"`
	Tx     uint32           `json:"tx"`
	Amount *decimal.Decimal `json:"amount,omitempty"`
}

func (req transactionRequest) toRecord() (ledger.Record, error) {
	kind, err := ledger.ParseKind(req.Type)
	if err != nil {
		return ledger.Record{}, err
	}
	rec := ledger.Record{
		Kind:   kind,
		Client: ledger.ClientID(req.Client),
		Tx:     ledger.TxID(req.Tx),
	}
	if req.Amount != nil {
		amount, err := ledger.NewAmount(*req.Amount)
		if err != nil {
			return ledger.Record{}, err
		}
		rec.Amount = &amount
	}
	return rec, rec.Validate()
}

type reportRow struct {
	Client    uint16 `json:"client"`
	Available string `json:"available"`
	Held      string `json:"held"`
	Total     string `json:"total"`
	Locked    bool   `json:"locked"`
}

// =============================================================================
// HANDLERS
// =============================================================================

// SubmitTransaction validates the body and enqueues the record. It returns
// 202: acceptance into the channel says nothing about whether the engine
// will apply or reject the record downstream.
func (h *Handler) SubmitTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, err := req.toRecord()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.producer.Send(rec); err != nil {
		if errors.Is(err, ledger.ErrChannelClosed) {
			writeError(w, http.StatusServiceUnavailable, "stream closed")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

// GetReport returns the final per-account snapshot. While producers are
// still open the report does not exist yet, and the handler says so rather
// than exposing a half-applied view.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	rows, done := h.snapshot()
	if !done {
		writeError(w, http.StatusConflict, "stream still open")
		return
	}

	out := make([]reportRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, reportRow{
			Client:    uint16(row.Client),
			Available: row.Available.String(),
			Held:      row.Held.String(),
			Total:     row.Total.String(),
			Locked:    row.Locked,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

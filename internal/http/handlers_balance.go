package http

import (
	"net/http"

	"mybalance/internal/log"
)

// handleBalanceHistory returns the full history ordered by date.
func (s *Server) handleBalanceHistory(w http.ResponseWriter, r *http.Request) {
	if records, ok := s.historyCache.Get(historyCacheKey); ok {
		NewJSONResponse().Body(balanceRecordsJSON(records)).Write(w)
		return
	}

	gen := s.historyCache.Generation()
	ctx, cancel := s.withTimeout(r)
	defer cancel()
	records, err := s.engine.History(ctx)
	if err != nil {
		writeError(w, r, "balance_history", err)
		return
	}
	s.historyCache.SetIfGeneration(historyCacheKey, records, gen)
	NewJSONResponse().Body(balanceRecordsJSON(records)).Write(w)
}

// handleCurrentBalance returns the latest record, or a zero record when
// the history is empty.
func (s *Server) handleCurrentBalance(w http.ResponseWriter, r *http.Request) {
	if rec, ok := s.currentCache.Get(currentCacheKey); ok {
		NewJSONResponse().Body(balanceRecordJSON(rec)).Write(w)
		return
	}

	gen := s.currentCache.Generation()
	ctx, cancel := s.withTimeout(r)
	defer cancel()
	rec, err := s.engine.CurrentBalance(ctx)
	if err != nil {
		writeError(w, r, "current_balance", err)
		return
	}
	s.currentCache.SetIfGeneration(currentCacheKey, rec, gen)
	NewJSONResponse().Body(balanceRecordJSON(rec)).Write(w)
}

type recalculateResponse struct {
	Message string `json:"message"`
	Records int    `json:"records"`
}

func (s *Server) handleRecalculate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.withTimeout(r)
	defer cancel()

	records, err := s.transactions.Recompute(ctx)
	if err != nil {
		writeError(w, r, log.OpRecompute, err)
		return
	}
	NewJSONResponse().
		Body(recalculateResponse{Message: "balance history recalculated", Records: len(records)}).
		Write(w)
}

// handleUpsertBalance writes one record directly. The next recompute
// replaces it with the derived value.
func (s *Server) handleUpsertBalance(w http.ResponseWriter, r *http.Request) {
	var req BalanceRecordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	rec, err := req.Record()
	if err != nil {
		writeError(w, r, log.OpUpsert, err)
		return
	}

	ctx, cancel := s.withTimeout(r)
	defer cancel()
	if err := s.engine.Upsert(ctx, rec); err != nil {
		writeError(w, r, log.OpUpsert, err)
		return
	}
	s.invalidateCaches()
	NewJSONResponse().Status(http.StatusCreated).Body(balanceRecordJSON(rec)).Write(w)
}


package http

import (
	"net/http"
	"strings"

	"mybalance/internal/log"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.withTimeout(r)
	defer cancel()

	txs, err := s.transactions.List(ctx)
	if err != nil {
		writeError(w, r, log.OpList, err)
		return
	}
	NewJSONResponse().Body(transactionsJSON(txs)).Write(w)
}

// handleSearchTransactions matches term case-insensitively against
// descriptions. An empty term lists everything.
func (s *Server) handleSearchTransactions(w http.ResponseWriter, r *http.Request) {
	term := sanitizeInput(r.URL.Query().Get("term"))
	if len(term) > 140 {
		ErrorResponse(http.StatusUnprocessableEntity, "search term too long").Write(w)
		return
	}

	ctx, cancel := s.withTimeout(r)
	defer cancel()
	txs, err := s.transactions.Search(ctx, strings.TrimSpace(term))
	if err != nil {
		writeError(w, r, log.OpSearch, err)
		return
	}
	NewJSONResponse().Body(transactionsJSON(txs)).Write(w)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		NotFoundError("not found").Write(w)
		return
	}

	ctx, cancel := s.withTimeout(r)
	defer cancel()
	t, err := s.transactions.Get(ctx, id)
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	NewJSONResponse().Body(transactionJSON(t)).Write(w)
}

// handleCreateTransaction stores the transaction and recomputes the
// history before responding.
func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req TransactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	t, err := req.Transaction()
	if err != nil {
		writeError(w, r, log.OpValidate, err)
		return
	}

	ctx, cancel := s.withTimeout(r)
	defer cancel()
	created, err := s.transactions.Create(ctx, t)
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/transaction/"+formatID(created.ID)).
		Body(transactionJSON(created)).
		Write(w)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		NotFoundError("not found").Write(w)
		return
	}
	var req TransactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	t, err := req.Transaction()
	if err != nil {
		writeError(w, r, log.OpValidate, err)
		return
	}
	t.ID = id

	ctx, cancel := s.withTimeout(r)
	defer cancel()
	updated, err := s.transactions.Update(ctx, t)
	if err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	NewJSONResponse().Body(transactionJSON(updated)).Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		NotFoundError("not found").Write(w)
		return
	}

	ctx, cancel := s.withTimeout(r)
	defer cancel()
	if err := s.transactions.Delete(ctx, id); err != nil {
		writeError(w, r, log.OpDelete, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

// Package server is the HTTP surface: statement upload, the editable
// table, aggregates for the chart panels, Q&A, and export downloads.
package server

import (
	"log/slog"
	"sync"

	"github.com/gorilla/mux"

	"phonepe-analyzer/internal/categorize"
	"phonepe-analyzer/internal/model"
	"phonepe-analyzer/internal/qa"
	"phonepe-analyzer/internal/statement"
	"phonepe-analyzer/internal/store"
)

// Server holds the current session table and its collaborators. One
// mutex serializes everything; this is a single-user tool.
type Server struct {
	mu      sync.Mutex
	st      *store.Store
	cat     *categorize.Categorizer
	adapter *qa.Adapter
	pdf     *statement.PDFParser
	logger  *slog.Logger

	txns    []model.Transaction
	skipped int
}

// New restores the persisted table so the session survives restarts.
func New(st *store.Store, cat *categorize.Categorizer, adapter *qa.Adapter, pdf *statement.PDFParser, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if pdf == nil {
		pdf = &statement.PDFParser{}
	}
	txns, err := st.Txns()
	if err != nil {
		return nil, err
	}
	return &Server{
		st:      st,
		cat:     cat,
		adapter: adapter,
		pdf:     pdf,
		logger:  logger,
		txns:    txns,
	}, nil
}

// Router wires the API routes.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/statements", s.handleUpload).Methods("POST")
	r.HandleFunc("/api/transactions", s.handleTransactions).Methods("GET")
	r.HandleFunc("/api/transactions/{id}/category", s.handleUpdateCategory).Methods("PUT")
	r.HandleFunc("/api/transactions/{id}/suggestions", s.handleSuggestions).Methods("GET")
	r.HandleFunc("/api/categories", s.handleCategories).Methods("GET")
	r.HandleFunc("/api/summary", s.handleSummary).Methods("GET")
	r.HandleFunc("/api/charts", s.handleCharts).Methods("GET")
	r.HandleFunc("/api/ask", s.handleAsk).Methods("POST")
	r.HandleFunc("/api/export", s.handleExport).Methods("GET")

	return r
}

// snapshot copies the table so read handlers work without holding the
// lock across encoding.
func (s *Server) snapshot() []model.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Transaction, len(s.txns))
	copy(out, s.txns)
	return out
}

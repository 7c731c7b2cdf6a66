package server

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"phonepe-analyzer/internal/categorize"
	"phonepe-analyzer/internal/export"
	"phonepe-analyzer/internal/model"
	"phonepe-analyzer/internal/qa"
	"phonepe-analyzer/internal/report"
	"phonepe-analyzer/internal/statement"
)

const maxUploadBytes = 32 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type uploadResponse struct {
	Transactions []model.Transaction `json:"transactions"`
	Skipped      int                 `json:"skipped"`
	SkippedLines []string            `json:"skipped_lines,omitempty"`
}

// handleUpload ingests one statement (multipart "file", optional
// "password" for protected PDFs), categorizes it, and replaces the
// session table.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "invalid multipart upload", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	var res statement.Result
	switch strings.ToLower(path.Ext(header.Filename)) {
	case ".csv":
		res, err = statement.ParseCSV(file)
	case ".pdf":
		res, err = s.parsePDFUpload(r, file)
	default:
		http.Error(w, "unsupported file type: upload a .csv or .pdf statement", http.StatusBadRequest)
		return
	}
	if err != nil {
		s.logger.Warn("upload.parse_failed", "file", header.Filename, "error", err)
		http.Error(w, "unable to extract any transactions: "+err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cat.Apply(res.Txns)
	if err := s.st.ReplaceTxns(res.Txns); err != nil {
		s.logger.Error("upload.persist_failed", "error", err)
		http.Error(w, "unable to persist transactions", http.StatusInternalServerError)
		return
	}
	s.txns = res.Txns
	s.skipped = res.Skipped

	s.logger.Info("upload.ok", "file", header.Filename, "txns", len(res.Txns), "skipped", res.Skipped)
	writeJSON(w, http.StatusOK, uploadResponse{
		Transactions: res.Txns,
		Skipped:      res.Skipped,
		SkippedLines: res.SkippedLines,
	})
}

// parsePDFUpload spools the upload to a temp file for pdftotext.
func (s *Server) parsePDFUpload(r *http.Request, file io.Reader) (statement.Result, error) {
	tf, err := os.CreateTemp("", "phonepe-*.pdf")
	if err != nil {
		return statement.Result{}, errors.Wrap(err, "unable to create temp file")
	}
	defer os.Remove(tf.Name())
	defer tf.Close()

	if _, err := io.Copy(tf, file); err != nil {
		return statement.Result{}, errors.Wrap(err, "unable to spool upload")
	}
	if err := tf.Close(); err != nil {
		return statement.Result{}, errors.Wrap(err, "unable to flush upload")
	}

	return s.pdf.Parse(r.Context(), tf.Name(), r.FormValue("password"))
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	resp := uploadResponse{Transactions: s.txns, Skipped: s.skipped}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, resp)
}

type categoryUpdate struct {
	Category string `json:"category"`
}

// handleUpdateCategory applies a user correction: persists the row,
// learns the merchant→category override, and re-categorizes the table
// so sibling rows from the same merchant pick the correction up.
func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	key, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid transaction id", http.StatusBadRequest)
		return
	}
	var upd categoryUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil || strings.TrimSpace(upd.Category) == "" {
		http.Error(w, "invalid input data", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.txns {
		if s.txns[i].Key == key {
			idx = i
			break
		}
	}
	if idx == -1 {
		http.Error(w, "transaction not found", http.StatusNotFound)
		return
	}

	if err := s.cat.Learn(s.txns[idx].Desc, upd.Category); err != nil {
		s.logger.Error("category.learn_failed", "error", err)
		http.Error(w, "unable to save category", http.StatusInternalServerError)
		return
	}

	// The fresh override now wins for every row of this merchant.
	s.cat.Apply(s.txns)
	if err := s.st.ReplaceTxns(s.txns); err != nil {
		s.logger.Error("category.persist_failed", "error", err)
		http.Error(w, "unable to persist transactions", http.StatusInternalServerError)
		return
	}

	s.logger.Info("category.learned", "merchant", s.txns[idx].Desc, "category", upd.Category)
	writeJSON(w, http.StatusOK, s.txns[idx])
}

// handleSuggestions trains a Bayesian suggester on the current table
// and proposes categories for one row. An untrainable table (fewer
// than two categorized classes) yields an empty list, not an error.
func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	key, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid transaction id", http.StatusBadRequest)
		return
	}

	txns := s.snapshot()
	var target *model.Transaction
	for i := range txns {
		if txns[i].Key == key {
			target = &txns[i]
			break
		}
	}
	if target == nil {
		http.Error(w, "transaction not found", http.StatusNotFound)
		return
	}

	suggestions := []string{}
	if sg, err := categorize.NewSuggester(txns); err == nil {
		suggestions = sg.Suggest(target.Desc)
	}
	writeJSON(w, http.StatusOK, map[string][]string{"suggestions": suggestions})
}

// handleCategories lists the labels a row can be corrected to: seed
// rules plus everything learned so far. Feeds the table's dropdown.
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	cats := s.cat.Categories()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string][]string{"categories": cats})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, report.ByCategory(s.snapshot()))
}

func (s *Server) handleCharts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, report.Charts(s.snapshot()))
}

type askRequest struct {
	Question string `json:"question"`
}

// handleAsk never fails the session over a model hiccup: a model
// error becomes an empty, zero-confidence answer.
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Question) == "" {
		http.Error(w, "invalid question", http.StatusBadRequest)
		return
	}

	result, err := s.adapter.Ask(r.Context(), req.Question, s.snapshot())
	if err != nil {
		s.logger.Warn("ask.model_failed", "error", err)
		result = qa.Result{Source: "model"}
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	txns := s.snapshot()

	switch r.URL.Query().Get("format") {
	case "xlsx":
		data, err := export.WriteXLSX(txns)
		if err != nil {
			s.logger.Error("export.xlsx_failed", "error", err)
			http.Error(w, "unable to build workbook", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="categorized_phonepe.xlsx"`)
		_, _ = w.Write(data)
	case "", "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="categorized_phonepe.csv"`)
		if err := export.WriteCSV(w, txns); err != nil {
			s.logger.Error("export.csv_failed", "error", err)
		}
	default:
		http.Error(w, "unsupported format", http.StatusBadRequest)
	}
}

package qa

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// DefaultHFModelURL points at the same extractive-QA checkpoint the
// tool has always used.
const DefaultHFModelURL = "https://api-inference.huggingface.co/models/distilbert-base-cased-distilled-squad"

// HFModel answers questions through the HuggingFace Inference API's
// question-answering task.
type HFModel struct {
	URL    string
	Token  string
	Client *http.Client
	Logger *slog.Logger
}

func NewHFModel(url, token string, timeout time.Duration, logger *slog.Logger) *HFModel {
	if url == "" {
		url = DefaultHFModelURL
	}
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HFModel{
		URL:    url,
		Token:  token,
		Client: &http.Client{Timeout: timeout},
		Logger: logger,
	}
}

type hfRequest struct {
	Inputs hfInputs `json:"inputs"`
}

type hfInputs struct {
	Question string `json:"question"`
	Context  string `json:"context"`
}

type hfResponse struct {
	Answer string  `json:"answer"`
	Score  float64 `json:"score"`
}

// Answer implements Answerer. An answer the model is unsure about
// comes back with its low score; the caller decides what to show.
func (m *HFModel) Answer(ctx context.Context, question, passage string) (Response, error) {
	headers := map[string]string{}
	if m.Token != "" {
		headers["Authorization"] = "Bearer " + m.Token
	}

	raw, err := sendJSON(ctx, m.Client, m.URL, hfRequest{Inputs: hfInputs{Question: question, Context: passage}}, headers, m.Logger)
	if err != nil {
		return Response{}, err
	}

	var out hfResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return Response{}, errors.Wrap(err, "unable to decode QA response")
	}
	return Response{Answer: out.Answer, Confidence: out.Score}, nil
}

// sendJSON posts a JSON body and returns the raw response. It assumes
// nothing about the provider; callers pick the URL and headers.
func sendJSON(ctx context.Context, client *http.Client, url string, body any, headers map[string]string, logger *slog.Logger) ([]byte, error) {
	if client == nil {
		client = &http.Client{Timeout: 45 * time.Second}
	}

	reqID := uuid.New().String()
	start := time.Now()

	bs, err := json.Marshal(body)
	if err != nil {
		return nil, errors.Wrap(err, "encode json")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bs))
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	logger.Info("qa.http.request", "req_id", reqID, "url", url, "content_length", len(bs))

	resp, err := client.Do(req)
	if err != nil {
		logger.Error("qa.http.send_error", "req_id", reqID, "error", err)
		return nil, err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	logger.Info("qa.http.response",
		"req_id", reqID,
		"status", resp.StatusCode,
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode/100 != 2 {
		return raw, errors.Errorf("non-2xx status: %d", resp.StatusCode)
	}
	return raw, nil
}

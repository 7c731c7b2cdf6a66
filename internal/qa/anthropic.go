package qa

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/pkg/errors"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

const defaultAnthropicModel = "claude-sonnet-4-5-20250929"

// responseSchema constrains what we accept back from the model before
// trusting it as an answer.
const responseSchema = `{
	"type": "object",
	"required": ["answer", "confidence"],
	"properties": {
		"answer": {"type": "string"},
		"confidence": {"type": "number", "minimum": 0, "maximum": 1}
	}
}`

var compiledSchema = jsonschema.MustCompileString("response.json", responseSchema)

// AnthropicModel answers questions with the Claude API, prompted to
// behave like an extractive QA model over the supplied passage.
type AnthropicModel struct {
	client anthropic.Client
	model  string
	logger *slog.Logger
}

func NewAnthropicModel(apiKey, model string, timeout time.Duration, logger *slog.Logger) (*AnthropicModel, error) {
	if apiKey == "" {
		return nil, errors.New("ANTHROPIC_API_KEY not set")
	}
	if model == "" {
		model = defaultAnthropicModel
	}
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AnthropicModel{
		client: anthropic.NewClient(
			option.WithAPIKey(apiKey),
			option.WithHTTPClient(&http.Client{Timeout: timeout}),
		),
		model:  model,
		logger: logger,
	}, nil
}

func buildPrompt(question, passage string) string {
	var b strings.Builder
	b.WriteString(`You are answering questions about a list of personal financial transactions.
Answer using ONLY the passage below. Quote amounts exactly as written.
If the passage does not contain the answer, return an empty answer with confidence 0.

Return a JSON object and nothing else:
{"answer": "<answer text>", "confidence": <0..1>}

**Passage:**

`)
	b.WriteString(passage)
	b.WriteString("\n\n**Question:** ")
	b.WriteString(question)
	return b.String()
}

// Answer implements Answerer.
func (m *AnthropicModel) Answer(ctx context.Context, question, passage string) (Response, error) {
	prompt := buildPrompt(question, passage)

	message, err := m.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(m.model),
		MaxTokens: 1024,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return Response{}, errors.Wrap(err, "claude API call failed")
	}
	if len(message.Content) == 0 {
		return Response{}, errors.New("empty response from Claude API")
	}

	var responseText string
	for _, block := range message.Content {
		if block.Type == "text" {
			responseText += block.Text
		}
	}

	resp, err := parseModelJSON(responseText)
	if err != nil {
		return Response{}, err
	}
	m.logger.Info("qa.anthropic.answer", "model", m.model, "confidence", resp.Confidence)
	return resp, nil
}

// parseModelJSON extracts the JSON object from the model output (the
// model may wrap it in markdown fences) and validates it against the
// response schema before decoding.
func parseModelJSON(text string) (Response, error) {
	jsonStart := strings.Index(text, "{")
	jsonEnd := strings.LastIndex(text, "}")
	if jsonStart == -1 || jsonEnd == -1 || jsonEnd < jsonStart {
		return Response{}, errors.Errorf("no JSON found in response: %s", text)
	}
	jsonText := text[jsonStart : jsonEnd+1]

	var v any
	if err := json.Unmarshal([]byte(jsonText), &v); err != nil {
		return Response{}, errors.Wrap(err, "unable to parse JSON response")
	}
	if err := compiledSchema.Validate(v); err != nil {
		return Response{}, errors.Wrap(err, "model response failed schema validation")
	}

	var resp Response
	if err := json.Unmarshal([]byte(jsonText), &resp); err != nil {
		return Response{}, errors.Wrap(err, "unable to decode response")
	}
	return resp, nil
}

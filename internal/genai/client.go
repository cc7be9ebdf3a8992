package genai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dataset-tools/dataset-expander/internal/expander"
)

const defaultModel = "gemini-1.5-flash-latest"

// analysisSystemInstruction steers the one-time dataset analysis call.
const analysisSystemInstruction = "You are an agent that analyzes tabular data provided by the user. " +
	"Focus on what the data is, how it is formatted, what each column stands for, and how new data should look."

// expansionSystemInstruction steers row-generation calls. The model is told
// to emit nothing but data rows; the parser still treats its output as
// untrusted free text.
const expansionSystemInstruction = "You are an agent that generates new CSV rows based on sample data and analysis results. " +
	"Follow the exact formatting of the samples and NEVER output any extra text besides the formatted data. " +
	"No confirmation, no explanation, just the rows."

// geminiClient implements the Client interface using the Google Gemini API.
type geminiClient struct {
	client *genai.Client
	cfg    Config
	logger *zap.SugaredLogger
}

// Client defines the interface for interacting with a generative model.
type Client interface {
	// AnalyzeSample asks the model to describe a dataset sample.
	AnalyzeSample(ctx context.Context, prompt string) (string, error)

	// GenerateRows sends an expansion prompt and returns the raw response text.
	GenerateRows(ctx context.Context, prompt string) (string, error)

	// IsAPIKeyValid checks if the configured API key is functional.
	IsAPIKeyValid(ctx context.Context) error

	// Close cleans up any resources used by the client.
	Close() error
}

// Config holds configuration for the GenAI client.
type Config struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// NewClient creates a new Gemini-backed client.
func NewClient(ctx context.Context, cfg Config, logger *zap.SugaredLogger) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("cannot create Gemini client: API key is missing")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	if cfg.Model == "" {
		cfg.Model = defaultModel
		logger.Infof("Gemini model not specified, defaulting to %s", cfg.Model)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	return &geminiClient{
		client: client,
		cfg:    cfg,
		logger: logger,
	}, nil
}

// Close cleans up the underlying Gemini client.
func (c *geminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// IsAPIKeyValid checks if the Gemini API key is valid by listing models.
func (c *geminiClient) IsAPIKeyValid(ctx context.Context) error {
	if c.client == nil {
		return fmt.Errorf("gemini client not initialized (likely missing API key)")
	}

	modelIterator := c.client.ListModels(ctx)
	_, err := modelIterator.Next() // Attempt to list one model
	if err != nil {
		if st, ok := status.FromError(err); ok {
			if st.Code() == codes.Unauthenticated || st.Code() == codes.PermissionDenied {
				return fmt.Errorf("invalid Gemini API key or insufficient permissions: %w", err)
			}
		}
		return fmt.Errorf("failed to verify Gemini API key by listing models: %w", err)
	}
	return nil
}

// AnalyzeSample runs the one-time dataset analysis with a low temperature.
func (c *geminiClient) AnalyzeSample(ctx context.Context, prompt string) (string, error) {
	model := c.newModel(analysisSystemInstruction)
	model.SetTemperature(0.1)
	return c.generate(ctx, model, prompt)
}

// GenerateRows runs one expansion batch with a high temperature so the
// model varies the synthesized rows.
func (c *geminiClient) GenerateRows(ctx context.Context, prompt string) (string, error) {
	model := c.newModel(expansionSystemInstruction)
	model.SetTemperature(1.0)
	return c.generate(ctx, model, prompt)
}

func (c *geminiClient) newModel(systemInstruction string) *genai.GenerativeModel {
	model := c.client.GenerativeModel(c.cfg.Model)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemInstruction)},
	}
	model.SetTopP(0.9)
	model.SetTopK(40)
	return model
}

// generate performs one model call with the configured timeout and maps
// failures to the engine's generation-error taxonomy.
func (c *geminiClient) generate(ctx context.Context, model *genai.GenerativeModel, prompt string) (string, error) {
	if c.client == nil {
		return "", &expander.ErrGeneration{Kind: expander.KindTransport, Msg: "gemini client not initialized"}
	}

	callCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	resp, err := model.GenerateContent(callCtx, genai.Text(prompt))
	if err != nil {
		return "", classifyError(err)
	}

	text, err := firstTextPart(resp)
	if err != nil {
		return "", &expander.ErrGeneration{Kind: expander.KindEmpty, Msg: "Gemini returned no usable text", Err: err}
	}
	return text, nil
}

// classifyError maps an API failure onto a GenerationKind so rate limits
// and auth problems are reported distinctly from transport errors.
func classifyError(err error) *expander.ErrGeneration {
	if errors.Is(err, context.DeadlineExceeded) {
		return &expander.ErrGeneration{Kind: expander.KindTimeout, Msg: "Gemini API call timed out", Err: err}
	}

	if st, ok := status.FromError(err); ok {
		switch st.Code() {
		case codes.Unauthenticated, codes.PermissionDenied:
			return &expander.ErrGeneration{Kind: expander.KindAuth, Msg: "Gemini API rejected the credential", Err: err}
		case codes.ResourceExhausted:
			return &expander.ErrGeneration{Kind: expander.KindQuota, Msg: "Gemini API rate limit or quota exceeded", Err: err}
		case codes.DeadlineExceeded:
			return &expander.ErrGeneration{Kind: expander.KindTimeout, Msg: "Gemini API call timed out", Err: err}
		}
	}

	return &expander.ErrGeneration{Kind: expander.KindTransport, Msg: "Gemini API call failed", Err: err}
}

// firstTextPart extracts the first text part from a Gemini response.
func firstTextPart(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		finishReason := "unknown"
		if resp != nil && len(resp.Candidates) > 0 {
			finishReason = resp.Candidates[0].FinishReason.String()
		}
		return "", fmt.Errorf("empty or incomplete response from Gemini API. FinishReason: %s", finishReason)
	}
	part := resp.Candidates[0].Content.Parts[0]
	text, ok := part.(genai.Text)
	if !ok {
		return "", fmt.Errorf("unexpected response part type: %T", part)
	}
	return string(text), nil
}

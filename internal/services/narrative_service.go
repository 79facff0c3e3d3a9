package services

import (
	"context"
	"fmt"

	"github.com/chronocop/chronocop/internal/apperrors"
	"github.com/chronocop/chronocop/internal/config"
	"github.com/google/generative-ai-go/genai"
	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/api/option"
)

// Max-output-token budgets per call type.
const (
	TokensConnectivity = 50
	TokensDaily        = 400
	TokensWeekly       = 800
)

// NarrativeService invokes the external text-generation collaborator with
// an aggregated prompt. The credential is supplied per call because it
// lives in settings and can change at runtime.
type NarrativeService struct {
	provider string
	model    string
}

func NewNarrativeService(cfg config.NarrativeConfig) *NarrativeService {
	return &NarrativeService{
		provider: cfg.Provider,
		model:    cfg.Model,
	}
}

// Generate sends a single user-role prompt and returns the generated text
// plus the total token usage reported by the provider. All failures wrap
// into a generation error; there is no retry.
func (s *NarrativeService) Generate(ctx context.Context, apiKey, prompt string, maxTokens int) (string, int, error) {
	if s.provider == config.ProviderGemini {
		return s.generateWithGemini(ctx, apiKey, prompt, maxTokens)
	}
	return s.generateWithOpenAI(ctx, apiKey, prompt, maxTokens)
}

// TestConnection performs a minimal round trip with the smallest budget.
func (s *NarrativeService) TestConnection(ctx context.Context, apiKey string) error {
	_, _, err := s.Generate(ctx, apiKey, "Reply with the single word: ok", TokensConnectivity)
	return err
}

func (s *NarrativeService) generateWithOpenAI(ctx context.Context, apiKey, prompt string, maxTokens int) (string, int, error) {
	client := openai.NewClient(apiKey)
	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     s.model,
		MaxTokens: maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		return "", 0, apperrors.NewGenerationError(err, "Narrative generation failed")
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", 0, apperrors.NewGenerationError(
			fmt.Errorf("empty completion for model %s", s.model), "Narrative generation returned no content")
	}
	return resp.Choices[0].Message.Content, resp.Usage.TotalTokens, nil
}

func (s *NarrativeService) generateWithGemini(ctx context.Context, apiKey, prompt string, maxTokens int) (string, int, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return "", 0, apperrors.NewGenerationError(err, "Failed to create narrative client")
	}
	defer client.Close()

	model := client.GenerativeModel(s.model)
	model.SetMaxOutputTokens(int32(maxTokens))

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", 0, apperrors.NewGenerationError(err, "Narrative generation failed")
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", 0, apperrors.NewGenerationError(
			fmt.Errorf("empty candidate for model %s", s.model), "Narrative generation returned no content")
	}

	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", 0, apperrors.NewGenerationError(
			fmt.Errorf("unexpected part type %T", resp.Candidates[0].Content.Parts[0]),
			"Narrative generation returned no text")
	}

	tokens := 0
	if resp.UsageMetadata != nil {
		tokens = int(resp.UsageMetadata.TotalTokenCount)
	}
	return string(text), tokens, nil
}

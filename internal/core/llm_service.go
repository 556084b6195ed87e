package core

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"ai-chat-service/internal/config"
	"ai-chat-service/internal/store"
)

// Fixed sampling configuration for every completion call.
const (
	completionMaxTokens        = int32(2000)
	completionTemperature      = float32(0.7)
	completionTopP             = float32(0.9)
	completionFrequencyPenalty = float32(0.1)
	completionPresencePenalty  = float32(0.1)
)

// CompletionGateway generates an assistant reply for a windowed prompt
// sequence and reports the provider's total token usage.
type CompletionGateway interface {
	Complete(ctx context.Context, prompts []Prompt) (reply string, totalTokens int, err error)
}

type LLMService struct {
	client    *genai.Client
	modelName string
}

func NewLLMService() *LLMService {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(config.AppConfig.GeminiAPIKey))
	if err != nil {
		log.Fatalf("Failed to create GenAI client: %v", err)
	}

	return &LLMService{
		client:    client,
		modelName: config.AppConfig.ChatModel,
	}
}

func (s *LLMService) Close() {
	if s.client != nil {
		if err := s.client.Close(); err != nil {
			log.Printf("Error closing GenAI client: %v", err)
		}
	}
}

// Complete sends the windowed prompt sequence to Gemini. The leading system
// prompt becomes the model's system instruction; the final prompt must be the
// user turn being answered.
func (s *LLMService) Complete(ctx context.Context, prompts []Prompt) (string, int, error) {
	model := s.client.GenerativeModel(s.modelName)

	turns := prompts
	if len(turns) > 0 && turns[0].Role == store.RoleSystem {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(turns[0].Content)},
		}
		turns = turns[1:]
	}

	maxTokens := completionMaxTokens
	temperature := completionTemperature
	topP := completionTopP
	frequencyPenalty := completionFrequencyPenalty
	presencePenalty := completionPresencePenalty
	model.GenerationConfig = genai.GenerationConfig{
		MaxOutputTokens:  &maxTokens,
		Temperature:      &temperature,
		TopP:             &topP,
		FrequencyPenalty: &frequencyPenalty,
		PresencePenalty:  &presencePenalty,
	}

	// Gemini chat history must open with a user turn; a window that starts
	// mid-conversation can begin with an assistant reply.
	for len(turns) > 0 && turns[0].Role != store.RoleUser {
		turns = turns[1:]
	}
	if len(turns) == 0 {
		return "", 0, &GatewayError{Kind: GatewayFailed, Err: fmt.Errorf("no user turn in prompt window")}
	}

	last := turns[len(turns)-1]
	if last.Role != store.RoleUser {
		return "", 0, &GatewayError{Kind: GatewayFailed, Err: fmt.Errorf("last prompt turn is %q, expected user", last.Role)}
	}

	history := make([]*genai.Content, 0, len(turns)-1)
	for _, turn := range turns[:len(turns)-1] {
		history = append(history, &genai.Content{
			Role:  genaiRole(turn.Role),
			Parts: []genai.Part{genai.Text(turn.Content)},
		})
	}

	chatSession := model.StartChat()
	chatSession.History = history

	resp, err := chatSession.SendMessage(ctx, genai.Text(last.Content))
	if err != nil {
		return "", 0, classifyGatewayError(err)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", 0, &GatewayError{Kind: GatewayFailed, Err: fmt.Errorf("empty response from model")}
	}

	var replyText strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			replyText.WriteString(string(txt))
		} else {
			log.Printf("Gemini response part was not text: %T", part)
		}
	}
	if replyText.Len() == 0 {
		return "", 0, &GatewayError{Kind: GatewayFailed, Err: fmt.Errorf("no text parts in model response")}
	}

	totalTokens := 0
	if resp.UsageMetadata != nil {
		totalTokens = int(resp.UsageMetadata.TotalTokenCount)
	}

	return replyText.String(), totalTokens, nil
}

func genaiRole(role string) string {
	if role == store.RoleAssistant {
		return "model"
	}
	return "user"
}

// classifyGatewayError distinguishes rate-limit and quota conditions from
// generic failures. A structured googleapi error code is checked first; the
// substring matching below is a fallback for errors without one.
func classifyGatewayError(err error) *GatewayError {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
		if strings.Contains(strings.ToLower(apiErr.Message), "quota") {
			return &GatewayError{Kind: GatewayQuotaExceeded, Err: err}
		}
		return &GatewayError{Kind: GatewayRateLimited, Err: err}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "quota"):
		return &GatewayError{Kind: GatewayQuotaExceeded, Err: err}
	case strings.Contains(msg, "rate limit"), strings.Contains(msg, "429"), strings.Contains(msg, "resource_exhausted"):
		return &GatewayError{Kind: GatewayRateLimited, Err: err}
	default:
		return &GatewayError{Kind: GatewayFailed, Err: err}
	}
}

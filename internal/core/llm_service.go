package core

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
	"teampulse.io/daily-report/internal/config"
)

const (
	defaultSummaryModelName = "gemini-1.5-flash-latest"

	summarySystemInstruction = "You are a team workflow analyst. You read the daily reports of every team member " +
		"and produce a useful, insightful summary of the team's day. Base the summary only on the reports you are given; " +
		"do not invent work that nobody mentioned. Credit individual contributions by name where it helps."
)

type LLMService struct {
	client *genai.Client
}

func NewLLMService() *LLMService {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(config.AppConfig.GeminiAPIKey))
	if err != nil {
		log.Fatalf("Failed to create GenAI client: %v", err)
	}

	return &LLMService{
		client: client,
	}
}

func (s *LLMService) Close() {
	if s.client != nil {
		if err := s.client.Close(); err != nil {
			log.Printf("Error closing GenAI client: %v", err)
		}
	}
}

// GenerateSummary sends the prepared prompt to the model and returns the
// combined text of the first candidate.
func (s *LLMService) GenerateSummary(ctx context.Context, prompt string) (string, error) {
	model := s.client.GenerativeModel(defaultSummaryModelName)

	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(summarySystemInstruction)},
	}

	temp := float32(0.7)
	maxTokens := int32(1500)

	model.GenerationConfig = genai.GenerationConfig{
		MaxOutputTokens: &maxTokens,
		Temperature:     &temp,
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini summary request failed: %w", err)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no candidates for summary")
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			text.WriteString(string(txt))
		} else {
			log.Printf("Gemini response part was not text: %T", part)
		}
	}

	if text.Len() == 0 {
		return "", fmt.Errorf("gemini returned an empty summary")
	}

	return text.String(), nil
}

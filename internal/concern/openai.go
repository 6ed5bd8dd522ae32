package concern

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const zeroShotSystemPrompt = `You are a zero-shot text classifier for a mental-health support chat.
Score how well the user's message fits each candidate label with a probability between 0 and 1.
Scores should sum to roughly 1. Reply with a JSON object of the form {"scores": {"<label>": <score>, ...}}
using the candidate labels exactly as given.`

// ErrEmptyCompletion is returned when the model sends no usable choice.
var ErrEmptyCompletion = errors.New("empty completion")

// OpenAIZeroShot asks a chat model to act as a zero-shot classifier.
type OpenAIZeroShot struct {
	client *openai.Client
	model  string
}

// NewOpenAIZeroShot builds the adapter. baseURL may be empty for the
// public API.
func NewOpenAIZeroShot(apiKey, model, baseURL string) *OpenAIZeroShot {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIZeroShot{client: openai.NewClientWithConfig(cfg), model: model}
}

type zeroShotRequest struct {
	Text   string   `json:"text"`
	Labels []string `json:"candidate_labels"`
}

type zeroShotReply struct {
	Scores map[string]float64 `json:"scores"`
}

// ClassifyZeroShot returns every candidate ranked by score. Labels the model
// invents are dropped and candidates it omits score 0.
func (o *OpenAIZeroShot) ClassifyZeroShot(ctx context.Context, text string, labels []string) ([]Score, error) {
	payload, err := json.Marshal(zeroShotRequest{Text: text, Labels: labels})
	if err != nil {
		return nil, fmt.Errorf("encode prompt: %w", err)
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		Temperature: 0,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: zeroShotSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: string(payload)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrEmptyCompletion
	}

	var reply zeroShotReply
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), &reply); err != nil {
		return nil, fmt.Errorf("decode zero-shot reply: %w", err)
	}
	if len(reply.Scores) == 0 {
		return nil, ErrEmptyCompletion
	}

	return rank(labels, reply.Scores), nil
}

// rank orders candidates by score, keeping candidate order on ties.
func rank(labels []string, scores map[string]float64) []Score {
	out := make([]Score, 0, len(labels))
	for _, l := range labels {
		out = append(out, Score{Label: l, Score: clamp01(scores[l])})
	}
	slices.SortStableFunc(out, func(a, b Score) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})
	return out
}

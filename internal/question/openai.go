package question

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"time"
)

var difficultyPrompts = map[Difficulty]string{
	DifficultyEasy:   "Ask basic movie trivia questions suitable for casual movie watchers.",
	DifficultyMedium: "Ask intermediate movie trivia questions that require some movie knowledge.",
	DifficultyHard:   "Ask challenging movie trivia questions for serious movie buffs.",
}

const openAIEndpoint = "https://api.openai.com/v1/chat/completions"

type openAIChatRequest struct {
	Model       string              `json:"model"`
	Messages    []openAIChatMessage `json:"messages"`
	Temperature float64             `json:"temperature,omitempty"`
	MaxTokens   int                 `json:"max_tokens,omitempty"`
}

type openAIChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

type generatedQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	Explanation   string   `json:"explanation"`
	MovieTitle    string   `json:"movie_title"`
}

// OpenAIGenerator asks a chat-completions model for fresh questions, passing
// the already-asked movie titles as an exclusion list.
type OpenAIGenerator struct {
	apiKey string
	model  string
	client *http.Client
}

func NewOpenAIGenerator(apiKey, model string) *OpenAIGenerator {
	if model == "" {
		model = "gpt-3.5-turbo"
	}
	return &OpenAIGenerator{
		apiKey: apiKey,
		model:  model,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (g *OpenAIGenerator) Next(ctx context.Context, d Difficulty, askedTopics []string) (Question, error) {
	if strings.TrimSpace(g.apiKey) == "" {
		return Question{}, errors.New("openai api key is not configured")
	}

	exclusion := ""
	if len(askedTopics) > 0 {
		exclusion = "\n\nDo NOT ask questions about these movies (already asked): " + strings.Join(askedTopics, ", ")
	}
	instruction, ok := difficultyPrompts[d]
	if !ok {
		instruction = difficultyPrompts[DifficultyMedium]
	}

	userPrompt := fmt.Sprintf(`Generate a movie trivia question. %s

Return the response in the following JSON format:
{
    "question": "The trivia question",
    "options": ["Option A", "Option B", "Option C", "Option D"],
    "correct_answer": "The correct option text",
    "explanation": "Brief explanation of the answer",
    "movie_title": "The main movie the question is about"
}

Make sure the question is unique and interesting. Include 4 multiple choice options.%s`, instruction, exclusion)

	reqBody := openAIChatRequest{
		Model: g.model,
		Messages: []openAIChatMessage{
			{Role: "system", Content: "You are a movie trivia expert. Always respond with valid JSON only."},
			{Role: "user", Content: userPrompt},
		},
		Temperature: 0.8,
		MaxTokens:   300,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return Question{}, fmt.Errorf("marshal openai request: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, openAIEndpoint, bytes.NewReader(payload))
	if err != nil {
		return Question{}, fmt.Errorf("build openai request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(g.apiKey))
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return Question{}, fmt.Errorf("reach openai: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Question{}, fmt.Errorf("read openai response: %w", err)
	}

	var chat openAIChatResponse
	if err := json.Unmarshal(body, &chat); err != nil {
		return Question{}, fmt.Errorf("decode openai response: %w", err)
	}
	if chat.Error != nil {
		return Question{}, fmt.Errorf("openai: %s", chat.Error.Message)
	}
	if len(chat.Choices) == 0 {
		return Question{}, errors.New("openai returned no choices")
	}

	content := strings.TrimSpace(chat.Choices[0].Message.Content)
	var gen generatedQuestion
	if err := json.Unmarshal([]byte(content), &gen); err != nil {
		return Question{}, fmt.Errorf("parse generated question: %w", err)
	}

	q := Question{
		Text:          gen.Question,
		Options:       gen.Options,
		CorrectAnswer: gen.CorrectAnswer,
		Explanation:   gen.Explanation,
		Topic:         gen.MovieTitle,
	}
	if err := validate(q); err != nil {
		return Question{}, err
	}
	return q, nil
}

func validate(q Question) error {
	if q.Text == "" {
		return errors.New("generated question has no text")
	}
	if len(q.Options) != 4 {
		return fmt.Errorf("generated question has %d options, want 4", len(q.Options))
	}
	if !slices.Contains(q.Options, q.CorrectAnswer) {
		return errors.New("generated correct answer is not among the options")
	}
	return nil
}

// Package agent turns retrieved passages into a grounded answer.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pkoukk/tiktoken-go"

	"govrag/model"
	"govrag/types"
)

const (
	defaultMaxContextTokens = 3000

	noInformationAnswer = "No information found for this request."

	systemPrompt = `You are an assistant answering questions about government documents.
Answer clearly and to the point, using only the provided context.
If the context does not contain the answer, say 'No information found for this request.'
Cite the document name and pages you used.`
)

type Agent struct {
	chat             model.ChatClient
	maxContextTokens int
	logger           *slog.Logger
}

func New(chat model.ChatClient, maxContextTokens int, logger *slog.Logger) *Agent {
	if maxContextTokens <= 0 {
		maxContextTokens = defaultMaxContextTokens
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Agent{
		chat:             chat,
		maxContextTokens: maxContextTokens,
		logger:           logger,
	}
}

// GenerateAnswer builds a token-budgeted context from the hits and asks the
// chat model. Without hits it short-circuits to a fixed answer instead of
// letting the model guess.
func (a *Agent) GenerateAnswer(ctx context.Context, question string, hits []types.SearchHit) (string, error) {
	if len(hits) == 0 {
		return noInformationAnswer, nil
	}

	start := time.Now()
	contextText, used := a.buildContext(hits)
	a.logger.Info("built answer context", "hits", len(hits), "used", used)

	prompt := fmt.Sprintf("Context:\n%s\nQuestion:\n%s\nAnswer:", contextText, question)
	answer, err := a.chat.Chat(ctx, []model.ChatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: prompt},
	})
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}

	a.logger.Info("answer generated", "took", time.Since(start))
	return answer, nil
}

// buildContext concatenates hit texts with their provenance until the token
// budget runs out. Returns the context and how many hits made it in.
func (a *Agent) buildContext(hits []types.SearchHit) (string, int) {
	var sb strings.Builder
	total := 0
	used := 0

	for _, hit := range hits {
		block := fmt.Sprintf("Document: %s (pages %s)\n%s\n\n",
			hit.Metadata.DocumentName, formatPages(hit.Metadata.PageNumbers), hit.Metadata.Text)

		tokens, err := CountTokens(block)
		if err != nil {
			// Token counting is an optimization; fall back to a
			// rough 4-chars-per-token estimate.
			tokens = len(block) / 4
		}
		if used > 0 && total+tokens > a.maxContextTokens {
			break
		}
		sb.WriteString(block)
		total += tokens
		used++
	}
	return sb.String(), used
}

func formatPages(pages []int) string {
	if len(pages) == 0 {
		return "?"
	}
	parts := make([]string, len(pages))
	for i, p := range pages {
		parts[i] = fmt.Sprint(p)
	}
	return strings.Join(parts, ", ")
}

func CountTokens(text string) (int, error) {
	enc, err := tiktoken.EncodingForModel("gpt-3.5-turbo")
	if err != nil {
		return 0, err
	}
	return len(enc.Encode(text, nil, nil)), nil
}

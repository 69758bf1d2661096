package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"govrag/model"
	"govrag/types"
)

type stubChat struct {
	messages []model.ChatMessage
	answer   string
	err      error
}

func (s *stubChat) Chat(_ context.Context, messages []model.ChatMessage) (string, error) {
	s.messages = messages
	return s.answer, s.err
}

func hit(doc, text string, pages ...int) types.SearchHit {
	return types.SearchHit{
		Score: 0.9,
		Metadata: types.Metadata{
			DocumentName: doc,
			PageNumbers:  pages,
			Text:         text,
		},
	}
}

func TestGenerateAnswerNoHits(t *testing.T) {
	chat := &stubChat{answer: "should not be called"}
	a := New(chat, 0, nil)

	answer, err := a.GenerateAnswer(context.Background(), "question?", nil)
	require.NoError(t, err)
	assert.Equal(t, "No information found for this request.", answer)
	assert.Empty(t, chat.messages)
}

func TestGenerateAnswerBuildsContextWithProvenance(t *testing.T) {
	chat := &stubChat{answer: "the permit is valid for two years"}
	a := New(chat, 0, nil)

	hits := []types.SearchHit{
		hit("besluit", "The permit is valid for two years.", 2, 3),
		hit("rapport", "Renewal requires a new application.", 7),
	}
	answer, err := a.GenerateAnswer(context.Background(), "how long is the permit valid?", hits)
	require.NoError(t, err)
	assert.Equal(t, "the permit is valid for two years", answer)

	require.Len(t, chat.messages, 2)
	assert.Equal(t, "system", chat.messages[0].Role)
	assert.Equal(t, "user", chat.messages[1].Role)

	prompt := chat.messages[1].Content
	assert.Contains(t, prompt, "Document: besluit (pages 2, 3)")
	assert.Contains(t, prompt, "The permit is valid for two years.")
	assert.Contains(t, prompt, "Document: rapport (pages 7)")
	assert.Contains(t, prompt, "how long is the permit valid?")
}

func TestGenerateAnswerRespectsTokenBudget(t *testing.T) {
	chat := &stubChat{answer: "ok"}
	a := New(chat, 1, nil) // budget fits nothing, first hit still included

	hits := []types.SearchHit{
		hit("first", "First passage text.", 1),
		hit("second", "Second passage text.", 2),
	}
	_, err := a.GenerateAnswer(context.Background(), "q", hits)
	require.NoError(t, err)

	prompt := chat.messages[1].Content
	assert.Contains(t, prompt, "First passage text.")
	assert.NotContains(t, prompt, "Second passage text.")
}

func TestGenerateAnswerChatError(t *testing.T) {
	chat := &stubChat{err: errors.New("model unavailable")}
	a := New(chat, 0, nil)

	_, err := a.GenerateAnswer(context.Background(), "q", []types.SearchHit{hit("doc", "text", 1)})
	assert.Error(t, err)
}

package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/askdoc/internal/core/domain"
	"github.com/custodia-labs/askdoc/internal/core/ports/driven"
	"github.com/custodia-labs/askdoc/internal/logger"
)

// Ensure AnswerService can receive custom prompts.
var _ driven.PromptStoreAware = (*AnswerService)(nil)

// ragRetrievalLimit is the number of chunks fed into the answer prompt.
const ragRetrievalLimit = 5

// contextDelimiter separates chunk texts inside the assembled prompt.
const contextDelimiter = "\n\n---\n\n"

// answerMaxTokens bounds a single generated answer.
const answerMaxTokens = 1024

// defaultRAGAnswerPrompt is the fallback template when no PromptStore is
// configured. It expects two %s placeholders: joined context and query.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
const defaultRAGAnswerPrompt = `You are a smart personal assistant. Answer the question using the context provided below.

<context>
%s
</context>

<rules>
- Use ALL the relevant information from the context to build a complete answer
- For questions about a person (e.g. "Who is X?", "Tell me about X"), present a full profile covering: education, skills, experience, and contact details when available in the context
- Structure your answer clearly and readably
- If the information is not in the context, say "I cannot find this information in the documents"
- Be natural and conversational in your answers
</rules>

<question>
%s
</question>

Answer:`

// Retriever is the subset of retrieval the synthesizer depends on.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]domain.Chunk, error)
}

// AnswerService assembles prompts and turns model completions into
// answers. Backend failures never leave this service as errors: the
// cause becomes the answer text so the caller always receives a
// well-formed result.
type AnswerService struct {
	retriever   Retriever
	llm         driven.LLMService
	promptStore driven.PromptStore
}

// NewAnswerService creates a new answer service.
func NewAnswerService(retriever Retriever, llm driven.LLMService) *AnswerService {
	return &AnswerService{
		retriever: retriever,
		llm:       llm,
	}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
// If not set, the service uses the hardcoded default template.
func (s *AnswerService) SetPromptStore(store driven.PromptStore) {
	s.promptStore = store
}

// Synthesize produces an answer for the query. In RAG mode the top
// chunks are retrieved and embedded verbatim into the answer template;
// in direct mode the query is sent to the model as-is. Both modes
// return an Answer even when retrieval or generation fails.
func (s *AnswerService) Synthesize(ctx context.Context, query string, useRAG bool) domain.Answer {
	answer := domain.Answer{
		Sources: []string{},
		Mode:    domain.ModeDirect,
		Model:   s.llm.ModelName(),
	}

	prompt := query

	if useRAG {
		answer.Mode = domain.ModeRAG

		chunks, err := s.retriever.Retrieve(ctx, query, ragRetrievalLimit)
		if err != nil {
			logger.Warn("Retrieval failed: %v", err)
			answer.Text = fmt.Sprintf("retrieval failed: %v", err)
			return answer
		}

		for _, chunk := range chunks {
			answer.Sources = append(answer.Sources, chunk.Text)
		}
		answer.ContextUsed = len(answer.Sources) > 0

		prompt = fmt.Sprintf(
			s.loadPrompt(driven.PromptRAGAnswer, defaultRAGAnswerPrompt),
			strings.Join(answer.Sources, contextDelimiter),
			query,
		)
	}

	text, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{MaxTokens: answerMaxTokens})
	if err != nil {
		logger.Warn("Generation failed: %v", err)
		answer.Text = fmt.Sprintf("generation failed: %v", err)
		return answer
	}

	answer.Text = text
	return answer
}

// loadPrompt loads a prompt from the store, falling back to the default
// if unavailable.
func (s *AnswerService) loadPrompt(name, fallback string) string {
	if s.promptStore == nil {
		return fallback
	}
	prompt, err := s.promptStore.Load(name)
	if err != nil {
		return fallback
	}
	return prompt
}

package domain

// Mode identifies how an answer was produced.
type Mode string

const (
	// ModeRAG means the answer was grounded in retrieved context.
	ModeRAG Mode = "RAG"

	// ModeDirect means the query was sent to the model verbatim.
	ModeDirect Mode = "Direct"
)

// Answer is the result of an ask operation. It is always returned:
// generation failures are folded into Text rather than raised, so a
// well-formed ask never produces an error regardless of backend state.
type Answer struct {
	// Text is the model output, or a textual description of the failure.
	Text string `json:"answer"`

	// Sources are the retrieved chunk texts the answer was grounded in,
	// in relevance order. Empty in direct mode.
	Sources []string `json:"sources"`

	// Mode records whether retrieval was used.
	Mode Mode `json:"mode"`

	// Model is the generation model name.
	Model string `json:"model"`

	// ContextUsed is true when at least one source chunk was supplied.
	ContextUsed bool `json:"context_used"`
}

package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from user-editable files or embed
// them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names used throughout the application.
const (
	// PromptRAGAnswer is the answer synthesis template for RAG mode.
	// It expects two %s placeholders: the joined context and the query.
	PromptRAGAnswer = "rag_answer"
)

// PromptStoreAware is an optional interface for services that can use
// custom prompts. Services implementing it can have their templates
// customised by injecting a PromptStore after construction.
type PromptStoreAware interface {
	// SetPromptStore sets the prompt store for loading customisable
	// prompts. If not set, the service uses hardcoded defaults.
	SetPromptStore(store PromptStore)
}

// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the engine to be constructed:
//
//   - VectorIndex: Chunk storage and similarity search
//   - LLMService: Text generation
//
// # Optional Interfaces
//
//   - EmbeddingService: Generates vector embeddings. Consumed by index
//     adapters that embed on write; the core never sees vectors.
//   - PromptStore: Customisable prompt templates. Without it, services
//     use hardcoded defaults.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven

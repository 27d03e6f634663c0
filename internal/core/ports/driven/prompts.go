package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// Unknown names fall back to the built-in default, or an error
	// if there is none.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names.
const (
	// PromptAnswerSystem is the system prompt for grounded answers.
	// The template expects a %s placeholder for the grounding context.
	PromptAnswerSystem = "answer_system"

	// PromptAnswerUngrounded is the system prompt used when retrieval finds nothing.
	// This prompt has no format placeholders.
	PromptAnswerUngrounded = "answer_ungrounded"
)

package driven

// Prompt names understood by the PromptStore.
const (
	// PromptAnswer is the answer-synthesis template. It takes two
	// fmt verbs: the assembled context and the question.
	PromptAnswer = "answer"
)

// PromptStore provides LLM prompt templates. Implementations may load
// user-editable files with embedded defaults as fallback.
type PromptStore interface {
	// Get returns the template for the given prompt name.
	Get(name string) (string, error)
}

// Package gemini implements [bimrag.Titler] with the Google Gemini API.
//
// It wraps the google.golang.org/genai SDK. The backend's own title endpoint
// is the default; this package is the alternative when a Gemini API key is
// configured.
package gemini

const (
	defaultModel = "gemini-2.5-flash"

	// maxTitleLength bounds generated titles in grapheme clusters.
	maxTitleLength = 40

	maxOutputTokens = 64
	temperature     = 0.2

	systemPrompt = `You name conversations for a BIM (building information modeling) help desk.
Summarize the user's question as a short title in the question's own language.
Reply with the title only: no quotes, no trailing punctuation, at most 8 words.`
)

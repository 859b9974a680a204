package musicllm

import "fmt"

const suggestionSystemPrompt = `You are a wedding music curator. You respond with JSON only, in the form {"suggestions": ["Song Title - Artist", ...]}. Never include commentary outside the JSON object.`

// SuggestionPrompt builds the user prompt for a template theme.
func SuggestionPrompt(theme string) string {
	return fmt.Sprintf(
		"Suggest at least 3 options of background music for a wedding invitation video with a %q theme. "+
			"Each suggestion should name a real song and its artist. Favor songs commonly played at weddings matching the theme.",
		theme,
	)
}

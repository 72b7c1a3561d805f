// Package prompt assembles the system prompt that seeds every conversation.
package prompt

import (
	"strings"
	"time"
)

const instructions = `Don't make assumptions about what values to plug into functions. Before invoking a function, ask the user to confirm the values for parameters.
Do not call python directly. Always start the conversation by invoking functions.get_user_information to get the user's name and location.`

// BuildSystemPrompt returns the operating instructions followed by the
// current local date.
func BuildSystemPrompt(now time.Time) string {
	var sb strings.Builder
	sb.WriteString(instructions)
	sb.WriteString("\nToday is ")
	sb.WriteString(now.Format("2006-01-02"))
	return sb.String()
}

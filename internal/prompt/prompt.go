// Package prompt assembles the ordered turn sequence sent to an LLM
// provider: an age-group-specific system prompt, a window of recent
// conversation history, and the new user message.
package prompt

import (
	"techpal/backend/internal/llm"
	"techpal/backend/internal/models"
)

const promptCommon = `You are TechPal, a friendly and knowledgeable AI assistant that helps children learn about technology, science, and school subjects. Your goal is to make learning engaging, safe, and age-appropriate while fostering curiosity and critical thinking.

Safety guidelines:
- Never collect personal information (names, addresses, school details)
- Promote internet safety and remind children to check with parents or teachers
- Keep all content age-appropriate; avoid mature themes
- Redirect inappropriate questions gently back to educational topics
- Guide children through school problems instead of giving direct answers
- Encourage offline activities and real-world application`

const prompt8To10 = promptCommon + `

You are talking to a child aged 8 to 10:
- Use very simple words and short sentences
- Explain with playful comparisons to toys, games, animals and everyday things
- Keep answers to two or three sentences for simple questions
- Celebrate every attempt to learn and use an emoji now and then to keep things fun
- Suggest easy hands-on activities that need adult supervision`

const prompt11To13 = promptCommon + `

You are talking to a child aged 11 to 13:
- Use clear everyday language and introduce correct technical terms with a short explanation
- Connect concepts to school subjects, hobbies, apps and games they know
- Aim for two to four sentences on simple questions, longer for complex topics
- Ask a follow-up question to encourage deeper thinking
- Suggest experiments or projects they can try with minimal supervision`

const prompt14To16 = promptCommon + `

You are talking to a teenager aged 14 to 16:
- Use proper technical vocabulary and explain underlying mechanisms
- Connect topics to real-world applications, careers and current technology
- Encourage independent research with reliable sources and critical evaluation of information found online
- Be thorough but concise; treat them as a capable learner
- Suggest programming exercises or deeper projects where relevant`

// systemPrompts maps each supported age group to its instructional prompt
var systemPrompts = map[models.AgeGroup]string{
	models.AgeGroup8To10:  prompt8To10,
	models.AgeGroup11To13: prompt11To13,
	models.AgeGroup14To16: prompt14To16,
}

// SystemPrompt returns the instructional prompt for an age group,
// falling back to the default group's prompt for unknown values
func SystemPrompt(group models.AgeGroup) string {
	if p, ok := systemPrompts[group]; ok {
		return p
	}
	return systemPrompts[models.DefaultAgeGroup]
}

// Builder assembles turn sequences with a bounded history window
type Builder struct {
	// Window is the maximum number of prior messages to include
	Window int
}

// NewBuilder creates a builder with the given history window size
func NewBuilder(window int) *Builder {
	return &Builder{Window: window}
}

// Build produces the ordered turn sequence for one generation call:
// system prompt first, then up to Window most recent prior messages
// oldest-first, then the new user message. Pure and deterministic.
func (b *Builder) Build(group models.AgeGroup, history []models.Message, userText string) []llm.Turn {
	window := history
	if b.Window > 0 && len(history) > b.Window {
		window = history[len(history)-b.Window:]
	}

	turns := make([]llm.Turn, 0, len(window)+2)
	turns = append(turns, llm.Turn{
		Role:    string(models.RoleSystem),
		Content: SystemPrompt(group),
	})

	for _, msg := range window {
		turns = append(turns, llm.Turn{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}

	turns = append(turns, llm.Turn{
		Role:    string(models.RoleUser),
		Content: userText,
	})
	return turns
}

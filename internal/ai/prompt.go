package ai

import "strings"

// PromptTemplate substitutes the user input into a fixed template string at
// the {input} placeholder.
type PromptTemplate struct {
	template string
}

func NewPromptTemplate(template string) PromptTemplate {
	return PromptTemplate{template: template}
}

func (t PromptTemplate) Render(input string) string {
	return strings.ReplaceAll(t.template, "{input}", input)
}

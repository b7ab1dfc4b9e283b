package app

import (
	"strings"
	"text/template"

	"agri-assistant/internal/domain/entity"
)

var (
	advisoryTemplate = template.Must(template.New("advisory").Parse(
		`Generate a summary of cures and precautions for the plant disease: {{.Disease}}.
Include treatment methods and preventive measures.
IMPORTANT: Respond ONLY in Nepali language. Do not use any English.

Your response should follow this structure in Nepali:
1. रोगको नाम (Disease Name)
2. रोगको कारण (Cause of the Disease)
3. रोगको लक्षणहरू (Symptoms of the Disease)
4. उपचार विधिहरू (Treatment Methods)
5. रोकथामका उपायहरू (Preventive Measures)
6. थप सुझावहरू (Additional Recommendations)
`))

	detailedAnswerTemplate = template.Must(template.New("detailed").Parse(
		`You are an AI assistant specialized in agriculture and farming topics.
Provide a detailed and informative response to the following query about agriculture: {{.Query}}

IMPORTANT:
- Respond ONLY in Nepali language.
- Provide specific information related to the query.
- If the query is general, give an overview of the topic.
- Ensure your response is natural, conversational, and informative.`))

	redirectTemplate = template.Must(template.New("redirect").Parse(
		`You are an AI assistant specialized in agriculture and plant-related topics.
Analyze the following user input: {{.Query}}

If the input is a greeting:
Respond with a friendly greeting in Nepali and encourage the user to ask an agriculture-related question.

If the input is not related to agriculture or plants:
Politely explain in Nepali that you can only answer questions about agriculture and plants,
and encourage the user to ask an agriculture-related question.

IMPORTANT:
- Always respond ONLY in Nepali language.
- Ensure your response is natural and conversational.`))
)

type promptData struct {
	Disease string
	Query   string
}

// selectChatTemplate выбирает шаблон по теме вопроса.
// Приветствия обрабатывает ветка приветствия в шаблоне перенаправления.
func selectChatTemplate(intent entity.Intent) *template.Template {
	if intent == entity.IntentAgriculture {
		return detailedAnswerTemplate
	}
	return redirectTemplate
}

func renderPrompt(tmpl *template.Template, data promptData) (string, error) {
	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}

package services

import (
	"context"
	"fmt"
	"strings"

	"caboai_go_service/internal/models"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/rs/zerolog/log"
)

// Marker word lists for resolving language="auto" from generated text.
// Counts of contained markers decide; ties go to English.
var (
	spanishMarkers = []string{"hola", "gracias", "por favor", "buenos", "saludos", "estimado", "cordialmente"}
	englishMarkers = []string{"hello", "thank", "please", "best", "regards", "dear", "sincerely"}
)

// fallbackResponses is the canned reply table used when generation fails,
// keyed by language then tone. Lookups fall back to en/professional.
var fallbackResponses = map[string]map[string]string{
	models.LanguageSpanish: {
		models.ToneProfessional: "Gracias por su mensaje. Hemos recibido su consulta y nos pondremos en contacto con usted pronto para brindarle la información que necesita.",
		models.ToneCasual:       "¡Hola! Gracias por escribirnos. Recibimos tu mensaje y te responderemos muy pronto con toda la información.",
		models.ToneFriendly:     "¡Hola! Muchas gracias por contactarnos. Estamos emocionados de ayudarte y te responderemos muy pronto con todos los detalles.",
	},
	models.LanguageEnglish: {
		models.ToneProfessional: "Thank you for your inquiry. We have received your message and will get back to you shortly with the information you need.",
		models.ToneCasual:       "Hi there! Thanks for reaching out. We got your message and will get back to you soon with all the details.",
		models.ToneFriendly:     "Hello! Thank you so much for contacting us. We're excited to help you and will respond very soon with all the information!",
	},
}

var toneInstructions = map[string]string{
	models.ToneProfessional: "Maintain a professional, courteous tone while being helpful and informative.",
	models.ToneCasual:       "Use a friendly, approachable tone that feels personal and welcoming.",
	models.ToneFriendly:     "Be warm, enthusiastic, and genuinely helpful in your responses.",
}

var industryContext = map[string]string{
	models.IndustryHospitality: "You specialize in hotel, resort, and accommodation inquiries. Focus on amenities, availability, rates, and guest experience. Include relevant details about Los Cabos attractions and activities.",
	models.IndustryRealEstate:  "You handle property inquiries, sales, and rentals in Los Cabos. Emphasize location benefits, property features, investment potential, and local market knowledge.",
	models.IndustryTourism:     "You assist with tour bookings, activity reservations, and travel planning in Los Cabos. Highlight unique experiences, safety, pricing, and local insights.",
}

var languageInstructions = map[string]string{
	models.LanguageSpanish: "Always respond in Spanish. Use proper Mexican Spanish terminology and expressions.",
	models.LanguageEnglish: "Always respond in English. Use clear, professional English appropriate for international clients.",
	models.LanguageAuto:    "Detect the language of the incoming message and respond in the same language. If mixed languages, prioritize Spanish for local context and English for international appeal.",
}

// historyContextLimit bounds how many prior messages are handed to the
// model.
const historyContextLimit = 5

// OpenAIService generates email replies through the OpenAI chat completions
// API.
type OpenAIService struct {
	client      openai.Client
	model       string
	maxTokens   int
	temperature float64
	configured  bool
}

func NewOpenAIService(apiKey, model string, maxTokens int, temperature float64) *OpenAIService {
	return &OpenAIService{
		client:      openai.NewClient(option.WithAPIKey(apiKey)),
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		configured:  apiKey != "",
	}
}

// ModelName reports the configured model.
func (s *OpenAIService) ModelName() string { return s.model }

// Status reports whether the provider is usable, for the health endpoint.
func (s *OpenAIService) Status() string {
	if !s.configured {
		return "error: api key not configured"
	}
	return "connected"
}

// GenerateEmailResponse produces a reply for the incoming email. Provider
// failures never propagate: the result carries Success=false, a canned
// fallback reply, and zero tokens.
func (s *OpenAIService) GenerateEmailResponse(
	ctx context.Context,
	emailContent string,
	history []models.HistoryMessage,
	tone, industry, language string,
	businessContext *models.BusinessContext,
) models.GenerationResult {
	systemPrompt := s.buildSystemPrompt(emailContent, tone, industry, language, businessContext)
	messages := buildMessages(systemPrompt, emailContent, history)

	resp, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:            openai.ChatModel(s.model),
		Messages:         messages,
		MaxTokens:        openai.Int(int64(s.maxTokens)),
		Temperature:      openai.Float(s.temperature),
		PresencePenalty:  openai.Float(0.1),
		FrequencyPenalty: openai.Float(0.1),
	})
	if err != nil {
		log.Error().Err(err).Str("model", s.model).Msg("OpenAI API error")
		return FallbackResult(tone, industry, language, err)
	}
	if len(resp.Choices) == 0 {
		log.Error().Str("model", s.model).Msg("OpenAI returned no choices")
		return FallbackResult(tone, industry, language, fmt.Errorf("empty completion"))
	}

	generated := resp.Choices[0].Message.Content
	resolvedLanguage := language
	if language == models.LanguageAuto {
		resolvedLanguage = DetectLanguage(generated)
	}

	return models.GenerationResult{
		Response:   generated,
		Tone:       tone,
		Industry:   industry,
		Language:   resolvedLanguage,
		TokensUsed: int(resp.Usage.TotalTokens),
		Model:      s.model,
		Success:    true,
	}
}

func (s *OpenAIService) buildSystemPrompt(emailContent, tone, industry, language string, bc *models.BusinessContext) string {
	basePrompt := "You are CaboAi, an intelligent email assistant specialized in Los Cabos, Mexico business communications. You help local businesses respond to customer inquiries professionally and efficiently."

	toneLine, ok := toneInstructions[tone]
	if !ok {
		toneLine = toneInstructions[models.ToneProfessional]
	}
	industryLine, ok := industryContext[industry]
	if !ok {
		industryLine = industryContext[models.IndustryHospitality]
	}
	languageLine, ok := languageInstructions[language]
	if !ok {
		languageLine = languageInstructions[models.LanguageAuto]
	}

	// Swap in the specialized playbook when the inquiry type is
	// recognizable from the message itself.
	if inquiry, ok := ClassifyInquiry(emailContent); ok {
		industryLine = GetBusinessPrompt(industry, inquiry, bc)
	}

	businessInfo := ""
	if bc != nil {
		businessInfo = fmt.Sprintf("\nBusiness Information:\n- Name: %s\n- Location: %s\n- Specialties: %s",
			orDefault(bc.Name, "N/A"),
			orDefault(bc.Location, "Los Cabos"),
			orDefault(bc.Specialties, "N/A"))
	}

	return fmt.Sprintf(`%s

TONE: %s

INDUSTRY FOCUS: %s

LANGUAGE: %s

%s
%s
IMPORTANT GUIDELINES:
- Always be helpful and solution-oriented
- Include specific details when possible
- Mention Los Cabos attractions or benefits when relevant
- Ask clarifying questions if needed
- Provide contact information or next steps
- Keep responses concise but complete
- Use local knowledge to add value`,
		basePrompt, toneLine, industryLine, languageLine, businessInfo, LosCabosContext())
}

func buildMessages(systemPrompt, emailContent string, history []models.HistoryMessage) []openai.ChatCompletionMessageParamUnion {
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(systemPrompt),
	}

	if len(history) > historyContextLimit {
		history = history[len(history)-historyContextLimit:]
	}
	for _, msg := range history {
		switch msg.Role {
		case "assistant":
			messages = append(messages, openai.AssistantMessage(msg.Content))
		default:
			messages = append(messages, openai.UserMessage(msg.Content))
		}
	}

	messages = append(messages, openai.UserMessage(
		fmt.Sprintf("Please respond to this email:\n\n%s", emailContent)))
	return messages
}

// DetectLanguage resolves a concrete language from generated text by
// counting marker-word occurrences. Ties or no markers resolve to English.
func DetectLanguage(text string) string {
	lowered := strings.ToLower(text)

	spanishCount := 0
	for _, w := range spanishMarkers {
		if strings.Contains(lowered, w) {
			spanishCount++
		}
	}
	englishCount := 0
	for _, w := range englishMarkers {
		if strings.Contains(lowered, w) {
			englishCount++
		}
	}

	if spanishCount > englishCount {
		return models.LanguageSpanish
	}
	return models.LanguageEnglish
}

// FallbackResponse selects the canned reply for a language and tone,
// falling back to English professional when a combination is absent.
func FallbackResponse(tone, language string) string {
	byTone, ok := fallbackResponses[language]
	if !ok {
		byTone = fallbackResponses[models.LanguageEnglish]
	}
	if reply, ok := byTone[tone]; ok {
		return reply
	}
	return fallbackResponses[models.LanguageEnglish][models.ToneProfessional]
}

// FallbackResult wraps FallbackResponse into a failed generation result.
func FallbackResult(tone, industry, language string, cause error) models.GenerationResult {
	return models.GenerationResult{
		Response: FallbackResponse(tone, language),
		Tone:     tone,
		Industry: industry,
		Language: language,
		Success:  false,
		Error:    cause.Error(),
	}
}

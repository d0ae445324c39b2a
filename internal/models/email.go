package models

// Tone options for generated replies.
const (
	ToneProfessional = "professional"
	ToneCasual       = "casual"
	ToneFriendly     = "friendly"
)

// Industry options.
const (
	IndustryHospitality = "hospitality"
	IndustryRealEstate  = "real_estate"
	IndustryTourism     = "tourism"
	IndustryRestaurant  = "restaurant"
)

// Language options. "auto" asks the generator to resolve from the reply text.
const (
	LanguageAuto    = "auto"
	LanguageSpanish = "es"
	LanguageEnglish = "en"
)

// BusinessContext is optional structured information about the business the
// reply is written for.
type BusinessContext struct {
	Name        string `json:"name,omitempty"`
	Location    string `json:"location,omitempty"`
	Specialties string `json:"specialties,omitempty"`
	Contact     string `json:"contact,omitempty"`
	Website     string `json:"website,omitempty"`
}

// EmailRequest is the body of POST /generate-email (and the legacy /chat
// alias).
type EmailRequest struct {
	EmailContent    string           `json:"email_content" binding:"required"`
	ConversationID  string           `json:"conversation_id,omitempty"`
	UserEmail       string           `json:"user_email,omitempty"`
	BusinessID      string           `json:"business_id,omitempty"`
	Tone            string           `json:"tone,omitempty"`
	Industry        string           `json:"industry,omitempty"`
	Language        string           `json:"language,omitempty"`
	BusinessContext *BusinessContext `json:"business_context,omitempty"`
}

// EmailResponse is the reply payload for a generation request.
type EmailResponse struct {
	Response       string         `json:"response"`
	ConversationID string         `json:"conversation_id"`
	Tone           string         `json:"tone"`
	Industry       string         `json:"industry"`
	Language       string         `json:"language"`
	TokensUsed     int            `json:"tokens_used"`
	Model          string         `json:"model"`
	Success        bool           `json:"success"`
	Error          string         `json:"error,omitempty"`
	RateLimit      *RateLimitInfo `json:"rate_limit,omitempty"`
	UsageStats     *UsageStats    `json:"usage_stats,omitempty"`
}

// GenerationResult is what the generator boundary reports back to the
// orchestrator.
type GenerationResult struct {
	Response   string `json:"response"`
	Tone       string `json:"tone"`
	Industry   string `json:"industry"`
	Language   string `json:"language"`
	TokensUsed int    `json:"tokens_used"`
	Model      string `json:"model"`
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
}

// ConversationHistoryResponse is the body of GET /conversation/:id.
type ConversationHistoryResponse struct {
	ConversationID string           `json:"conversation_id"`
	Messages       []HistoryMessage `json:"messages"`
	ContextSummary *ContextSummary  `json:"context_summary"`
	CreatedAt      string           `json:"created_at"`
	UpdatedAt      string           `json:"updated_at"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status            string `json:"status"`
	Timestamp         string `json:"timestamp"`
	Version           string `json:"version"`
	OpenAIStatus      string `json:"openai_status"`
	ArchiveStatus     string `json:"archive_status"`
	ConversationCount int    `json:"conversation_count"`
	TotalMessages     int    `json:"total_usage_records"`
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"replyboost-backend/llm"
	"replyboost-backend/models"
)

const (
	generationTemperature = 0.7
	maxOutputTokens       = 300
	replyWordCap          = 150
)

// Framework is a named rhetorical strategy controlling proposal structure
type Framework struct {
	Name     string
	Strategy string
	CTAHint  string
}

const defaultFrameworkKey = "fast_hook"

// frameworks is the immutable mapping from framework key to strategy
// template. Unknown keys fall back to fast_hook with a log line.
var frameworks = map[string]Framework{
	"fast_hook": {
		Name:     "Fast Hook",
		Strategy: "Open with a hook that addresses the client's core pain point in the first sentence. No greetings, no fluff.",
		CTAHint:  "soft, low-friction question to start a chat",
	},
	"proof_driven": {
		Name:     "Proof-Driven",
		Strategy: "Lead with your strongest proof: concrete results, numbers or portfolio wins relevant to this job, then connect them to the client's goal.",
		CTAHint:  "confident invitation to discuss details",
	},
	"problem_solution": {
		Name:     "Problem-Solution",
		Strategy: "Diagnose the client's problem in your own words first, then lay out a short, concrete plan for solving it.",
		CTAHint:  "action-oriented next step",
	},
	"authority": {
		Name:     "Authority",
		Strategy: "Assert your authority in this niche up front and frame the job as squarely within your specialty.",
		CTAHint:  "confident invitation to discuss details",
	},
}

// ResolveFramework returns the canonical key and template for a framework
// name, falling back to fast_hook for unknown names
func ResolveFramework(name string) (string, Framework) {
	if fw, ok := frameworks[name]; ok {
		return name, fw
	}
	if name != "" {
		log.Printf("Unknown framework %q, falling back to %s", name, defaultFrameworkKey)
	}
	return defaultFrameworkKey, frameworks[defaultFrameworkKey]
}

// toneDirective maps a 0-100 tone level to a writing directive
func toneDirective(level int) string {
	switch {
	case level < 30:
		return "warm and enthusiastic"
	case level > 70:
		return "direct and no-nonsense"
	default:
		return "balanced and professional"
	}
}

// Generator produces and rewrites proposal text
type Generator interface {
	Generate(ctx context.Context, req GenerateTextRequest) (string, error)
	Refine(ctx context.Context, existingText, instruction string) string
}

// GeneratorService composes prompts and calls the hosted completion API
type GeneratorService struct {
	client llm.Client
}

// GeneratorServiceOption is a functional option for GeneratorService
type GeneratorServiceOption func(*GeneratorService)

// GeneratorWithClient sets the completion client
func GeneratorWithClient(client llm.Client) GeneratorServiceOption {
	return func(s *GeneratorService) {
		s.client = client
	}
}

// NewGeneratorService creates a new generator service
func NewGeneratorService(opts ...GeneratorServiceOption) *GeneratorService {
	s := &GeneratorService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GenerateTextRequest represents a request to generate proposal text
type GenerateTextRequest struct {
	JobDescription string
	Profile        models.UserProfile
	Framework      string
	CTAStyle       string
	ToneLevel      int
}

// Generate renders the system and user instructions and performs one
// round trip to the completion API. Failures are typed: a missing
// credential surfaces as llm.ErrNotConfigured, anything else as a
// wrapped upstream error.
func (s *GeneratorService) Generate(ctx context.Context, req GenerateTextRequest) (string, error) {
	if s.client == nil {
		return "", errors.New("completion client not set")
	}

	_, framework := ResolveFramework(req.Framework)

	text, err := s.client.Complete(ctx, llm.CompletionRequest{
		Messages: []llm.Message{
			{Role: "system", Content: renderSystemPrompt(framework, req.CTAStyle, req.ToneLevel)},
			{Role: "user", Content: renderUserPrompt(req.Profile, req.JobDescription)},
		},
		Temperature: generationTemperature,
		MaxTokens:   maxOutputTokens,
	})
	if err != nil {
		if errors.Is(err, llm.ErrNotConfigured) {
			return "", err
		}
		return "", fmt.Errorf("proposal generation failed: %w", err)
	}

	return strings.TrimSpace(text), nil
}

// Refine re-submits existing proposal text with an editing instruction as
// a one-shot rewrite. On any failure it logs and returns the original text
// unchanged; refinement is best-effort and never surfaces an error.
func (s *GeneratorService) Refine(ctx context.Context, existingText, instruction string) string {
	if s.client == nil {
		return existingText
	}

	systemPrompt := fmt.Sprintf(`You are an expert freelance proposal editor.
Rewrite the proposal below following the instruction.
Keep it under %d words, ready to send, with no placeholders like [Insert Name].`, replyWordCap)

	userPrompt := fmt.Sprintf("INSTRUCTION:\n%s\n\nPROPOSAL:\n%s\n\nRewrite the proposal.", instruction, existingText)

	text, err := s.client.Complete(ctx, llm.CompletionRequest{
		Messages: []llm.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: generationTemperature,
		MaxTokens:   maxOutputTokens,
	})
	if err != nil {
		log.Printf("Refine failed, returning original text: %v", err)
		return existingText
	}

	return strings.TrimSpace(text)
}

func renderSystemPrompt(framework Framework, ctaStyle string, toneLevel int) string {
	cta := framework.CTAHint
	if ctaStyle != "" {
		cta = ctaStyle
	}

	return fmt.Sprintf(`You are an expert freelancer, top-rated on every major freelance platform.
Your goal is to write a high-converting proposal reply.

RULES:
- Strategy: %s
- Tone: %s.
- CTA: close with a %s.
- Length: %d words maximum.
- NO placeholders like [Insert Name]. Content must be ready to send.`,
		framework.Strategy,
		toneDirective(toneLevel),
		cta,
		replyWordCap,
	)
}

func renderUserPrompt(profile models.UserProfile, jobDescription string) string {
	skill := profile.Skill
	if skill == "" {
		skill = "General Freelancer"
	}
	niche := profile.Niche
	if niche == "" {
		niche = "General"
	}
	experience := profile.Experience
	if experience == "" {
		experience = "Mid-Level"
	}

	return fmt.Sprintf(`CONTEXT (My Profile):
My Skill: %s
My Niche: %s
Experience: %s

JOB DESCRIPTION:
%s

Write the proposal.`, skill, niche, experience, jobDescription)
}

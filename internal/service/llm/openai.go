package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"quill/internal/domain"
	"quill/internal/domain/generation"
	"quill/internal/domain/models"
)

const defaultOpenAIModel = "gpt-4o"

// OpenAIService implements the generator boundary on the chat
// completions API. A base URL override points it at any
// OpenAI-compatible gateway. Text attachments are inlined; binary
// attachments are named but not transmitted.
type OpenAIService struct {
	opts     []option.RequestOption
	model    string
	profiles *ProfileTable
	logger   *slog.Logger
}

// NewOpenAIService creates the OpenAI-backed generator.
func NewOpenAIService(apiKey, baseURL, model string, profiles *ProfileTable, logger *slog.Logger) (*OpenAIService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}
	if model == "" {
		model = defaultOpenAIModel
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAIService{
		opts:     opts,
		model:    model,
		profiles: profiles,
		logger:   logger,
	}, nil
}

// Name returns the provider name.
func (s *OpenAIService) Name() string { return "openai" }

// GenerateDraft produces the initial document text.
func (s *OpenAIService) GenerateDraft(ctx context.Context, req *generation.DraftRequest) (string, error) {
	user := buildDraftUser(req.Prompt, s.attachmentNotes(req.Attachments))
	text, err := s.complete(ctx, buildDraftSystem(s.profiles.Instruction(req.Profile)), user)
	if err != nil {
		return "", &domain.GenerationError{Op: "draft", Message: "openai call failed", Err: err}
	}
	if strings.TrimSpace(text) == "" {
		return "", &domain.GenerationError{Op: "draft", Message: "openai returned empty content"}
	}
	return text, nil
}

// GenerateSuggestions asks for a batch of edit suggestions. Decode
// failures degrade to an empty batch; only transport failures error.
func (s *OpenAIService) GenerateSuggestions(ctx context.Context, req *generation.SuggestionRequest) ([]models.Suggestion, error) {
	text, err := s.complete(ctx, buildSuggestionSystem(s.profiles.Instruction(req.Profile)), buildSuggestionUser(req.Content))
	if err != nil {
		return nil, &domain.GenerationError{Op: "suggestions", Message: "openai call failed", Err: err}
	}

	batch, ok := parseSuggestions(text)
	if !ok {
		s.logger.Warn("suggestion batch undecodable, degrading to empty",
			"provider", "openai",
			"output_length", len(text),
		)
		return nil, nil
	}
	return batch, nil
}

// MergeChanges rewrites the document with the accepted changes applied.
func (s *OpenAIService) MergeChanges(ctx context.Context, req *generation.MergeRequest) (string, error) {
	text, err := s.complete(ctx, buildMergeSystem(s.profiles.Instruction(req.Profile)), buildMergeUser(req.Content, req.Changes))
	if err != nil {
		return "", &domain.GenerationError{Op: "merge", Message: "openai call failed", Err: err}
	}
	if strings.TrimSpace(text) == "" {
		return "", &domain.GenerationError{Op: "merge", Message: "openai returned empty content"}
	}
	return text, nil
}

func (s *OpenAIService) complete(ctx context.Context, system, user string) (string, error) {
	client := openai.NewClient(s.opts...)

	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(s.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func (s *OpenAIService) attachmentNotes(attachments []models.Attachment) []string {
	var notes []string
	for _, a := range attachments {
		if strings.HasPrefix(a.MediaType, "text/") {
			notes = append(notes, fmt.Sprintf("Attached file %q:\n%s", a.Name, string(a.Data)))
			continue
		}
		s.logger.Warn("unsupported attachment media type, sending name only",
			"name", a.Name,
			"media_type", a.MediaType,
		)
		notes = append(notes, fmt.Sprintf("(An attachment named %q of type %s was provided but could not be included.)", a.Name, a.MediaType))
	}
	return notes
}

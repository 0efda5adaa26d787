package llm

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"quill/internal/domain"
	"quill/internal/domain/generation"
	"quill/internal/domain/models"
)

const defaultAnthropicModel = "claude-sonnet-4-5"

const maxOutputTokens = 8192

// AnthropicService implements the generator boundary on the Anthropic
// Messages API. Image attachments are sent as base64 blocks; text
// attachments are inlined into the prompt.
type AnthropicService struct {
	client   anthropic.Client
	model    string
	profiles *ProfileTable
	logger   *slog.Logger
}

// NewAnthropicService creates the Anthropic-backed generator.
func NewAnthropicService(apiKey, model string, profiles *ProfileTable, logger *slog.Logger) (*AnthropicService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic api key is required")
	}
	if model == "" {
		model = defaultAnthropicModel
	}
	return &AnthropicService{
		client:   anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:    model,
		profiles: profiles,
		logger:   logger,
	}, nil
}

// Name returns the provider name.
func (s *AnthropicService) Name() string { return "anthropic" }

// GenerateDraft produces the initial document text.
func (s *AnthropicService) GenerateDraft(ctx context.Context, req *generation.DraftRequest) (string, error) {
	blocks, notes := s.attachmentBlocks(req.Attachments)
	user := buildDraftUser(req.Prompt, notes)
	blocks = append([]anthropic.ContentBlockParamUnion{anthropic.NewTextBlock(user)}, blocks...)

	text, err := s.complete(ctx, buildDraftSystem(s.profiles.Instruction(req.Profile)), blocks)
	if err != nil {
		return "", &domain.GenerationError{Op: "draft", Message: "anthropic call failed", Err: err}
	}
	if strings.TrimSpace(text) == "" {
		return "", &domain.GenerationError{Op: "draft", Message: "anthropic returned empty content"}
	}
	return text, nil
}

// GenerateSuggestions asks for a batch of edit suggestions. Decode
// failures degrade to an empty batch; only transport failures error.
func (s *AnthropicService) GenerateSuggestions(ctx context.Context, req *generation.SuggestionRequest) ([]models.Suggestion, error) {
	blocks := []anthropic.ContentBlockParamUnion{anthropic.NewTextBlock(buildSuggestionUser(req.Content))}
	text, err := s.complete(ctx, buildSuggestionSystem(s.profiles.Instruction(req.Profile)), blocks)
	if err != nil {
		return nil, &domain.GenerationError{Op: "suggestions", Message: "anthropic call failed", Err: err}
	}

	batch, ok := parseSuggestions(text)
	if !ok {
		s.logger.Warn("suggestion batch undecodable, degrading to empty",
			"provider", "anthropic",
			"output_length", len(text),
		)
		return nil, nil
	}
	return batch, nil
}

// MergeChanges rewrites the document with the accepted changes applied.
func (s *AnthropicService) MergeChanges(ctx context.Context, req *generation.MergeRequest) (string, error) {
	blocks := []anthropic.ContentBlockParamUnion{anthropic.NewTextBlock(buildMergeUser(req.Content, req.Changes))}
	text, err := s.complete(ctx, buildMergeSystem(s.profiles.Instruction(req.Profile)), blocks)
	if err != nil {
		return "", &domain.GenerationError{Op: "merge", Message: "anthropic call failed", Err: err}
	}
	if strings.TrimSpace(text) == "" {
		return "", &domain.GenerationError{Op: "merge", Message: "anthropic returned empty content"}
	}
	return text, nil
}

func (s *AnthropicService) complete(ctx context.Context, system string, blocks []anthropic.ContentBlockParamUnion) (string, error) {
	msg, err := s.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(s.model),
		MaxTokens: maxOutputTokens,
		System:    []anthropic.TextBlockParam{{Text: system}},
		Messages:  []anthropic.MessageParam{anthropic.NewUserMessage(blocks...)},
	})
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return sb.String(), nil
}

// attachmentBlocks converts attachments to content blocks. Images go
// over as base64 blocks; text files are inlined as prompt notes; other
// media types are named but not transmitted.
func (s *AnthropicService) attachmentBlocks(attachments []models.Attachment) ([]anthropic.ContentBlockParamUnion, []string) {
	var blocks []anthropic.ContentBlockParamUnion
	var notes []string
	for _, a := range attachments {
		switch {
		case strings.HasPrefix(a.MediaType, "image/"):
			encoded := base64.StdEncoding.EncodeToString(a.Data)
			blocks = append(blocks, anthropic.NewImageBlockBase64(a.MediaType, encoded))
		case strings.HasPrefix(a.MediaType, "text/"):
			notes = append(notes, fmt.Sprintf("Attached file %q:\n%s", a.Name, string(a.Data)))
		default:
			s.logger.Warn("unsupported attachment media type, sending name only",
				"name", a.Name,
				"media_type", a.MediaType,
			)
			notes = append(notes, fmt.Sprintf("(An attachment named %q of type %s was provided but could not be included.)", a.Name, a.MediaType))
		}
	}
	return blocks, notes
}

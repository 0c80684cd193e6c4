package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/aihorizon/horizon/internal/core/domain"
	"github.com/aihorizon/horizon/internal/core/ports"
)

const (
	chatEvidenceTopK = 5

	rateLimitedReply = "The assistant is handling too many requests right now. Please try again in a minute."
	degradedReply    = "I could not generate a response right now. Please try again."
)

type ChatUseCase struct {
	generator ports.Generator
	corpus    ports.EvidenceCorpus
	sessions  ports.SessionStore
	stores    []string
}

// NewChatUseCase wires the retrieval-augmented chat turn. stores names the
// remote knowledge stores grounded generation may search; empty disables the
// tool.
func NewChatUseCase(
	generator ports.Generator,
	evidenceCorpus ports.EvidenceCorpus,
	sessions ports.SessionStore,
	stores []string,
) *ChatUseCase {
	return &ChatUseCase{
		generator: generator,
		corpus:    evidenceCorpus,
		sessions:  sessions,
		stores:    stores,
	}
}

// Chat answers one message. Generation failures degrade to a canned reply
// instead of an error: the endpoint stays conversational even when the
// upstream service is saturated.
func (uc *ChatUseCase) Chat(ctx context.Context, sessionID, message string) (*domain.ChatResult, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "chat", fmt.Errorf("message is required"))
	}
	if strings.TrimSpace(sessionID) == "" {
		sessionID = uuid.NewString()
	}

	history := uc.sessions.History(sessionID)

	// Retrieved evidence augments the system instruction, never the user
	// message, so the model keeps the question and the context apart.
	instruction := chatInstruction
	var matches []domain.Artifact
	var sources []string
	if detectEvidenceIntent(message) {
		matches = uc.corpus.Search(message, chatEvidenceTopK)
		if block := buildContext(matches); block != "" {
			instruction = chatInstruction + "\n\n" + block
		}
		for _, artifact := range matches {
			source := artifact.SourceURL
			if source == "" {
				source = artifact.Title
			}
			sources = append(sources, source)
		}
	}

	output, err := uc.generator.Generate(ctx, domain.GenerateRequest{
		Prompt:            message,
		SystemInstruction: instruction,
		History:           history,
		KnowledgeStores:   uc.stores,
	})
	if err != nil {
		// A failed turn leaves the session untouched: exactly two entries
		// are appended per successful turn, none otherwise.
		reply := degradedReply
		if domain.IsKind(err, domain.ErrRateLimited) {
			reply = rateLimitedReply
		}
		if summary := evidenceSummary(matches); summary != "" {
			reply += "\n\n" + summary
		}
		slog.Warn("chat_generation_failed", "session_id", sessionID, "error", err.Error())
		return &domain.ChatResult{
			Output:    reply,
			SessionID: sessionID,
			Sources:   sources,
		}, nil
	}

	uc.sessions.Append(sessionID, domain.RoleUser, message)
	uc.sessions.Append(sessionID, domain.RoleAssistant, output)
	return &domain.ChatResult{
		Output:    output,
		SessionID: sessionID,
		Sources:   sources,
	}, nil
}

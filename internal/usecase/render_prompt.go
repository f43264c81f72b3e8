package usecase

import (
	"context"
	"errors"

	"github.com/runoshun/autocrew/internal/domain"
)

// RenderPromptInput contains the parameters for rendering the backlog prompt.
type RenderPromptInput struct {
	SystemPrompt string
	Limits       domain.PromptLimits
}

// RenderPromptOutput contains the rendered prompt.
type RenderPromptOutput struct {
	Digest   *domain.BacklogDigest
	Selected *domain.TaskSpec // nil when nothing is ready
	Prompt   string           // the prompt a run would send
}

// RenderPrompt renders the prompt a run would hand to the code generator.
type RenderPrompt struct {
	loader domain.TaskSpecLoader
	store  domain.CompletedTaskStore
}

// NewRenderPrompt creates a new RenderPrompt use case.
func NewRenderPrompt(loader domain.TaskSpecLoader, store domain.CompletedTaskStore) *RenderPrompt {
	return &RenderPrompt{loader: loader, store: store}
}

// Execute renders the digest, followed by the selected task when one is ready.
func (uc *RenderPrompt) Execute(_ context.Context, in RenderPromptInput) (*RenderPromptOutput, error) {
	if err := in.Limits.Validate(); err != nil {
		return nil, err
	}

	_, batch, err := loadBatch(uc.loader, uc.store)
	if err != nil {
		return nil, err
	}
	digest, err := domain.BuildDigest(batch, in.Limits)
	if err != nil {
		return nil, err
	}

	out := &RenderPromptOutput{Digest: digest}
	task, err := batch.Next()
	switch {
	case err == nil:
		out.Selected = task
		out.Prompt = domain.ComposePrompt(in.SystemPrompt, digest.Prompt, domain.RenderSelectedTask(task))
	case errors.Is(err, domain.ErrNothingActionable):
		out.Prompt = domain.ComposePrompt(in.SystemPrompt, digest.Prompt)
	default:
		return nil, err
	}
	return out, nil
}

package bimrag

import (
	"fmt"
	"strings"
)

// Validate checks universal constraints on SummarizeRequest.
func (r SummarizeRequest) Validate() error {
	if strings.TrimSpace(r.Query) == "" {
		return fmt.Errorf("query must not be empty: %w", ErrValidation)
	}
	if r.Temperature != nil {
		if *r.Temperature < 0 || *r.Temperature > 2 {
			return fmt.Errorf("temperature must be in [0, 2], got %g: %w", *r.Temperature, ErrValidation)
		}
	}
	if r.TopP != nil {
		if *r.TopP < 0 || *r.TopP > 1 {
			return fmt.Errorf("top_p must be in [0, 1], got %g: %w", *r.TopP, ErrValidation)
		}
	}
	if err := validateCounts(r.TopK, r.UseContext); err != nil {
		return err
	}
	if r.MaxTokens < 0 {
		return fmt.Errorf("max_tokens must be non-negative, got %d: %w", r.MaxTokens, ErrValidation)
	}
	return nil
}

// Validate checks universal constraints on SearchRequest.
func (r SearchRequest) Validate() error {
	if len(r.Messages) == 0 {
		return fmt.Errorf("messages must not be empty: %w", ErrValidation)
	}
	for i, m := range r.Messages {
		switch m.Role {
		case RoleUser, RoleAssistant:
		default:
			return fmt.Errorf("message %d: unknown role %q: %w", i, m.Role, ErrValidation)
		}
	}
	last := r.Messages[len(r.Messages)-1]
	if last.Role != RoleUser || strings.TrimSpace(last.Content) == "" {
		return fmt.Errorf("last message must be a non-empty user message: %w", ErrValidation)
	}
	return validateCounts(r.TopK, r.UseContext)
}

func validateCounts(topK, useContext int) error {
	if topK < 0 {
		return fmt.Errorf("top_k must be non-negative, got %d: %w", topK, ErrValidation)
	}
	if useContext < 0 {
		return fmt.Errorf("use_context must be non-negative, got %d: %w", useContext, ErrValidation)
	}
	return nil
}

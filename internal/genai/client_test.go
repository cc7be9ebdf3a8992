package genai

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dataset-tools/dataset-expander/internal/expander"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want expander.GenerationKind
	}{
		{"Unauthenticated", status.Error(codes.Unauthenticated, "bad key"), expander.KindAuth},
		{"Permission denied", status.Error(codes.PermissionDenied, "no access"), expander.KindAuth},
		{"Quota exhausted", status.Error(codes.ResourceExhausted, "rate limit"), expander.KindQuota},
		{"Server deadline", status.Error(codes.DeadlineExceeded, "too slow"), expander.KindTimeout},
		{"Client deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), expander.KindTimeout},
		{"Plain network error", errors.New("connection refused"), expander.KindTransport},
		{"Unavailable", status.Error(codes.Unavailable, "down"), expander.KindTransport},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyError(tt.err)
			if got.Kind != tt.want {
				t.Errorf("classifyError(%v).Kind = %s, want %s", tt.err, got.Kind, tt.want)
			}
			if !errors.Is(got, tt.err) && got.Err == nil {
				t.Errorf("classifyError(%v) lost the underlying error", tt.err)
			}
		})
	}
}

func TestFirstTextPartEmptyResponse(t *testing.T) {
	if _, err := firstTextPart(nil); err == nil {
		t.Error("firstTextPart(nil) expected error, got nil")
	}
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	_, err := NewClient(context.Background(), Config{}, nil)
	if err == nil {
		t.Error("NewClient() with empty API key expected error, got nil")
	}
}

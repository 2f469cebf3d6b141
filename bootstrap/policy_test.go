package bootstrap

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/wippyai/wasm-bootstrap/errors"
)

func TestParsePolicy(t *testing.T) {
	moduleErr := stderrors.New("boom")

	tests := []struct {
		name     string
		input    string
		escalate bool
		wantErr  bool
	}{
		{"empty defaults to continue", "", false, false},
		{"continue", "continue", false, false},
		{"escalate", "escalate", true, false},
		{"case and space", "  Escalate ", true, false},
		{"unknown", "retry", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParsePolicy(tt.input)
			if tt.wantErr {
				var e *errors.Error
				if !stderrors.As(err, &e) || e.Phase != errors.PhaseConfig {
					t.Fatalf("expected config error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePolicy failed: %v", err)
			}

			got := p.OnFailure(context.Background(), moduleErr)
			if tt.escalate && got == nil {
				t.Error("escalate policy absorbed the failure")
			}
			if !tt.escalate && got != nil {
				t.Errorf("continue policy returned %v", got)
			}
		})
	}
}

package wasm

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/wippyai/wasm-bootstrap/errors"
)

func TestReadHeader(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		kind    BinaryKind
		wantErr string
	}{
		{
			name: "core module",
			data: []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00},
			kind: KindCore,
		},
		{
			name: "component",
			data: []byte{0x00, 0x61, 0x73, 0x6D, 0x0D, 0x00, 0x01, 0x00},
			kind: KindComponent,
		},
		{
			name:    "empty",
			data:    nil,
			wantErr: "truncated header",
		},
		{
			name:    "bad magic",
			data:    []byte("\x7fELF\x02\x01\x01\x00"),
			wantErr: "bad magic number",
		},
		{
			name:    "magic only",
			data:    []byte{0x00, 0x61, 0x73, 0x6D},
			wantErr: "truncated header",
		},
		{
			name:    "unsupported core version",
			data:    []byte{0x00, 0x61, 0x73, 0x6D, 0x02, 0x00, 0x00, 0x00},
			wantErr: "unsupported version 2",
		},
		{
			name:    "unknown layer",
			data:    []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x05, 0x00},
			wantErr: "unknown layer 5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := ReadHeader(tt.data)
			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("expected error containing %q", tt.wantErr)
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("error %q does not contain %q", err, tt.wantErr)
				}
				var e *errors.Error
				if !stderrors.As(err, &e) || e.Phase != errors.PhaseCompile {
					t.Errorf("expected compile-phase error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ReadHeader failed: %v", err)
			}
			if h.Kind() != tt.kind {
				t.Errorf("Kind() = %v, want %v", h.Kind(), tt.kind)
			}
		})
	}
}

func TestBinaryKind_String(t *testing.T) {
	if KindCore.String() != "core" || KindComponent.String() != "component" {
		t.Errorf("unexpected names %q %q", KindCore, KindComponent)
	}
	if BinaryKind(9).String() != "unknown" {
		t.Errorf("unexpected name for unknown kind")
	}
}

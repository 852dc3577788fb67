package a2s

import (
	"bytes"
	"errors"
	"testing"
)

func TestInfoRequestBytes(t *testing.T) {
	want := append([]byte{0xFF, 0xFF, 0xFF, 0xFF, 'T'}, []byte("Source Engine Query\x00")...)

	got := infoRequest(nil)
	if !bytes.Equal(got, want) {
		t.Fatalf("request bytes mismatch:\n got  %X\n want %X", got, want)
	}

	// No randomness, no per-call variation.
	if !bytes.Equal(infoRequest(nil), got) {
		t.Fatal("request bytes differ between calls")
	}
}

func TestInfoRequestWithChallenge(t *testing.T) {
	token := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	got := infoRequest(token)

	if !bytes.HasSuffix(got, token) {
		t.Fatalf("challenge token not appended: %X", got)
	}
	if len(got) != len(infoRequest(nil))+4 {
		t.Fatalf("unexpected request length %d", len(got))
	}
}

func TestSplitResponse(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantTyp byte
		wantErr error
	}{
		{
			name:    "whole packet",
			data:    []byte{0xFF, 0xFF, 0xFF, 0xFF, 'I', 0x11, 0x22},
			wantTyp: 'I',
		},
		{
			name:    "challenge packet",
			data:    []byte{0xFF, 0xFF, 0xFF, 0xFF, 'A', 1, 2, 3, 4},
			wantTyp: 'A',
		},
		{
			name:    "split packet rejected",
			data:    []byte{0xFE, 0xFF, 0xFF, 0xFF, 0x01},
			wantErr: ErrProtocol,
		},
		{
			name:    "bad marker",
			data:    []byte{0x00, 0x00, 0x00, 0x00, 'I'},
			wantErr: ErrProtocol,
		},
		{
			name:    "too short for header",
			data:    []byte{0xFF, 0xFF},
			wantErr: ErrProtocol,
		},
		{
			name:    "missing type byte",
			data:    []byte{0xFF, 0xFF, 0xFF, 0xFF},
			wantErr: ErrProtocol,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			typ, payload, err := splitResponse(tt.data)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("got error %v, want %v", err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if typ != tt.wantTyp {
				t.Fatalf("got type %q, want %q", typ, tt.wantTyp)
			}
			if len(payload) != len(tt.data)-5 {
				t.Fatalf("payload length %d, want %d", len(payload), len(tt.data)-5)
			}
		})
	}
}

package authtoken

import (
	"testing"
	"time"
)

func TestIssueAndParseRoundTrip(t *testing.T) {
	codec := NewCodec("test-secret", time.Hour)
	now := time.Now()

	tok, err := codec.Issue(now, "0xabc123")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims, err := codec.Parse(tok)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.Username != "0xabc123" {
		t.Fatalf("Username = %q, want 0xabc123", claims.Username)
	}
}

func TestParseRejectsMissingToken(t *testing.T) {
	codec := NewCodec("test-secret", time.Hour)
	if _, err := codec.Parse(""); err != ErrMissingToken {
		t.Fatalf("err = %v, want ErrMissingToken", err)
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	codec := NewCodec("test-secret", -time.Minute)
	tok, err := codec.Issue(time.Now(), "0xabc123")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := codec.Parse(tok); err != ErrInvalidToken {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}

func TestParseRejectsTamperedSignature(t *testing.T) {
	codec := NewCodec("test-secret", time.Hour)
	tok, err := codec.Issue(time.Now(), "0xabc123")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	other := NewCodec("different-secret", time.Hour)
	if _, err := other.Parse(tok); err != ErrInvalidToken {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}

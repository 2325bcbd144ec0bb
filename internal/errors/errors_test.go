package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestFromStatus(t *testing.T) {
	tests := []struct {
		status      int
		detail      string
		wantCode    string
		wantKind    Kind
		wantMessage string
	}{
		{http.StatusUnauthorized, "", "UNAUTHORIZED", KindAuth, "Authentication required"},
		{http.StatusForbidden, "Not allowed", "UNAUTHORIZED", KindAuth, "Not allowed"},
		{http.StatusNotFound, "Goal not found", "NOT_FOUND", KindRejected, "Goal not found"},
		{http.StatusBadRequest, "Email already registered", "REJECTED", KindRejected, "Email already registered"},
		{http.StatusServiceUnavailable, "", "REJECTED", KindRejected, "Request rejected by the budget service"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("status_%d", tt.status), func(t *testing.T) {
			err := FromStatus(tt.status, tt.detail)
			if err.Code != tt.wantCode || err.Kind != tt.wantKind || err.Message != tt.wantMessage {
				t.Errorf("got %s/%s/%q, want %s/%s/%q", err.Code, err.Kind, err.Message, tt.wantCode, tt.wantKind, tt.wantMessage)
			}
			if err.StatusCode != tt.status {
				t.Errorf("expected status %d to be kept, got %d", tt.status, err.StatusCode)
			}
		})
	}

	t.Run("does not mutate sentinels", func(t *testing.T) {
		_ = FromStatus(http.StatusUnauthorized, "changed")
		if ErrUnauthorized.Message != "Authentication required" || ErrUnauthorized.StatusCode != http.StatusUnauthorized {
			t.Errorf("sentinel was modified: %+v", ErrUnauthorized)
		}
	})
}

func TestKindOf(t *testing.T) {
	cause := stderrors.New("dial tcp: connection refused")

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, ""},
		{"sentinel", ErrNoSession, KindNoSession},
		{"wrapped", Wrap(ErrTransport, cause), KindTransport},
		{"fmt wrapped", fmt.Errorf("adding: %w", ErrInvalidInput), KindInvalidInput},
		{"plain", cause, KindInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf = %q, want %q", got, tt.want)
			}
		})
	}

	if !IsKind(ErrUnauthorized, KindAuth) || IsKind(nil, KindAuth) {
		t.Error("IsKind gave an unexpected answer")
	}
}

func TestWrap(t *testing.T) {
	cause := stderrors.New("boom")
	err := Wrap(ErrTransport, cause)

	if !stderrors.Is(err, cause) {
		t.Error("expected the cause to be reachable through Unwrap")
	}
	if err.Error() != "Could not reach the budget service: boom" {
		t.Errorf("unexpected message %q", err.Error())
	}

	msg := WithMessage(ErrInvalidInput, "amount failed gt")
	if msg.Code != "INVALID_INPUT" || msg.Error() != "amount failed gt" {
		t.Errorf("unexpected error %+v", msg)
	}
}

package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// CommandVerifier validates that a container command is executable before
// a project referencing it is persisted.
type CommandVerifier interface {
	Verify(ctx context.Context, command string) error
}

// VerificationError carries the verifier's rejection reason. Verifier
// unavailability and timeouts are reported the same way: the command is
// not verified, so creation must not proceed.
type VerificationError struct {
	Reason string
}

func (e *VerificationError) Error() string {
	return e.Reason
}

// VerifierService talks to the external command verification endpoint of
// the work-distribution server.
type VerifierService struct {
	baseURL string
	client  *http.Client
}

func NewVerifierService(baseURL string, timeout time.Duration) *VerifierService {
	return &VerifierService{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Verify submits the candidate command and waits for a verdict. A nil
// return means the command was accepted.
func (s *VerifierService) Verify(ctx context.Context, command string) error {
	payload, err := json.Marshal(map[string]string{"command": command})
	if err != nil {
		return fmt.Errorf("marshal verification request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/verify", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create verification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return &VerificationError{Reason: "Command verifier is unavailable"}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	reason := strings.TrimSpace(string(body))
	if reason == "" {
		reason = fmt.Sprintf("Command verifier returned status %d", resp.StatusCode)
	}

	return &VerificationError{Reason: reason}
}

package task

import (
	"context"
	"fmt"
	"strings"
)

const (
	emailFile       = "email.txt"
	emailSenderFile = "email-sender.txt"
)

const emailPrompt = `Extract just the sender's email address from this email:
%s
Return only the email address, nothing else.`

func opExtractEmail() *Operation {
	return &Operation{
		ID:     "extract-email",
		Intent: "extract the sender's address from the stored email message",
		Patterns: [][]string{
			{"email", "sender"},
			{"sender", "address"},
			{"email-sender"},
		},
		Run: runExtractEmail,
	}
}

func runExtractEmail(ctx context.Context, env Env, description string) (Result, error) {
	content, err := env.Sandbox.ReadFile(emailFile)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", emailFile, err)
	}

	answer, err := env.Completer.Complete(ctx, fmt.Sprintf(emailPrompt, content))
	if err != nil {
		return nil, fmt.Errorf("extract sender: %w", err)
	}

	sender := strings.TrimSpace(answer)
	if err := env.Sandbox.WriteFile(emailSenderFile, []byte(sender)); err != nil {
		return nil, fmt.Errorf("write %s: %w", emailSenderFile, err)
	}

	return Result{"email": sender}, nil
}

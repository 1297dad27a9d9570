package task

import (
	"context"
	"fmt"
	"regexp"
)

const (
	cardImageFile  = "credit-card.png"
	cardNumberFile = "credit-card.txt"
)

const cardPrompt = `Extract the credit card number from this image.
Return only the numbers, no spaces or other characters.`

var nonDigits = regexp.MustCompile(`\D`)

func opExtractCard() *Operation {
	return &Operation{
		ID:     "extract-card",
		Intent: "read the credit card number out of the stored card image",
		Patterns: [][]string{
			{"credit", "card"},
			{"card", "number"},
		},
		Run: runExtractCard,
	}
}

func runExtractCard(ctx context.Context, env Env, description string) (Result, error) {
	image, err := env.Sandbox.ReadFile(cardImageFile)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", cardImageFile, err)
	}

	answer, err := env.Completer.CompleteImage(ctx, cardPrompt, image)
	if err != nil {
		return nil, fmt.Errorf("extract card number: %w", err)
	}

	number := nonDigits.ReplaceAllString(answer, "")
	if number == "" {
		return nil, fmt.Errorf("no digits in extracted card number")
	}
	if err := env.Sandbox.WriteFile(cardNumberFile, []byte(number)); err != nil {
		return nil, fmt.Errorf("write %s: %w", cardNumberFile, err)
	}

	return Result{"card_number": number}, nil
}

package functions

import (
	"context"
	"fmt"
)

type dressArgs struct {
	Temperature []float64 `json:"temperature"`
}

type dressAdvice struct {
	Temperature float64 `json:"temperature"`
	Clothing    string  `json:"clothing"`
}

func dressSpec() Spec {
	return Spec{
		Name:        GetDressForTemperature,
		Description: "Gets clothing information for a given weather temperature",
		Parameters: objectSchema(map[string]any{
			"temperature": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "number"},
				"description": "The temperature in celsius",
			},
		}, "temperature"),
	}
}

func emailSpec() Spec {
	return Spec{
		Name:        SendEmail,
		Description: "Send an email to a given email address. Only use when explicited called by the user saying email.",
		Parameters: objectSchema(map[string]any{
			"message": map[string]any{
				"type":        "string",
				"description": "The message to send",
			},
			"email": map[string]any{
				"type":        "string",
				"description": "The email address to send the message to",
			},
		}, "message", "email"),
	}
}

// ClothingFor maps a celsius temperature to a clothing tier.
func ClothingFor(temperature float64) string {
	switch {
	case temperature < 15:
		return "coat"
	case temperature < 18:
		return "jacket"
	case temperature < 20:
		return "thin jacket"
	case temperature < 23:
		return "shirt"
	default:
		return "t-shirt"
	}
}

func (h *handlers) dressForTemperature(_ context.Context, args dressArgs) (string, error) {
	advice := make([]dressAdvice, 0, len(args.Temperature))
	for _, t := range args.Temperature {
		advice = append(advice, dressAdvice{Temperature: t, Clothing: ClothingFor(t)})
	}
	return marshalResult(advice)
}

type emailArgs struct {
	Message string `json:"message"`
	Email   string `json:"email"`
}

// sendEmail only reports what it would have sent.
func (h *handlers) sendEmail(_ context.Context, args emailArgs) (string, error) {
	return fmt.Sprintf("Sent message '%s' to %s", args.Message, args.Email), nil
}

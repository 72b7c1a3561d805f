package functions

import (
	"context"
	"encoding/json"
	"time"

	loggerpkg "github.com/minhyannv/weather-chat-go/pkg/logger"
)

// todayLayout renders local time with microseconds and a literal Z suffix.
const todayLayout = "2006-01-02T15:04:05.000000"

// Profile is the mock identity behind the user lookup functions.
type Profile struct {
	Name     string `json:"name"`
	Location string `json:"location"`
	Email    string `json:"email"`
}

func noArgsSpec(name Name, description string) Spec {
	return Spec{
		Name:        name,
		Description: description,
		Parameters:  objectSchema(map[string]any{}),
	}
}

func (h *handlers) today(context.Context, json.RawMessage) (string, error) {
	return h.now().Format(todayLayout) + "Z", nil
}

func (h *handlers) userLocation(context.Context, json.RawMessage) (string, error) {
	return h.profile.Location, nil
}

func (h *handlers) userInformation(context.Context, json.RawMessage) (string, error) {
	return marshalResult(h.profile)
}

// python refuses code execution. The payload is logged and an empty result
// goes back to the model.
func (h *handlers) python(_ context.Context, args json.RawMessage) (string, error) {
	loggerpkg.Warn(h.logger, "python execution requested and refused", map[string]any{
		"payload": string(args),
	})
	return "", nil
}

func pythonSpec() Spec {
	return Spec{
		Name:        Python,
		Description: "Unsupported code execution request.",
		Hidden:      true,
	}
}

func defaultNow() time.Time { return time.Now() }

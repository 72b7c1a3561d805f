package functions

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	loggerpkg "github.com/minhyannv/weather-chat-go/pkg/logger"
)

const (
	dateLayout = "2006-01-02"

	minTemperature = -20
	maxTemperature = 30

	// maxTemperatureDays bounds a single get_temperature range.
	maxTemperatureDays = 3660

	locationSentinel = "current"
)

var conditions = []string{"sunny", "cloudy", "rainy"}

type currentWeatherArgs struct {
	Location string `json:"location"`
	Date     string `json:"date"`
}

type temperatureArgs struct {
	Location  string `json:"location"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// currentWeatherSpec never reads date, so its format is advertised but not
// enforced and any value reaches the location check.
func currentWeatherSpec() Spec {
	return Spec{
		Name:         GetCurrentWeather,
		Description:  "Get the current weather.",
		LooseFormats: true,
		Parameters: objectSchema(map[string]any{
			"location": map[string]any{
				"type":        "string",
				"description": "The city name. Always acquire this information, never assume location.",
			},
			"date": map[string]any{
				"type":        "string",
				"format":      "date",
				"description": "The date to get the weather for. Always acquire this information, never assume the current date.",
			},
		}, "location", "date"),
	}
}

func temperatureSpec() Spec {
	return Spec{
		Name:        GetTemperature,
		Description: "Get the temperature in a location at a date",
		Parameters: objectSchema(map[string]any{
			"location": map[string]any{
				"type":        "string",
				"description": "The city name. Always acquire this information, never assume.",
			},
			"start_date": map[string]any{
				"type":        "string",
				"format":      "date",
				"description": "The start date to get the weather for, format YYYY-MM-DD. Defaults to none",
			},
			"end_date": map[string]any{
				"type":        "string",
				"format":      "date",
				"description": "The end date of period to get the weather for, format YYYY-MM-DD, defaults to none.",
			},
		}, "location", "start_date", "end_date"),
	}
}

func (h *handlers) currentWeather(_ context.Context, args currentWeatherArgs) (string, error) {
	if args.Location == locationSentinel {
		return "location info required", nil
	}
	return fmt.Sprintf("It's %d degrees celsius and %s", h.randomTemperature(), conditions[h.rand.IntN(len(conditions))]), nil
}

// temperature returns one value per day in [start_date, end_date], taken from
// the location's dataset when it has the date. Values are sorted ascending,
// which drops the date each value belongs to.
func (h *handlers) temperature(ctx context.Context, args temperatureArgs) (string, error) {
	start, err := time.Parse(dateLayout, args.StartDate)
	if err != nil {
		return "", &ArgumentError{Reason: fmt.Sprintf("start_date %q is not YYYY-MM-DD", args.StartDate), Err: err}
	}
	end, err := time.Parse(dateLayout, args.EndDate)
	if err != nil {
		return "", &ArgumentError{Reason: fmt.Sprintf("end_date %q is not YYYY-MM-DD", args.EndDate), Err: err}
	}

	values := make([]int, 0)
	if end.Before(start) {
		return marshalResult(values)
	}
	if days := int(end.Sub(start).Hours()/24) + 1; days > maxTemperatureDays {
		return "", &ArgumentError{Reason: fmt.Sprintf("range of %d days exceeds %d", days, maxTemperatureDays)}
	}

	ds, err := LoadDataset(h.dataDir, args.Location)
	if err != nil {
		loggerpkg.Warn(h.logger, "dataset unreadable, using generated values", map[string]any{
			"location": args.Location,
			"error":    err.Error(),
		})
		ds = nil
	}

	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if v, ok := ds[day.Format(dateLayout)]; ok {
			values = append(values, v)
			continue
		}
		values = append(values, h.randomTemperature())
	}
	slices.Sort(values)
	return marshalResult(values)
}

func (h *handlers) randomTemperature() int {
	return minTemperature + h.rand.IntN(maxTemperature-minTemperature+1)
}

// marshalResult encodes v as compact JSON without HTML escaping.
func marshalResult(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

package platform

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
)

// isoLayout is what the backend emits for timestamps written with plain
// isoformat(): no zone designator, microsecond precision optional.
const isoLayout = "2006-01-02T15:04:05.999999"

// Timestamp tolerates the two wire formats used across the services:
// RFC3339 and zone-less isoformat. Zone-less values are taken as UTC.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "" || raw == "null" {
		t.Time = time.Time{}
		return nil
	}

	return t.parse(raw)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.Time.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(`"` + t.Time.UTC().Format(time.RFC3339Nano) + `"`), nil
}

func (t *Timestamp) parse(raw string) error {
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		parsed, err = time.Parse(isoLayout, raw)
	}
	if err != nil {
		return fmt.Errorf("unsupported timestamp %q: %w", raw, err)
	}

	t.Time = parsed
	return nil
}

// timestampHook lets mapstructure decoders fill Timestamp fields from the
// string values found in generic item maps.
func timestampHook() mapstructure.DecodeHookFunc {
	return func(from, to reflect.Type, data interface{}) (interface{}, error) {
		if from.Kind() != reflect.String || to != reflect.TypeOf(Timestamp{}) {
			return data, nil
		}

		var ts Timestamp
		raw := data.(string)
		if raw == "" {
			return ts, nil
		}
		if err := ts.parse(raw); err != nil {
			return nil, err
		}
		return ts, nil
	}
}

package agent

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// cleanJSONResponse strips markdown code fences the model sometimes wraps
// around its JSON answer.
func cleanJSONResponse(raw string) string {
	clean := strings.TrimSpace(raw)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	return strings.TrimSpace(clean)
}

// parseExternalTime accepts the timestamp formats the classifier passes
// through from the LMS: RFC3339 strings or epoch seconds.
func parseExternalTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}

	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}

	if epoch, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.Unix(epoch, 0).UTC(), nil
	}

	return time.Time{}, fmt.Errorf("unrecognized timestamp format: %q", value)
}

/**
 * @description
 * This file implements the custom-data codec. Both inbound channels smuggle
 * optional typed fields through an ordered list of {key, value} tags; the
 * functions here extract typed values out of that list with a best-effort
 * policy: a tag that cannot be read is skipped, and a missing key is reported
 * as absence, never as an error.
 *
 * @dependencies
 * - encoding/json, strconv, strings: Standard Go libraries.
 */

package domain

import (
	"encoding/json"
	"strconv"
	"strings"
)

// CustomData is a single {key, value} tag in a generic tag list.
type CustomData struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// LookupCustomData scans entries for key and returns the matching value in its
// string form. The match is case-insensitive on the key and the first match
// wins when duplicate keys exist. Entries whose value has no usable string
// form are skipped rather than aborting the scan.
func LookupCustomData(entries []CustomData, key string) (string, bool) {
	for _, entry := range entries {
		if !strings.EqualFold(entry.Key, key) {
			continue
		}
		value, ok := stringifyTagValue(entry.Value)
		if !ok {
			continue
		}
		return value, true
	}
	return "", false
}

// LookupCustomDataInt returns the value for key parsed as an integer. A
// missing key, blank value, or unparsable value all report absence.
func LookupCustomDataInt(entries []CustomData, key string) (int64, bool) {
	raw, ok := LookupCustomData(entries, key)
	if !ok {
		return 0, false
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	parsed, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return parsed, true
}

// LookupCustomDataBool returns the value for key only when its string form is
// exactly "true" or "false". Any other value is ignored, not an error.
func LookupCustomDataBool(entries []CustomData, key string) (bool, bool) {
	raw, ok := LookupCustomData(entries, key)
	if !ok {
		return false, false
	}
	switch raw {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

func stringifyTagValue(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case bool:
		return strconv.FormatBool(v), true
	default:
		// nil values and structured values have no tag string form.
		return "", false
	}
}

package agents

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Helpers for reading loosely typed decoded JSON.

func stringField(m map[string]interface{}, key string) (string, bool) {
	v, ok := m[key]
	if !ok || v == nil {
		return "", false
	}
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		return s, s != ""
	case float64, bool:
		return fmt.Sprint(t), true
	}
	return "", false
}

func numberField(m map[string]interface{}, key string) (float64, bool) {
	switch t := m[key].(type) {
	case float64:
		return t, !math.IsNaN(t)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil && !math.IsNaN(f)
	}
	return 0, false
}

// intField accepts only integral numbers.
func intField(m map[string]interface{}, key string) (int, bool) {
	f, ok := numberField(m, key)
	if !ok || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

func stringSlice(v interface{}) ([]string, bool) {
	items, ok := v.([]interface{})
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, false
		}
		out = append(out, strings.TrimSpace(s))
	}
	return out, true
}

func objects(v interface{}) []map[string]interface{} {
	items, _ := v.([]interface{})
	out := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]interface{}); ok {
			out = append(out, m)
		}
	}
	return out
}

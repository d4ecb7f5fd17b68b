package service

import (
	"bytes"
	"encoding/base64"
	"strconv"

	"github.com/bytedance/sonic"
)

// DecodeFrame pulls a price and an optional symbol out of a feed frame.
// Accepted shapes: {"price":p}, {"data":{"price":p}}, [{"price":p},...];
// the frame itself may be plain JSON text or base64 of it.
func DecodeFrame(payload []byte) (price float64, symbol string, ok bool) {
	data, ok := parsePayload(payload)
	if !ok {
		return 0, "", false
	}
	price, ok = extractPrice(data)
	if !ok {
		return 0, "", false
	}
	return price, extractSymbol(data), true
}

func parsePayload(payload []byte) (any, bool) {
	payload = bytes.TrimSpace(payload)
	if len(payload) == 0 {
		return nil, false
	}
	if looksJSON(payload) {
		var v any
		if err := sonic.Unmarshal(payload, &v); err == nil {
			return v, true
		}
	}

	raw, err := base64.StdEncoding.DecodeString(string(payload))
	if err != nil {
		return nil, false
	}
	raw = bytes.TrimSpace(raw)
	if !looksJSON(raw) {
		return nil, false
	}
	var v any
	if err := sonic.Unmarshal(raw, &v); err != nil {
		return nil, false
	}
	return v, true
}

func looksJSON(b []byte) bool {
	return len(b) > 0 && (b[0] == '{' || b[0] == '[')
}

func extractPrice(data any) (float64, bool) {
	switch v := data.(type) {
	case map[string]any:
		if p, ok := v["price"]; ok {
			return number(p)
		}
		if inner, ok := v["data"].(map[string]any); ok {
			if p, ok := inner["price"]; ok {
				return number(p)
			}
		}
	case []any:
		if len(v) == 0 {
			return 0, false
		}
		if first, ok := v[0].(map[string]any); ok {
			if p, ok := first["price"]; ok {
				return number(p)
			}
		}
	}
	return 0, false
}

func extractSymbol(data any) string {
	m, ok := data.(map[string]any)
	if !ok {
		return ""
	}
	if s, ok := m["symbol"]; ok {
		return text(s)
	}
	if inner, ok := m["data"].(map[string]any); ok {
		if s, ok := inner["symbol"]; ok {
			return text(s)
		}
	}
	return ""
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}

func text(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	}
	return ""
}

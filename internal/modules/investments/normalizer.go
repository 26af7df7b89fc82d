package investments

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// Holdings arrive from less-trusted surfaces (patch bodies, tool
// arguments, user-entered rows) either as structured objects with
// loosely named fields or as free text like "5 AAPL at 185". The
// normalizer turns both into the canonical Holding shape; anything it
// cannot parse is reported as nil and dropped by callers.

// freeTextPattern matches "[quantity] symbol [at|@] price". The
// quantity is optional in the pattern but a holding without one is
// rejected below.
var freeTextPattern = regexp.MustCompile(`(?i)^(?:\s*(\d+(?:\.\d+)?))?\s*([A-Za-z]{1,8})\s*(?:at|@)?\s*(\d+(?:\.\d+)?)`)

// NormalizeHolding parses a structured object or free-text string into
// a canonical Holding. It returns nil when the symbol is empty or the
// quantity or price fail to parse as numbers.
func NormalizeHolding(raw interface{}) *Holding {
	if raw == nil {
		return nil
	}

	switch v := raw.(type) {
	case string:
		return normalizeString(v)
	case map[string]interface{}:
		return normalizeObject(v)
	case Holding:
		return normalizeObject(map[string]interface{}{
			"symbol":   v.Symbol,
			"quantity": v.Quantity,
			"avgPrice": v.AvgPrice,
			"sector":   v.Sector,
		})
	default:
		return nil
	}
}

// NormalizeRaw decodes a raw JSON value and normalizes it.
func NormalizeRaw(raw json.RawMessage) *Holding {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return NormalizeHolding(v)
}

// NormalizeAll normalizes a list of raw holdings, silently dropping
// invalid entries.
func NormalizeAll(raws []json.RawMessage) []Holding {
	holdings := []Holding{}
	for _, raw := range raws {
		if h := NormalizeRaw(raw); h != nil {
			holdings = append(holdings, *h)
		}
	}
	return holdings
}

func normalizeString(s string) *Holding {
	m := freeTextPattern.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	if m[1] == "" {
		// Quantity missing from the text form.
		return nil
	}

	quantity, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil
	}
	price, err := strconv.ParseFloat(m[3], 64)
	if err != nil {
		return nil
	}

	return &Holding{
		Symbol:   strings.ToUpper(m[2]),
		Quantity: quantity,
		AvgPrice: price,
	}
}

func normalizeObject(obj map[string]interface{}) *Holding {
	symbol := strings.ToUpper(firstString(obj, "symbol", "ticker"))
	if symbol == "" {
		return nil
	}

	quantity, ok := firstNumber(obj, "quantity", "qty")
	if !ok {
		return nil
	}
	price, ok := firstNumber(obj, "avgPrice", "price", "cost")
	if !ok {
		return nil
	}

	h := &Holding{
		Symbol:   symbol,
		Quantity: quantity,
		AvgPrice: price,
	}
	if sector, found := obj["sector"]; found {
		if s, isString := sector.(string); isString {
			h.Sector = s
		}
	}
	return h
}

func firstString(obj map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if v, found := obj[key]; found {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

func firstNumber(obj map[string]interface{}, keys ...string) (float64, bool) {
	for _, key := range keys {
		v, found := obj[key]
		if !found || v == nil {
			continue
		}
		switch n := v.(type) {
		case float64:
			return n, true
		case int:
			return float64(n), true
		case json.Number:
			if f, err := n.Float64(); err == nil {
				return f, true
			}
			return 0, false
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
				return f, true
			}
			return 0, false
		default:
			return 0, false
		}
	}
	return 0, false
}

package game

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// coerceInt converts a decoded JSON value to an int. Numbers are truncated
// toward zero, strings must hold a base-10 integer. Values outside the int
// range are rejected.
func coerceInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int64ToInt(n)
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, fmt.Errorf("not a finite number: %v", n)
		}
		t := math.Trunc(n)
		// float64(math.MaxInt) rounds up to 2^63 on 64-bit platforms.
		if t < float64(math.MinInt) || t >= float64(math.MaxInt) {
			return 0, fmt.Errorf("out of range: %v", n)
		}
		return int(t), nil
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int64ToInt(i)
		}
		f, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", n.String())
		}
		return coerceInt(f)
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, fmt.Errorf("not an integer: %q", n)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("expected a number, got %T", v)
	}
}

func int64ToInt(n int64) (int, error) {
	if n < math.MinInt || n > math.MaxInt {
		return 0, fmt.Errorf("out of range: %d", n)
	}
	return int(n), nil
}

package strategy

import (
	"fmt"

	"github.com/spf13/cast"

	"github.com/newthinker/tradesim/internal/core"
)

// PositiveInt reads params[key] as an int, keeping def when the key is absent.
// Values from YAML, JSON or flags arrive as int, float64 or string; all are accepted.
func PositiveInt(params map[string]any, key string, def int) (int, error) {
	raw, ok := params[key]
	if !ok || raw == nil {
		return def, nil
	}
	v, err := cast.ToIntE(raw)
	if err != nil {
		return 0, core.WrapError(core.ErrInvalidParam, fmt.Errorf("%s: %w", key, err))
	}
	if f, ok := raw.(float64); ok && f != float64(v) {
		return 0, core.WrapError(core.ErrInvalidParam, fmt.Errorf("%s: %v is not a whole number", key, raw))
	}
	if v <= 0 {
		return 0, core.WrapError(core.ErrInvalidParam, fmt.Errorf("%s must be positive, got %d", key, v))
	}
	return v, nil
}

// Float reads params[key] as a float64, keeping def when the key is absent
func Float(params map[string]any, key string, def float64) (float64, error) {
	raw, ok := params[key]
	if !ok || raw == nil {
		return def, nil
	}
	v, err := cast.ToFloat64E(raw)
	if err != nil {
		return 0, core.WrapError(core.ErrInvalidParam, fmt.Errorf("%s: %w", key, err))
	}
	return v, nil
}

// Closes returns the close column or ErrMissingColumns
func Closes(table *core.Table) ([]float64, error) {
	if table == nil {
		return nil, core.ErrNoData
	}
	closes, ok := table.Column(core.ColClose)
	if !ok {
		return nil, core.WrapError(core.ErrMissingColumns, fmt.Errorf("%s", core.ColClose))
	}
	return closes, nil
}

package manifest

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

var errAbsent = errors.New("absent")

// lookup walks nested objects along path. It returns errAbsent when a key is
// missing and a FieldError when an intermediate value is not an object.
func lookup(root map[string]any, path ...string) (any, error) {
	var cur any = root
	for i, key := range path {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, &FieldError{Field: strings.Join(path[:i], "."), Reason: "must be an object"}
		}
		cur, ok = obj[key]
		if !ok {
			return nil, errAbsent
		}
	}
	return cur, nil
}

func stringAt(root map[string]any, path ...string) (string, error) {
	v, err := lookup(root, path...)
	if err != nil {
		return "", fieldErr(err, path)
	}
	s, ok := v.(string)
	if !ok {
		return "", &FieldError{Field: strings.Join(path, "."), Reason: "must be a string"}
	}
	return s, nil
}

func intAt(root map[string]any, allowNegative bool, path ...string) (int, error) {
	name := strings.Join(path, ".")
	v, err := lookup(root, path...)
	if err != nil {
		return 0, fieldErr(err, path)
	}
	num, ok := v.(json.Number)
	if !ok {
		return 0, &FieldError{Field: name, Reason: "must be an integer"}
	}
	n, err := strconv.ParseInt(string(num), 10, 64)
	if err != nil {
		// Accept integral floats such as 3.0.
		f, ferr := num.Float64()
		if ferr != nil || f != math.Trunc(f) || math.Abs(f) > 1<<53 {
			return 0, &FieldError{Field: name, Reason: "must be an integer, got " + string(num)}
		}
		n = int64(f)
	}
	if n < math.MinInt32 || n > math.MaxInt32 {
		return 0, &FieldError{Field: name, Reason: "out of range: " + string(num)}
	}
	if !allowNegative && n < 0 {
		return 0, &FieldError{Field: name, Reason: "must be non-negative, got " + string(num)}
	}
	return int(n), nil
}

// boolAt returns def when the field or any parent object is absent.
func boolAt(root map[string]any, def bool, path ...string) (bool, error) {
	v, err := lookup(root, path...)
	if errors.Is(err, errAbsent) {
		return def, nil
	}
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, &FieldError{Field: strings.Join(path, "."), Reason: "must be a boolean"}
	}
	return b, nil
}

func fieldErr(err error, path []string) error {
	if errors.Is(err, errAbsent) {
		return &FieldError{Field: strings.Join(path, "."), Reason: "required field is missing"}
	}
	return err
}

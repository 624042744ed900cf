// Package canon renders JSON values deterministically.
//
// Marshal produces the canonical byte form that bundle producers hash: object
// keys sorted by code point at every level, "," and ":" separators, no
// insignificant whitespace, and non-ASCII text emitted as literal UTF-8.
// Numbers follow the producer's rendering rules (see FormatFloat) so that the
// bytes, and therefore the digest, match across implementations.
package canon

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Style selects the token separators used between items and between a key and
// its value.
type Style struct {
	ItemSep string
	KeySep  string
}

var (
	// Compact is the canonical hashing style.
	Compact = Style{ItemSep: ",", KeySep: ":"}
	// Spaced is the human-facing style used in reports.
	Spaced = Style{ItemSep: ", ", KeySep: ": "}
)

// Marshal encodes v in the Compact style.
//
// Supported values: nil, bool, string, json.Number, float64, float32, the
// signed and unsigned integer kinds, map[string]any, []any and []float64.
// Non-finite floats are rejected because the canonical form must be valid JSON.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	e := encoder{style: Compact}
	if err := e.encode(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalReport encodes v in the Spaced style. Non-finite floats are written
// as the NaN, Infinity and -Infinity tokens instead of failing.
func MarshalReport(v any) ([]byte, error) {
	var buf bytes.Buffer
	e := encoder{style: Spaced, allowNonFinite: true}
	if err := e.encode(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type encoder struct {
	style          Style
	allowNonFinite bool
}

func (e encoder) encode(buf *bytes.Buffer, v any) error {
	switch x := v.(type) {
	case nil:
		buf.WriteString("null")
	case bool:
		if x {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case string:
		writeString(buf, x)
	case json.Number:
		s, err := formatNumber(x)
		if err != nil {
			return err
		}
		if !e.allowNonFinite && !isFiniteToken(s) {
			return fmt.Errorf("canon: number %s is out of float64 range", x)
		}
		buf.WriteString(s)
	case float64:
		return e.encodeFloat(buf, x)
	case float32:
		return e.encodeFloat(buf, float64(x))
	case int:
		buf.WriteString(strconv.FormatInt(int64(x), 10))
	case int8:
		buf.WriteString(strconv.FormatInt(int64(x), 10))
	case int16:
		buf.WriteString(strconv.FormatInt(int64(x), 10))
	case int32:
		buf.WriteString(strconv.FormatInt(int64(x), 10))
	case int64:
		buf.WriteString(strconv.FormatInt(x, 10))
	case uint:
		buf.WriteString(strconv.FormatUint(uint64(x), 10))
	case uint8:
		buf.WriteString(strconv.FormatUint(uint64(x), 10))
	case uint16:
		buf.WriteString(strconv.FormatUint(uint64(x), 10))
	case uint32:
		buf.WriteString(strconv.FormatUint(uint64(x), 10))
	case uint64:
		buf.WriteString(strconv.FormatUint(x, 10))
	case map[string]any:
		return e.encodeObject(buf, x)
	case []any:
		buf.WriteByte('[')
		for i, item := range x {
			if i > 0 {
				buf.WriteString(e.style.ItemSep)
			}
			if err := e.encode(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case []float64:
		buf.WriteByte('[')
		for i, item := range x {
			if i > 0 {
				buf.WriteString(e.style.ItemSep)
			}
			if err := e.encodeFloat(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	default:
		return fmt.Errorf("canon: unsupported value of type %T", v)
	}
	return nil
}

func (e encoder) encodeObject(buf *bytes.Buffer, m map[string]any) error {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	// Byte order of UTF-8 strings is code point order.
	sort.Strings(keys)

	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteString(e.style.ItemSep)
		}
		writeString(buf, k)
		buf.WriteString(e.style.KeySep)
		if err := e.encode(buf, m[k]); err != nil {
			return fmt.Errorf("%s: %w", k, err)
		}
	}
	buf.WriteByte('}')
	return nil
}

func (e encoder) encodeFloat(buf *bytes.Buffer, f float64) error {
	if !e.allowNonFinite && (math.IsNaN(f) || math.IsInf(f, 0)) {
		return fmt.Errorf("canon: non-finite number %v", f)
	}
	buf.WriteString(FormatFloat(f))
	return nil
}

func isFiniteToken(s string) bool {
	return s != "NaN" && s != "Infinity" && s != "-Infinity"
}

// formatNumber renders a decoded JSON number literal. Integer literals keep
// their digits; anything with a fraction or exponent is a float.
func formatNumber(n json.Number) (string, error) {
	s := string(n)
	if !strings.ContainsAny(s, ".eE") {
		if s == "-0" {
			return "0", nil
		}
		return s, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		var numErr *strconv.NumError
		if !errors.As(err, &numErr) || numErr.Err != strconv.ErrRange {
			return "", fmt.Errorf("canon: invalid number %q: %w", s, err)
		}
	}
	return FormatFloat(f), nil
}

const hexDigits = "0123456789abcdef"

// writeString quotes s, escaping only the quote, the backslash and control
// characters below U+0020.
func writeString(buf *bytes.Buffer, s string) {
	buf.WriteByte('"')
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 0x20 && c != '"' && c != '\\' {
			continue
		}
		buf.WriteString(s[start:i])
		switch c {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		case '\b':
			buf.WriteString(`\b`)
		case '\f':
			buf.WriteString(`\f`)
		default:
			buf.WriteString(`\u00`)
			buf.WriteByte(hexDigits[c>>4])
			buf.WriteByte(hexDigits[c&0xf])
		}
		start = i + 1
	}
	buf.WriteString(s[start:])
	buf.WriteByte('"')
}

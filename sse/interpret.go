package sse

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/fwojciec/bimrag"
)

// deltaKeys lists the payload fields that may carry a delta, in priority
// order. Different generator workers use different keys.
var deltaKeys = []string{"delta", "output", "text"}

var errNotObject = errors.New("payload is not a JSON object")

type sourcesPayload struct {
	Sources []bimrag.Source `json:"sources"`
}

type donePayload struct {
	Text    string          `json:"text"`
	Sources []bimrag.Source `json:"sources"`
}

// Interpret maps a frame to the event it carries.
//
// It returns (nil, nil) when the frame carries nothing to dispatch: no data
// line, or a default-kind payload without a usable delta. A default-kind
// payload that is not JSON is itself the delta. A sources or done payload
// that fails to parse has no safe fallback; Interpret returns an error
// wrapping [bimrag.ErrFrameSkipped] and the caller should move on to the
// next frame.
func Interpret(f Frame) (bimrag.Event, error) {
	if !f.HasData {
		return nil, nil
	}
	switch f.Kind {
	case KindSources:
		var p sourcesPayload
		if err := unmarshalObject(f.Data, &p); err != nil {
			return nil, skipped(f, err)
		}
		return bimrag.EventSources{Sources: nonNil(p.Sources)}, nil
	case KindDone:
		var p donePayload
		if err := unmarshalObject(f.Data, &p); err != nil {
			return nil, skipped(f, err)
		}
		return bimrag.EventDone{Text: p.Text, Sources: nonNil(p.Sources)}, nil
	default:
		// Unknown kinds are treated like unmarked frames.
		return interpretDelta(f.Data), nil
	}
}

func interpretDelta(data string) bimrag.Event {
	if data == "" {
		return nil
	}
	if !json.Valid([]byte(data)) {
		return bimrag.EventDelta{Text: data}
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(data), &obj); err != nil {
		// Valid JSON, but a bare string, number or array.
		return nil
	}
	for _, key := range deltaKeys {
		raw, ok := obj[key]
		if !ok || string(raw) == "null" {
			continue
		}
		text := deltaText(raw)
		if text == "" {
			return nil
		}
		return bimrag.EventDelta{Text: text}
	}
	return nil
}

// deltaText renders a delta value as text. Non-zero numbers and true are
// printed; zero, false, objects and arrays carry no text.
func deltaText(raw json.RawMessage) string {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return ""
	}
	switch v := v.(type) {
	case string:
		return v
	case float64:
		if v == 0 {
			return ""
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		if v {
			return "true"
		}
	}
	return ""
}

func unmarshalObject(data string, v any) error {
	if !strings.HasPrefix(data, "{") {
		return errNotObject
	}
	return json.Unmarshal([]byte(data), v)
}

func skipped(f Frame, err error) error {
	return fmt.Errorf("sse: %w: %s frame: %w", bimrag.ErrFrameSkipped, f.Kind, err)
}

func nonNil(sources []bimrag.Source) []bimrag.Source {
	if sources == nil {
		return []bimrag.Source{}
	}
	return sources
}

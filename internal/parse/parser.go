// Package parse extracts a structured prediction from unreliable model
// output. Parsing is a layered fallback: structured JSON first, then a
// keyword regex, then array coercion, with a sentinel for anything that
// defeats all three. Each stage tags its outcome so callers and tests can
// tell how a prediction was recovered.
package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/jsonc"
)

// Stage identifies which fallback layer produced an outcome.
type Stage int

const (
	// StageEmpty marks absent input.
	StageEmpty Stage = iota
	// StageStructured marks a clean JSON object with a usable prediction.
	StageStructured
	// StageRegex marks a keyword-and-hex-token recovery.
	StageRegex
	// StageArray marks a bracketed-array recovery from unparseable JSON.
	StageArray
	// StageFailed marks input that defeated every layer.
	StageFailed
)

func (s Stage) String() string {
	switch s {
	case StageEmpty:
		return "empty"
	case StageStructured:
		return "structured"
	case StageRegex:
		return "regex"
	case StageArray:
		return "array"
	default:
		return "failed"
	}
}

// Outcome is the tagged result of parsing one response.
type Outcome struct {
	Stage Stage
	Raw   string

	// Venue holds a scalar prediction: the structured field value, or the
	// unparseable bracket substring kept verbatim.
	Venue string
	// Candidates holds multiple predictions: hex tokens from the regex
	// layer or a structured array's elements.
	Candidates []string
	// Values holds an array recovery's elements, coerced to ints when
	// every element coerces, raw otherwise.
	Values []interface{}

	Reason string
}

// Prediction returns the single best venue id, preferring the scalar hit,
// then the first candidate, then the first array value.
func (o Outcome) Prediction() string {
	if o.Venue != "" {
		return o.Venue
	}
	if len(o.Candidates) > 0 {
		return o.Candidates[0]
	}
	if len(o.Values) > 0 {
		return fmt.Sprintf("%v", o.Values[0])
	}
	return ""
}

var (
	keywordPattern = regexp.MustCompile(`(?is)prediction(.*?)reason`)
	hexPattern     = regexp.MustCompile(`\b[0-9a-f]{24}\b`)
)

// Extract parses one model response. A nil pointer stands for an absent or
// non-text response and yields an immediate empty outcome.
func Extract(text *string) Outcome {
	if text == nil {
		return Outcome{Stage: StageEmpty}
	}
	full := *text

	jsonStr := substringBetween(full, '{', '}')
	if jsonStr == "" {
		jsonStr = full
	}
	jsonStr = string(jsonc.ToJSON([]byte(jsonStr)))

	if !gjson.Valid(jsonStr) {
		return recoverFromArray(full)
	}

	parsed := gjson.Parse(jsonStr)
	prediction := parsed.Get("prediction")

	switch {
	case !prediction.Exists(), prediction.Type == gjson.Null:
		return Outcome{
			Stage:  StageFailed,
			Raw:    full,
			Reason: "prediction field missing",
		}
	case prediction.IsArray():
		elems := prediction.Array()
		if len(elems) == 0 {
			return regexRecover(jsonStr, full)
		}
		candidates := make([]string, 0, len(elems))
		for _, e := range elems {
			candidates = append(candidates, e.String())
		}
		return Outcome{
			Stage:      StageStructured,
			Raw:        full,
			Candidates: candidates,
			Reason:     parsed.Get("reason").String(),
		}
	case prediction.String() == "":
		return regexRecover(jsonStr, full)
	default:
		return Outcome{
			Stage:  StageStructured,
			Raw:    full,
			Venue:  prediction.String(),
			Reason: parsed.Get("reason").String(),
		}
	}
}

// regexRecover scans the search space for hex venue ids between the
// "prediction" and "reason" keywords. An empty capture list is still a
// regex-stage outcome.
func regexRecover(searchSpace, full string) Outcome {
	o := Outcome{Stage: StageRegex, Raw: full}
	if m := keywordPattern.FindStringSubmatch(searchSpace); m != nil {
		o.Candidates = hexPattern.FindAllString(m[1], -1)
	}
	return o
}

// recoverFromArray handles responses whose JSON never parsed: try the
// bracketed substring of the original text as an array, falling back to the
// keyword regex over the whole text.
func recoverFromArray(full string) Outcome {
	arrStr := substringBetween(full, '[', ']')
	if arrStr == "" {
		return regexRecover(full, full)
	}

	if !gjson.Valid(arrStr) || !gjson.Parse(arrStr).IsArray() {
		// Keep the malformed bracket text verbatim.
		return Outcome{Stage: StageArray, Raw: full, Venue: arrStr}
	}

	elems := gjson.Parse(arrStr).Array()
	values := make([]interface{}, 0, len(elems))
	allInts := true
	for _, e := range elems {
		n, ok := coerceElementInt(e)
		if !ok {
			allInts = false
			break
		}
		values = append(values, n)
	}
	if !allInts {
		values = values[:0]
		for _, e := range elems {
			values = append(values, e.Value())
		}
	}
	return Outcome{Stage: StageArray, Raw: full, Values: values}
}

func coerceElementInt(e gjson.Result) (int, bool) {
	switch e.Type {
	case gjson.Number:
		return int(e.Num), true
	case gjson.String:
		n, err := strconv.Atoi(strings.TrimSpace(e.Str))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// substringBetween returns the inclusive slice from the first open rune to
// the last close rune, or "" when either is absent or out of order.
func substringBetween(s string, opening, closing byte) string {
	start := strings.IndexByte(s, opening)
	end := strings.LastIndexByte(s, closing)
	if start == -1 || end == -1 || end < start {
		return ""
	}
	return s[start : end+1]
}

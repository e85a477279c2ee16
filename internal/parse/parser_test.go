package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func extract(t *testing.T, text string) Outcome {
	t.Helper()
	return Extract(&text)
}

func TestExtractNilInput(t *testing.T) {
	o := Extract(nil)
	assert.Equal(t, StageEmpty, o.Stage)
	assert.Empty(t, o.Raw)
	assert.Empty(t, o.Venue)
	assert.Empty(t, o.Reason)
}

func TestExtractStructured(t *testing.T) {
	o := extract(t, `{"prediction": "4aa1b2c3d4e5f60718293a4b", "reason": "the user always returns home"}`)
	assert.Equal(t, StageStructured, o.Stage)
	assert.Equal(t, "4aa1b2c3d4e5f60718293a4b", o.Venue)
	assert.Equal(t, "the user always returns home", o.Reason)
}

func TestExtractStructuredWithSurroundingProse(t *testing.T) {
	o := extract(t, "Sure, here is my answer:\n{\"prediction\": \"v42\", \"reason\": \"closest venue\"}\nHope that helps!")
	assert.Equal(t, StageStructured, o.Stage)
	assert.Equal(t, "v42", o.Venue)
	assert.Equal(t, "closest venue", o.Reason)
}

func TestExtractStructuredStripsComments(t *testing.T) {
	o := extract(t, "{\"prediction\": \"v7\", // most likely\n\"reason\": \"weekday pattern\"}")
	assert.Equal(t, StageStructured, o.Stage)
	assert.Equal(t, "v7", o.Venue)
}

func TestExtractStructuredNumericPrediction(t *testing.T) {
	o := extract(t, `{"prediction": 1543, "reason": "frequent"}`)
	assert.Equal(t, StageStructured, o.Stage)
	assert.Equal(t, "1543", o.Venue)
}

func TestExtractStructuredArrayPrediction(t *testing.T) {
	o := extract(t, `{"prediction": ["v1", "v2"], "reason": "two candidates"}`)
	assert.Equal(t, StageStructured, o.Stage)
	assert.Equal(t, []string{"v1", "v2"}, o.Candidates)
	assert.Equal(t, "v1", o.Prediction())
	assert.Equal(t, "two candidates", o.Reason)
}

func TestExtractEmptyPredictionFallsToRegex(t *testing.T) {
	o := extract(t, `{"prediction": "", "candidates": "aaaaaaaabbbbbbbbcccccccc", "reason": "unsure"}`)
	assert.Equal(t, StageRegex, o.Stage)
	assert.Equal(t, []string{"aaaaaaaabbbbbbbbcccccccc"}, o.Candidates)
	assert.Empty(t, o.Reason)
}

func TestExtractEmptyPredictionNoTokens(t *testing.T) {
	o := extract(t, `{"prediction": "", "reason": "no idea"}`)
	assert.Equal(t, StageRegex, o.Stage)
	assert.Empty(t, o.Candidates)
	assert.Empty(t, o.Prediction())
}

func TestExtractMissingPredictionField(t *testing.T) {
	o := extract(t, `{"reason": "only a reason"}`)
	assert.Equal(t, StageFailed, o.Stage)
	assert.Equal(t, "prediction field missing", o.Reason)
	assert.Empty(t, o.Venue)
}

func TestExtractNullPredictionField(t *testing.T) {
	o := extract(t, `{"prediction": null, "reason": "gave up"}`)
	assert.Equal(t, StageFailed, o.Stage)
}

func TestExtractArrayCoercion(t *testing.T) {
	o := extract(t, "The most likely venues are [123, 456, 789] in that order")
	require.Equal(t, StageArray, o.Stage)
	assert.Equal(t, []interface{}{123, 456, 789}, o.Values)
	assert.Equal(t, "123", o.Prediction())
}

func TestExtractArrayCoercionStringDigits(t *testing.T) {
	o := extract(t, `candidates: ["12", "34"]`)
	require.Equal(t, StageArray, o.Stage)
	assert.Equal(t, []interface{}{12, 34}, o.Values)
}

func TestExtractArrayKeepsRawValuesOnCoercionFailure(t *testing.T) {
	o := extract(t, `try [1, "park"] first`)
	require.Equal(t, StageArray, o.Stage)
	require.Len(t, o.Values, 2)
	assert.Equal(t, float64(1), o.Values[0])
	assert.Equal(t, "park", o.Values[1])
}

func TestExtractMalformedArrayKeptVerbatim(t *testing.T) {
	o := extract(t, "maybe [12, ab] somewhere")
	assert.Equal(t, StageArray, o.Stage)
	assert.Equal(t, "[12, ab]", o.Venue)
}

func TestExtractRegexOverWholeText(t *testing.T) {
	o := extract(t, "prediction: aaaaaaaabbbbbbbbcccccccc and ddddddddeeeeeeeeffffffff, reason: both plausible")
	assert.Equal(t, StageRegex, o.Stage)
	assert.Equal(t, []string{"aaaaaaaabbbbbbbbcccccccc", "ddddddddeeeeeeeeffffffff"}, o.Candidates)
}

func TestExtractRegexRequiresFullLengthTokens(t *testing.T) {
	// 23 hex chars must not match.
	o := extract(t, "prediction: aaaaaaaabbbbbbbbccccccc reason: short token")
	assert.Equal(t, StageRegex, o.Stage)
	assert.Empty(t, o.Candidates)
}

func TestExtractBareJSONArrayIsFailure(t *testing.T) {
	// A top-level array has no prediction field to read.
	o := extract(t, `["v1", "v2"]`)
	assert.Equal(t, StageFailed, o.Stage)
}

func TestStageString(t *testing.T) {
	assert.Equal(t, "structured", StageStructured.String())
	assert.Equal(t, "regex", StageRegex.String())
	assert.Equal(t, "array", StageArray.String())
	assert.Equal(t, "failed", StageFailed.String())
	assert.Equal(t, "empty", StageEmpty.String())
}

package bimrag_test

import (
	"encoding/json"
	"testing"

	"github.com/fwojciec/bimrag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserMessage(t *testing.T) {
	t.Parallel()
	msg := bimrag.UserMessage("벽은 어떻게 만드나요?")
	assert.Equal(t, bimrag.RoleUser, msg.Role)
	assert.Equal(t, "벽은 어떻게 만드나요?", msg.Content)
}

func TestMessage_JSON(t *testing.T) {
	t.Parallel()
	data, err := json.Marshal([]bimrag.Message{
		bimrag.UserMessage("q1"),
		{Role: bimrag.RoleAssistant, Content: "a1"},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"role":"user","content":"q1"},{"role":"assistant","content":"a1"}]`, string(data))
}

func TestSummarizeRequest_JSONOmitsDefaults(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(bimrag.SummarizeRequest{Query: "q"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"query":"q"}`, string(data))

	data, err = json.Marshal(bimrag.SummarizeRequest{
		Query:       "q",
		TopP:        bimrag.Float(0),
		UseKure:     true,
		Filters:     &bimrag.Filters{CategoryPath: []string{"Revit", "벽"}},
		Temperature: bimrag.Float(0),
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"query":"q","top_p":0,"temperature":0,"use_kure":true,"filters":{"category_path":["Revit","벽"]}}`, string(data))
}

func TestSearchRequest_ModelNotSerialized(t *testing.T) {
	t.Parallel()
	data, err := json.Marshal(bimrag.SearchRequest{
		Messages: []bimrag.Message{bimrag.UserMessage("q")},
		Model:    "kure",
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"messages":[{"role":"user","content":"q"}]}`, string(data))
}

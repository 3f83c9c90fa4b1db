package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextConcatenatesParts(t *testing.T) {
	a, b := "Bonjour ", "docteur"
	resp := Model_Response{Parts: []Model_Part{
		{Text: &a},
		{FunctionCall: &FunctionCall{Name: "listEvents"}},
		{Text: &b},
	}}
	assert.Equal(t, "Bonjour docteur", resp.Text())
}

func TestFunctionCallsKeepsOrderAndDuplicates(t *testing.T) {
	resp := Model_Response{Parts: []Model_Part{
		{FunctionCall: &FunctionCall{Name: "addEvent"}},
		{FunctionCall: &FunctionCall{Name: "listEvents"}},
		{FunctionCall: &FunctionCall{Name: "addEvent"}},
	}}

	calls := resp.FunctionCalls()
	require.Len(t, calls, 3)
	assert.Equal(t, "addEvent", calls[0].Name)
	assert.Equal(t, "listEvents", calls[1].Name)
	assert.Equal(t, "addEvent", calls[2].Name)
	assert.NotNil(t, calls[0].Args)
}

func TestFunctionCallsEmpty(t *testing.T) {
	text := "rien"
	resp := Model_Response{Parts: []Model_Part{{Text: &text}}}
	assert.Empty(t, resp.FunctionCalls())
}

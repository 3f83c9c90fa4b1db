package models

type Model_Response struct {
	Parts []Model_Part `json:"parts"`
}

// A part is either text or a function call; both may appear in one response.

type FunctionCall struct {
	ID   string                 `json:"id,omitempty"` // unique ID for this call instance
	Name string                 `json:"name"`
	Args map[string]interface{} `json:"args"`
}

type Model_Part struct {
	Text         *string       `json:"text,omitempty"`
	FunctionCall *FunctionCall `json:"functionCall,omitempty"`
}

// Text concatenates the text content of all parts.
func (r Model_Response) Text() string {
	out := ""
	for _, p := range r.Parts {
		if p.Text != nil {
			out += *p.Text
		}
	}
	return out
}

// FunctionCalls returns every requested tool call in part order, duplicates
// included. Calls without a name are dropped.
func (r Model_Response) FunctionCalls() []FunctionCall {
	calls := []FunctionCall{}
	for _, p := range r.Parts {
		if p.FunctionCall != nil && p.FunctionCall.Name != "" {
			fc := *p.FunctionCall
			if fc.Args == nil {
				fc.Args = map[string]interface{}{}
			}
			calls = append(calls, fc)
		}
	}
	return calls
}

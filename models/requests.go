package models

// Model_Request carries everything the reasoning backend needs for one call:
// the user's prompt parts for the current turn and, on tool round-trips, the
// results of the tool calls the backend asked for.
type Model_Request struct {
	User_Message *User_Message  `json:"message,omitempty"`
	Tool_Results *[]Tool_Result `json:"tool_results,omitempty"`
}

type Tool_Result struct {
	Tool_ID     string `json:"tool_id"` // matches the originating tool call
	Tool_Name   string `json:"tool_name"`
	Tool_Output string `json:"tool_output"` // JSON-encoded result or error body
}

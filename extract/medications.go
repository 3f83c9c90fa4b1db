// Package extract pulls structured medication data out of assistant replies
// and free-form prescription text.
package extract

import (
	"encoding/json"
	"regexp"
)

// The model wraps structured output in a markdown code fence; only the first
// block is considered.
var fencedJSON = regexp.MustCompile("(?s)```json\\s*(.+?)\\s*```")

// Payload is the structured block embedded in an assistant reply.
type Payload struct {
	ReplyText   string   `json:"reponse_textuelle"`
	Medications []Record `json:"medicaments"`
}

// Record is one extracted medication. A nil Dose means the model did not
// report one; it is kept rather than dropped.
type Record struct {
	Name      string  `json:"nom"`
	Dose      *string `json:"dose"`
	Frequency string  `json:"frequence"`
}

// Medications scans raw assistant text for a fenced JSON payload. It returns
// nil when there is no block, the block does not parse, or no medication
// survives filtering. It never fails.
func Medications(raw string) *Payload {
	match := fencedJSON.FindStringSubmatch(raw)
	if match == nil {
		return nil
	}

	var payload Payload
	if err := json.Unmarshal([]byte(match[1]), &payload); err != nil {
		return nil
	}

	kept := make([]Record, 0, len(payload.Medications))
	for _, med := range payload.Medications {
		if med.Name == "" {
			continue
		}
		kept = append(kept, med)
	}
	if len(kept) == 0 {
		return nil
	}

	payload.Medications = kept
	return &payload
}

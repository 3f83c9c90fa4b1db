package sessions

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"github.com/mzngu/Red-panda-x/extract"
	"github.com/mzngu/Red-panda-x/models"
	"github.com/mzngu/Red-panda-x/prompt"
	"github.com/mzngu/Red-panda-x/stores"
)

const (
	errInvalidJSON     = "Format JSON invalide"
	errNoSessionToken  = "Non authentifié (aucun session_token)."
	errGenericFailure  = "Une erreur est survenue"
	noFrequencyMention = "fréquence non spécifiée"
)

// HandleFrame processes one raw frame from the client and sends exactly one
// reply frame (response or error) back. The returned error is a *ChatError;
// only a fatal one should end the connection.
func (s *ChatSession) HandleFrame(ctx context.Context, raw []byte) error {
	var frame InboundFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		s.Log.Warn("invalid frame", "session", s.ID, "err", err)
		return s.sendError(errInvalidJSON)
	}

	if frame.Action == "load_history" {
		s.loadHistory(frame.History)
		return nil
	}

	token := s.Token
	if token == "" {
		token = frame.SessionToken
	}
	if token == "" {
		return s.sendError(errNoSessionToken)
	}

	// Identity is per message: a frame without these clears them.
	s.ConversationID = frame.ConversationID
	s.UserID = frame.UserID

	parts := s.buildUserParts(frame)
	s.History = append(s.History, Turn{Role: "user", Parts: parts})

	systemInstruction := prompt.Build(s.now(), frame.Context)

	finalText, err := s.runToolLoop(ctx, parts, systemInstruction, token)
	if err != nil {
		s.Log.Warn("tool-enabled generation failed, degrading", "session", s.ID, "err", err)
		callCtx, cancel := context.WithTimeout(ctx, s.callTimeout())
		finalText, err = s.Model.GenerateSimple(callCtx, s.flattenHistory(), systemInstruction)
		cancel()
		if err != nil {
			s.Log.Error("degraded generation failed", "session", s.ID, "err", err)
			return s.sendError(errGenericFailure)
		}
	}

	reply := finalText
	if payload := extract.Medications(finalText); payload != nil {
		s.persistPrescription(payload)
		reply = formatMedicationReply(payload)
	}

	s.History = append(s.History, Turn{Role: "model", Parts: []models.User_Part{{Text: reply}}})
	s.persistMessages(frame.Message, reply)

	if werr := s.Writer.WriteResponse(OutboundFrame{Response: reply, ConversationID: s.ConversationID}); werr != nil {
		s.Log.Error("failed to write response frame", "session", s.ID, "err", werr)
		return &ChatError{Message: "failed to write response frame", Fatal: true}
	}
	return nil
}

// sendError writes an error frame; failure to deliver it is fatal to the
// connection, the handled error itself is not.
func (s *ChatSession) sendError(message string) error {
	if werr := s.Writer.WriteError(message); werr != nil {
		s.Log.Error("failed to write error frame", "session", s.ID, "err", werr)
		return &ChatError{Message: "failed to write error frame", Fatal: true}
	}
	return &ChatError{Message: message, Fatal: false}
}

// loadHistory replaces the in-memory history with the client-provided turns.
func (s *ChatSession) loadHistory(turns []HistoryTurn) {
	history := make([]Turn, 0, len(turns))
	for _, t := range turns {
		parts := make([]models.User_Part, 0, len(t.Parts))
		for _, p := range t.Parts {
			parts = append(parts, models.User_Part{Text: p})
		}
		history = append(history, Turn{Role: t.Role, Parts: parts})
	}
	s.History = history
	s.Log.Info("history loaded", "session", s.ID, "turns", len(history))
}

// buildUserParts assembles the prompt parts for one message: the text, then
// the image when one is attached and decodes cleanly.
func (s *ChatSession) buildUserParts(frame InboundFrame) []models.User_Part {
	parts := []models.User_Part{}
	if frame.Message != "" {
		parts = append(parts, models.User_Part{Text: frame.Message})
	}
	if frame.Image != "" {
		if inline, ok := parseDataURL(frame.Image); ok {
			parts = append(parts, models.User_Part{InlineData: &inline})
		} else {
			s.Log.Warn("dropping undecodable image", "session", s.ID)
		}
	}
	if len(parts) == 0 {
		parts = append(parts, models.User_Part{Text: ""})
	}
	return parts
}

// parseDataURL splits a data URL into mime type and base64 payload. The
// payload is kept encoded but must decode to be accepted.
func parseDataURL(raw string) (models.InlineData, bool) {
	if !strings.HasPrefix(raw, "data:") {
		return models.InlineData{}, false
	}
	header, payload, found := strings.Cut(raw, ",")
	if !found || payload == "" {
		return models.InlineData{}, false
	}
	mime := strings.TrimPrefix(header, "data:")
	mime = strings.TrimSuffix(mime, ";base64")
	if mime == "" {
		mime = "image/jpeg"
	}
	if _, err := base64.StdEncoding.DecodeString(payload); err != nil {
		return models.InlineData{}, false
	}
	return models.InlineData{MimeType: mime, Data: payload}, true
}

// runToolLoop performs the initial tool-enabled call and at most
// maxToolRounds re-invocations feeding back tool results. Every requested
// call gets exactly one result, in request order.
func (s *ChatSession) runToolLoop(ctx context.Context, parts []models.User_Part, systemInstruction, token string) (string, error) {
	tools := s.Invoker.Declarations()
	userMsg := &models.User_Message{
		Role:    "user",
		Content: models.Content{Parts: parts},
	}

	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout())
	resp, err := s.Model.Generate(callCtx, models.Model_Request{User_Message: userMsg}, tools, systemInstruction)
	cancel()
	if err != nil {
		return "", err
	}

	for round := 0; round < s.maxToolRounds(); round++ {
		calls := resp.FunctionCalls()
		if len(calls) == 0 {
			break
		}

		results := make([]models.Tool_Result, 0, len(calls))
		for _, fc := range calls {
			id := fc.ID
			if id == "" {
				id = uuid.New().String()
			}
			s.Log.Info("invoking tool", "session", s.ID, "tool", fc.Name)
			output := s.Invoker.Invoke(ctx, fc.Name, fc.Args, token)
			results = append(results, models.Tool_Result{
				Tool_ID:     id,
				Tool_Name:   fc.Name,
				Tool_Output: output,
			})
		}

		callCtx, cancel := context.WithTimeout(ctx, s.callTimeout())
		resp, err = s.Model.Generate(callCtx, models.Model_Request{
			User_Message: userMsg,
			Tool_Results: &results,
		}, tools, systemInstruction)
		cancel()
		if err != nil {
			return "", err
		}
	}

	return resp.Text(), nil
}

// flattenHistory renders the accumulated turns as plain lines for the
// degraded no-tools call.
func (s *ChatSession) flattenHistory() []string {
	lines := make([]string, 0, len(s.History))
	for _, turn := range s.History {
		var texts []string
		for _, p := range turn.Parts {
			if p.Text != "" {
				texts = append(texts, p.Text)
			}
		}
		if len(texts) == 0 {
			continue
		}
		lines = append(lines, turn.Role+": "+strings.Join(texts, " "))
	}
	return lines
}

// persistPrescription stores the extracted medications for the session's
// user. Failures are logged and never affect the reply.
func (s *ChatSession) persistPrescription(payload *extract.Payload) {
	if s.Store == nil {
		return
	}
	if s.UserID == nil {
		s.Log.Warn("skipping prescription save, no user id", "session", s.ID)
		return
	}
	meds := make([]stores.MedicationInput, 0, len(payload.Medications))
	for _, m := range payload.Medications {
		dose := ""
		if m.Dose != nil {
			dose = *m.Dose
		}
		meds = append(meds, stores.MedicationInput{
			Name:      m.Name,
			Dose:      dose,
			Frequency: m.Frequency,
		})
	}
	p, err := s.Store.CreatePrescriptionWithMedications(*s.UserID, nil, meds)
	if err != nil {
		s.Log.Error("failed to save prescription", "session", s.ID, "user", *s.UserID, "err", err)
		return
	}
	s.Log.Info("prescription saved", "session", s.ID, "prescription", p.ID, "medications", len(p.Medications))
}

// persistMessages appends the user and assistant turns to the conversation
// store. Best effort, skipped when no conversation is bound.
func (s *ChatSession) persistMessages(userText, reply string) {
	if s.Store == nil || s.ConversationID == nil {
		return
	}
	if userText != "" {
		if err := s.Store.AppendMessage(*s.ConversationID, "user", userText); err != nil {
			s.Log.Error("failed to save user message", "session", s.ID, "conversation", *s.ConversationID, "err", err)
		}
	}
	if err := s.Store.AppendMessage(*s.ConversationID, "assistant", reply); err != nil {
		s.Log.Error("failed to save assistant message", "session", s.ID, "conversation", *s.ConversationID, "err", err)
	}
}

// formatMedicationReply renders the extracted free text followed by one
// bullet per medication.
func formatMedicationReply(payload *extract.Payload) string {
	head := payload.ReplyText
	if head == "" {
		head = "J'ai sauvegardé votre ordonnance."
	}
	var b strings.Builder
	b.WriteString(head)
	for _, m := range payload.Medications {
		freq := m.Frequency
		if freq == "" {
			freq = noFrequencyMention
		}
		b.WriteString("\n- " + m.Name + " (" + freq + ")")
	}
	return b.String()
}

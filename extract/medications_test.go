package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMedicationsExtractsFencedBlock(t *testing.T) {
	raw := "Voici votre ordonnance.\n```json\n{\"reponse_textuelle\": \"Voici:\", \"medicaments\": [{\"nom\": \"Paracétamol\", \"dose\": \"500mg\", \"frequence\": \"1/jour\"}]}\n```\nBonne journée."

	payload := Medications(raw)
	require.NotNil(t, payload)
	assert.Equal(t, "Voici:", payload.ReplyText)
	require.Len(t, payload.Medications, 1)
	assert.Equal(t, "Paracétamol", payload.Medications[0].Name)
	require.NotNil(t, payload.Medications[0].Dose)
	assert.Equal(t, "500mg", *payload.Medications[0].Dose)
	assert.Equal(t, "1/jour", payload.Medications[0].Frequency)
}

func TestMedicationsNoBlock(t *testing.T) {
	assert.Nil(t, Medications("Bonjour, comment puis-je aider ?"))
}

func TestMedicationsInvalidJSON(t *testing.T) {
	assert.Nil(t, Medications("```json\n{not valid\n```"))
}

func TestMedicationsDropsNamelessRecords(t *testing.T) {
	raw := "```json\n{\"reponse_textuelle\": \"ok\", \"medicaments\": [{\"nom\": \"\", \"frequence\": \"1/jour\"}, {\"nom\": \"Doliprane\", \"frequence\": \"2/jour\"}]}\n```"

	payload := Medications(raw)
	require.NotNil(t, payload)
	require.Len(t, payload.Medications, 1)
	assert.Equal(t, "Doliprane", payload.Medications[0].Name)
}

func TestMedicationsEmptyAfterFilter(t *testing.T) {
	raw := "```json\n{\"reponse_textuelle\": \"ok\", \"medicaments\": [{\"nom\": \"\", \"frequence\": \"1/jour\"}]}\n```"
	assert.Nil(t, Medications(raw))
}

func TestMedicationsMissingDoseKept(t *testing.T) {
	raw := "```json\n{\"reponse_textuelle\": \"ok\", \"medicaments\": [{\"nom\": \"Ibuprofène\", \"frequence\": \"3/jour\"}]}\n```"

	payload := Medications(raw)
	require.NotNil(t, payload)
	require.Len(t, payload.Medications, 1)
	assert.Nil(t, payload.Medications[0].Dose)
}

func TestMedicationsFirstBlockOnly(t *testing.T) {
	raw := "```json\n{\"reponse_textuelle\": \"premier\", \"medicaments\": [{\"nom\": \"A\", \"frequence\": \"1/jour\"}]}\n```\n```json\n{\"reponse_textuelle\": \"second\", \"medicaments\": [{\"nom\": \"B\", \"frequence\": \"2/jour\"}]}\n```"

	payload := Medications(raw)
	require.NotNil(t, payload)
	assert.Equal(t, "premier", payload.ReplyText)
}

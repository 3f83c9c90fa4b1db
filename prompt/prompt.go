// Package prompt assembles the per-turn system instruction for the assistant.
package prompt

import (
	"fmt"
	"strings"
	"time"
)

// BasePrompt is the assistant persona and the output contract for
// prescription images. The JSON block format is what extract.Medications
// parses on the way back.
const BasePrompt = `Tu t'appelles Sorrel. Agis comme un assistant médical virtuel.
Présente-toi qu'une fois au début de chaque conversation.
Tu es conçu pour aider les utilisateurs à comprendre leurs symptômes, à fournir des conseils de premiers soins, et à les orienter vers des professionnels de santé si nécessaire.
Pose des questions claires et précises pour mieux comprendre les symptômes d'une personne.
Fournis ensuite des informations générales sur les causes possibles, des conseils de premiers soins, et oriente la personne vers un professionnel de santé si nécessaire.
Ne pose pas de diagnostic définitif. Sois rassurant, professionnel et clair dans tes réponses.
Quand un utilisateur te fournit une image d'une ordonnance, ta seule tâche est d'extraire et de lister textuellement les informations suivantes :
1. Le nom de chaque médicament.
2. La posologie ou le dosage (ex: 500mg).
3. La fréquence et la durée de la prise (ex: 2 fois par jour pendant 7 jours).
Ta réponse DOIT être un bloc de code JSON valide contenant une clé "medicaments". Chaque élément de la liste doit avoir les clés "nom", "dose", et "frequence".
La clé "reponse_textuelle" contient ta phrase d'introduction.
Exemple de format de sortie attendu :
` + "```json\n" + `{
  "reponse_textuelle": "J'ai bien analysé votre ordonnance. Voici les médicaments que j'ai identifiés :",
  "medicaments": [
    {
      "nom": "PRAVASTATINE SODIQUE",
      "dose": "20 mg cp",
      "frequence": "Prendre 1 comprimé le matin, pendant 3 mois."
    },
    {
      "nom": "ACIDE ACETYLSALICYLIQUE",
      "dose": "75 mg",
      "frequence": "Prendre 1 sachet le midi, pendant 3 mois."
    }
  ]
}
` + "```" + `
Ne fournis aucune interprétation, aucun conseil médical, et ne pose aucune question sur l'état de santé.
Ensuite, présente les informations extraites sous forme de liste claire. Si l'image n'est pas lisible ou n'est pas une ordonnance, indique-le simplement.`

const calendarCapabilities = `Capacités d'action calendrier :
- Utilise addEvent(title, description?, start_dt RFC3339, end_dt RFC3339, timezone="Europe/Paris", location?)
- Utilise listEvents() pour voir les événements.
- Utilise deleteEvent(id) pour supprimer un rendez-vous.`

// NamedItem is a labeled profile entry (allergy or medical history item).
type NamedItem struct {
	Nom string `json:"nom"`
}

// UserProfile carries the optional profile fields the client may attach to a
// message. Field names mirror the inbound frame.
type UserProfile struct {
	Prenom        string      `json:"prenom,omitempty"`
	Nom           string      `json:"nom,omitempty"`
	Sexe          string      `json:"sexe,omitempty"`
	DateNaissance string      `json:"date_naissance,omitempty"` // ISO date, possibly with time suffix
	Allergies     []NamedItem `json:"allergies,omitempty"`
	Antecedents   []NamedItem `json:"antecedents,omitempty"`
}

// Build assembles the system instruction for one turn: base prompt, current
// date, optional profile block, calendar capabilities. Deterministic for
// identical inputs.
func Build(now time.Time, profile *UserProfile) string {
	var b strings.Builder
	b.WriteString(BasePrompt)

	if profile != nil {
		if block := profileBlock(now, profile); block != "" {
			b.WriteString("\n\n")
			b.WriteString(block)
			b.WriteString("\nBase tes réponses sur ces infos.")
		}
	}

	b.WriteString(fmt.Sprintf("\n\nAujourd'hui on est le %s\n", now.Format("02/01/2006")))
	b.WriteString(calendarCapabilities)
	return b.String()
}

// profileBlock lists only the fields that are present; returns "" when none are.
func profileBlock(now time.Time, profile *UserProfile) string {
	lines := []string{}

	if profile.Prenom != "" {
		lines = append(lines, "- Prénom: "+profile.Prenom)
	}
	if profile.Nom != "" {
		lines = append(lines, "- Nom: "+profile.Nom)
	}
	if profile.Sexe != "" {
		lines = append(lines, "- Sexe: "+profile.Sexe)
	}
	if profile.DateNaissance != "" {
		if birth, err := parseBirthDate(profile.DateNaissance); err == nil {
			age := int(now.Sub(birth).Hours() / 24 / 365)
			lines = append(lines, fmt.Sprintf("- Âge: %d ans (né(e) le %s)", age, birth.Format("02/01/2006")))
		}
	}
	if joined := joinNames(profile.Allergies); joined != "" {
		lines = append(lines, "- Allergies connues: "+joined)
	}
	if joined := joinNames(profile.Antecedents); joined != "" {
		lines = append(lines, "- Antécédents médicaux: "+joined)
	}

	if len(lines) == 0 {
		return ""
	}
	return "Voici des informations sur l'utilisateur actuel :\n" + strings.Join(lines, "\n")
}

func parseBirthDate(value string) (time.Time, error) {
	// The client may send a full timestamp; keep the date portion only.
	if i := strings.IndexByte(value, 'T'); i >= 0 {
		value = value[:i]
	}
	return time.Parse("2006-01-02", value)
}

func joinNames(items []NamedItem) string {
	names := []string{}
	for _, it := range items {
		if it.Nom != "" {
			names = append(names, it.Nom)
		}
	}
	return strings.Join(names, ", ")
}

package calendar

import (
	"github.com/mzngu/Red-panda-x/models"
)

// AddEventTool returns the FunctionDeclaration for creating a calendar event.
func AddEventTool() models.FunctionDeclaration {
	return models.FunctionDeclaration{
		Name:        "addEvent",
		Description: "Ajoute un événement au calendrier interne.",
		Parameters: models.Parameters{
			Type: "object",
			Properties: map[string]interface{}{
				"title":       map[string]interface{}{"type": "string"},
				"description": map[string]interface{}{"type": "string"},
				"start_dt": map[string]interface{}{
					"type":        "string",
					"description": "datetime RFC3339 ex: 2025-09-03T15:00:00+02:00",
				},
				"end_dt":   map[string]interface{}{"type": "string"},
				"timezone": map[string]interface{}{"type": "string"},
				"location": map[string]interface{}{"type": "string"},
			},
			Required: []string{"title", "start_dt", "end_dt"},
		},
	}
}

// ListEventsTool returns the FunctionDeclaration for listing the user's events.
func ListEventsTool() models.FunctionDeclaration {
	return models.FunctionDeclaration{
		Name:        "listEvents",
		Description: "Liste les événements de l'utilisateur.",
		Parameters: models.Parameters{
			Type:       "object",
			Properties: map[string]interface{}{},
			Required:   []string{},
		},
	}
}

// DeleteEventTool returns the FunctionDeclaration for deleting an event by id.
func DeleteEventTool() models.FunctionDeclaration {
	return models.FunctionDeclaration{
		Name:        "deleteEvent",
		Description: "Supprime un événement par id.",
		Parameters: models.Parameters{
			Type: "object",
			Properties: map[string]interface{}{
				"id": map[string]interface{}{"type": "integer"},
			},
			Required: []string{"id"},
		},
	}
}

// Declarations returns the full calendar tool set advertised to the model.
func Declarations() []models.FunctionDeclaration {
	return []models.FunctionDeclaration{
		AddEventTool(),
		ListEventsTool(),
		DeleteEventTool(),
	}
}

package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mzngu/Red-panda-x/auth"
	"github.com/mzngu/Red-panda-x/extract"
	"github.com/mzngu/Red-panda-x/sessions"
	"github.com/mzngu/Red-panda-x/stores"
)

// NewRouter builds the gin engine with the WebSocket endpoint and the
// authenticated REST endpoints.
func NewRouter(cfg *Config, registry *sessions.Registry) *gin.Engine {
	router := gin.Default()

	router.GET("/health", func(c *gin.Context) {
		if err := cfg.Store.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/ws", func(c *gin.Context) {
		HandleWS(cfg, registry, c.Writer, c.Request)
	})

	authed := router.Group("/", requireSession(cfg))

	authed.POST("/conversations", func(c *gin.Context) {
		userID := c.GetUint("user_id")
		var body struct {
			Title string `json:"title"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Format JSON invalide"})
			return
		}
		conv, err := cfg.Store.CreateConversation(userID, body.Title)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"conversation": conv})
	})

	authed.GET("/conversations", func(c *gin.Context) {
		userID := c.GetUint("user_id")
		conversations, err := cfg.Store.ListConversationsForUser(userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"conversations": conversations})
	})

	authed.GET("/conversations/:id/messages", func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
			return
		}
		messages, err := cfg.Store.GetConversationMessages(uint(id))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"messages": messages})
	})

	// Manual entry: the user types or pastes a prescription as plain text.
	authed.POST("/prescriptions", func(c *gin.Context) {
		userID := c.GetUint("user_id")
		var body struct {
			Text string `json:"text"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Format JSON invalide"})
			return
		}
		records := extract.ParseFreeText(body.Text)
		if len(records) == 0 {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "aucun médicament reconnu"})
			return
		}
		meds := make([]stores.MedicationInput, 0, len(records))
		for _, r := range records {
			meds = append(meds, stores.MedicationInput{Name: r.Name, Frequency: r.Frequency})
		}
		p, err := cfg.Store.CreatePrescriptionWithMedications(userID, nil, meds)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"prescription": p})
	})

	authed.GET("/prescriptions", func(c *gin.Context) {
		userID := c.GetUint("user_id")
		prescriptions, err := cfg.Store.ListPrescriptionsForUser(userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"prescriptions": prescriptions})
	})

	return router
}

// requireSession validates the session_token cookie and stores the user id in
// the request context.
func requireSession(cfg *Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie("session_token")
		if err != nil || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Non authentifié (aucun session_token)."})
			return
		}
		userID, err := auth.ParseSessionToken(token, cfg.JWTSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session invalide"})
			return
		}
		c.Set("user_id", userID)
		c.Next()
	}
}

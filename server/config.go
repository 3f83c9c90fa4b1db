// Package server wires the HTTP surface: the WebSocket chat endpoint and the
// REST endpoints for conversations and prescriptions.
package server

import (
	"github.com/mzngu/Red-panda-x/calendar"
	"github.com/mzngu/Red-panda-x/logger"
	"github.com/mzngu/Red-panda-x/models/gemini"
	"github.com/mzngu/Red-panda-x/sessions"
	"github.com/mzngu/Red-panda-x/stores"
)

// Config holds everything the chat endpoints need.
type Config struct {
	ModelName   string
	JWTSecret   string
	CalendarURL string

	Model   sessions.Reasoner
	Invoker sessions.ToolInvoker
	Store   stores.MedicalStore
	Log     *logger.Logger
}

// NewConfig creates a configuration with default values: the flash model, a
// default SQLite store and a calendar invoker pointed at localhost.
func NewConfig(log *logger.Logger) *Config {
	defaultStore, err := stores.NewSQLiteStoreDefault()
	if err != nil {
		panic("Failed to create default SQLite store: " + err.Error())
	}

	c := &Config{
		ModelName:   "gemini-2.0-flash",
		CalendarURL: "http://localhost:8000",
		Store:       defaultStore,
		Log:         log,
	}
	c.Model = gemini.NewClient(c.ModelName)
	c.Invoker = calendar.NewInvoker(c.CalendarURL, log)
	return c
}

// WithModelName sets the reasoning model name.
func (c *Config) WithModelName(modelName string) *Config {
	c.ModelName = modelName
	c.Model = gemini.NewClient(modelName)
	return c
}

// WithStore sets the medical store.
func (c *Config) WithStore(store stores.MedicalStore) *Config {
	c.Store = store
	return c
}

// WithCalendarURL points the tool invoker at another calendar API.
func (c *Config) WithCalendarURL(baseURL string) *Config {
	c.CalendarURL = baseURL
	c.Invoker = calendar.NewInvoker(baseURL, c.Log)
	return c
}

// WithJWTSecret sets the secret used to validate session tokens on the REST
// endpoints.
func (c *Config) WithJWTSecret(secret string) *Config {
	c.JWTSecret = secret
	return c
}

// Package dispatch executes the action bound to a matched gesture, either
// through an external action plugin or as a direct command.
package dispatch

import "encoding/json"

// Manifest describes an action plugin's metadata and capabilities.
type Manifest struct {
	Name         string          `json:"name"`
	Version      string          `json:"version"`
	Description  string          `json:"description"`
	Executable   string          `json:"executable"`
	Actions      []string        `json:"actions"`
	ConfigSchema json.RawMessage `json:"configSchema,omitempty"`
}

// Request is what a plugin receives on stdin for one dispatch.
type Request struct {
	Action  string          `json:"action"`
	Gesture GestureInfo     `json:"gesture"`
	Args    string          `json:"args,omitempty"`
	Config  json.RawMessage `json:"config,omitempty"`
}

// GestureInfo carries the matched gesture's context to the plugin.
type GestureInfo struct {
	ID       string  `json:"id"`
	Label    string  `json:"label,omitempty"`
	Tokens   string  `json:"tokens,omitempty"`
	Distance float64 `json:"distance,omitempty"`
}

// Response is what a plugin writes to stdout after handling a Request.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Plugin represents a discovered action plugin with its manifest and location.
type Plugin struct {
	Manifest   Manifest
	Path       string
	Executable string
}

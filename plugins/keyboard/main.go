// Package main provides a keyboard plugin for macOS.
// It sends keyboard shortcuts and keystrokes via AppleScript.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Request represents the input from the gesture dispatcher.
type Request struct {
	Action  string          `json:"action"`
	Gesture GestureInfo     `json:"gesture"`
	Args    string          `json:"args"`
	Config  json.RawMessage `json:"config"`
}

// GestureInfo carries the matched gesture's context.
type GestureInfo struct {
	ID       string  `json:"id"`
	Label    string  `json:"label"`
	Tokens   string  `json:"tokens"`
	Distance float64 `json:"distance"`
}

// Response represents the output to the gesture dispatcher.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// modifierMap maps user-friendly modifier names to AppleScript equivalents.
var modifierMap = map[string]string{
	"command": "command down",
	"cmd":     "command down",
	"option":  "option down",
	"alt":     "option down",
	"control": "control down",
	"ctrl":    "control down",
	"shift":   "shift down",
}

func main() {
	// Read request from stdin
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeErrorResponse(fmt.Sprintf("failed to decode request: %v", err))
		return
	}

	switch req.Action {
	case "keystroke", "shortcut":
		if err := handleKeystroke(req.Args); err != nil {
			writeErrorResponse(fmt.Sprintf("action %s failed: %v", req.Action, err))
			return
		}
	default:
		writeErrorResponse(fmt.Sprintf("unknown action: %s", req.Action))
		return
	}

	writeSuccessResponse()
}

// handleKeystroke parses a chord like "cmd+shift+t" from the binding args:
// the last segment is the key, everything before it is a modifier.
func handleKeystroke(args string) error {
	segments := strings.Split(strings.TrimSpace(args), "+")
	if len(segments) == 0 || segments[len(segments)-1] == "" {
		return fmt.Errorf("key is required, got %q", args)
	}

	key := segments[len(segments)-1]
	modifiers := segments[:len(segments)-1]

	script := buildKeystrokeScript(key, modifiers)
	return runAppleScript(script)
}

// buildKeystrokeScript generates an AppleScript for the given key and modifiers.
func buildKeystrokeScript(key string, modifiers []string) string {
	var appleModifiers []string
	for _, mod := range modifiers {
		if appleMod, ok := modifierMap[strings.ToLower(mod)]; ok {
			appleModifiers = append(appleModifiers, appleMod)
		}
	}

	if len(appleModifiers) == 0 {
		return fmt.Sprintf(`tell application "System Events" to keystroke "%s"`, key)
	}

	modifierList := strings.Join(appleModifiers, ", ")
	return fmt.Sprintf(`tell application "System Events" to keystroke "%s" using {%s}`, key, modifierList)
}

// writeErrorResponse writes an error response to stdout.
func writeErrorResponse(errMsg string) {
	resp := Response{
		Success: false,
		Error:   errMsg,
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}

// writeSuccessResponse writes a success response to stdout.
func writeSuccessResponse() {
	resp := Response{
		Success: true,
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}

// runAppleScript executes an AppleScript command and returns any error.
func runAppleScript(script string) error {
	cmd := exec.Command("osascript", "-e", script)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}

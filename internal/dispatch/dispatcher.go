package dispatch

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"
)

// Dispatcher resolves a binding's action string and executes it.
//
// Action strings of the form "plugin/action" route to a discovered plugin.
// Anything else is run as a direct command, split on whitespace, so simple
// bindings work without installing a plugin.
type Dispatcher struct {
	manager  *Manager
	executor *Executor
}

// NewDispatcher wires a plugin manager and executor into a dispatcher.
func NewDispatcher(manager *Manager, executor *Executor) *Dispatcher {
	return &Dispatcher{manager: manager, executor: executor}
}

// Dispatch executes the action for a matched gesture. The returned error
// covers launch and protocol failures; a plugin reporting success=false is
// also surfaced as an error so callers log exactly one outcome per stroke.
func (d *Dispatcher) Dispatch(ctx context.Context, action, args string, gesture GestureInfo) error {
	pluginName, actionName, isPlugin := strings.Cut(action, "/")
	if isPlugin && pluginName != "" && actionName != "" {
		return d.dispatchPlugin(ctx, pluginName, actionName, args, gesture)
	}
	return d.dispatchCommand(ctx, action, args)
}

func (d *Dispatcher) dispatchPlugin(ctx context.Context, pluginName, actionName, args string, gesture GestureInfo) error {
	plugin, err := d.manager.Get(pluginName)
	if err != nil {
		return fmt.Errorf("resolve plugin %q: %w", pluginName, err)
	}

	resp, err := d.executor.Execute(ctx, plugin, &Request{
		Action:  actionName,
		Gesture: gesture,
		Args:    args,
	})
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("plugin %q action %q failed: %s", pluginName, actionName, resp.Error)
	}

	logrus.WithFields(logrus.Fields{
		"plugin": pluginName,
		"action": actionName,
	}).Debug("plugin action dispatched")
	return nil
}

func (d *Dispatcher) dispatchCommand(ctx context.Context, action, args string) error {
	fields := strings.Fields(action)
	if args != "" {
		fields = append(fields, strings.Fields(args)...)
	}
	if len(fields) == 0 {
		return fmt.Errorf("empty action")
	}

	cmd := exec.CommandContext(ctx, fields[0], fields[1:]...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start command %q: %w", fields[0], err)
	}

	// Detach: gesture dispatch must not block on long-running programs.
	go func() {
		if err := cmd.Wait(); err != nil {
			logrus.WithError(err).WithField("command", fields[0]).Warn("dispatched command exited with error")
		}
	}()

	logrus.WithField("command", fields[0]).Debug("command dispatched")
	return nil
}

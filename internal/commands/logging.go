package commands

import (
	"strings"

	"github.com/wynotes/go-notes/internal/logging"
	"github.com/wynotes/go-notes/pkg/interfaces"
)

const commandModuleRoot = "notes.commands"

// CommandLogger returns a logger scoped to notes.commands.<module> carrying the
// component and command_module fields.
func CommandLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	name := strings.TrimSpace(module)
	if name == "" {
		name = "core"
	}
	logger := logging.ModuleLogger(provider, commandModuleRoot+"."+name)
	return logging.WithFields(logger, map[string]any{
		"component":      "command",
		"command_module": name,
	})
}

package commands

import (
	"fmt"
	"strings"

	"golang.design/x/clipboard"
)

// FuncCommand adapts a closure into a Command.
type FuncCommand struct {
	name        string
	description string
	run         func() (string, error)
}

func NewFuncCommand(name, description string, run func() (string, error)) *FuncCommand {
	return &FuncCommand{name: name, description: description, run: run}
}

func (c *FuncCommand) Name() string        { return c.name }
func (c *FuncCommand) Description() string { return c.description }
func (c *FuncCommand) Execute() (string, error) {
	return c.run()
}

// NewHelpCommand lists every registered command.
func NewHelpCommand(reg *Registry) *FuncCommand {
	return NewFuncCommand("help", "List available commands", func() (string, error) {
		var sb strings.Builder
		sb.WriteString("Available commands:\n")
		for _, cmd := range reg.List() {
			sb.WriteString(fmt.Sprintf("  /%-10s %s\n", cmd.Name(), cmd.Description()))
		}
		sb.WriteString("\nType 'exit', 'quit' or ':q' to leave.")
		return sb.String(), nil
	})
}

// NewCopyCommand copies the last assistant reply to the system clipboard.
// lastReply is read lazily so the command always sees the current turn.
func NewCopyCommand(lastReply func() string) *FuncCommand {
	return NewFuncCommand("copy", "Copy the last reply to the clipboard", func() (string, error) {
		text := lastReply()
		if text == "" {
			return "Nothing to copy yet.", nil
		}
		if err := clipboard.Init(); err != nil {
			return "", fmt.Errorf("clipboard unavailable: %w", err)
		}
		clipboard.Write(clipboard.FmtText, []byte(text))
		return "Copied last reply to clipboard.", nil
	})
}

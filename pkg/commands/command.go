package commands

// Command is a slash command executed locally, outside the model loop.
type Command interface {
	// Name returns the command name (without the leading slash)
	Name() string

	// Description returns a short description shown in the command picker
	Description() string

	// Execute runs the command and returns the text to display
	Execute() (string, error)
}

// Registry holds all registered slash commands in insertion order.
type Registry struct {
	commands map[string]Command
	order    []string
}

func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]Command),
	}
}

// Register adds a command to the registry
func (r *Registry) Register(cmd Command) {
	name := cmd.Name()
	if _, exists := r.commands[name]; !exists {
		r.order = append(r.order, name)
	}
	r.commands[name] = cmd
}

// Get retrieves a command by name
func (r *Registry) Get(name string) (Command, bool) {
	cmd, ok := r.commands[name]
	return cmd, ok
}

// List returns all registered commands in registration order
func (r *Registry) List() []Command {
	cmds := make([]Command, 0, len(r.order))
	for _, name := range r.order {
		cmds = append(cmds, r.commands[name])
	}
	return cmds
}

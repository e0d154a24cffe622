package console

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	tea "github.com/charmbracelet/bubbletea"
)

// CommandFunc executes a prompt command and returns a follow-up Cmd,
// usually a StatusCmd or ErrorCmd.
type CommandFunc func(args []string) tea.Cmd

// Command is a named prompt command with its handler.
type Command struct {
	Name        string
	Aliases     []string
	Description string
	Run         CommandFunc
}

// CommandRegistry dispatches ":"-prompt input to commands, suggesting
// the nearest name on a miss.
type CommandRegistry struct {
	commands []Command
	byName   map[string]*Command
}

func NewCommandRegistry() *CommandRegistry {
	return &CommandRegistry{byName: make(map[string]*Command)}
}

func (r *CommandRegistry) Register(cmd Command) {
	r.commands = append(r.commands, cmd)
	c := &r.commands[len(r.commands)-1]
	r.byName[cmd.Name] = c
	for _, a := range cmd.Aliases {
		r.byName[a] = c
	}
}

// Names returns the registered command names, sorted.
func (r *CommandRegistry) Names() []string {
	names := make([]string, 0, len(r.commands))
	for _, c := range r.commands {
		names = append(names, c.Name)
	}
	sort.Strings(names)
	return names
}

// Dispatch parses a prompt line and runs the matching command. Unknown
// commands produce an error status that names the closest match when
// one is plausibly close.
func (r *CommandRegistry) Dispatch(line string) tea.Cmd {
	fields := strings.Fields(strings.TrimSpace(line))
	if len(fields) == 0 {
		return nil
	}
	name := strings.ToLower(fields[0])
	if c, ok := r.byName[name]; ok {
		return c.Run(fields[1:])
	}
	if s := r.nearest(name); s != "" {
		return ErrorCmd(fmt.Errorf("unknown command %q (did you mean %q?)", name, s))
	}
	return ErrorCmd(fmt.Errorf("unknown command %q", name))
}

// nearest returns the closest registered name within an edit distance
// of 2, or "" when nothing is close enough to suggest.
func (r *CommandRegistry) nearest(name string) string {
	best, bestDist := "", 3
	for _, c := range r.commands {
		d := levenshtein.ComputeDistance(name, c.Name)
		if d < bestDist {
			best, bestDist = c.Name, d
		}
	}
	return best
}

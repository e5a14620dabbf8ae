package logging

import "strings"

type Mode uint8

const (
	ModeCLI Mode = iota + 1
	// ModeWatch is the long-running config watcher.
	ModeWatch
)

// ModeFromArgs picks ModeWatch when the watch command is on the command line.
func ModeFromArgs(args []string) Mode {
	if len(args) < 2 {
		return ModeCLI
	}
	for _, arg := range args[1:] {
		if strings.EqualFold(strings.TrimSpace(arg), "watch") {
			return ModeWatch
		}
	}
	return ModeCLI
}

func (m Mode) String() string {
	switch m {
	case ModeWatch:
		return "watch"
	default:
		return "cli"
	}
}

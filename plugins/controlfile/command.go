package controlfile

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownCommand is returned by ParseCommand for unrecognized input.
var ErrUnknownCommand = errors.New("controlfile: unknown command")

// Command is an owner-side transition requested through the control file.
type Command int

const (
	CommandPause Command = iota + 1
	CommandResume
	CommandStop
)

func (c Command) String() string {
	switch c {
	case CommandPause:
		return "pause"
	case CommandResume:
		return "resume"
	case CommandStop:
		return "stop"
	default:
		return "unknown"
	}
}

// ParseCommand reads the first non-empty line of the control file.
// Matching is case-insensitive; "continue" is accepted for resume.
func ParseCommand(content string) (Command, error) {
	var line string
	for _, l := range strings.Split(content, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			line = strings.ToLower(l)
			break
		}
	}

	switch line {
	case "pause":
		return CommandPause, nil
	case "resume", "continue":
		return CommandResume, nil
	case "stop":
		return CommandStop, nil
	case "":
		return 0, fmt.Errorf("%w: empty", ErrUnknownCommand)
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownCommand, line)
	}
}

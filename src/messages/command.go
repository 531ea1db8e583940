package messages

import (
	"errors"
	"fmt"
	"strings"
)

// Verbs accepted on the command channel.
const (
	VerbFilter     = "filter"
	VerbBrightness = "brightness"
	VerbStatus     = "status"
	VerbEnable     = "enable"
	VerbDisable    = "disable"
	VerbLevel      = "level"
)

const (
	commandPrefix = "CMD "
	replyOK       = "OK"
	replyError    = "ERROR"
)

var ErrMalformed = errors.New("malformed command")

// Command is one request line: "CMD <verb> [arg]".
type Command struct {
	Verb string
	Arg  string
}

// ParseCommand parses a request line with or without its trailing newline.
func ParseCommand(line string) (Command, error) {
	line = strings.TrimRight(line, "\r\n")
	if !strings.HasPrefix(line, commandPrefix) {
		return Command{}, fmt.Errorf("%w: %q", ErrMalformed, line)
	}
	fields := strings.Fields(strings.TrimPrefix(line, commandPrefix))
	if len(fields) == 0 || len(fields) > 2 {
		return Command{}, fmt.Errorf("%w: %q", ErrMalformed, line)
	}
	cmd := Command{Verb: strings.ToLower(fields[0])}
	if len(fields) == 2 {
		cmd.Arg = fields[1]
	}
	return cmd, nil
}

// Line renders the command as a request line including the newline.
func (c Command) Line() string {
	if c.Arg == "" {
		return commandPrefix + c.Verb + "\n"
	}
	return commandPrefix + c.Verb + " " + c.Arg + "\n"
}

// Action maps the filter and brightness verbs to their external action.
func (c Command) Action() (Action, bool) {
	switch c.Verb {
	case VerbFilter:
		return ActionAdjustFilter, true
	case VerbBrightness:
		return ActionAdjustBrightness, true
	}
	return "", false
}

// FormatReply renders "OK [text]\n" or "ERROR <msg>\n". Newlines inside
// the payload are flattened so a reply is always one line.
func FormatReply(text string, err error) string {
	if err != nil {
		return replyError + " " + flatten(err.Error()) + "\n"
	}
	if text == "" {
		return replyOK + "\n"
	}
	return replyOK + " " + flatten(text) + "\n"
}

// ParseReply splits a reply line into its text or the remote error.
func ParseReply(line string) (string, error) {
	line = strings.TrimRight(line, "\r\n")
	switch {
	case line == replyOK:
		return "", nil
	case strings.HasPrefix(line, replyOK+" "):
		return strings.TrimPrefix(line, replyOK+" "), nil
	case strings.HasPrefix(line, replyError):
		msg := strings.TrimSpace(strings.TrimPrefix(line, replyError))
		if msg == "" {
			msg = "remote error"
		}
		return "", errors.New(msg)
	default:
		return "", fmt.Errorf("%w reply: %q", ErrMalformed, line)
	}
}

func flatten(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

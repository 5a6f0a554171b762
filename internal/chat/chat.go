// Package chat runs a terminal conversation against a dialogue engine.
package chat

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"support-bot/internal/dialogue"

	"github.com/sahilm/fuzzy"
)

const (
	Banner   = "Customer Support Chatbot\nType 'quit' to exit"
	Farewell = "Goodbye! Have a great day!"
)

var quitWords = map[string]bool{"quit": true, "exit": true, "bye": true}

type command struct {
	name string
	help string
	run  func(r *REPL) string
}

func builtinCommands() []command {
	return []command{
		{"/help", "list commands", (*REPL).help},
		{"/reset", "forget the conversation so far", func(r *REPL) string {
			r.engine.ResetContext()
			return "Conversation context cleared."
		}},
		{"/entities", "show the details collected so far", (*REPL).entities},
		{"/context", "show the current and previous intents", (*REPL).context},
	}
}

// REPL reads user lines and writes bot replies.
type REPL struct {
	engine   *dialogue.Engine
	out      io.Writer
	commands []command
	names    []string
}

func New(engine *dialogue.Engine, out io.Writer) *REPL {
	commands := builtinCommands()
	names := make([]string, len(commands))
	for i, c := range commands {
		names[i] = c.name
	}
	return &REPL{engine: engine, out: out, commands: commands, names: names}
}

// Run prints the banner and answers lines from in until a quit word, EOF or
// ctx is done. Lines are read on a separate goroutine so cancellation does not
// wait for the next line; that goroutine stays blocked on in until it yields
// or is closed.
func (r *REPL) Run(ctx context.Context, in io.Reader) error {
	fmt.Fprintln(r.out, Banner)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	for {
		fmt.Fprint(r.out, "You: ")
		select {
		case <-ctx.Done():
			fmt.Fprintln(r.out)
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				fmt.Fprintln(r.out)
				if err := ctx.Err(); err != nil {
					return err
				}
				return <-readErr
			}
			if err := ctx.Err(); err != nil {
				return err
			}

			reply, done := r.Handle(line)
			fmt.Fprintf(r.out, "Bot: %s\n", reply)
			if done {
				return nil
			}
		}
	}
}

// Handle answers one line. done is true when the user asked to leave.
func (r *REPL) Handle(line string) (reply string, done bool) {
	trimmed := strings.TrimSpace(line)
	if quitWords[strings.ToLower(trimmed)] {
		return Farewell, true
	}
	if strings.HasPrefix(trimmed, "/") {
		return r.command(strings.ToLower(strings.Fields(trimmed)[0])), false
	}
	return r.engine.GetResponse(line), false
}

func (r *REPL) command(name string) string {
	for _, c := range r.commands {
		if c.name == name {
			return c.run(r)
		}
	}

	matches := fuzzy.Find(name, r.names)
	if len(matches) == 0 {
		return fmt.Sprintf("Unknown command %s. Type /help for the list.", name)
	}
	return fmt.Sprintf("Unknown command %s. Did you mean %s?", name, matches[0].Str)
}

func (r *REPL) help() string {
	var b strings.Builder
	b.WriteString("Commands:")
	for _, c := range r.commands {
		fmt.Fprintf(&b, "\n  %-10s %s", c.name, c.help)
	}
	b.WriteString("\n  quit       end the chat")
	return b.String()
}

func (r *REPL) entities() string {
	found := r.engine.Entities()
	if len(found) == 0 {
		return "No details collected yet."
	}
	keys := make([]string, 0, len(found))
	for k := range found {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + found[k].String()
	}
	return strings.Join(parts, ", ")
}

func (r *REPL) context() string {
	c := r.engine.Context()
	current := c.CurrentIntent
	if current == "" {
		current = "none"
	}
	return fmt.Sprintf("current=%s previous=[%s]", current, strings.Join(c.PreviousIntents, " "))
}

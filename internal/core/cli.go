package core

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/glamour"

	"companion/internal/assistant"
	"companion/internal/session"
)

// ChatCLI runs an interactive conversation over a line-oriented stream.
type ChatCLI struct {
	session  *session.Session
	registry *assistant.Registry
	in       io.Reader
	out      io.Writer
	renderer *glamour.TermRenderer
	logger   Logger
}

// NewChatCLI creates a chat loop for s reading commands from in.
func NewChatCLI(s *session.Session, registry *assistant.Registry, in io.Reader, out io.Writer) *ChatCLI {
	return &ChatCLI{
		session:  s,
		registry: registry,
		in:       in,
		out:      out,
		logger:   slog.Default(),
	}
}

// WithLogger sets the logger for failed sends and commands.
func (c *ChatCLI) WithLogger(l Logger) *ChatCLI {
	if l != nil {
		c.logger = l
	}
	return c
}

// WithRenderer renders assistant replies as markdown. A nil renderer prints
// them verbatim.
func (c *ChatCLI) WithRenderer(r *glamour.TermRenderer) *ChatCLI {
	c.renderer = r
	return c
}

// NewMarkdownRenderer returns a terminal markdown renderer. An empty style
// picks one from the terminal background.
func NewMarkdownRenderer(style string, width int) (*glamour.TermRenderer, error) {
	styleOpt := glamour.WithAutoStyle()
	if style != "" {
		styleOpt = glamour.WithStylePath(style)
	}
	return glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(width))
}

// Run executes the interactive loop until /quit, end of input or ctx is done.
func (c *ChatCLI) Run(ctx context.Context) error {
	c.printBanner()

	scanner := bufio.NewScanner(c.in)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprint(c.out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(c.out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			quit, err := c.command(line)
			if err != nil || quit {
				return err
			}
			continue
		}

		fmt.Fprintln(c.out, "🤖 Thinking...")
		reply, err := c.session.Send(ctx, line)
		if err != nil {
			if errors.Is(err, session.ErrSessionClosed) {
				return err
			}
			c.logger.Warn("Send failed", "error", err)
			fmt.Fprintf(c.out, "⚠️  %v\n", err)
			continue
		}
		c.printReply(reply)
	}
}

// command handles a slash command. It reports whether the loop should end.
func (c *ChatCLI) command(line string) (bool, error) {
	fields := strings.Fields(line)
	switch fields[0] {
	case "/quit", "/exit":
		fmt.Fprintln(c.out, "👋 Bye!")
		return true, nil

	case "/clear":
		if err := c.session.Clear(); err != nil {
			c.logger.Warn("Clear failed", "error", err)
			fmt.Fprintf(c.out, "⚠️  %v\n", err)
			return false, nil
		}
		fmt.Fprintln(c.out, "🧹 History cleared.")

	case "/personality":
		if len(fields) < 2 {
			c.printPersonalities()
			return false, nil
		}
		key := assistant.ParseKey(fields[1])
		profile, err := c.registry.Profile(key)
		if err != nil {
			c.logger.Warn("Unknown personality requested", "personality", key)
			fmt.Fprintf(c.out, "⚠️  %v\n", err)
			c.printPersonalities()
			return false, nil
		}
		c.session.SetPersonality(key)
		c.logger.Info("Personality switched", "personality", key)
		fmt.Fprintf(c.out, "✅ Switched to %s.\n", profile.Label)

	case "/help":
		c.printHelp()

	default:
		c.logger.Debug("Unknown command", "command", fields[0])
		fmt.Fprintf(c.out, "Unknown command %s. Type /help for commands.\n", fields[0])
	}
	return false, nil
}

func (c *ChatCLI) printBanner() {
	label := string(c.session.Personality())
	if p, err := c.registry.Profile(c.session.Personality()); err == nil {
		label = p.Label
	}
	fmt.Fprintf(c.out, "✨ Chatting with %s. Type /help for commands.\n", label)
}

func (c *ChatCLI) printHelp() {
	fmt.Fprintln(c.out, "Commands:")
	fmt.Fprintln(c.out, "  /personality [key]  show or switch the assistant")
	fmt.Fprintln(c.out, "  /clear              clear the conversation")
	fmt.Fprintln(c.out, "  /quit               leave the chat")
}

func (c *ChatCLI) printPersonalities() {
	current := c.session.Personality()
	for _, key := range c.registry.Keys() {
		p, err := c.registry.Profile(key)
		if err != nil {
			continue
		}
		marker := " "
		if key == current {
			marker = "*"
		}
		fmt.Fprintf(c.out, " %s %-10s %s\n", marker, key, p.Label)
	}
}

func (c *ChatCLI) printReply(m session.Message) {
	fmt.Fprintln(c.out)
	c.printMarkdown(m.Content)

	if m.Code != "" {
		c.printMarkdown("```\n" + m.Code + "\n```")
	}

	if len(m.Suggestions) > 0 {
		fmt.Fprintln(c.out, "💡 Suggestions:")
		for _, s := range m.Suggestions {
			fmt.Fprintf(c.out, "  • %s\n", s)
		}
	}
	fmt.Fprintln(c.out)
}

func (c *ChatCLI) printMarkdown(text string) {
	if c.renderer != nil {
		if rendered, err := c.renderer.Render(text); err == nil {
			fmt.Fprint(c.out, rendered)
			return
		}
	}
	fmt.Fprintln(c.out, text)
}

package main

import (
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"companion/internal/assistant"
	"companion/internal/core"
	"companion/internal/session"
)

var (
	chatPersonality string
	chatProject     string
	chatScene       string
	chatPlain       bool
	chatStyle       string
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with an assistant in the terminal",
	Long: `Starts an interactive chat. Commands:
  /personality [key]  show or switch the assistant
  /clear              clear the conversation
  /quit               leave the chat`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatPersonality, "personality", "p", "", "Assistant personality (default from DEFAULT_PERSONALITY)")
	chatCmd.Flags().StringVar(&chatProject, "project", "", "Project ID sent as context")
	chatCmd.Flags().StringVar(&chatScene, "scene", "", "Scene name sent as context")
	chatCmd.Flags().BoolVar(&chatPlain, "plain", false, "Print replies without markdown rendering")
	chatCmd.Flags().StringVar(&chatStyle, "style", "", "Markdown style (dark, light, notty; default auto)")
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	personality := cfg.DefaultPersonality
	if chatPersonality != "" {
		personality = assistant.ParseKey(chatPersonality)
		if _, err := registry.Profile(personality); err != nil {
			return err
		}
	}

	backend, err := core.NewBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	engine := core.NewEngine(cfg, registry, backend, logger)

	s := session.New(engine,
		session.WithPersonality(personality),
		session.WithMoodResetDelay(cfg.MoodResetDelay),
		session.WithLogger(logger),
	)
	defer s.Close()

	if chatProject != "" || chatScene != "" {
		s.SetContext(&assistant.Context{ProjectID: chatProject, Scene: chatScene})
	}

	cli := core.NewChatCLI(s, registry, cmd.InOrStdin(), cmd.OutOrStdout()).WithLogger(logger)
	if !chatPlain {
		renderer, err := core.NewMarkdownRenderer(chatStyle, 80)
		if err != nil {
			logger.Warn("Markdown renderer unavailable, printing plain text", "error", err)
		} else {
			cli.WithRenderer(renderer)
		}
	}

	return cli.Run(ctx)
}

// Command talkcli drives the topic sampler and reply generator from a terminal.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/talkeasy/backend/internal/model/topic"
	"github.com/talkeasy/backend/internal/service/chat"
	"github.com/talkeasy/backend/internal/service/conversation"
)

var (
	corpusFile string
	seed       uint64
	delayMin   time.Duration
	delayMax   time.Duration
)

var (
	botColor    = color.New(color.FgCyan, color.Bold)
	userColor   = color.New(color.FgGreen, color.Bold)
	topicColor  = color.New(color.FgYellow)
	mutedColor  = color.New(color.Faint)
	headerColor = color.New(color.FgMagenta, color.Bold)
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// .env is optional for the CLI
	_ = godotenv.Load()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "talkcli",
		Short:         "Practice conversations with the TalkEasy bot",
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVar(&corpusFile, "corpus", os.Getenv("CORPUS_FILE"), "YAML topic corpus (defaults to the builtin topics)")
	root.PersistentFlags().Uint64Var(&seed, "seed", envSeed(), "seed for reproducible sampling (0 = random)")

	topicsCmd := &cobra.Command{
		Use:   "topics",
		Short: "Print a sample of conversation starters",
		Args:  cobra.NoArgs,
		RunE:  runTopics,
	}
	topicsCmd.Flags().IntP("count", "n", conversation.DefaultTopicCount, "number of topics")

	replyCmd := &cobra.Command{
		Use:   "reply <text...>",
		Short: "Print the bot's reply to one message",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runReply,
	}

	chatCmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive session (/topics [n], /quit)",
		Args:  cobra.NoArgs,
		RunE:  runChat,
	}
	chatCmd.Flags().DurationVar(&delayMin, "delay-min", time.Second, "minimum simulated typing delay")
	chatCmd.Flags().DurationVar(&delayMax, "delay-max", 2*time.Second, "maximum simulated typing delay")

	root.AddCommand(topicsCmd, replyCmd, chatCmd)
	return root
}

func envSeed() uint64 {
	v, err := strconv.ParseUint(strings.TrimSpace(os.Getenv("RANDOM_SEED")), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

func newConversation() (*conversation.Service, error) {
	corpus := topic.Default()
	if corpusFile != "" {
		loaded, err := topic.LoadFile(corpusFile)
		if err != nil {
			return nil, err
		}
		corpus = loaded
	}

	var opts []conversation.Option
	if seed != 0 {
		opts = append(opts, conversation.WithSeed(seed))
	}
	return conversation.NewService(corpus, opts...), nil
}

func runTopics(cmd *cobra.Command, _ []string) error {
	count, err := cmd.Flags().GetInt("count")
	if err != nil {
		return err
	}
	conv, err := newConversation()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printTopics(out, conv.Topics(count))
	return nil
}

func runReply(cmd *cobra.Command, args []string) error {
	conv, err := newConversation()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), conv.Reply(strings.Join(args, " ")))
	return nil
}

func runChat(cmd *cobra.Command, _ []string) error {
	conv, err := newConversation()
	if err != nil {
		return err
	}
	svc := chat.NewService(conv, chat.WithTypist(chat.NewRandomDelay(delayMin, delayMax)))
	return chatLoop(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), svc, conv)
}

func chatLoop(ctx context.Context, in io.Reader, out io.Writer, svc *chat.Service, conv *conversation.Service) error {
	session, err := svc.CreateSession(ctx, "talkcli")
	if err != nil {
		return err
	}
	defer func() { _ = svc.DeleteSession(context.Background(), session.ID) }()

	headerColor.Fprintln(out, "TalkEasy")
	mutedColor.Fprintln(out, "Type a message, /topics [n] for suggestions, /quit to leave.")
	botColor.Fprint(out, "Bot: ")
	fmt.Fprintln(out, chat.WelcomeMessage)
	printTopics(out, conv.Topics(conversation.DefaultTopicCount))

	scanner := bufio.NewScanner(in)
	for {
		userColor.Fprint(out, "You: ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "":
			continue
		case line == "/quit" || line == "/exit":
			mutedColor.Fprintln(out, "Bye!")
			return nil
		case strings.HasPrefix(line, "/topics"):
			n := conversation.DefaultTopicCount
			if arg := strings.TrimSpace(strings.TrimPrefix(line, "/topics")); arg != "" {
				parsed, err := strconv.Atoi(arg)
				if err != nil {
					mutedColor.Fprintf(out, "not a number: %q\n", arg)
					continue
				}
				n = parsed
			}
			printTopics(out, conv.Topics(n))
			continue
		}

		userMsg, err := svc.SaveUserMessage(ctx, session.ID, line)
		if err != nil {
			return err
		}

		delay := svc.NextDelay()
		if delay > 0 {
			mutedColor.Fprintln(out, "TalkEasy is typing...")
		}
		botMsg, err := svc.RespondAfter(ctx, session.ID, userMsg.Content, delay)
		if err != nil {
			return err
		}

		botColor.Fprint(out, "Bot: ")
		fmt.Fprintln(out, botMsg.Content)
	}
}

func printTopics(out io.Writer, topics []string) {
	if len(topics) == 0 {
		mutedColor.Fprintln(out, "(no topics)")
		return
	}
	headerColor.Fprintln(out, "Suggested topics:")
	for i, t := range topics {
		topicColor.Fprintf(out, "%2d. %s\n", i+1, t)
	}
}

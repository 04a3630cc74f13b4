package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"nocturne/src/config"
	"nocturne/src/database"
	"nocturne/src/persona"
	"nocturne/src/session"
)

var (
	chatContext   string
	chatState     string
	chatMode      string
	chatSessionID string
	chatNoHistory bool
)

// chatCmd represents the chat command
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive conversation with the persona",
	Long: `Start an interactive conversation with the persona.

The familiarity tier advances automatically as the conversation grows.
In-chat commands:
  /context <casual|serious|crisis|creative>   switch conversation context
  /state <serene|melancholic|playful|commanding|glitching>
  /mode <standard|nurturing|glitch|intimate>
  /status      show session state
  /history     show the recorded exchanges of this session
  /quit        end the conversation`,
	RunE: runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := loadPersona()
	if err != nil {
		return err
	}
	engine := persona.NewEngine(cfg)

	ctx := context.Background()
	store, err := openSessionStore(ctx)
	if err != nil {
		return err
	}
	registry := session.NewRegistry(store, cfg.Metadata.ID, thresholdsFor(cfg))
	defer registry.Close()

	sess, err := registry.GetOrCreate(ctx, chatSessionID, time.Now())
	if err != nil {
		return err
	}
	if err := applySessionFlags(sess); err != nil {
		return err
	}

	var history *database.HistoryDB
	if !chatNoHistory && viper.GetBool("history.enabled") {
		path := viper.GetString("history.path")
		if path == "" {
			path = config.HistoryDBPath()
		}
		if history, err = database.NewHistoryDB(path); err != nil {
			fmt.Fprintf(os.Stderr, "history unavailable: %v\n", err)
			history = nil
		} else {
			defer history.Close()
		}
	}

	nameStyle := lipgloss.NewStyle().Bold(true)
	if cfg.Display.Color != "" {
		nameStyle = nameStyle.Foreground(lipgloss.Color(cfg.Display.Color))
	}
	dimStyle := lipgloss.NewStyle().Faint(true)
	label := cfg.Metadata.Name
	if cfg.Display.Icon != "" {
		label = cfg.Display.Icon + " " + label
	}

	greeting, err := engine.Greet(sess.Tier, sess.Context, time.Now().Hour())
	if err != nil {
		return err
	}
	fmt.Printf("%s %s\n\n", nameStyle.Render(label+":"), greeting.Text)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(dimStyle.Render("you: "))
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			if strings.Fields(input)[0] == "/history" {
				printSessionHistory(history, sess.ID)
				continue
			}
			done, err := handleChatCommand(ctx, input, sess, registry)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%v\n", err)
				continue
			}
			if done {
				break
			}
			continue
		}

		if err := registry.Touch(ctx, sess, time.Now()); err != nil {
			return err
		}

		reply, err := engine.Respond(persona.Turn{
			Input:   input,
			Tier:    sess.Tier,
			Context: sess.Context,
			State:   sess.State,
			Mode:    sess.Mode,
		})
		if err != nil {
			return err
		}

		fmt.Printf("%s %s\n\n", nameStyle.Render(label+":"), reply.Text)

		if history != nil {
			if err := history.Record(database.Exchange{
				SessionID:  sess.ID,
				Persona:    sess.Persona,
				Tier:       string(sess.Tier),
				Context:    string(sess.Context),
				UserText:   input,
				ReplyText:  reply.Text,
				TemplateID: reply.TemplateID,
				Intensity:  reply.Intensity,
			}); err != nil {
				fmt.Fprintf(os.Stderr, "history: %v\n", err)
			}
		}
	}

	return scanner.Err()
}

func printSessionHistory(history *database.HistoryDB, sessionID string) {
	if history == nil {
		fmt.Println("history is disabled for this conversation")
		return
	}
	exchanges, err := history.RecentBySession(sessionID, 10)
	if err != nil {
		fmt.Fprintf(os.Stderr, "history: %v\n", err)
		return
	}
	if len(exchanges) == 0 {
		fmt.Println("nothing recorded yet")
		return
	}
	for i := len(exchanges) - 1; i >= 0; i-- {
		e := exchanges[i]
		fmt.Printf("[%s] you: %s\n", e.CreatedAt.Format("15:04:05"), e.UserText)
		fmt.Printf("           %s\n", e.ReplyText)
	}
}

// handleChatCommand processes a /command line. Returns true when the
// conversation should end.
func handleChatCommand(ctx context.Context, input string, sess *session.Session, registry *session.Registry) (bool, error) {
	fields := strings.Fields(input)
	switch fields[0] {
	case "/quit", "/exit":
		return true, nil

	case "/status":
		fmt.Printf("session %s  tier=%s context=%s state=%s mode=%s turns=%d\n",
			sess.ID, sess.Tier, sess.Context, sess.State, sess.Mode, sess.Count())
		return false, nil

	case "/context":
		if len(fields) < 2 {
			return false, fmt.Errorf("usage: /context <%s>", strings.Join(contextNames(), "|"))
		}
		c, err := persona.ParseContext(fields[1])
		if err != nil {
			return false, err
		}
		sess.Context = c

	case "/state":
		if len(fields) < 2 {
			return false, fmt.Errorf("usage: /state <%s>", strings.Join(stateNames(), "|"))
		}
		st, err := persona.ParseState(fields[1])
		if err != nil {
			return false, err
		}
		sess.State = st

	case "/mode":
		if len(fields) < 2 {
			return false, fmt.Errorf("usage: /mode <%s>", strings.Join(modeNames(), "|"))
		}
		m, err := persona.ParseMode(fields[1])
		if err != nil {
			return false, err
		}
		sess.Mode = m

	default:
		return false, fmt.Errorf("unknown command %s", fields[0])
	}

	return false, registry.Save(ctx, sess)
}

// applySessionFlags applies the --context/--state/--mode startup flags.
func applySessionFlags(sess *session.Session) error {
	if chatContext != "" {
		c, err := persona.ParseContext(chatContext)
		if err != nil {
			return err
		}
		sess.Context = c
	}
	if chatState != "" {
		st, err := persona.ParseState(chatState)
		if err != nil {
			return err
		}
		sess.State = st
	}
	if chatMode != "" {
		m, err := persona.ParseMode(chatMode)
		if err != nil {
			return err
		}
		sess.Mode = m
	}
	return nil
}

// openSessionStore returns the redis-backed store when configured,
// otherwise in-memory.
func openSessionStore(ctx context.Context) (session.Store, error) {
	if !viper.GetBool("redis.enabled") {
		return session.NewMemoryStore(), nil
	}
	dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return session.NewRedisStore(dialCtx, session.RedisOptions{
		Addr:   viper.GetString("redis.addr"),
		DB:     viper.GetInt("redis.db"),
		Prefix: viper.GetString("redis.prefix"),
		TTL:    time.Duration(viper.GetInt("redis.ttl_minutes")) * time.Minute,
	})
}

func contextNames() []string {
	cs := persona.Contexts()
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = string(c)
	}
	return out
}

func stateNames() []string {
	ss := persona.States()
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = string(s)
	}
	return out
}

func modeNames() []string {
	ms := persona.Modes()
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = string(m)
	}
	return out
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().StringVar(&chatContext, "context", "", "Starting conversation context (casual, serious, crisis, creative)")
	chatCmd.Flags().StringVar(&chatState, "state", "", "Starting emotional state")
	chatCmd.Flags().StringVar(&chatMode, "mode", "", "Starting operational mode")
	chatCmd.Flags().StringVar(&chatSessionID, "session-id", "", "Resume a specific session ID")
	chatCmd.Flags().BoolVar(&chatNoHistory, "no-history", false, "Disable transcript recording for this conversation")
}

package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/go_away_boilerplate/pkg/debug"
	"github.com/baalimago/go_away_boilerplate/pkg/misc"
	"github.com/baalimago/searchchat/internal/agent"
	"github.com/baalimago/searchchat/internal/chat"
	"github.com/baalimago/searchchat/internal/tools"
	"github.com/baalimago/searchchat/internal/utils"
	"github.com/baalimago/searchchat/internal/vendors/groq"
	"golang.org/x/term"
)

const (
	configFileName = "config.json"
	groqFileName   = "groq.json"
	apiKeyEnv      = "GROQ_API_KEY"
)

type Mode int

const (
	HELP Mode = iota
	CHAT
	TOOLS
	VERSION
)

// Config is the application level configuration, as found in config.json.
type Config struct {
	Raw           bool        `json:"raw"`
	Expand        bool        `json:"expand"`
	MaxIterations int         `json:"max-iterations"`
	Username      string      `json:"username"`
	Bound         tools.Bound `json:"bound"`
	WikipediaLang string      `json:"wikipedia-lang"`
}

var DefaultConfig = Config{
	MaxIterations: agent.DefaultMaxIterations,
	Bound:         tools.DefaultBound,
	WikipediaLang: "en",
}

var defaultFlags = Configurations{
	ChatModel:     "",
	PrintRaw:      false,
	Expand:        false,
	MaxIterations: 0,
}

// App is a fully configured chat session, ready to be run.
type App struct {
	session     *chat.Session
	apiKey      string
	interactive bool
	input       *utils.LineReader
}

func getModeFromArgs(args []string) (Mode, error) {
	if len(args) == 0 {
		return CHAT, nil
	}
	switch args[0] {
	case "chat", "c":
		return CHAT, nil
	case "tools", "t":
		return TOOLS, nil
	case "help", "h":
		return HELP, nil
	case "version", "v":
		return VERSION, nil
	default:
		return HELP, fmt.Errorf("unknown command: '%s'", args[0])
	}
}

// loadConfigs returns the application and chat model configurations found in
// confDir, with flag overrides applied.
func loadConfigs(confDir string, flagSet Configurations) (Config, groq.Groq, error) {
	conf, err := utils.LoadConfigFromFile(confDir, configFileName, &DefaultConfig)
	if err != nil {
		return Config{}, groq.Groq{}, fmt.Errorf("failed to load config: %w", err)
	}
	gConf, err := utils.LoadConfigFromFile(confDir, groqFileName, &groq.Default)
	if err != nil {
		return Config{}, groq.Groq{}, fmt.Errorf("failed to load chat model config: %w", err)
	}
	applyFlagOverrides(&conf, &gConf, flagSet, defaultFlags)
	if misc.Truthy(os.Getenv("DEBUG")) {
		ancli.PrintOK(fmt.Sprintf("config: %v\n", debug.IndentedJsonFmt(conf)))
	}
	return conf, gConf, nil
}

func toolsConfig(conf Config) tools.Config {
	return tools.Config{
		Bound:         conf.Bound,
		WikipediaLang: conf.WikipediaLang,
	}
}

// newAgentFactory returns a factory which sets up the chat model using the api
// key and binds it to the lookup tools.
func newAgentFactory(gConf groq.Groq, tConf tools.Config, maxIterations int) chat.AgentFactory {
	return func(ctx context.Context, apiKey string) (chat.Answerer, error) {
		model := gConf
		err := model.Setup(ctx, apiKey)
		if err != nil {
			return nil, &agent.ConfigurationError{Err: err}
		}
		a, err := agent.New(agent.Config{
			Model:               &model,
			Tools:               tools.Init(tConf),
			MaxIterations:       maxIterations,
			HandleParsingErrors: true,
		})
		if err != nil {
			return nil, err
		}
		return a, nil
	}
}

// Setup parses the flags and configuration files, then constructs the chat
// session. Commands which only print something, such as help or tools,
// return utils.ErrUserInitiatedExit once done.
func Setup(usage string, args []string) (*App, error) {
	flagSet, postFlagArgs, err := parseFlags(defaultFlags, args)
	if err != nil {
		return nil, err
	}
	mode, err := getModeFromArgs(postFlagArgs)
	if err != nil {
		return nil, err
	}

	confDir, err := utils.GetConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to find config dir: %w", err)
	}
	if err := utils.LoadTheme(confDir); err != nil {
		ancli.PrintWarn(fmt.Sprintf("failed to load theme, using default. Error: %v\n", err))
	}
	conf, gConf, err := loadConfigs(confDir, flagSet)
	if err != nil {
		return nil, err
	}

	switch mode {
	case HELP:
		fmt.Printf(usage, defaultFlags.PrintRaw, defaultFlags.Expand, agent.DefaultMaxIterations, confDir)
		return nil, utils.ErrUserInitiatedExit
	case VERSION:
		return nil, printVersion(os.Stdout)
	case TOOLS:
		return nil, tools.SubCmd(os.Stdout, tools.Init(toolsConfig(conf)), postFlagArgs)
	case CHAT:
		session := chat.NewSession(chat.Config{
			Factory:  newAgentFactory(gConf, toolsConfig(conf), conf.MaxIterations),
			Raw:      conf.Raw,
			Expand:   conf.Expand,
			Username: conf.Username,
		})
		return &App{
			session:     session,
			apiKey:      os.Getenv(apiKeyEnv),
			interactive: term.IsTerminal(int(os.Stdin.Fd())),
		}, nil
	default:
		return nil, fmt.Errorf("unknown mode: %v", mode)
	}
}

// Run starts the session, prompting for the api key while none is given,
// and then hands over to the interaction loop.
func (a *App) Run(ctx context.Context) error {
	key := a.apiKey
	for {
		err := a.session.Start(ctx, key)
		if err == nil {
			break
		}
		if !errors.Is(err, chat.ErrMissingCredential) {
			return err
		}
		if !a.interactive {
			return fmt.Errorf("no api key found, set %v", apiKeyEnv)
		}
		key, err = utils.ReadSecret("Groq API Key: ")
		if err != nil {
			if errors.Is(err, io.EOF) {
				return utils.ErrUserInitiatedExit
			}
			return err
		}
	}
	if a.input == nil {
		a.input = utils.NewLineReader(os.Stdin)
	}
	return a.session.Run(ctx, a.input.ReadUserInput)
}

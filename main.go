package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/pprof"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/go_away_boilerplate/pkg/misc"
	"github.com/baalimago/go_away_boilerplate/pkg/shutdown"
	"github.com/baalimago/searchchat/internal"
	"github.com/baalimago/searchchat/internal/agent"
	"github.com/baalimago/searchchat/internal/utils"
)

const usage = `searchchat - chat with an agent which searches the web, arxiv and wikipedia

Prerequisites:
  - Set the GROQ_API_KEY environment variable to your Groq API key, or enter it when prompted
  - (Optional) Set the NO_COLOR environment variable to disable ansi color output
  - (Optional) Install glow - https://github.com/charmbracelet/glow for formatted markdown output

Usage: searchchat [flags] [command]

Flags:
  -cm, -chat-model string      Set the chat model to use. (default is found in groq.json)
  -r, -raw bool                Set to true to print raw output (no colors, no glow). (default %v)
  -e, -expand bool             Set to true to show the full thought log of the agent. (default %v)
  -mi, -max-iterations int     Set the maximum amount of reasoning steps per question. (default %v)

Commands:
  c|chat                        Start a chat session (default)
  t|tools [tool-name]           List the available tools, or show details of one
  v|version                     Display the version
  h|help                        Display this help message

Type 'q' or 'quit', or press Ctrl-D, to end a chat session.

Configuration is read from %v (config.json, groq.json, theme.json).

Examples:
  - GROQ_API_KEY=... searchchat
  - searchchat -e -cm llama-3.1-8b-instant
  - searchchat tools wikipedia
`

func main() {
	os.Exit(run(os.Args[1:]))
}

// run searchchat with args and return the exit status code.
func run(args []string) int {
	ancli.SetupSlog()
	if misc.Truthy(os.Getenv("DEBUG_CPU")) {
		f, err := os.Create("cpu_profile.prof")
		if err != nil {
			ancli.PrintErr(fmt.Sprintf("failed to create profiler file: %v", err))
		} else {
			defer f.Close()
			err = pprof.StartCPUProfile(f)
			if err != nil {
				ancli.PrintErr(fmt.Sprintf("failed to start profiler : %v", err))
			}
			defer pprof.StopCPUProfile()
		}
	}

	app, err := internal.Setup(usage, args)
	if err != nil {
		if errors.Is(err, utils.ErrUserInitiatedExit) {
			return 0
		}
		ancli.PrintErr(fmt.Sprintf("failed to setup: %v\n", err))
		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { shutdown.Monitor(cancel) }()
	err = app.Run(ctx)
	if err != nil {
		if errors.Is(err, utils.ErrUserInitiatedExit) {
			ancli.Okf("Seems like you wanted out. Byebye!\n")
			return 0
		}
		var confErr *agent.ConfigurationError
		if errors.As(err, &confErr) {
			// Already presented by the session
			return 1
		}
		ancli.PrintErr(fmt.Sprintf("failed to run: %v\n", err))
		return 1
	}
	if misc.Truthy(os.Getenv("DEBUG")) {
		ancli.PrintOK("things seems to have worked out. Bye bye!\n")
	}
	return 0
}

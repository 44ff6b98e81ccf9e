package internal

import (
	"flag"
	"fmt"

	"github.com/baalimago/searchchat/internal/utils"
	"github.com/baalimago/searchchat/internal/vendors/groq"
)

type Configurations struct {
	ChatModel     string
	PrintRaw      bool
	Expand        bool
	MaxIterations int
}

// parseFlags parses CLI flags into an internal Configurations. The remaining
// positional arguments are returned as-is.
func parseFlags(defaults Configurations, args []string) (Configurations, []string, error) {
	fs := flag.NewFlagSet("searchchat", flag.ContinueOnError)

	cmShort := fs.String("cm", defaults.ChatModel, "Set the chat model to use. Mutually exclusive with chat-model flag.")
	cmLong := fs.String("chat-model", defaults.ChatModel, "Set the chat model to use. Mutually exclusive with cm flag.")

	printRawShort := fs.Bool("r", defaults.PrintRaw, "Set to true to print raw output (no colors, don't attempt to use 'glow').")
	printRawLong := fs.Bool("raw", defaults.PrintRaw, "Set to true to print raw output (no colors, don't attempt to use 'glow').")

	expandShort := fs.Bool("e", defaults.Expand, "Set to true to show the full thought log of the agent.")
	expandLong := fs.Bool("expand", defaults.Expand, "Set to true to show the full thought log of the agent.")

	miShort := fs.Int("mi", defaults.MaxIterations, "Set the maximum amount of reasoning steps per question. Mutually exclusive with max-iterations flag.")
	miLong := fs.Int("max-iterations", defaults.MaxIterations, "Set the maximum amount of reasoning steps per question. Mutually exclusive with mi flag.")

	err := fs.Parse(args)
	if err != nil {
		return Configurations{}, []string{}, fmt.Errorf("failed to parse args: %w", err)
	}

	chatModel, err := utils.ReturnNonDefault(*cmShort, *cmLong, defaults.ChatModel)
	if err != nil {
		return Configurations{}, []string{}, flagError(err, "cm", "chat-model")
	}
	maxIterations, err := utils.ReturnNonDefault(*miShort, *miLong, defaults.MaxIterations)
	if err != nil {
		return Configurations{}, []string{}, flagError(err, "mi", "max-iterations")
	}
	if maxIterations < 0 {
		return Configurations{}, []string{}, fmt.Errorf("max-iterations must be positive, got: %v", maxIterations)
	}

	return Configurations{
		ChatModel:     chatModel,
		PrintRaw:      *printRawShort || *printRawLong,
		Expand:        *expandShort || *expandLong,
		MaxIterations: maxIterations,
	}, fs.Args(), nil
}

// applyFlagOverrides follows the convention flags > file > default. A flag
// only overwrites the file configuration if it's been set to something other
// than its default.
func applyFlagOverrides(conf *Config, gConf *groq.Groq, flagSet, defaultFlags Configurations) {
	if flagSet.ChatModel != defaultFlags.ChatModel {
		gConf.Model = flagSet.ChatModel
	}
	if flagSet.PrintRaw != defaultFlags.PrintRaw {
		conf.Raw = flagSet.PrintRaw
	}
	if flagSet.Expand != defaultFlags.Expand {
		conf.Expand = flagSet.Expand
	}
	if flagSet.MaxIterations != defaultFlags.MaxIterations {
		conf.MaxIterations = flagSet.MaxIterations
	}
}

func flagError(err error, shortFlag, longFlag string) error {
	if err.Error() == "values are mutually exclusive" {
		return fmt.Errorf("flags: '%v' and '%v' are mutually exclusive", shortFlag, longFlag)
	}
	return fmt.Errorf("unexpected flag error: %w", err)
}

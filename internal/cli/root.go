// Package cli implements the textchunk command line tool.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/botirk38/textchunker"
	"github.com/botirk38/textchunker/logger"
	"github.com/botirk38/textchunker/options"
	"github.com/botirk38/textchunker/tokenizer"
	"github.com/botirk38/textchunker/types"
)

const envPrefix = "TEXTCHUNK"

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// NewRootCmd builds the command tree with its own configuration state.
func NewRootCmd() *cobra.Command {
	v := viper.New()
	var cfgFile string

	root := &cobra.Command{
		Use:          "textchunk",
		Short:        "textchunk splits documents into token-bounded, overlapping chunks",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(v, cfgFile)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "config file (yaml, json or toml)")
	flags.String("counter", string(types.CounterTiktoken), "token counter: tiktoken, openai, anthropic or gemini")
	flags.String("encoding", tokenizer.DefaultEncoding, "tiktoken encoding for the tiktoken counter")
	flags.String("model", "", "model name for the openai, anthropic and gemini counters")
	flags.String("api-key", "", "API key for the anthropic and gemini counters")
	flags.Int("count-cache", 0, "memoize up to this many token counts (0 disables)")
	flags.String("log-level", string(logger.WarnLevel), "log level: debug, info, warn, error or disabled")
	flags.Bool("log-json", false, "write logs as JSON")

	for _, name := range []string{"counter", "encoding", "model", "api-key", "count-cache", "log-level", "log-json"} {
		_ = v.BindPFlag(name, flags.Lookup(name))
	}

	root.AddCommand(newChunkCmd(v), newCountCmd(v))
	return root
}

// loadConfig reads the optional config file and environment.
// Precedence: flags > environment > config file > defaults.
func loadConfig(v *viper.Viper, cfgFile string) error {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if cfgFile == "" {
		return nil
	}
	v.SetConfigFile(cfgFile)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to load config: %w", err)
	}
	return nil
}

func newLogger(v *viper.Viper, out io.Writer) logger.Logger {
	return logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(v.GetString("log-level")),
		Output:     out,
		JSON:       v.GetBool("log-json"),
		TimeFormat: "15:04:05",
	})
}

// counterOption maps the --counter family to the option that builds it.
func counterOption(v *viper.Viper) (options.Option, error) {
	model := v.GetString("model")
	switch types.CounterType(strings.ToLower(v.GetString("counter"))) {
	case types.CounterTiktoken, "":
		return options.WithTiktokenEncoding(v.GetString("encoding")), nil
	case types.CounterOpenAI:
		return options.WithOpenAIModel(model), nil
	case types.CounterAnthropic:
		return options.WithAnthropicCounter(v.GetString("api-key"), model), nil
	case types.CounterGemini:
		return options.WithGeminiCounter(v.GetString("api-key"), model), nil
	default:
		return nil, fmt.Errorf("unknown counter %q", v.GetString("counter"))
	}
}

// newChunker builds a TextChunker from the shared flags plus extra.
func newChunker(v *viper.Viper, log logger.Logger, extra ...options.Option) (*textchunker.TextChunker, error) {
	counter, err := counterOption(v)
	if err != nil {
		return nil, err
	}
	opts := []options.Option{counter, options.WithLogger(log)}
	if n := v.GetInt("count-cache"); n > 0 {
		opts = append(opts, options.WithCountCache(n))
	}
	return textchunker.New(append(opts, extra...)...)
}

// readInput concatenates the named files, or reads stdin when there are none.
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}

	var sb strings.Builder
	for i, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.Write(data)
	}
	return sb.String(), nil
}

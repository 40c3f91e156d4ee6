package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/botirk38/textchunker/backends"
	"github.com/botirk38/textchunker/chunker"
	"github.com/botirk38/textchunker/options"
	"github.com/botirk38/textchunker/types"
)

// chunkSeparator is printed between chunks in text output.
const chunkSeparator = "\n---\n"

func newChunkCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chunk [file...]",
		Short: "Split files (or stdin) into chunks",
		Long: `Split text into chunks close to a goal length in tokens. Chunks never
exceed 1.25 times the goal and, unless --no-overlap is set, each shares a
short span of text with its neighbours.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			log := newLogger(v, cmd.ErrOrStderr())
			opts := []options.Option{
				options.WithGoalLength(v.GetInt("goal")),
				options.WithStrategy(chunker.ChunkStrategy(v.GetString("strategy"))),
			}
			if v.GetBool("no-overlap") {
				opts = append(opts, options.WithoutOverlap())
			} else {
				opts = append(opts, options.WithOverlapPercent(v.GetInt("overlap")))
			}
			if v.GetBool("nfc") {
				opts = append(opts, options.WithUnicodeNormalization())
			}
			if v.GetBool("ascii-only") {
				opts = append(opts, options.WithASCIIOnly())
			}
			cacheOpt, err := cacheOption(v)
			if err != nil {
				return err
			}
			if cacheOpt != nil {
				opts = append(opts, cacheOpt)
			}

			tc, err := newChunker(v, log, opts...)
			if err != nil {
				return err
			}
			defer tc.Close()

			var chunks []chunker.Chunk
			if v.GetBool("html") {
				chunks, err = tc.ChunkHTML(cmd.Context(), strings.NewReader(text))
			} else {
				chunks, err = tc.Chunk(cmd.Context(), text)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if v.GetBool("json") {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(chunks)
			}
			for i, c := range chunks {
				if i > 0 {
					fmt.Fprint(out, chunkSeparator)
				}
				fmt.Fprintln(out, c.Text)
			}
			return nil
		},
	}

	defaults := chunker.DefaultChunkConfig()
	flags := cmd.Flags()
	flags.IntP("goal", "g", defaults.GoalLength, "goal chunk length in tokens")
	flags.IntP("overlap", "o", defaults.OverlapPercent, "overlap as a percentage of the goal (10-100)")
	flags.Bool("no-overlap", false, "produce chunks that share no text")
	flags.String("strategy", string(defaults.Strategy), "chunking strategy: goal_length or fixed_overlap")
	flags.Bool("html", false, "treat input as HTML and chunk its readable text")
	flags.Bool("json", false, "print chunks as JSON")
	flags.Bool("nfc", false, "compose text to Unicode NFC before chunking")
	flags.Bool("ascii-only", false, "drop characters outside basic ASCII before chunking")
	flags.String("cache", "", "result cache: lru, fifo, lfu or redis (default redis when --redis is set)")
	flags.Int("cache-size", 1000, "capacity of an in-memory result cache")
	flags.Duration("cache-ttl", 0, "how long cached results stay valid (0 keeps them until evicted)")
	flags.String("redis", "", "cache results in Redis at this address or redis:// URL")
	flags.Int("redis-db", 0, "Redis database for the result cache")

	for _, name := range []string{"goal", "overlap", "no-overlap", "strategy", "html", "json", "nfc", "ascii-only", "cache", "cache-size", "cache-ttl", "redis", "redis-db"} {
		_ = v.BindPFlag(name, flags.Lookup(name))
	}
	return cmd
}

// cacheOption builds the result cache selected by --cache and --redis, or
// returns nil when caching is off.
func cacheOption(v *viper.Viper) (options.Option, error) {
	name := v.GetString("cache")
	if name == "" {
		if v.GetString("redis") == "" {
			return nil, nil
		}
		name = string(types.BackendRedis)
	}
	backendType, err := backends.ParseBackendType(name)
	if err != nil {
		return nil, err
	}
	return options.WithBackend(backendType, types.BackendConfig{
		Capacity:         v.GetInt("cache-size"),
		TTL:              v.GetDuration("cache-ttl"),
		ConnectionString: v.GetString("redis"),
		Database:         v.GetInt("redis-db"),
	}), nil
}

package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	configfile "github.com/arkive-labs/arkive-cli/internal/adapters/driven/config/file"
)

// sensitiveKeys are masked when printed.
var sensitiveKeys = map[string]bool{
	"ai.api_key": true,
}

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Show or change configuration",
	Long: `Without arguments, prints the configuration file location and every
stored key. With a key, prints its value. With a key and a value, stores
the value.

Common keys: ai.provider (openai or ollama), ai.api_key, ai.base_url,
ai.model, ai.embedding_model, ask.score_threshold, scan.ignore_dirs
(comma-separated).`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	baseDir, err := resolveBaseDir()
	if err != nil {
		return err
	}
	cfg, err := configfile.NewConfigStore(baseDir)
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}

	switch len(args) {
	case 0:
		cmd.Printf("Config file: %s\n", cfg.Path())
		keys := cfg.Keys()
		if len(keys) == 0 {
			cmd.Println("No keys set.")
			return nil
		}
		sort.Strings(keys)
		for _, key := range keys {
			val, _ := cfg.Get(key)
			if sensitiveKeys[key] {
				val = maskValue(fmt.Sprint(val))
			}
			cmd.Printf("%s = %v\n", key, val)
		}
		return nil

	case 1:
		val, ok := cfg.Get(args[0])
		if !ok {
			return fmt.Errorf("key %q is not set", args[0])
		}
		cmd.Printf("%v\n", val)
		return nil

	default:
		if err := cfg.Set(args[0], parseConfigValue(args[0], args[1])); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		cmd.Printf("Set %s\n", args[0])
		return nil
	}
}

// parseConfigValue keeps numeric settings numeric in the TOML file and
// splits list settings on commas.
func parseConfigValue(key, raw string) any {
	if key == "scan.ignore_dirs" {
		parts := strings.Split(raw, ",")
		dirs := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				dirs = append(dirs, p)
			}
		}
		return dirs
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}

func maskValue(v string) string {
	if len(v) <= 4 {
		return "****"
	}
	return "****" + v[len(v)-4:]
}

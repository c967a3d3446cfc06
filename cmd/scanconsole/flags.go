package main

import (
	"flag"
	"fmt"
	"os"
)

type AppFlags struct {
	TargetURL        string
	Prompt           string
	GlobalConfigFile string
	EnvFile          string
	Serve            bool
	Health           bool
	NoColor          bool
}

func ParseFlags() AppFlags {
	targetURL := flag.String("url", "", "Website URL to scan (http://, https:// or www.)")
	targetURLAlias := flag.String("u", "", "Alias for -url")

	prompt := flag.String("prompt", "", "Instruction sent along with the URL. Defaults to the configured scan prompt.")
	promptAlias := flag.String("p", "", "Alias for -prompt")

	globalConfigFile := flag.String("globalconfig", "", "Path to the global YAML/JSON configuration file. If not set, searches default locations.")
	globalConfigFileAlias := flag.String("gc", "", "Alias for -globalconfig")

	envFile := flag.String("env", "", "Path to a .env file loaded before configuration (default: ./.env if present)")

	serve := flag.Bool("serve", false, "Run the web console instead of a single terminal scan")
	serveAlias := flag.Bool("s", false, "Alias for -serve")

	health := flag.Bool("health", false, "Check the scanning service health endpoint and exit")
	noColor := flag.Bool("no-color", false, "Render terminal results without ANSI styling")

	flag.Parse()

	flags := AppFlags{
		EnvFile: *envFile,
		Serve:   *serve || *serveAlias,
		Health:  *health,
		NoColor: *noColor,
	}

	if *targetURL != "" {
		flags.TargetURL = *targetURL
	} else if *targetURLAlias != "" {
		flags.TargetURL = *targetURLAlias
	}

	if *prompt != "" {
		flags.Prompt = *prompt
	} else if *promptAlias != "" {
		flags.Prompt = *promptAlias
	}

	if *globalConfigFile != "" {
		flags.GlobalConfigFile = *globalConfigFile
	} else if *globalConfigFileAlias != "" {
		flags.GlobalConfigFile = *globalConfigFileAlias
	}

	if flags.Serve && flags.TargetURL != "" {
		fmt.Fprintln(os.Stderr, "[FATAL] -url cannot be combined with -serve; enter the URL in the console instead")
		os.Exit(2)
	}

	return flags
}

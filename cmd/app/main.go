package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"mython/internal/history"
	"mython/internal/interp"
	"mython/internal/repl"
	"mython/internal/util"
)

var (
	// Version is the current version of the mython binary.
	Version   = "dev"
	BuildDate = "unknown"
	Commit    = "unknown"

	help    bool
	version bool
	// logging
	logLevel string
	logFile  string
	// config vars
	configPath string
	noHistory  bool
)

func init() {
	flag.BoolVar(&help, "help", false, "Display help information and exit")
	flag.BoolVar(&help, "h", false, "Display help information and exit")
	flag.BoolVar(&version, "version", false, "Display version information and exit")
	flag.BoolVar(&version, "v", false, "Display version information and exit")
	// interpreter config
	flag.StringVar(&configPath, "config", "", "Path to a TOML configuration file")
	flag.BoolVar(&noHistory, "no-history", false, "Disable persistent REPL history")
	// log config
	flag.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flag.StringVar(&logFile, "log-file", "", "Log file path (if not set, logs to stderr)")
}

func main() {
	flag.Parse()

	if version {
		printVersion()
		return
	}
	if help {
		printHelp()
		return
	}

	config, err := util.LoadConfiguration(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	config.Version = Version
	config.BuildDate = BuildDate
	config.Commit = Commit
	if logLevel != "" {
		config.LogLevel = logLevel
	}
	if logFile != "" {
		config.LogFile = logFile
	}

	loggerOptions := &slog.HandlerOptions{
		AddSource: false,
		Level:     logLevelFromString(config.LogLevel),
	}
	logWriter := configureLogWriter(config.LogFile)
	slog.SetDefault(slog.New(slog.NewJSONHandler(logWriter, loggerOptions)))

	if fileName := flag.Arg(0); fileName != "" {
		runFile(fileName)
		return
	}
	runRepl(config)
}

func runFile(fileName string) {
	src, err := os.ReadFile(fileName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read %s: %v\n", fileName, err)
		os.Exit(1)
	}
	if err := interp.Run(string(src), os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", fileName, err)
		os.Exit(1)
	}
}

func runRepl(config util.Configuration) {
	var store *history.Store
	if !noHistory {
		var err error
		store, err = history.Open(config.HistoryPath)
		if err != nil {
			slog.Warn("history disabled",
				slog.String("path", config.HistoryPath),
				slog.Any("error", err))
			store = nil
		}
		defer store.Close()
	}
	if err := repl.Run(store, config.HistoryLimit); err != nil {
		fmt.Fprintf(os.Stderr, "repl failed: %v\n", err)
		os.Exit(1)
	}
}

func configureLogWriter(logFile string) *os.File {
	if logFile == "" {
		return os.Stderr
	}
	if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create log directory for '%s': %v; falling back to stderr\n", logFile, err)
		return os.Stderr
	}
	logWriter, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open log file '%s': %v; falling back to stderr\n", logFile, err)
		return os.Stderr
	}
	return logWriter
}

func printVersion() {
	fmt.Printf("mython version 'v%s' %s %s\n", Version, BuildDate, Commit)
}

func printHelp() {
	fmt.Printf(`Usage: mython [options] [filename]

Options:
  -config <path>     Path to a TOML configuration file.
  -no-history        Disable persistent REPL history.
  -help              Display this help information and exit.
  -version           Display version information and exit.
  -log-level <level> Set the log level: debug, info, warn, error. Default is 'error'.
  -log-file <path>   Specify a log file to write logs. Default is stderr.

Details:
This is the mython interpreter: with a filename it executes the script,
without one it starts the interactive REPL.

Examples:
  mython                        Start the REPL
  mython script.my              Execute the provided script
  mython -log-level=debug       Start with debug logging enabled

Version Information:
  Version:    %s
  Build Date: %s
  Commit:     %s
`, Version, BuildDate, Commit)
}

func logLevelFromString(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelError
	}
}

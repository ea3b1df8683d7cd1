// Copyright 2025 The WordServe Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the wordguard dictionary compiler, msgpack IPC server
and CLI [DBG] application.

wordguard finds and replaces words from a large dictionary in UTF-8 text. The
dictionary is compiled once into a binary trie that stays on disk; only the
first character level is held in memory.

# Usage

Compile a word list of "word<TAB>value" lines:

	wordguard -build words.txt -o data/dict.bin

Start the IPC server with the dictionary from the config file:

	wordguard

Check text interactively:

	wordguard -c -dict data/dict.bin

# Configuration

Runtime configuration lives in wordguard.toml inside the user config dir and
is created with defaults when missing:

	[dict]
	path = "data/dict.bin"
	mmap = false
	cache_entries = 4096
	normalize = false

	[build]
	source_encoding = "utf-8"
	strict = false

	[filter]
	stop_chars = ",.? "
	replacement = "***"

	[server]
	max_text_len = 65536

Flags override the file.

# IPC Protocol

The server reads msgpack maps from stdin and writes one msgpack response per
request to stdout:

	{"id": "1", "a": "search", "t": "some text"}
	{"id": "2", "a": "replace", "t": "some text", "to": "***"}
	{"id": "3", "a": "info"}

See package server for the response formats.

# Command Line Flags

	-build string
	    Word list to compile (enables build mode)
	-o string
	    Output path for -build (default: dict.path from config)
	-dict string
	    Compiled dictionary to open (default: dict.path from config)
	-config string
	    Custom config file path
	-c  Run CLI mode instead of server mode
	-value
	    CLI: replace hits with their dictionary values
	-mmap
	    Memory map the dictionary
	-strict
	    Fail the build on malformed word list lines
	-encoding string
	    Word list encoding: utf-8, latin1, windows-1252
	-rebuild-config
	    Rewrite the default config file and exit
	-d  Enable debug mode with detailed logging
	-version
	    Show current version
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/bastiangx/wordguard"
	"github.com/bastiangx/wordguard/internal/cli"
	"github.com/bastiangx/wordguard/internal/logger"
	"github.com/bastiangx/wordguard/internal/utils"
	"github.com/bastiangx/wordguard/pkg/config"
	"github.com/bastiangx/wordguard/pkg/dictionary"
	"github.com/bastiangx/wordguard/pkg/server"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

const (
	Version = "0.1.0-beta"
	AppName = "wordguard"
	gh      = "https://github.com/bastiangx/wordguard"
)

// sigHandler is a simple handler for OS signals to exit normally.
func sigHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

// main only manages the flow between build, CLI and server modes.
func main() {
	sigHandler()

	showVersion := flag.Bool("version", false, "Show current version")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing and debugging")
	configFile := flag.String("config", "", "Custom config file path")
	dictPath := flag.String("dict", "", "Compiled dictionary to open (default from config)")
	buildInput := flag.String("build", "", "Word list (word<TAB>value lines) to compile")
	buildOutput := flag.String("o", "", "Output path for -build (default from config)")
	useMmap := flag.Bool("mmap", false, "Memory map the dictionary file")
	strict := flag.Bool("strict", false, "Fail the build on malformed word list lines")
	encoding := flag.String("encoding", "", "Word list encoding: utf-8, latin1, windows-1252")
	useValue := flag.Bool("value", false, "CLI: replace hits with their dictionary values")
	rebuildConfig := flag.Bool("rebuild-config", false, "Rewrite the default config file and exit")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if *debugMode {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
	} else {
		log.SetLevel(log.WarnLevel)
	}

	if *rebuildConfig {
		path, err := config.RebuildConfigFile()
		if err != nil {
			log.Fatalf("Failed to rebuild config: %v", err)
		}
		log.Printf("Wrote default config to %s", path)
		return
	}

	cfg, cfgPath, err := config.LoadConfigWithPriority(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Debugf("Using config: %s", config.GetActiveConfigPath(cfgPath))

	// flags win over the config file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "mmap":
			cfg.Dict.Mmap = *useMmap
		case "strict":
			cfg.Build.Strict = *strict
		case "encoding":
			cfg.Build.SourceEncoding = *encoding
		}
	})

	if *buildInput != "" {
		output := *buildOutput
		if output == "" {
			output = cfg.Dict.Path
		}
		runBuild(*buildInput, output, cfg)
		return
	}

	pathResolver, err := utils.NewPathResolver()
	if err != nil {
		log.Fatalf("Failed to initialize path resolver: %v", err)
	}
	log.Debugf("Config dir: %s", pathResolver.GetConfigDir())
	requested := cfg.Dict.Path
	if *dictPath != "" {
		requested = *dictPath
	}
	resolved, err := pathResolver.ResolveDictPath(requested)
	if err != nil {
		log.Error("Dictionary not found", "path", requested)
		for k, v := range pathResolver.GetRuntimeInfo() {
			log.Debug("runtime", k, v)
		}
		log.Print("Compile one first: wordguard -build words.txt -o " + requested)
		os.Exit(1)
	}
	if err := dictionary.ValidateFileFormat(resolved, dictionary.FormatTrie); err != nil {
		log.Warnf("Dictionary check: %v", err)
	}

	dict, err := wordguard.OpenWithFilter(resolved, cfg.OpenOptions(), cfg.FilterOptions())
	if err != nil {
		log.Fatalf("Failed to open dictionary: %v", err)
	}
	defer dict.Close()
	log.Debug("Dictionary opened", "path", resolved, "mmap", cfg.Dict.Mmap, "cache", cfg.Dict.CacheEntries)

	// CLI would be mainly used for testing and dbg purposes.
	if *cliMode {
		log.SetReportTimestamp(false)
		handler := cli.NewInputHandler(dict, cfg.Filter.Replacement, *useValue, os.Stdin, os.Stderr)
		if err := handler.Start(); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		return
	}

	showStartupInfo(dict.Dict().Path(), dict.Stats())
	srv := server.NewServer(dict, cfg)
	if err := srv.Start(); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}

// runBuild compiles a word list and reports what went into it.
func runBuild(input, output string, cfg *config.Config) {
	l := logger.New("build")
	if format, err := dictionary.DetectFileFormat(input); err == nil && format == dictionary.FormatTrie {
		info, _ := dictionary.GetFormatInfo(format)
		l.Fatalf("%s is already a %s", input, info.Description)
	}
	if err := utils.EnsureDir(filepath.Dir(output)); err != nil {
		l.Fatalf("Failed to create output dir: %v", err)
	}

	stats, err := dictionary.Make(input, output, cfg.SourceOptions()...)
	if err != nil {
		l.Fatalf("Build failed: %v", err)
	}
	l.Info("Dictionary built",
		"output", output,
		"words", utils.FormatWithCommas(stats.Words),
		"nodes", utils.FormatWithCommas(stats.Nodes),
		"bytes", utils.FormatWithCommas(int(stats.Bytes)))
}

func printVersion() {
	banner := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
		Prefix:          "",
	})

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	banner.SetStyles(styles)

	banner.Print("")
	banner.Print("[ wordguard ] Finds and replaces dictionary words in text")
	banner.Print("", "version", Version)
	banner.Print("")
	banner.Print("use -h or --help to see available options")
	banner.Print("Github Repo", "gh", gh)
}

// showStartupInfo displays some basic info about the dictionary on stderr.
func showStartupInfo(path string, stats map[string]int) {
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	log.Infof("%s %s", AppName, Version)
	log.Infof("Process ID: [ %d ]", os.Getpid())
	log.Infof("dictionary: ( %s )", path)
	log.Infof("roots: %d, record width: %d, file: %s bytes",
		stats["rootEntries"], stats["recordWidth"], utils.FormatWithCommas(stats["fileBytes"]))
	log.Info("status: ready")

	log.SetLevel(currentLevel)
}

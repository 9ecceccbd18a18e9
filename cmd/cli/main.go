package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"probrowse/internal/cli/command"
	"probrowse/internal/cli/config"
	httpclient "probrowse/internal/cli/http"
	"probrowse/internal/cli/repl"
	"probrowse/internal/cli/state"
)

const defaultConfigPath = "configs/cli.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "Path to config file")
	browseURL := flag.String("browse", "", "Override browse service URL")
	syncURL := flag.String("sync", "", "Override sync service URL")
	timeout := flag.Duration("timeout", 0, "Override HTTP timeout (e.g. 10s)")
	token := flag.String("token", "", "Override access token")
	statePath := flag.String("state", "", "Override token state path")
	pretty := flag.Bool("pretty", false, "Pretty print JSON response")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		return
	}
	if *browseURL != "" {
		cfg.BrowseURL = *browseURL
	}
	if *syncURL != "" {
		cfg.SyncURL = *syncURL
	}
	if *timeout > 0 {
		cfg.Timeout = *timeout
	}
	if *statePath != "" {
		cfg.TokenStatePath = *statePath
	}
	if *pretty {
		trueValue := true
		cfg.PrettyJSON = &trueValue
	}

	tokenState, err := state.Load(cfg.TokenStatePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load token state failed: %v\n", err)
		return
	}
	if *token != "" {
		tokenState.AccessToken = *token
	}

	tokenProvider := func() string {
		return tokenState.AccessToken
	}
	browseClient := httpclient.New(cfg.BrowseURL, cfg.Timeout, tokenProvider)
	syncClient := httpclient.New(cfg.SyncURL, cfg.Timeout, tokenProvider)

	session := repl.New(
		browseClient,
		syncClient,
		command.Registry(),
		&tokenState,
		cfg.TokenStatePath,
		cfg.HistoryPath,
		cfg.PrettyJSON != nil && *cfg.PrettyJSON,
	)
	session.Run(context.Background())
}

package repl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"probrowse/internal/cli/command"
	httpclient "probrowse/internal/cli/http"
	"probrowse/internal/cli/state"

	"github.com/chzyer/readline"
	"github.com/google/shlex"
)

// Session holds REPL state.
type Session struct {
	browseClient *httpclient.Client
	syncClient   *httpclient.Client
	commands     map[string]command.Command
	tokenState   *state.TokenState
	statePath    string
	historyPath  string
	prettyJSON   bool
}

func New(
	browseClient *httpclient.Client,
	syncClient *httpclient.Client,
	commands map[string]command.Command,
	tokenState *state.TokenState,
	statePath string,
	historyPath string,
	prettyJSON bool,
) *Session {
	return &Session{
		browseClient: browseClient,
		syncClient:   syncClient,
		commands:     commands,
		tokenState:   tokenState,
		statePath:    statePath,
		historyPath:  historyPath,
		prettyJSON:   prettyJSON,
	}
}

// Run reads and executes commands until EOF or exit.
func (s *Session) Run(ctx context.Context) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "probrowse> ",
		HistoryFile:     s.historyPath,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		s.printLine("init readline failed: %v", err)
		return
	}
	defer func() { _ = rl.Close() }()

	for {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			if errors.Is(err, io.EOF) {
				s.printLine("bye")
				return
			}
			s.printLine("read input failed: %v", err)
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if s.handleSystemCommand(line) {
			continue
		}
		if err := s.handleCommand(ctx, rl, line); err != nil {
			s.printLine("error: %v", err)
		}
	}
}

func (s *Session) handleSystemCommand(line string) bool {
	switch line {
	case "exit", "quit":
		s.printLine("bye")
		os.Exit(0)
	case "help":
		s.printHelp()
		return true
	}
	if strings.HasPrefix(line, "set ") {
		s.handleSet(strings.TrimSpace(strings.TrimPrefix(line, "set ")))
		return true
	}
	if strings.HasPrefix(line, "show ") {
		s.handleShow(strings.TrimSpace(strings.TrimPrefix(line, "show ")))
		return true
	}
	return false
}

func (s *Session) handleSet(args string) {
	parts := strings.Fields(args)
	if len(parts) == 0 {
		s.printLine("usage: set browse|sync|token|timeout")
		return
	}
	switch parts[0] {
	case "browse":
		if len(parts) < 2 {
			s.printLine("usage: set browse http://127.0.0.1:8080")
			return
		}
		s.browseClient.SetBaseURL(parts[1])
		s.printLine("browse base set to %s", parts[1])
	case "sync":
		if len(parts) < 2 {
			s.printLine("usage: set sync http://127.0.0.1:8081")
			return
		}
		s.syncClient.SetBaseURL(parts[1])
		s.printLine("sync base set to %s", parts[1])
	case "timeout":
		if len(parts) < 2 {
			s.printLine("usage: set timeout 10s")
			return
		}
		dur, err := time.ParseDuration(parts[1])
		if err != nil {
			s.printLine("invalid duration: %v", err)
			return
		}
		s.browseClient.SetTimeout(dur)
		s.syncClient.SetTimeout(dur)
		s.printLine("timeout set to %s", dur)
	case "token":
		if len(parts) < 2 {
			s.printLine("usage: set token <access_token>")
			return
		}
		s.tokenState.AccessToken = parts[1]
		if err := state.Save(s.statePath, *s.tokenState); err != nil {
			s.printLine("save token failed: %v", err)
			return
		}
		s.printLine("token updated")
	default:
		s.printLine("unknown set command")
	}
}

func (s *Session) handleShow(args string) {
	switch args {
	case "token":
		if s.tokenState.AccessToken == "" {
			s.printLine("token: <empty>")
			return
		}
		token := s.tokenState.AccessToken
		if len(token) > 12 {
			token = token[:6] + "..." + token[len(token)-4:]
		}
		s.printLine("token: %s", token)
	case "config":
		s.printLine("browse: %s", s.browseClient.BaseURL())
		s.printLine("sync: %s", s.syncClient.BaseURL())
		s.printLine("tokenStatePath: %s", s.statePath)
	default:
		s.printLine("usage: show token|config")
	}
}

func (s *Session) handleCommand(ctx context.Context, rl *readline.Instance, line string) error {
	tokens, err := shlex.Split(line)
	if err != nil {
		return fmt.Errorf("parse command failed: %w", err)
	}
	if len(tokens) < 2 {
		return fmt.Errorf("invalid command, use: <service> <action> key=value ...")
	}
	service := tokens[0]
	action := tokens[1]
	key := fmt.Sprintf("%s %s", service, action)
	cmd, ok := s.commands[key]
	if !ok {
		return fmt.Errorf("unknown command: %s %s", service, action)
	}
	params := command.Params{}
	for _, token := range tokens[2:] {
		parts := strings.SplitN(token, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid param: %s", token)
		}
		params.Set(parts[0], parts[1])
	}

	if err := s.promptMissing(rl, cmd, params); err != nil {
		return err
	}
	req, err := command.BuildRequest(cmd, params)
	if err != nil {
		return err
	}
	resp, err := s.clientFor(cmd).Do(ctx, req.Method, req.Path, nil, req.Body)
	if err != nil {
		return err
	}
	s.renderResponse(resp)
	return nil
}

func (s *Session) clientFor(cmd command.Command) *httpclient.Client {
	if cmd.Target == command.TargetSync {
		return s.syncClient
	}
	return s.browseClient
}

func (s *Session) promptMissing(rl *readline.Instance, cmd command.Command, params command.Params) error {
	for _, field := range cmd.Fields {
		if !field.Required {
			continue
		}
		if params.Has(field.Name) && params.Get(field.Name) != "" {
			continue
		}
		rl.SetPrompt(field.Prompt + ": ")
		line, err := rl.Readline()
		rl.SetPrompt("probrowse> ")
		if err != nil {
			return fmt.Errorf("read input failed: %w", err)
		}
		params.Set(field.Name, strings.TrimSpace(line))
	}
	return nil
}

func (s *Session) renderResponse(resp httpclient.ResponseInfo) {
	s.printLine("HTTP %d (%s)", resp.StatusCode, resp.Duration)
	if len(resp.Body) == 0 {
		return
	}
	if s.prettyJSON {
		var raw interface{}
		if err := json.Unmarshal(resp.Body, &raw); err == nil {
			formatted, _ := json.MarshalIndent(raw, "", "  ")
			s.printLine("%s", string(formatted))
			return
		}
	}
	s.printLine("%s", string(resp.Body))
}

func (s *Session) printHelp() {
	s.printLine("usage: <service> <action> key=value ...")
	s.printLine("system: help | exit | set browse|sync|timeout|token | show token|config")
	s.printLine("examples:")
	s.printLine("  problem list user=tourist status=untouched sort=difficulty order=desc")
	s.printLine("  user recommend user=tourist band=difficult exclude=solved count=5")
	s.printLine("  user prefs-set user=tourist band=moderate exclude=2weeks count=10")
	s.printLine("  sync catalog")
	s.printLine("  sync user user=tourist")
}

func (s *Session) printLine(format string, args ...interface{}) {
	fmt.Printf(format+"\n", args...)
}

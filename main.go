package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ldevreaux/gambit/agent"
	"github.com/ldevreaux/gambit/board"
	"github.com/ldevreaux/gambit/config"
	"github.com/ldevreaux/gambit/fastpath"
	"github.com/ldevreaux/gambit/intent"
	"github.com/ldevreaux/gambit/ipc"
	"github.com/ldevreaux/gambit/match"
	"github.com/ldevreaux/gambit/record"
)

const banner = `
 ██████╗  █████╗ ███╗   ███╗██████╗ ██╗████████╗
██╔════╝ ██╔══██╗████╗ ████║██╔══██╗██║╚══██╔══╝
██║  ███╗███████║██╔████╔██║██████╔╝██║   ██║
██║   ██║██╔══██║██║╚██╔╝██║██╔══██╗██║   ██║
╚██████╔╝██║  ██║██║ ╚═╝ ██║██████╔╝██║   ██║
 ╚═════╝ ╚═╝  ╚═╝╚═╝     ╚═╝╚═════╝ ╚═╝   ╚═╝

Intent-Driven Card Battle Intelligence`

func main() {
	var (
		socketPath = flag.String("socket", "/tmp/gambit.sock", "unix socket the game client connects to")
		configPath = flag.String("config", "", "yaml config (profile, aliases); empty = defaults")
		dbPath     = flag.String("db", "gambit.db", "decision record database; empty disables persistence")
		debug      = flag.Bool("debug", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	fmt.Println(banner)
	slog.Info("starting gambit")

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "path", *configPath, "error", err)
		os.Exit(1)
	}

	fast, err := fastpath.NewEngine(cfg.Profile)
	if err != nil {
		slog.Error("failed to build fast-path engine", "error", err)
		os.Exit(1)
	}

	matcher := match.NewResolver(match.NewAliasRegistry(cfg.Aliases))
	resolver := intent.NewResolver(matcher)
	resolver.MaxActions = cfg.MaxActions
	resolver.TargetValues = cfg.Profile.PriorityTargets

	var records *record.Store
	if *dbPath != "" {
		records, err = record.NewStore(*dbPath)
		if err != nil {
			slog.Error("failed to open decision store", "path", *dbPath, "error", err)
			os.Exit(1)
		}
		defer records.Close()
	}

	// Until an external strategist connects this source proposes nothing,
	// which routes every non-obvious turn through the safe fallback.
	source := agent.SourceFunc(func(ctx context.Context, report board.Report, feedback []record.Decision) ([]intent.Proposal, error) {
		return nil, errors.New("no intent source configured")
	})

	// Unix sockets leave behind a file on unclean shutdown; remove it so we can rebind.
	if err := os.RemoveAll(*socketPath); err != nil {
		slog.Error("failed to clean up socket", "path", *socketPath, "error", err)
		os.Exit(1)
	}

	listener, err := net.Listen("unix", *socketPath)
	if err != nil {
		slog.Error("failed to listen on socket", "path", *socketPath, "error", err)
		os.Exit(1)
	}
	defer listener.Close()
	defer os.Remove(*socketPath)

	slog.Info("listening on domain socket", "path", *socketPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sourceTimeout := time.Duration(cfg.SourceTimeoutMS) * time.Millisecond

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				select {
				case <-ctx.Done():
					return
				default:
					slog.Error("failed to accept connection", "error", err)
					continue
				}
			}
			slog.Info("new connection accepted")
			go handleConn(conn, fast, resolver, source, records, sourceTimeout)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")
}

func handleConn(conn net.Conn, fast *fastpath.Engine, resolver *intent.Resolver, source agent.IntentSource, records *record.Store, sourceTimeout time.Duration) {
	c := ipc.NewConnection(conn, nil)
	a := agent.New(c, fast, resolver, source, records)
	a.SourceTimeout = sourceTimeout
	c.RegisterHandler(ipc.TypeHello, a.HandleHello)
	c.RegisterHandler(ipc.TypeSnapshot, a.HandleSnapshot)
	c.ReadLoop()
}

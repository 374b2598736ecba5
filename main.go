// Command gameon-room runs one Game On! room.
//
// It supports three commands:
//  1. "serve" (default) – runs the HTTP server exposing the /room websocket, the REST API, and an /mcp HTTP endpoint
//  2. "mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//  3. "validate" – checks room configuration files
//
// Flags (or the matching environment variables) control host/port, the room
// configuration, logging, the optional NATS bridge, and optional ngrok
// tunneling for exposing the room to a remote mediator during development.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/gameon-room/api"
	"github.com/wricardo/gameon-room/game/config"
	"github.com/wricardo/gameon-room/game/engine"
	"github.com/wricardo/gameon-room/game/service"
	"github.com/wricardo/gameon-room/game/session"
	"github.com/wricardo/gameon-room/logging"
	"github.com/wricardo/gameon-room/protocol"
	"github.com/wricardo/gameon-room/transport/mcp"
	"github.com/wricardo/gameon-room/transport/natsbus"
	"github.com/wricardo/gameon-room/transport/websocket"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Game On! Room"
)

// main loads .env, then runs the command line application until it returns
// or the process is signalled.
func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			logrus.WithError(err).Warn("Error loading .env file")
		}
	} else {
		logrus.Info("Loaded environment variables from .env file")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		logrus.Fatal(err)
	}
}

// newApp builds the command tree. Flags are shared by every command.
func newApp() *cli.Command {
	return &cli.Command{
		Name:    "gameon-room",
		Usage:   "Run a Game On! room",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Value: "localhost", Usage: "HTTP server host", Sources: cli.EnvVars("HOST")},
			&cli.IntFlag{Name: "port", Value: 9080, Usage: "HTTP server port", Sources: cli.EnvVars("PORT")},
			&cli.StringFlag{Name: "config-dir", Value: "configs", Usage: "Directory containing room configurations", Sources: cli.EnvVars("CONFIG_DIR")},
			&cli.StringFlag{Name: "room", Value: config.DefaultRoom, Usage: "Room configuration to serve", Sources: cli.EnvVars("ROOM_CONFIG")},
			&cli.StringFlag{Name: "bookmark-prefix", Value: "room-", Usage: "Prefix of event bookmarks", Sources: cli.EnvVars("BOOKMARK_PREFIX")},
			&cli.BoolFlag{Name: "debug", Usage: "Enable debug logging", Sources: cli.EnvVars("DEBUG")},
			&cli.BoolFlag{Name: "log-json", Usage: "Log as JSON", Sources: cli.EnvVars("LOG_JSON")},
			&cli.BoolFlag{Name: "no-log-level-promotion", Usage: "Keep debug entries at debug level", Sources: cli.EnvVars("NO_LOG_LEVEL_PROMOTION")},
			&cli.StringFlag{Name: "nats-url", Usage: "NATS server to mirror frames to (disabled when empty)", Sources: cli.EnvVars("NATS_URL")},
			&cli.StringFlag{Name: "nats-subject", Value: natsbus.DefaultSubject, Usage: "NATS subject prefix", Sources: cli.EnvVars("NATS_SUBJECT")},
			&cli.BoolFlag{Name: "ngrok", Usage: "Enable ngrok tunnel", Sources: cli.EnvVars("NGROK_ENABLED")},
			&cli.StringFlag{Name: "ngrok-auth", Usage: "Ngrok auth token", Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN")},
			&cli.StringFlag{Name: "ngrok-domain", Usage: "Custom ngrok domain (optional)", Sources: cli.EnvVars("NGROK_DOMAIN")},
		},
		Action: runServe,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the room: websocket, REST API, and MCP endpoint (default)",
				Action: runServe,
			},
			{
				Name:    "mcp",
				Aliases: []string{"stdio-mcp", "mcp-stdio"},
				Usage:   "Run an MCP stdio server, with an internal HTTP server if none is running",
				Action:  runStdioMCP,
			},
			{
				Name:      "validate",
				Usage:     "Validate room configuration files",
				ArgsUsage: "[file.json ...]",
				Action:    runValidate,
			},
		},
	}
}

// newLogger builds the process logger from the logging flags
func newLogger(cmd *cli.Command) *logrus.Logger {
	return logging.New(logging.Options{
		Debug:   cmd.Bool("debug"),
		JSON:    cmd.Bool("log-json"),
		Promote: !cmd.Bool("no-log-level-promotion"),
	})
}

// roomServer holds the wired components of a running room
type roomServer struct {
	log      *logrus.Logger
	configs  *config.Manager
	registry *session.Registry
	service  service.RoomService
	hub      *websocket.Hub
	bridge   *natsbus.Bridge
}

// initializeRoom loads the room description and wires the dispatcher,
// session registry, room service, and websocket hub. When a NATS url is
// given, the hub mirrors its frames to NATS and accepts frames from it.
func initializeRoom(cmd *cli.Command, log *logrus.Logger) (*roomServer, error) {
	configs, err := config.NewManager(cmd.String("config-dir"), cmd.String("room"))
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	room, err := engine.NewRoomDescription(configs.GetDefault())
	if err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}

	events := protocol.NewFactory(cmd.String("bookmark-prefix"), log)
	dispatcher := engine.NewDispatcher(room, events, log)
	registry := session.NewRegistry(log)
	roomService := service.NewRoomService(dispatcher, registry, configs, log)

	rs := &roomServer{
		log:      log,
		configs:  configs,
		registry: registry,
		service:  roomService,
	}

	var opts []websocket.Option
	if url := cmd.String("nats-url"); url != "" {
		bridge, err := natsbus.Connect(url, cmd.String("nats-subject"), log)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		rs.bridge = bridge
		opts = append(opts, websocket.WithMirror(bridge))
	}

	rs.hub = websocket.NewHub(roomService, registry, log, opts...)

	log.WithFields(logrus.Fields{
		"room":     room.Name(),
		"fullName": room.FullName(),
	}).Info("Room initialized")

	return rs, nil
}

// start runs the hub and, with NATS enabled, forwards inbound frames to it.
// The returned function stops the bridge.
func (rs *roomServer) start(ctx context.Context) (func(), error) {
	go rs.hub.Run(ctx)

	if rs.bridge == nil {
		return func() {}, nil
	}

	unsubscribe, err := rs.bridge.Forward(rs.hub)
	if err != nil {
		rs.bridge.Close()
		return nil, fmt.Errorf("failed to subscribe to NATS: %w", err)
	}
	rs.log.WithFields(logrus.Fields{
		"in":  rs.bridge.InSubject(),
		"out": rs.bridge.OutSubject(),
	}).Info("NATS bridge enabled")

	return func() {
		unsubscribe()
		rs.bridge.Close()
	}, nil
}

// handler combines the API server with the /mcp endpoint
func (rs *roomServer) handler(baseURL string) http.Handler {
	apiServer := api.NewServer(rs.service, rs.hub.ServeWS, rs.hub, rs.log)

	// Create MCP client for /mcp endpoint
	mcpClient := mcp.NewClient(baseURL)

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", mcpHandler(mcpClient))
	return mainRouter
}

// mcpHandler serves MCP JSON-RPC messages over plain HTTP POST
func mcpHandler(mcpClient *mcp.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	}
}

// runServe starts the HTTP server with the room websocket, REST API, and an
// /mcp endpoint. If ngrok is enabled, it also provisions a public tunnel.
func runServe(ctx context.Context, cmd *cli.Command) error {
	log := newLogger(cmd)
	log.Infof("Starting %s v%s", AppName, Version)

	rs, err := initializeRoom(cmd, log)
	if err != nil {
		return err
	}

	// The hub outlives request contexts; it stops when the process does.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stopBridge, err := rs.start(ctx)
	if err != nil {
		return err
	}
	defer stopBridge()

	addr := fmt.Sprintf("%s:%d", cmd.String("host"), cmd.Int("port"))
	mainRouter := rs.handler(fmt.Sprintf("http://%s", addr))

	httpServer := &http.Server{
		Addr:        addr,
		Handler:     mainRouter,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	var wg sync.WaitGroup
	serverErr := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Infof("HTTP server listening on %s", addr)
		log.Infof("Room websocket: ws://%s/room", addr)
		log.Infof("REST API: http://%s/rest", addr)
		log.Infof("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	if cmd.Bool("ngrok") {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runTunnel(ctx, cmd, log, mainRouter)
		}()
	}

	// Wait for shutdown signal or a failed listener
	select {
	case <-ctx.Done():
		log.Info("Shutting down...")
	case err := <-serverErr:
		log.WithError(err).Error("HTTP server failed")
		cancel()
		wg.Wait()
		return err
	}
	cancel()

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("HTTP server shutdown error")
	}

	// Wait for all goroutines to finish
	wg.Wait()
	log.Info("Server stopped")
	return nil
}

// runTunnel serves handler through an ngrok tunnel until ctx is done
func runTunnel(ctx context.Context, cmd *cli.Command, log logrus.FieldLogger, handler http.Handler) {
	authToken := cmd.String("ngrok-auth")
	if authToken == "" {
		log.Warn("Ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN env var)")
		return
	}

	log.Info("Starting ngrok tunnel...")

	// Configure ngrok endpoint
	var tunnel ngrokConfig.Tunnel
	if domain := cmd.String("ngrok-domain"); domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		log.Infof("Using custom ngrok domain: %s", domain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		log.WithError(err).Error("Failed to start ngrok tunnel")
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.WithError(err).Debug("Failed to close ngrok tunnel")
		}
	}()

	ngrokURL := tun.URL()
	log.Infof("Ngrok tunnel established: %s", ngrokURL)
	log.Infof("  Room websocket (ngrok): %s/room", ngrokURL)
	log.Infof("  MCP endpoint (ngrok): %s/mcp", ngrokURL)

	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		log.WithError(err).Warn("Ngrok server error")
	}
	log.Info("Ngrok tunnel closed")
}

// runStdioMCP runs an MCP stdio server. It reuses a room already serving on
// host:port; if there is none, it starts an internal HTTP API bound to a
// random loopback port and targets that.
func runStdioMCP(ctx context.Context, cmd *cli.Command) error {
	// stdout carries the MCP protocol
	log := logging.New(logging.Options{
		Debug:   cmd.Bool("debug"),
		JSON:    cmd.Bool("log-json"),
		Promote: false,
		Out:     os.Stderr,
	})

	externalURL := fmt.Sprintf("http://%s:%d", cmd.String("host"), cmd.Int("port"))
	log.Infof("Checking for external room at %s...", externalURL)

	baseURL := externalURL
	if !probe(externalURL + "/rest/health") {
		log.Info("No external room found, starting internal HTTP server")

		rs, err := initializeRoom(cmd, log)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		stopBridge, err := rs.start(ctx)
		if err != nil {
			return err
		}
		defer stopBridge()

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		baseURL = fmt.Sprintf("http://%s", listener.Addr().String())
		httpServer := &http.Server{Handler: rs.handler(baseURL)}
		defer httpServer.Close()

		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.WithError(err).Error("Internal HTTP server error")
			}
		}()
		log.Infof("Internal HTTP server listening on %s", listener.Addr())
	} else {
		log.Infof("External room found at %s, using it for MCP", externalURL)
	}

	mcpClient := mcp.NewClient(baseURL)
	log.Info("MCP stdio server ready")

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}

// probe reports whether a room answers its health check at url
func probe(url string) bool {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

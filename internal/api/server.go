// Package api provides the HTTP API for driving and observing the
// coordination loop. GET endpoints are read-only observation; POST
// endpoints control the simulation lifecycle.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/talgya/rescuegrid/internal/bus"
	"github.com/talgya/rescuegrid/internal/engine"
	"github.com/talgya/rescuegrid/internal/environment"
	"github.com/talgya/rescuegrid/internal/persistence"
	"github.com/talgya/rescuegrid/internal/protocol"
	"github.com/talgya/rescuegrid/internal/world"
)

const wsPushInterval = time.Second

// stepConsumer is the bus cursor shared by all /step callers, so a polling
// driver sees every message exactly once across steps.
const stepConsumer = "http-step"

// Server serves the simulation state over HTTP.
type Server struct {
	Orch    *engine.Orchestrator
	Env     *environment.Environment
	Bus     *bus.Bus
	Journal *persistence.Journal
	Port    int

	upgrader websocket.Upgrader
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}

	// Control endpoints get a coarse per-IP limiter so a stuck client
	// can't spin the disaster machine.
	controlLimiter := NewRateLimiter(120, time.Minute)

	mux := http.NewServeMux()

	// Control endpoints.
	mux.HandleFunc("/api/v1/start", RateLimitMiddleware(controlLimiter, s.handleStart))
	mux.HandleFunc("/api/v1/step", s.handleStep)
	mux.HandleFunc("/api/v1/reset", RateLimitMiddleware(controlLimiter, s.handleReset))
	mux.HandleFunc("/api/v1/pause", s.handlePause)

	// Observation endpoints.
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/grid", s.handleGrid)
	mux.HandleFunc("/api/v1/agents", s.handleAgents)
	mux.HandleFunc("/api/v1/messages", s.handleMessages)
	mux.HandleFunc("/api/v1/stats", s.handleStats)
	mux.HandleFunc("/api/v1/visualize", s.handleVisualize)

	// Live state stream.
	mux.HandleFunc("/api/v1/ws", s.handleWS)

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr)

	go func() {
		handler := corsMiddleware(mux)
		if err := http.ListenAndServe(addr, handler); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Set CORS_ORIGINS env var to a comma-separated list of allowed origins.
// Localhost dev servers are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:4173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// stateSummary is the compact view of the environment returned by most
// endpoints and pushed over the websocket.
type stateSummary struct {
	TimeStep        int            `json:"time_step"`
	Phase           string         `json:"phase"`
	Scenario        string         `json:"scenario"`
	Disaster        bool           `json:"disaster"`
	Victims         int            `json:"victims"`
	VictimsSaved    int            `json:"victims_saved"`
	SeismicLevel    float64        `json:"seismic_level"`
	Aftershock      bool           `json:"aftershock"`
	RoadsBlocked    bool           `json:"roads_blocked"`
	RebuildProgress float64        `json:"rebuild_progress"`
	Resources       map[string]int `json:"resources"`
	AffectedNodes   []int          `json:"affected_nodes"`
}

func summarize(snap environment.Snapshot) stateSummary {
	return stateSummary{
		TimeStep:        snap.TimeStep,
		Phase:           string(snap.Phase),
		Scenario:        string(snap.Scenario),
		Disaster:        snap.Disaster,
		Victims:         snap.Victims,
		VictimsSaved:    snap.VictimsSaved,
		SeismicLevel:    snap.SeismicLevel,
		Aftershock:      snap.Aftershock,
		RoadsBlocked:    snap.RoadsBlocked,
		RebuildProgress: snap.RebuildProgress,
		Resources:       snap.Resources,
		AffectedNodes:   snap.AffectedNodes,
	}
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Scenario  string         `json:"scenario"`
		Intensity *float64       `json:"intensity"`
		Resources map[string]int `json:"resources"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.Scenario == "" {
		req.Scenario = string(environment.ScenarioEarthquake)
	}
	// Absent intensity defaults; an explicit out-of-range value is rejected
	// by Trigger.
	intensity := 0.7
	if req.Intensity != nil {
		intensity = *req.Intensity
	}

	if err := s.Env.Trigger(environment.Scenario(req.Scenario), intensity, req.Resources); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	slog.Info("disaster triggered", "scenario", req.Scenario, "intensity", intensity)

	writeJSON(w, map[string]any{
		"message": fmt.Sprintf("%s disaster triggered", req.Scenario),
		"state":   summarize(s.Env.Snapshot()),
	})
}

func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	result := s.Orch.RunCycle()

	// The step cursor hands back exactly the messages generated since the
	// previous step call.
	msgs := s.Bus.ReadAll(stepConsumer)
	if msgs == nil {
		msgs = []protocol.Message{}
	}

	writeJSON(w, map[string]any{
		"result":   result,
		"state":    summarize(s.Env.Snapshot()),
		"messages": msgs,
		"units":    s.Orch.UnitPositions(),
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.Orch.Reset()
	if s.Journal != nil {
		if err := s.Journal.Reset(); err != nil {
			slog.Error("journal reset failed", "error", err)
		}
	}
	slog.Info("simulation reset")

	writeJSON(w, map[string]any{
		"message": "simulation reset",
		"state":   summarize(s.Env.Snapshot()),
	})
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if s.Orch.IsPaused() {
		s.Orch.Resume()
	} else {
		s.Orch.Pause()
	}
	paused := s.Orch.IsPaused()
	slog.Info("pause toggled", "paused", paused)

	writeJSON(w, map[string]bool{"paused": paused})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := s.Orch.GetStatus()
	writeJSON(w, map[string]any{
		"cycle_count": status.CycleCount,
		"paused":      status.Paused,
		"phase":       status.Phase,
		"agents":      status.Agents,
		"state":       summarize(s.Env.Snapshot()),
	})
}

func (s *Server) handleGrid(w http.ResponseWriter, r *http.Request) {
	snap := s.Env.Snapshot()

	writeJSON(w, map[string]any{
		"nodes":          snap.Nodes,
		"edges":          snap.Edges,
		"affected_nodes": snap.AffectedNodes,
		"affected_edges": snap.AffectedEdges,
		"units":          s.Orch.UnitPositions(),
	})
}

func (s *Server) handleAgents(w http.ResponseWriter, r *http.Request) {
	status := s.Orch.GetStatus()

	type agentEntry struct {
		Name   string `json:"name"`
		Active bool   `json:"active"`
	}
	active := s.Env.CurrentPhase() != environment.PhaseIdle
	entries := make([]agentEntry, 0, len(status.Agents))
	for _, name := range status.Agents {
		entries = append(entries, agentEntry{Name: name, Active: active && !status.Paused})
	}
	writeJSON(w, map[string]any{
		"agents":    entries,
		"positions": s.Orch.UnitPositions(),
	})
}

func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	count := 20
	if c := r.URL.Query().Get("count"); c != "" {
		if n, err := strconv.Atoi(c); err == nil && n > 0 && n <= 500 {
			count = n
		}
	}

	msgs := s.Bus.ReadRecent(count)
	if msgs == nil {
		msgs = []protocol.Message{}
	}
	writeJSON(w, msgs)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	snap := s.Env.Snapshot()

	result := map[string]any{
		"total_victims_initial": snap.Stats.TotalVictimsInitial,
		"victims_saved":         snap.Stats.VictimsSaved,
		"disasters_completed":   snap.Stats.DisastersCompleted,
		"total_time_steps":      snap.Stats.TotalTimeSteps,
		"resources_used":        snap.ResourcesUsed,
	}

	if s.Journal != nil {
		history, err := s.Journal.History(50)
		if err != nil {
			slog.Error("stats history query failed", "error", err)
			history = []persistence.CycleRow{}
		}
		msgCount, err := s.Journal.MessageCount()
		if err != nil {
			slog.Error("message count query failed", "error", err)
		}
		result["history"] = history
		result["messages_journaled"] = msgCount
	}

	writeJSON(w, result)
}

func (s *Server) handleVisualize(w http.ResponseWriter, r *http.Request) {
	snap := s.Env.Snapshot()
	text := world.GridText(snap.Nodes, snap.Edges, snap.AffectedNodes)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, text)
}

// handleWS upgrades to a websocket and pushes state frames once per
// second. Each connection gets its own bus cursor so no message is
// dropped or duplicated across frames.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err)
		return
	}
	consumerID := "ws-" + uuid.NewString()
	slog.Info("websocket client connected", "consumer", consumerID, "remote", r.RemoteAddr)

	go s.streamState(conn, consumerID)
}

type wsFrame struct {
	State    stateSummary        `json:"state"`
	Messages []protocol.Message  `json:"messages"`
	Units    []engine.RescueUnit `json:"units"`
	Cycle    int                 `json:"cycle"`
}

func (s *Server) streamState(conn *websocket.Conn, consumerID string) {
	defer conn.Close()

	// Discard client frames but notice the close.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			slog.Info("websocket client disconnected", "consumer", consumerID)
			return
		case <-ticker.C:
			msgs := s.Bus.ReadAll(consumerID)
			if msgs == nil {
				msgs = []protocol.Message{}
			}
			frame := wsFrame{
				State:    summarize(s.Env.Snapshot()),
				Messages: msgs,
				Units:    s.Orch.UnitPositions(),
				Cycle:    s.Orch.CycleCount(),
			}
			conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := conn.WriteJSON(frame); err != nil {
				slog.Info("websocket write failed, dropping client", "consumer", consumerID, "error", err)
				return
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}

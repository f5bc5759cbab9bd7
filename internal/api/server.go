package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"burnrate/internal/action"
	"burnrate/internal/config"
	"burnrate/internal/intel"
	"burnrate/internal/season"
	"burnrate/internal/tick"
	"burnrate/internal/world"
)

// Server wires the Action Processor, Tick Engine, and World Model onto a
// plain net/http.ServeMux.
type Server struct {
	proc   *action.Processor
	engine *tick.Engine
	cache  *world.Cache
	cfg    config.Config
	mux    *http.ServeMux
}

// New builds a Server with every route registered.
func New(proc *action.Processor, engine *tick.Engine, cache *world.Cache, cfg config.Config) *Server {
	s := &Server{proc: proc, engine: engine, cache: cache, cfg: cfg, mux: http.NewServeMux()}
	s.routes()
	return s
}

// Handler returns the fully wrapped handler (CORS + rate floor), ready to
// hand to an http.Server.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.mux
	h = withRateFloor(s.proc, h)
	h = withCORS(s.cfg.CORSOrigins, h)
	return h
}

func (s *Server) routes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/world/status", s.handleWorldStatus)
	s.mux.HandleFunc("/join", s.handleJoin)

	s.mux.HandleFunc("/me", requireAuth(s.proc, s.handleMe))
	s.mux.HandleFunc("/world/zones", requireAuth(s.proc, s.handleZones))
	s.mux.HandleFunc("/routes", requireAuth(s.proc, s.handleRoutes))
	s.mux.HandleFunc("/travel", requireAuth(s.proc, s.handleTravel))
	s.mux.HandleFunc("/extract", requireAuth(s.proc, s.handleExtract))
	s.mux.HandleFunc("/produce", requireAuth(s.proc, s.handleProduce))
	s.mux.HandleFunc("/ship", requireAuth(s.proc, s.handleShip))
	s.mux.HandleFunc("/shipments", requireAuth(s.proc, s.handleShipments))
	s.mux.HandleFunc("/market/order", requireAuth(s.proc, s.handlePlaceOrder))
	s.mux.HandleFunc("/market/orders", requireAuth(s.proc, s.handleMarketOrders))
	s.mux.HandleFunc("/units", requireAuth(s.proc, s.handleUnits))
	s.mux.HandleFunc("/scan", requireAuth(s.proc, s.handleScan))
	s.mux.HandleFunc("/intel", requireAuth(s.proc, s.handleIntel))
	s.mux.HandleFunc("/supply", requireAuth(s.proc, s.handleSupply))
	s.mux.HandleFunc("/capture", requireAuth(s.proc, s.handleCapture))

	s.mux.HandleFunc("/factions", requireAuth(s.proc, s.handleFactions))
	s.mux.HandleFunc("/factions/join", requireAuth(s.proc, s.handleFactionJoin))
	s.mux.HandleFunc("/factions/leave", requireAuth(s.proc, s.handleFactionLeave))
	s.mux.HandleFunc("/factions/mine", requireAuth(s.proc, s.handleFactionMine))
	s.mux.HandleFunc("/factions/transfer-leadership", requireAuth(s.proc, s.handleFactionTransfer))
	s.mux.HandleFunc("/factions/treasury/deposit", requireAuth(s.proc, s.handleTreasuryDeposit))
	s.mux.HandleFunc("/factions/treasury/withdraw", requireAuth(s.proc, s.handleTreasuryWithdraw))

	s.mux.HandleFunc("/contracts", requireAuth(s.proc, s.handleContracts))
	s.mux.HandleFunc("/contracts/accept", requireAuth(s.proc, s.handleContractAccept))
	s.mux.HandleFunc("/contracts/complete", requireAuth(s.proc, s.handleContractComplete))

	s.mux.HandleFunc("/reputation", requireAuth(s.proc, s.handleReputation))
	s.mux.HandleFunc("/licenses", requireAuth(s.proc, s.handleLicenses))
	s.mux.HandleFunc("/events", requireAuth(s.proc, s.handleEvents))

	s.mux.HandleFunc("/season", s.handleSeason)
	s.mux.HandleFunc("/leaderboard", s.handleLeaderboard)

	s.mux.HandleFunc("/webhooks", requireAuth(s.proc, s.handleWebhooks))

	s.mux.HandleFunc("/admin/tick", requireAdmin(s.cfg.AdminKey, s.handleAdminTick))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleWorldStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tick": s.cache.CurrentTick(), "season": s.cache.SeasonNumber(), "season_start": s.cache.SeasonStart(),
	})
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	var req struct{ Name string }
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, invalid("malformed request body"))
		return
	}
	pl, err := s.proc.Join(r.Context(), req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, pl)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, playerFromContext(r))
}

func (s *Server) handleZones(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.cache.AllZones())
}

func (s *Server) handleRoutes(w http.ResponseWriter, r *http.Request) {
	if from := r.URL.Query().Get("from"); from != "" {
		writeJSON(w, http.StatusOK, s.cache.RoutesFrom(from))
		return
	}
	writeJSON(w, http.StatusOK, s.cache.AllRoutes())
}

func (s *Server) handleTravel(w http.ResponseWriter, r *http.Request) {
	pl := playerFromContext(r)
	var req struct{ To string }
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, invalid("malformed request body"))
		return
	}
	if err := s.proc.Travel(r.Context(), pl, req.To); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pl)
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	pl := playerFromContext(r)
	var req struct{ Qty int }
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, invalid("malformed request body"))
		return
	}
	if err := s.proc.Extract(r.Context(), pl, req.Qty); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pl)
}

func (s *Server) handleProduce(w http.ResponseWriter, r *http.Request) {
	pl := playerFromContext(r)
	var req struct {
		Output string
		Qty    int
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, invalid("malformed request body"))
		return
	}
	if err := s.proc.Produce(r.Context(), pl, req.Output, req.Qty); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pl)
}

func (s *Server) handleShip(w http.ResponseWriter, r *http.Request) {
	pl := playerFromContext(r)
	var req struct {
		Kind  world.ShipmentKind
		Path  []string
		Cargo map[string]int
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, invalid("malformed request body"))
		return
	}
	sh, err := s.proc.Ship(r.Context(), pl, req.Kind, req.Path, req.Cargo)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sh)
}

func (s *Server) handleShipments(w http.ResponseWriter, r *http.Request) {
	pl := playerFromContext(r)
	writeJSON(w, http.StatusOK, s.cache.ShipmentsByOwner(pl.ID))
}

func (s *Server) handlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	pl := playerFromContext(r)
	var req struct {
		Side     world.OrderSide
		Resource string
		Price    float64
		Qty      int
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, invalid("malformed request body"))
		return
	}
	o, err := s.proc.PlaceOrder(r.Context(), pl, req.Side, req.Resource, req.Price, req.Qty)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

func (s *Server) handleMarketOrders(w http.ResponseWriter, r *http.Request) {
	pl := playerFromContext(r)
	resource := r.URL.Query().Get("resource")
	writeJSON(w, http.StatusOK, s.cache.OrdersByZoneResource(pl.CurrentZone, resource))
}

func (s *Server) handleUnits(w http.ResponseWriter, r *http.Request) {
	pl := playerFromContext(r)
	writeJSON(w, http.StatusOK, s.cache.UnitsByOwner(pl.ID))
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	pl := playerFromContext(r)
	var req struct {
		TargetType world.IntelTargetType
		TargetID   string
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, invalid("malformed request body"))
		return
	}
	report, err := s.proc.Scan(r.Context(), pl, req.TargetType, req.TargetID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, intel.Project(report, s.cache.CurrentTick()))
}

func (s *Server) handleIntel(w http.ResponseWriter, r *http.Request) {
	pl := playerFromContext(r)
	limit := 50
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		limit = l
	}
	f := s.cache.Faction(pl.FactionID)
	var out []intel.Projected
	for _, rep := range s.cache.AllIntel() {
		if rep.GathererID != pl.ID && !intel.IsVisibleToFaction(rep, f) {
			continue
		}
		out = append(out, intel.Project(rep, s.cache.CurrentTick()))
		if len(out) >= limit {
			break
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSupply(w http.ResponseWriter, r *http.Request) {
	pl := playerFromContext(r)
	var req struct{ Amount int }
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, invalid("malformed request body"))
		return
	}
	if err := s.proc.Supply(r.Context(), pl, req.Amount); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pl)
}

func (s *Server) handleCapture(w http.ResponseWriter, r *http.Request) {
	pl := playerFromContext(r)
	if err := s.proc.Capture(r.Context(), pl); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pl)
}

func (s *Server) handleFactions(w http.ResponseWriter, r *http.Request) {
	pl := playerFromContext(r)
	if r.Method == http.MethodPost {
		var req struct{ Name, Tag string }
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, invalid("malformed request body"))
			return
		}
		f, err := s.proc.CreateFaction(r.Context(), pl, req.Name, req.Tag)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, f)
		return
	}
	writeJSON(w, http.StatusOK, s.cache.AllFactions())
}

func (s *Server) handleFactionJoin(w http.ResponseWriter, r *http.Request) {
	pl := playerFromContext(r)
	var req struct{ FactionID string }
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, invalid("malformed request body"))
		return
	}
	if err := s.proc.JoinFaction(r.Context(), pl, req.FactionID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pl)
}

func (s *Server) handleFactionLeave(w http.ResponseWriter, r *http.Request) {
	pl := playerFromContext(r)
	if err := s.proc.LeaveFaction(r.Context(), pl); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pl)
}

func (s *Server) handleFactionMine(w http.ResponseWriter, r *http.Request) {
	pl := playerFromContext(r)
	writeJSON(w, http.StatusOK, s.cache.Faction(pl.FactionID))
}

func (s *Server) handleFactionTransfer(w http.ResponseWriter, r *http.Request) {
	pl := playerFromContext(r)
	var req struct{ NewFounderID string }
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, invalid("malformed request body"))
		return
	}
	if err := s.proc.Transfer(r.Context(), pl, req.NewFounderID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "transferred"})
}

func (s *Server) handleTreasuryDeposit(w http.ResponseWriter, r *http.Request) {
	pl := playerFromContext(r)
	var req struct {
		Resource string
		Qty      int
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, invalid("malformed request body"))
		return
	}
	if err := s.proc.TreasuryDeposit(r.Context(), pl, req.Resource, req.Qty); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pl)
}

func (s *Server) handleTreasuryWithdraw(w http.ResponseWriter, r *http.Request) {
	pl := playerFromContext(r)
	var req struct {
		Resource string
		Qty      int
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, invalid("malformed request body"))
		return
	}
	if err := s.proc.TreasuryWithdraw(r.Context(), pl, req.Resource, req.Qty); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pl)
}

func (s *Server) handleContracts(w http.ResponseWriter, r *http.Request) {
	pl := playerFromContext(r)
	if r.Method == http.MethodPost {
		var ct world.Contract
		if err := decodeJSON(r, &ct); err != nil {
			writeError(w, invalid("malformed request body"))
			return
		}
		created, err := s.proc.CreateContract(r.Context(), pl, &ct)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
		return
	}
	writeJSON(w, http.StatusOK, s.cache.AllContracts())
}

func (s *Server) handleContractAccept(w http.ResponseWriter, r *http.Request) {
	pl := playerFromContext(r)
	var req struct{ ContractID string }
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, invalid("malformed request body"))
		return
	}
	if err := s.proc.AcceptContract(r.Context(), pl, req.ContractID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "accepted"})
}

func (s *Server) handleContractComplete(w http.ResponseWriter, r *http.Request) {
	pl := playerFromContext(r)
	var req struct {
		ContractID string
		Met        bool
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, invalid("malformed request body"))
		return
	}
	if err := s.proc.CompleteContract(r.Context(), pl, req.ContractID, req.Met); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "completed"})
}

func (s *Server) handleReputation(w http.ResponseWriter, r *http.Request) {
	pl := playerFromContext(r)
	writeJSON(w, http.StatusOK, map[string]int{"reputation": pl.Reputation})
}

func (s *Server) handleLicenses(w http.ResponseWriter, r *http.Request) {
	pl := playerFromContext(r)
	writeJSON(w, http.StatusOK, pl.Licenses)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	since := s.cache.CurrentTick() - 100
	if v := r.URL.Query().Get("since"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			since = n
		}
	}
	writeJSON(w, http.StatusOK, s.cache.EventsSince(since))
}

func (s *Server) handleSeason(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"season": s.cache.SeasonNumber(), "start_tick": s.cache.SeasonStart(),
	})
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, season.Leaderboard(s.cache, s.cache.SeasonNumber()))
}

func (s *Server) handleWebhooks(w http.ResponseWriter, r *http.Request) {
	pl := playerFromContext(r)
	switch r.Method {
	case http.MethodPost:
		var req struct {
			URL    string
			Secret string
			Events []string
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, invalid("malformed request body"))
			return
		}
		wh, err := s.proc.RegisterWebhook(r.Context(), pl, req.URL, req.Secret, req.Events)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, wh)
	case http.MethodDelete:
		var req struct{ ID string }
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, invalid("malformed request body"))
			return
		}
		if err := s.proc.DeleteWebhook(r.Context(), pl, req.ID); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		writeJSON(w, http.StatusOK, s.cache.AllWebhooks())
	}
}

func (s *Server) handleAdminTick(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()
	if err := s.engine.AdminForceAdvance(ctx); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"tick": s.cache.CurrentTick()})
}

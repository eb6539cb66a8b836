package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/jcwang/marketscan/internal/contracts"
	"github.com/jcwang/marketscan/pkg/logger"
)

// ScanStore keeps the latest finished scan in memory for the API.
// One scan at a time replaces the previous snapshot atomically.
type ScanStore struct {
	mu           sync.RWMutex
	scannedAt    time.Time
	leaderboards []contracts.Leaderboard
	ranking      []contracts.CompositeEntry
}

// NewScanStore creates an empty store.
func NewScanStore() *ScanStore {
	return &ScanStore{}
}

// Put replaces the stored scan.
func (s *ScanStore) Put(scannedAt time.Time, leaderboards []contracts.Leaderboard, ranking []contracts.CompositeEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scannedAt = scannedAt
	s.leaderboards = leaderboards
	s.ranking = ranking
}

// Get returns the stored scan. ok is false before the first scan.
func (s *ScanStore) Get() (time.Time, []contracts.Leaderboard, []contracts.CompositeEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scannedAt, s.leaderboards, s.ranking, !s.scannedAt.IsZero()
}

// ScanHandler serves scan results from the in-memory store.
type ScanHandler struct {
	store   *ScanStore
	trigger func() // enqueues an on-demand scan; nil disables POST /scan/run
	logger  *logger.Logger
}

// NewScanHandler creates a new scan handler.
func NewScanHandler(store *ScanStore, trigger func(), log *logger.Logger) *ScanHandler {
	return &ScanHandler{
		store:   store,
		trigger: trigger,
		logger:  log,
	}
}

// GetLatest returns scan metadata.
// GET /api/scan/latest
func (h *ScanHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	scannedAt, leaderboards, ranking, ok := h.store.Get()
	if !ok {
		respondError(w, http.StatusNotFound, "No scan has completed yet")
		return
	}

	strategies := make([]string, 0, len(leaderboards))
	for _, b := range leaderboards {
		strategies = append(strategies, b.Strategy)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"scanned_at":   scannedAt.Format(time.RFC3339),
			"strategies":   strategies,
			"ranked_count": len(ranking),
		},
	})
}

// GetRanking returns the composite ranking.
// GET /api/scan/ranking
func (h *ScanHandler) GetRanking(w http.ResponseWriter, r *http.Request) {
	scannedAt, _, ranking, ok := h.store.Get()
	if !ok {
		respondError(w, http.StatusNotFound, "No scan has completed yet")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"scanned_at": scannedAt.Format(time.RFC3339),
			"count":      len(ranking),
			"items":      ranking,
		},
	})
}

// GetLeaderboards returns every per-strategy leaderboard.
// GET /api/scan/leaderboards
func (h *ScanHandler) GetLeaderboards(w http.ResponseWriter, r *http.Request) {
	scannedAt, leaderboards, _, ok := h.store.Get()
	if !ok {
		respondError(w, http.StatusNotFound, "No scan has completed yet")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"scanned_at":   scannedAt.Format(time.RFC3339),
			"leaderboards": leaderboards,
		},
	})
}

// GetLeaderboard returns one strategy's leaderboard.
// GET /api/scan/leaderboards/{strategy}
func (h *ScanHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["strategy"]

	scannedAt, leaderboards, _, ok := h.store.Get()
	if !ok {
		respondError(w, http.StatusNotFound, "No scan has completed yet")
		return
	}

	for _, b := range leaderboards {
		if b.Strategy == name {
			respondJSON(w, http.StatusOK, map[string]interface{}{
				"success": true,
				"data": map[string]interface{}{
					"scanned_at": scannedAt.Format(time.RFC3339),
					"strategy":   b.Strategy,
					"count":      len(b.Entries),
					"items":      b.Entries,
				},
			})
			return
		}
	}

	respondError(w, http.StatusNotFound, "Unknown strategy: "+name)
}

// TriggerScan enqueues an on-demand scan.
// POST /api/scan/run
func (h *ScanHandler) TriggerScan(w http.ResponseWriter, r *http.Request) {
	if h.trigger == nil {
		respondError(w, http.StatusServiceUnavailable, "On-demand scans are disabled")
		return
	}

	h.logger.Info("On-demand scan requested")
	h.trigger()

	respondJSON(w, http.StatusAccepted, map[string]interface{}{
		"success": true,
		"message": "Scan started",
	})
}

// cmd/sync/main.go
//
// Lightweight receiver for POS push payloads. The point-of-sale system
// posts transaction batches here; they are persisted and every cached
// aggregate is invalidated so the next analysis pass sees them.
package main

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"github.com/Preston-Eck/UDRG-Inventory-Sales-Analysis/internal/cache"
	"github.com/Preston-Eck/UDRG-Inventory-Sales-Analysis/internal/config"
	"github.com/Preston-Eck/UDRG-Inventory-Sales-Analysis/internal/domain"
	"github.com/Preston-Eck/UDRG-Inventory-Sales-Analysis/internal/repository"
	"github.com/Preston-Eck/UDRG-Inventory-Sales-Analysis/internal/repository/postgres"
	"github.com/Preston-Eck/UDRG-Inventory-Sales-Analysis/pkg/logger"
)

type syncServer struct {
	datasets repository.DatasetRepository
	cache    cache.AnalysisCache
}

type syncPayload struct {
	Transactions []domain.Transaction    `json:"transactions"`
	Inventory    []domain.InventoryState `json:"inventory,omitempty"`
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger.SetLevel(cfg.App.LogLevel)

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	analysisCache, err := cache.NewAnalysisCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Analysis cache unavailable, running without it")
		analysisCache = cache.NewNoopAnalysisCache()
	}

	server := &syncServer{
		datasets: repository.NewDatasetRepository(db),
		cache:    analysisCache,
	}

	r := mux.NewRouter()
	r.HandleFunc("/sync/transactions", server.handleSync).Methods("POST")
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	addr := fmt.Sprintf(":%s", cfg.Server.SyncPort)
	logger.Log.Info().Str("addr", addr).Msg("Sync receiver starting")
	if err := http.ListenAndServe(addr, r); err != nil {
		logger.Log.Fatal().Err(err).Msg("Sync receiver stopped")
	}
}

func (s *syncServer) handleSync(w http.ResponseWriter, r *http.Request) {
	var payload syncPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid sync payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(payload.Transactions) == 0 && len(payload.Inventory) == 0 {
		http.Error(w, "empty sync payload", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	if err := s.datasets.ApplySyncBatch(ctx, payload.Transactions, payload.Inventory); err != nil {
		logger.Log.Error().Err(err).Msg("sync: batch upsert failed")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := s.cache.InvalidateAll(ctx); err != nil {
		logger.Log.Warn().Err(err).Msg("sync: cache invalidation failed")
	}

	logger.Log.Info().
		Int("transactions", len(payload.Transactions)).
		Int("inventory", len(payload.Inventory)).
		Msg("sync batch applied")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int{
		"transactions": len(payload.Transactions),
		"inventory":    len(payload.Inventory),
	})
}

package main

import (
	"log"
	"net/http"

	"github.com/V19Amit/Decentralized-Insurance-Pool/internal/auth"
	"github.com/V19Amit/Decentralized-Insurance-Pool/internal/config"
	"github.com/V19Amit/Decentralized-Insurance-Pool/internal/fabricclient"
	"github.com/V19Amit/Decentralized-Insurance-Pool/internal/migrations"
	"github.com/V19Amit/Decentralized-Insurance-Pool/internal/pool"
	"github.com/V19Amit/Decentralized-Insurance-Pool/internal/store"
	"github.com/gorilla/mux"
)

func main() {
	cfg := config.Load()

	database, err := store.Connect(cfg.DB)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer database.Close()

	if err := migrations.Run(database, cfg.MigrationsDir); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	st := store.New(database)

	// The store is both the event sink and the value-transfer primitive:
	// notifications land in pool_events, payouts and refunds in
	// pool_transfers.
	engine := pool.NewEngine(pool.SystemClock(), st, st)
	snap, err := st.LoadSnapshot()
	if err != nil {
		log.Fatalf("Failed to load pool snapshot: %v", err)
	}
	if snap != nil {
		engine.Restore(snap)
		log.Printf("Restored pool state: %d policies, %d claims, %d funds",
			snap.NextPolicyID-1, snap.NextClaimID-1, snap.TotalPoolFunds)
	}

	var fabric *fabricclient.Client
	if cfg.FabricConfig != "" {
		fabric, err = fabricclient.NewClient(cfg.FabricConfig, cfg.MSP, cfg.CertPath, cfg.KeyPath)
		if err != nil {
			log.Printf("Warning: Fabric connection failed: %v", err)
			fabric = nil
		} else {
			defer fabric.Close()
			events, err := fabric.PoolEvents()
			if err != nil {
				log.Printf("Warning: chaincode event subscription failed: %v", err)
			} else {
				go func() {
					for ev := range events {
						log.Printf("Chaincode event %s: %s", ev.EventName, string(ev.Payload))
					}
				}()
			}
		}
	}

	svc := &Service{
		engine: engine,
		store:  st,
		fabric: fabric,
		secret: []byte(cfg.JWTSecret),
	}

	r := mux.NewRouter()

	r.HandleFunc("/auth/register", svc.RegisterHandler).Methods("POST")
	r.HandleFunc("/auth/login", svc.LoginHandler).Methods("POST")

	protected := r.NewRoute().Subrouter()
	protected.Use(auth.Middleware(svc.secret))
	protected.HandleFunc("/policies", svc.CreatePolicyHandler).Methods("POST")
	protected.HandleFunc("/policies", svc.ListMyPoliciesHandler).Methods("GET")
	protected.HandleFunc("/policies/{id}", svc.GetPolicyHandler).Methods("GET")
	protected.HandleFunc("/policies/{id}", svc.CancelPolicyHandler).Methods("DELETE")
	protected.HandleFunc("/claims", svc.SubmitClaimHandler).Methods("POST")
	protected.HandleFunc("/claims/{id}", svc.GetClaimHandler).Methods("GET")
	protected.HandleFunc("/claims/{id}/votes", svc.VoteHandler).Methods("POST")
	protected.HandleFunc("/claims/{id}/resolve", svc.ResolveClaimHandler).Methods("POST")
	protected.HandleFunc("/pool/contributions", svc.ContributeHandler).Methods("POST")
	protected.HandleFunc("/pool/stats", svc.PoolStatsHandler).Methods("GET")

	log.Printf("Insurance Pool Service running on :%s", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, r))
}

// Package mongodb persists completed simulation results to a MongoDB
// collection. Persistence is best-effort: write failures are logged and
// never propagate back into the analysis pipeline.
package mongodb

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"sync"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ijhewaratne/gridplan/internal/pkg/sim"
)

type Handler struct {
	mux    *sync.Mutex
	inbox  <-chan sim.Result
	pid    uuid.UUID
	config config
	stop   chan bool
	source *sim.Orchestrator
}

type config struct {
	URI        string `json:"URI"`
	Database   string `json:"Database"`
	Port       string `json:"Port"`
	Collection string `json:"Collection"`
}

func New(configPath string, source *sim.Orchestrator) (Handler, error) {
	jsonConfig, err := os.ReadFile(configPath)
	if err != nil {
		return Handler{}, err
	}
	cfg := config{Collection: "simulationResults"}
	if err := json.Unmarshal(jsonConfig, &cfg); err != nil {
		return Handler{}, err
	}

	pid, _ := uuid.NewUUID()
	inbox := source.SubscribeResults(pid)
	stop := make(chan bool)

	return Handler{
		mux:    &sync.Mutex{},
		inbox:  inbox,
		pid:    pid,
		config: cfg,
		stop:   stop,
		source: source,
	}, nil
}

func resultToBSON(r sim.Result) bson.D {
	return bson.D{
		{Key: "$set", Value: bson.M{
			"run_id":       r.RunID.String(),
			"scenario_id":  r.ScenarioID.String(),
			"scenario":     r.Scenario,
			"kind":         string(r.Kind),
			"success":      r.Success,
			"mode":         string(r.Mode),
			"cache_hit":    r.CacheHit,
			"kpi":          r.KPI,
			"warnings":     r.Warnings,
			"error":        r.Error,
			"completed_at": r.CompletedAt,
		}},
	}
}

func (h *Handler) StopProcess() {
	h.source.UnsubscribeResults(h.pid)
	h.stop <- true
}

func (h Handler) Process() {
	//TODO: Handle reconnection to the MongoDB resource
	client, err := mongo.NewClient(options.Client().ApplyURI(h.config.URI + ":" + h.config.Port))
	if err != nil {
		log.Println("[Mongo] client setup failed, persistence disabled:", err)
		return
	}

	ctx := context.TODO()
	if err := client.Connect(ctx); err != nil {
		log.Println("[Mongo] connect failed, persistence disabled:", err)
		return
	}
	defer client.Disconnect(ctx)

	coll := client.Database(h.config.Database).Collection(h.config.Collection)
loop:
	for {
		select {
		case r := <-h.inbox:
			opts := options.Update().SetUpsert(true)
			_, err = coll.UpdateOne(
				ctx,
				bson.M{"run_id": r.RunID.String()},
				resultToBSON(r),
				opts,
			)
			if err != nil {
				log.Println("[Mongo] write failed:", err)
			}
		case <-h.stop:
			break loop
		}
	}
	log.Println("[Mongo] Process Shutdown")
}

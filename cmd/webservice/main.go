package main

import (
	"flag"
	"log"
	"net/http"

	"github.com/ijhewaratne/gridplan/internal/pkg/database/mongodb"
	"github.com/ijhewaratne/gridplan/internal/pkg/plan"
	"github.com/ijhewaratne/gridplan/internal/pkg/sim"
	"github.com/ijhewaratne/gridplan/internal/pkg/sim/virtualsolver"
	"github.com/ijhewaratne/gridplan/internal/pkg/webservice"
)

func main() {
	port := flag.String("port", ":8080", "listen address")
	simConfig := flag.String("sim-config", "./config/sim/orchestrator.json", "orchestrator configuration file")
	planConfig := flag.String("plan-config", "./config/plan/pipeline.json", "pipeline configuration file")
	mongoConfig := flag.String("mongo-config", "", "MongoDB persistence configuration file")
	flag.Parse()

	simCfg, err := sim.ReadConfig(*simConfig)
	if err != nil {
		log.Println("[Main] sim config unavailable, using defaults:", err)
		simCfg = sim.Config{SimulationMode: "auto", FallbackOnError: true}
	}

	planCfg, err := plan.ReadConfig(*planConfig)
	if err != nil {
		log.Println("[Main] pipeline config unavailable, using defaults:", err)
		planCfg = plan.DefaultConfig()
	}

	orch, err := sim.New(simCfg, nil, virtualsolver.New(), nil, nil)
	if err != nil {
		panic(err)
	}

	if *mongoConfig != "" {
		log.Println("[Main] Connecting MongoDB Service")
		handler, err := mongodb.New(*mongoConfig, orch)
		if err != nil {
			panic(err)
		}
		go handler.Process()
	}

	app := webservice.NewApp(plan.NewPlanner(planCfg), orch)
	r := app.Router()
	http.Handle("/", r)

	log.Println("[Main] Starting Server on Port", *port)
	if err := http.ListenAndServe(*port, r); err != nil {
		log.Fatal(err)
	}
}

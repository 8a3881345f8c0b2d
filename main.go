package main

import (
	"context"
	"flag"
	"io/ioutil"
	"os"

	"github.com/streamopt/cacheplan/alg"
	"github.com/streamopt/cacheplan/internal/config"
	"github.com/streamopt/cacheplan/internal/dataset"
	"github.com/streamopt/cacheplan/internal/gui"
	"github.com/streamopt/cacheplan/internal/model"
	"github.com/streamopt/cacheplan/internal/solver"
	"github.com/streamopt/cacheplan/logging"
	"github.com/streamopt/cacheplan/statistics"
	"gopkg.in/yaml.v2"
)

var log = logging.Get()

func main() {
	configFilePath := flag.String("config_file", "", "Path to config file")
	flag.Parse()

	if flag.NArg() != 1 {
		log.Error().Msg("usage: cacheplan [-config_file path] <dataset>")
		os.Exit(1)
	}

	config.PlannerGeneralConfig = config.Default()
	if *configFilePath != "" {
		yamlFile, err := ioutil.ReadFile(*configFilePath)
		if err != nil {
			log.Err(err).Msgf("could not load config")
			os.Exit(1)
		}

		if err := yaml.UnmarshalStrict(yamlFile, &config.PlannerGeneralConfig); err != nil {
			log.Err(err).Msgf("could not load config")
			os.Exit(1)
		}
	}
	cfg := &config.PlannerGeneralConfig

	datasetPath := flag.Arg(0)
	if _, err := os.Stat(datasetPath); err != nil {
		log.Err(err).Msgf("could not find dataset %s", datasetPath)
		os.Exit(1)
	}

	data, err := dataset.Load(datasetPath)
	if err != nil {
		log.Err(err).Msg("could not load dataset")
		os.Exit(1)
	}

	placementModel, err := alg.BuildPlacementModel(data)
	if err != nil {
		log.Err(err).Msg("could not build placement model")
		os.Exit(1)
	}

	if cfg.MpsFile != "" {
		if err := exportModel(placementModel, cfg.MpsFile); err != nil {
			log.Err(err).Msgf("could not export model to %s", cfg.MpsFile)
			os.Exit(1)
		}
		log.Info().Msgf("model exported to %s", cfg.MpsFile)
	}

	var progressStream chan solver.Progress
	if cfg.Gui {
		progressStream = make(chan solver.Progress, 16)
		gui.SetUp(progressStream)
		go gui.Run()
	}

	var engine solver.Engine
	switch cfg.Engine {
	case "branchbound":
		engine = solver.NewBranchBound(progressStream)
	default:
		log.Error().Msg("solver engine is not recognized")
		os.Exit(1)
	}

	solution, err := engine.Solve(context.Background(), placementModel.Model, solver.Options{
		RelativeGap: cfg.RelativeGap,
		MaxNodes:    cfg.MaxNodes,
	})
	if err != nil {
		log.Err(err).Msg("solver failed")
		os.Exit(1)
	}

	statistics.Set("explored nodes", solution.Nodes)

	switch solution.Status {
	case solver.StatusInfeasible:
		// The empty placement satisfies every constraint, so an
		// infeasible report means the built model is wrong.
		log.Error().Msg("solver reported infeasible on an always-feasible model, placement model construction is defective")
		os.Exit(1)
	case solver.StatusNoSolution:
		log.Warn().Msg("no solution found within the search budget")
		log.Info().Msg(statistics.Display())
		return
	}

	placement := alg.ExtractPlacement(placementModel, solution)
	if cfg.Gui {
		gui.Publish(placement)
	}

	if err := writePlacement(placement, cfg.OutputFile); err != nil {
		log.Err(err).Msgf("could not write %s", cfg.OutputFile)
		os.Exit(1)
	}

	log.Info().Msgf(
		"%s solution with objective %g (gap %.4f, %d nodes) written to %s",
		solution.Status, solution.Objective, solution.Gap, solution.Nodes, cfg.OutputFile,
	)
	log.Info().Msg(statistics.Display())
}

func exportModel(placementModel *alg.PlacementModel, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return placementModel.Model.WriteMPS(f)
}

func writePlacement(placement model.Placement, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return placement.Write(f)
}

package main

import (
	"xaisentinel.com/xrs/api"
	"xaisentinel.com/xrs/audit"
	"xaisentinel.com/xrs/logger"
	"xaisentinel.com/xrs/ml/boost"
	"xaisentinel.com/xrs/scoring"
	"xaisentinel.com/xrs/traindata"
	"xaisentinel.com/xrs/types"
	"xaisentinel.com/xrs/worker"
	"fmt"
	"github.com/kelseyhightower/envconfig"
	"net/http"
	"os"
	"time"
)

type Config struct {
	ModelConfigPath string `envconfig:"XRS_MODEL_CONFIG_PATH" default:""`
	RestAPIActive   bool   `envconfig:"XRS_REST_API_ACTIVE" default:"true"`
	RestAPIPort     string `envconfig:"XRS_REST_API_PORT" default:"8000"`
	WorkerActive    bool   `envconfig:"XRS_WORKER_ACTIVE" default:"false"`
}

func main() {
	logger.SetupLogging()
	xrsLogger := logger.NewLogger("Main")
	fatalErrLogger := xrsLogger.Fatal().Caller()
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		fatalErrLogger.Err(err).Msg("Failed to read environment")
		os.Exit(1)
	}
	if !config.RestAPIActive && !config.WorkerActive {
		fatalErrLogger.Msg("Neither REST API nor worker is active, nothing to serve")
		os.Exit(1)
	}

	modelCfg, err := types.LoadModelConfig(config.ModelConfigPath)
	if err != nil {
		fatalErrLogger.Err(err).Msg("Failed to load model config")
		os.Exit(1)
	}
	fingerprint := modelCfg.Fingerprint()

	// train the model on startup
	xrsLogger.Info().
		Str("fingerprint", fingerprint).
		Int("rounds", modelCfg.Rounds).
		Int("max_depth", modelCfg.MaxDepth).
		Int("data_size", modelCfg.DataSize).
		Msg("Training risk model")
	x, y := traindata.Generate(modelCfg.DataSize, modelCfg.Seed)
	trainX, trainY, testX, testY := traindata.Split(x, y, modelCfg.HoldoutFraction)
	started := time.Now()
	ens, err := boost.Train(trainX, trainY, boost.Config{
		Rounds:         modelCfg.Rounds,
		MaxDepth:       modelCfg.MaxDepth,
		LearningRate:   modelCfg.LearningRate,
		Lambda:         modelCfg.Lambda,
		MinSplitGain:   modelCfg.MinSplitGain,
		MinChildWeight: modelCfg.MinChildWeight,
	})
	if err != nil {
		fatalErrLogger.Err(err).Msg("Failed to train risk model")
		os.Exit(1)
	}
	xrsLogger.Info().
		Int("trees", len(ens.Trees)).
		Dur("took", time.Since(started)).
		Float64("train_accuracy", traindata.Accuracy(ens, trainX, trainY)).
		Float64("holdout_accuracy", traindata.Accuracy(ens, testX, testY)).
		Msg("Trained risk model")

	svc, err := scoring.New(ens)
	if err != nil {
		fatalErrLogger.Err(err).Msg("Failed to build scoring service")
		os.Exit(1)
	}

	var sink api.AuditSink
	auditSink, err := audit.NewSink(fingerprint)
	if err != nil {
		xrsLogger.Warn().Err(err).Msg("Could not create audit sink, assessments will not be recorded")
	} else {
		sink = auditSink
	}

	if config.RestAPIActive {
		go func() {
			xrsLogger.Info().Msg("Starting API service")
			apiRequest := &api.Request{
				Scorer: svc,
				Audit:  sink,
			}
			http.HandleFunc("/analyze", api.WithCORS(apiRequest.Analyze))
			http.HandleFunc("/", api.WithCORS(api.Health))
			host := fmt.Sprintf(":%s", config.RestAPIPort)
			xrsLogger.Info().Msgf("REST API on %s", host)
			err := http.ListenAndServe(host, nil)
			fatalErrLogger.Err(err).Msg("REST API stopped with error")
		}()
	}

	if !config.WorkerActive {
		select {}
	}

	xrsLogger.Info().Msg("Start XRS Worker")
	for {
		rmqWorker, err := worker.New(svc)
		if err != nil {
			xrsLogger.Fatal().Err(err).Msg("Could not initialize RMQ worker")
			os.Exit(1)
		}
		err = rmqWorker.StartWorker()
		if err != nil {
			xrsLogger.Err(err).Msg("Worker returned with error. Launching new in 5 seconds")
			time.Sleep(5 * time.Second)
		}
	}
}

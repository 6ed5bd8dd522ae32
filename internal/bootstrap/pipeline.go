package bootstrap

import (
	infralogger "github.com/jonesrussell/north-cloud/triage/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/triage/internal/config"
	"github.com/jonesrussell/north-cloud/triage/internal/pipeline"
	"github.com/jonesrussell/north-cloud/triage/internal/reply"
	"github.com/jonesrussell/north-cloud/triage/internal/severity"
	"github.com/jonesrussell/north-cloud/triage/internal/telemetry"
)

// SetupPipeline wires the analysis pipeline. store may be nil, in which
// case only Analyze is usable.
func SetupPipeline(
	cfg *config.Config,
	models *Models,
	store pipeline.Store,
	tel *telemetry.Provider,
	logger infralogger.Logger,
) *pipeline.Pipeline {
	var replyOpts []reply.Option
	if cfg.Reply.CrisisMessage != "" {
		replyOpts = append(replyOpts, reply.WithCrisisReply(cfg.Reply.CrisisMessage))
	}

	deps := pipeline.Deps{
		Scorer:     models.Scorer,
		Extractor:  models.Extractor,
		Classifier: models.Classifier,
		Resolver:   severity.NewResolver(),
		Replies:    reply.New(replyOpts...),
		Store:      store,
		Telemetry:  tel,
		Logger:     logger,
	}
	return pipeline.New(pipeline.Config{ModelTimeout: cfg.ML.Timeout}, deps)
}

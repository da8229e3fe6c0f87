package get_build_history

import (
	"envforge/internal/application/config"
	"envforge/internal/domain/model"
	"envforge/internal/domain/repository"
	log "envforge/pkg/log"
)

// GetBuildHistoryHandler handles the GetBuildHistoryQuery
type GetBuildHistoryHandler struct {
	config *config.Config
	ledger repository.BuildLedger
}

// Handle executes the GetBuildHistoryQuery
func (h *GetBuildHistoryHandler) Handle(query GetBuildHistoryQuery) ([]*model.Build, error) {
	if !h.config.IsFeatureEnabled(config.FeatureBuildLedger) {
		return nil, log.Errorf("build ledger feature is disabled")
	}

	return h.ledger.ListBuilds(query.RecipeName, query.Limit)
}

// NewGetBuildHistoryHandler creates a new GetBuildHistoryHandler
func NewGetBuildHistoryHandler(config *config.Config, ledger repository.BuildLedger) *GetBuildHistoryHandler {
	return &GetBuildHistoryHandler{
		config: config,
		ledger: ledger,
	}
}

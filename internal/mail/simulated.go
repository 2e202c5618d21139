package mail

import (
	"context"

	"github.com/hoa-manager/hoa-backend/internal/domain"
	"github.com/rs/zerolog"
)

// SimulatedDistributor logs deliveries instead of sending them
type SimulatedDistributor struct {
	logger zerolog.Logger
}

// NewSimulatedDistributor creates a new SimulatedDistributor
func NewSimulatedDistributor(logger zerolog.Logger) *SimulatedDistributor {
	return &SimulatedDistributor{
		logger: logger.With().Str("component", "mail").Str("mode", "simulated").Logger(),
	}
}

// Send reports every recipient as delivered
func (d *SimulatedDistributor) Send(ctx context.Context, gen *domain.ReportGeneration, recipients []string) domain.DistributionResult {
	for _, to := range recipients {
		d.logger.Info().
			Int64("generation_id", gen.ID).
			Str("file_name", gen.FileName).
			Str("to", to).
			Msg("Simulated report e-mail")
	}
	return domain.DistributionResult{
		Success:         true,
		SentCount:       len(recipients),
		TotalRecipients: len(recipients),
	}
}

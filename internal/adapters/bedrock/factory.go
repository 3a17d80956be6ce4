package bedrock

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"go.uber.org/zap"

	"github.com/mikey/inbox-therapist/internal/config"
	"github.com/mikey/inbox-therapist/internal/prompt"
)

// Factory creates Bedrock clients
type Factory struct {
	cfg     *config.Config
	logger  *zap.Logger
	prompts *prompt.Builder
}

// NewFactory creates a new Bedrock factory
func NewFactory(cfg *config.Config, logger *zap.Logger, prompts *prompt.Builder) *Factory {
	return &Factory{
		cfg:     cfg,
		logger:  logger,
		prompts: prompts,
	}
}

// CreateClient creates a new Bedrock client using the default AWS credential chain
func (f *Factory) CreateClient(ctx context.Context) (*BedrockClient, error) {
	bedrockCfg := f.cfg.GetBedrock()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(bedrockCfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	f.logger.Info("Using Amazon Bedrock",
		zap.String("region", bedrockCfg.Region),
		zap.String("model", bedrockCfg.ModelID))

	return NewBedrockClient(bedrockruntime.NewFromConfig(awsCfg), bedrockCfg, f.logger, f.prompts), nil
}

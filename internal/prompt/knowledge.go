package prompt

import (
	"os"

	"go.uber.org/zap"

	"github.com/spec-kit/training-service/internal/config"
)

// Knowledge holds the local reference documents folded into every
// grounded prompt.
type Knowledge struct {
	Framework     string
	KnowledgeBase string
	Website       string
	BestPractices string
}

// LoadKnowledge reads the knowledge files once at startup. A missing
// file degrades to a placeholder so prompts still assemble.
func LoadKnowledge(cfg config.KnowledgeConfig, logger *zap.Logger) Knowledge {
	return Knowledge{
		Framework:     readOr(cfg.FrameworkPath, "Framework not available.", logger),
		KnowledgeBase: readOr(cfg.KnowledgeBasePath, "Knowledge base not available.", logger),
		Website:       readOr(cfg.WebsitePath, "Website notes not available.", logger),
		BestPractices: readOr(cfg.BestPracticesPath, "Best practices not available.", logger),
	}
}

func readOr(path, fallback string, logger *zap.Logger) string {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("knowledge file unavailable", zap.String("path", path), zap.Error(err))
		return fallback
	}
	return string(data)
}

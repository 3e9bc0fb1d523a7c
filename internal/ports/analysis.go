package ports

import (
	"context"

	"github.com/kvasern/roost/internal/domain"
)

// Summarizer is the external language-model collaborator. Implementations own
// their fallback endpoint; an exhausted call wraps domain.ErrAnalysisFailed.
type Summarizer interface {
	Summarize(ctx context.Context, bundle domain.AnalysisBundle) (domain.AnalysisReport, error)
}

// MarketData resolves a best-effort market snapshot for a token address.
type MarketData interface {
	TokenSnapshot(ctx context.Context, address string) (domain.TokenSnapshot, error)
}

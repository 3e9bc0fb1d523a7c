package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kvasern/roost/internal/domain"
	"github.com/kvasern/roost/internal/ports"
)

// AnalysisService produces the bilingual summary from aggregated fetch
// results. It talks to the analysis collaborator directly and never touches
// the account pool.
type AnalysisService struct {
	summarizer ports.Summarizer
	market     ports.MarketData
	cache      ports.Cache
	ttl        time.Duration
	logger     *zap.Logger
}

func NewAnalysisService(summarizer ports.Summarizer, market ports.MarketData, cache ports.Cache, ttl time.Duration, logger *zap.Logger) *AnalysisService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTLs().Analysis
	}

	return &AnalysisService{
		summarizer: summarizer,
		market:     market,
		cache:      cache,
		ttl:        ttl,
		logger:     logger,
	}
}

// Analyze summarizes the aggregated inputs. Empty search results short-circuit
// to the insufficient-data notice without calling the collaborator and without
// writing a cache entry.
func (s *AnalysisService) Analyze(ctx context.Context, cmd AnalyzeCommand) (AnalysisResult, error) {
	if len(cmd.SearchResults) == 0 {
		return AnalysisResult{
			Report: domain.AnalysisReport{Summary: domain.InsufficientDataNotice},
		}, nil
	}

	key := analysisKey(cmd.Address, cmd.Username)

	if !cmd.ForceUpdate {
		if raw, err := s.cache.Get(ctx, key); err == nil {
			var report domain.AnalysisReport
			if err := json.Unmarshal(raw, &report); err == nil {
				return AnalysisResult{Report: report, FromCache: true}, nil
			}
			s.logger.Warn("discarding undecodable cache entry", zap.String("key", key), zap.Error(err))
		} else if !errors.Is(err, domain.ErrCacheMiss) {
			s.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	bundle := domain.AnalysisBundle{
		Address:       strings.TrimSpace(cmd.Address),
		Username:      strings.TrimSpace(cmd.Username),
		Profile:       cmd.Profile,
		SearchResults: cmd.SearchResults,
		UserTweets:    cmd.UserTweets,
	}

	if s.market != nil && bundle.Address != "" {
		snapshot, err := s.market.TokenSnapshot(ctx, bundle.Address)
		if err != nil {
			s.logger.Debug("market snapshot unavailable",
				zap.String("address", bundle.Address),
				zap.Error(err),
			)
		} else {
			bundle.Market = &snapshot
		}
	}

	report, err := s.summarizer.Summarize(ctx, bundle)
	if err != nil {
		return AnalysisResult{}, fmt.Errorf("summarize: %w", err)
	}

	// An empty summary is not worth negative-caching.
	if strings.TrimSpace(report.Summary) != "" {
		raw, err := json.Marshal(report)
		if err != nil {
			s.logger.Error("encoding analysis report failed", zap.String("key", key), zap.Error(err))
		} else if err := s.cache.Set(ctx, key, raw, s.ttl); err != nil {
			s.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
		}
	}

	return AnalysisResult{Report: report}, nil
}

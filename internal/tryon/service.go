package tryon

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/sydney-stones/rfwidjet-server/internal/domain"
	"github.com/sydney-stones/rfwidjet-server/internal/imaging"
)

// UsageLedger gates and records plan consumption. CheckQuota runs before any
// expensive work; RecordUsage runs only after a confirmed non-cached success.
type UsageLedger interface {
	CheckQuota(ctx context.Context, merchantID string) (domain.QuotaStatus, error)
	RecordUsage(ctx context.Context, merchantID string) (*domain.UsagePeriod, error)
}

// BlobStore persists generated composites and returns the canonical key.
type BlobStore interface {
	Write(ctx context.Context, key string, data []byte) (string, error)
}

// Config tunes the orchestration pipeline.
type Config struct {
	// MaxInputBytes caps each resolved input image; <= 0 selects the 5 MB default.
	MaxInputBytes int
	// OptimizeBudget is the target size for provider-bound images; <= 0 selects 500 KB.
	OptimizeBudget int
	// RequestTimeout bounds one generation end to end, retries included.
	RequestTimeout time.Duration
	// StorageBaseURL prefixes stored image keys to form public references.
	StorageBaseURL string
}

// Service orchestrates one try-on generation: validate, consult the cache,
// gate on quota, acquire and optimize both images, invoke the provider
// through the retry executor, estimate cost, extract the size
// recommendation, persist and account. Requests are independent; the cache
// and the ledger are the only shared state.
type Service struct {
	cfg    Config
	logger zerolog.Logger
	images *imaging.Resolver
	cache  *Cache
	gen    Generator
	ledger UsageLedger
	store  BlobStore
	cost   CostModel
	retry  RetryPolicy
	now    func() time.Time
}

// NewService wires the pipeline. store may be nil, in which case inline
// provider output is returned as a data URI instead of a hosted URL.
func NewService(cfg Config, logger zerolog.Logger, images *imaging.Resolver, cache *Cache, gen Generator, ledger UsageLedger, store BlobStore, cost CostModel, retry RetryPolicy) (*Service, error) {
	if images == nil {
		return nil, fmt.Errorf("image resolver is required")
	}
	if cache == nil {
		return nil, fmt.Errorf("cache is required")
	}
	if gen == nil {
		return nil, fmt.Errorf("generator is required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("usage ledger is required")
	}
	if cfg.MaxInputBytes <= 0 {
		cfg.MaxInputBytes = imaging.DefaultMaxInputBytes
	}
	if cfg.OptimizeBudget <= 0 {
		cfg.OptimizeBudget = imaging.DefaultOptimizeBudget
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 2 * time.Minute
	}
	return &Service{
		cfg:    cfg,
		logger: logger,
		images: images,
		cache:  cache,
		gen:    gen,
		ledger: ledger,
		store:  store,
		cost:   cost,
		retry:  retry,
		now:    time.Now,
	}, nil
}

// Generate runs the full pipeline for one request. Failures never write the
// cache and never consume quota; a cache hit skips both the provider call and
// the quota charge.
func (s *Service) Generate(ctx context.Context, req domain.TryOnRequest) (*domain.TryOnResult, error) {
	start := s.now()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()

	if strings.TrimSpace(req.MerchantID) == "" {
		return nil, fmt.Errorf("%w: merchant id is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(req.CustomerImage) == "" {
		return nil, fmt.Errorf("%w: customer image is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(req.ProductImage) == "" {
		return nil, fmt.Errorf("%w: product image is required", domain.ErrInvalidInput)
	}
	req.Options = req.Options.Normalize()

	fingerprint := Fingerprint(req)
	if entry, ok := s.cache.Get(fingerprint); ok {
		s.logger.Debug().
			Str("merchant_id", req.MerchantID).
			Str("fingerprint", fingerprint).
			Msg("tryon: served from cache")
		return &domain.TryOnResult{
			ImageRef:         entry.ImageRef,
			RecommendedSize:  RecommendSize(entry.Analysis),
			Analysis:         entry.Analysis,
			ProcessingTimeMS: s.now().Sub(start).Milliseconds(),
			EstimatedCost:    entry.Cost,
			ServedFromCache:  true,
		}, nil
	}

	status, err := s.ledger.CheckQuota(ctx, req.MerchantID)
	if err != nil {
		return nil, fmt.Errorf("check quota: %w", err)
	}
	if !status.Allowed {
		return nil, &domain.QuotaError{MerchantID: req.MerchantID, Used: status.Used, Limit: status.Limit}
	}

	customer, err := s.prepareImage(ctx, req.CustomerImage)
	if err != nil {
		return nil, err
	}
	product, err := s.prepareImage(ctx, req.ProductImage)
	if err != nil {
		return nil, err
	}

	genStart := s.now()
	output, err := Retry(ctx, s.retry, func(ctx context.Context) (GenerationOutput, error) {
		return s.gen.Generate(ctx, customer, product, req.Options)
	})
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("merchant_id", req.MerchantID).
			Str("fingerprint", fingerprint).
			Msg("tryon: generation failed")
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrGenerationFailed, err)
	}
	generationMS := s.now().Sub(genStart).Milliseconds()

	imageRef, err := s.persistOutput(ctx, fingerprint, output)
	if err != nil {
		return nil, err
	}

	cost := s.cost.Estimate(len(customer)+len(product), len(output.Analysis))

	if req.Options.SaveToCache {
		s.cache.Put(fingerprint, domain.CacheEntry{
			ImageRef:         imageRef,
			Analysis:         output.Analysis,
			GenerationTimeMS: generationMS,
			Cost:             cost,
		})
	}

	period, err := s.ledger.RecordUsage(ctx, req.MerchantID)
	if err != nil {
		// The composite was produced; losing the increment is an accounting
		// bug, not a user-visible failure.
		s.logger.Error().
			Err(err).
			Str("merchant_id", req.MerchantID).
			Msg("tryon: usage record failed after successful generation")
	} else {
		s.logger.Info().
			Str("merchant_id", req.MerchantID).
			Str("period", period.PeriodKey).
			Int("consumed", period.ConsumedCount).
			Msg("tryon: usage recorded")
	}

	return &domain.TryOnResult{
		ImageRef:         imageRef,
		RecommendedSize:  RecommendSize(output.Analysis),
		Analysis:         output.Analysis,
		ProcessingTimeMS: s.now().Sub(start).Milliseconds(),
		EstimatedCost:    cost,
		ServedFromCache:  false,
	}, nil
}

// prepareImage resolves, validates and optimizes one image reference.
func (s *Service) prepareImage(ctx context.Context, ref string) ([]byte, error) {
	data, err := s.images.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	if err := imaging.Validate(data, s.cfg.MaxInputBytes); err != nil {
		return nil, err
	}
	return imaging.Optimize(data, s.cfg.OptimizeBudget), nil
}

// persistOutput turns the provider output into a stable image reference:
// hosted URLs pass through, inline bytes go to the blob store keyed by
// fingerprint, and without a store they are embedded as a data URI.
func (s *Service) persistOutput(ctx context.Context, fingerprint string, output GenerationOutput) (string, error) {
	if output.ImageURL != "" {
		return output.ImageURL, nil
	}
	if len(output.ImageData) == 0 {
		return "", fmt.Errorf("%w: provider returned no image", domain.ErrGenerationFailed)
	}
	if s.store == nil {
		return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(output.ImageData), nil
	}

	key, err := s.store.Write(ctx, fmt.Sprintf("tryon/%s.jpg", fingerprint), output.ImageData)
	if err != nil {
		return "", fmt.Errorf("%w: store result: %v", domain.ErrGenerationFailed, err)
	}
	if base := strings.TrimRight(s.cfg.StorageBaseURL, "/"); base != "" {
		return base + "/" + key, nil
	}
	return key, nil
}

// StartSweeper evicts expired cache entries on the given interval until ctx
// is cancelled.
func (s *Service) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if evicted := s.cache.SweepExpired(); evicted > 0 {
					s.logger.Debug().Int("evicted", evicted).Msg("tryon: cache sweep")
				}
			}
		}
	}()
}

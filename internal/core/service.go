package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"go.uber.org/zap"
)

// DetectionService is the core service for locating embedded messages
type DetectionService struct {
	detector      BoundaryDetector
	cache         CacheRepository
	logger        *zap.Logger
	cacheEnabled  bool
	cacheTTL      time.Duration
	processor     TextPreparer
	maxInputBytes int
}

// NewDetectionService creates a new detection service
func NewDetectionService(
	detector BoundaryDetector,
	cache CacheRepository,
	logger *zap.Logger,
	cacheEnabled bool,
	cacheTTL time.Duration,
	processor TextPreparer,
	maxInputBytes int,
) *DetectionService {
	return &DetectionService{
		detector:      detector,
		cache:         cache,
		logger:        logger,
		cacheEnabled:  cacheEnabled && cache != nil,
		cacheTTL:      cacheTTL,
		processor:     processor,
		maxInputBytes: maxInputBytes,
	}
}

// CacheKey derives the cache key for a block of text
func CacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Analyze runs boundary detection over text
func (s *DetectionService) Analyze(ctx context.Context, text string) (*DetectionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if s.processor != nil {
		text = s.processor.ProcessText(text, s.maxInputBytes)
	}

	key := CacheKey(text)

	// Check cache if enabled
	if s.cacheEnabled {
		if entry, err := s.cache.Get(ctx, key); err == nil {
			s.logger.Debug("Cache hit for text", zap.String("key", key))
			result := entry.Result
			return &result, nil
		}
	}

	result := s.detector.Detect(text)

	if result.Found {
		s.logger.Info("Embedded message detected",
			zap.String("detector", result.Detector),
			zap.Int("match_index", result.MatchIndex()),
			zap.String("confidence", string(result.Confidence)),
			zap.String("from_address", result.Email.From.Address))
	} else {
		s.logger.Debug("No embedded message detected", zap.Int("text_length", len(text)))
	}

	// Update cache with result if enabled
	if s.cacheEnabled {
		now := time.Now()
		entry := &CacheEntry{
			Key:       key,
			Result:    result,
			CreatedAt: now,
			ExpiresAt: now.Add(s.cacheTTL),
		}
		if err := s.cache.Set(ctx, entry); err != nil {
			s.logger.Error("Failed to update cache", zap.Error(err))
		}
	}

	return &result, nil
}

// DetectorNames lists the detectors consulted, in priority order
func (s *DetectionService) DetectorNames() []string {
	return s.detector.DetectorNames()
}

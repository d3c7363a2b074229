package reasoning

import (
	"context"
	"errors"
	"fmt"
	"time"

	"prime-research/internal/pkg/logger"
	"prime-research/pkg/llm"

	"github.com/sony/gobreaker"
)

const reasoningModule = "REASONING"

// ErrUnavailable is returned while the circuit breaker is open.
var ErrUnavailable = errors.New("reasoning backend unavailable")

type BreakerConfig struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	MinRequests      uint32
	FailureThreshold float64
}

func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		MinRequests:      3,
		FailureThreshold: 0.6,
	}
}

// Service wraps an LLM provider with the two calls pipeline stages make.
// Consecutive backend failures trip a breaker so a dead backend fails fast
// instead of stalling each stage for a full request timeout.
type Service struct {
	provider        llm.LLMProvider
	breaker         *gobreaker.CircuitBreaker
	logger          logger.ILogger
	maxTokens       int
	structuredModel string
}

type Option func(*Service)

// WithMaxOutputTokens caps free-form answers. Zero leaves the backend default.
func WithMaxOutputTokens(n int) Option {
	return func(s *Service) {
		s.maxTokens = n
	}
}

// WithStructuredModel routes JSON generations to a different model than the
// provider default.
func WithStructuredModel(model string) Option {
	return func(s *Service) {
		s.structuredModel = model
	}
}

func NewService(provider llm.LLMProvider, cfg BreakerConfig, log logger.ILogger, opts ...Option) *Service {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "reasoning",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn(reasoningModule, "Circuit breaker state changed", map[string]interface{}{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			})
		},
	})

	s := &Service{
		provider: provider,
		breaker:  breaker,
		logger:   log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GenerateText returns the model's free-form answer to prompt. system may be
// empty.
func (s *Service) GenerateText(ctx context.Context, prompt, system string) (string, error) {
	var opts []llm.Option
	if s.maxTokens > 0 {
		opts = append(opts, llm.WithMaxTokens(s.maxTokens))
	}

	if system == "" {
		return s.call(func() (string, error) {
			return s.provider.Generate(ctx, prompt, opts...)
		})
	}
	history := []llm.Message{
		{Role: "system", Content: system},
		{Role: "user", Content: prompt},
	}
	return s.call(func() (string, error) {
		return s.provider.Chat(ctx, history, opts...)
	})
}

// GenerateStructured asks for JSON shaped like schema and decodes the reply.
// The error is set only when the backend call itself failed; a reply that
// cannot be decoded comes back as a Decoded with Kind Unparseable.
func (s *Service) GenerateStructured(ctx context.Context, prompt string, schema string) (Decoded, error) {
	full := prompt
	if schema != "" {
		full = fmt.Sprintf("%s\n\nRespond only with JSON matching this schema:\n%s", prompt, schema)
	}

	opts := []llm.Option{llm.WithJSON(), llm.WithTemperature(0.2)}
	if s.structuredModel != "" {
		opts = append(opts, llm.WithModel(s.structuredModel))
	}
	text, err := s.call(func() (string, error) {
		return s.provider.Generate(ctx, full, opts...)
	})
	if err != nil {
		return Decoded{Kind: Unparseable}, err
	}

	decoded := Decode(text)
	if decoded.OK() {
		s.logger.Debug(reasoningModule, "Structured output decoded", map[string]interface{}{
			"kind": decoded.Kind.String(),
		})
	} else {
		s.logger.Warn(reasoningModule, "Structured output unparseable", map[string]interface{}{
			"preview": preview(text, 200),
		})
	}
	return decoded, nil
}

func (s *Service) call(fn func() (string, error)) (string, error) {
	out, err := s.breaker.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return "", err
	}
	return out.(string), nil
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

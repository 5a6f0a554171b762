// Package dialogue runs conversation turns: entity extraction, intent
// matching, context tracking and reply selection.
package dialogue

import (
	"fmt"
	"sort"
	"time"

	"support-bot/internal/catalog"
	"support-bot/internal/common/logger"
	"support-bot/internal/entity"
	"support-bot/internal/intent"
	"support-bot/internal/models"
	"support-bot/internal/nlp"
)

// DefaultFallbacks are the replies used when no intent matches.
var DefaultFallbacks = []string{
	"I'm sorry, I don't understand. Could you please rephrase that?",
	"I'm not sure what you mean. Can you try asking in a different way?",
	"I didn't quite catch that. Could you please clarify?",
	"I'm still learning. Could you try asking your question differently?",
}

// Matcher resolves an utterance to an intent.
type Matcher interface {
	FindIntent(input string) models.MatchResult
}

// Extractor pulls entities out of raw text.
type Extractor interface {
	Extract(text string) models.Entities
}

// Recorder receives per-turn measurements.
type Recorder interface {
	ObserveTurn(tier models.MatchTier, intent string, augmented bool, elapsed time.Duration)
	ObserveEntities(types []string)
}

// Turn is the full outcome of one GetResponse call.
type Turn struct {
	Reply string `json:"reply"`
	// Intent is empty and Confidence zero when the fallback was used.
	Intent     string           `json:"intent"`
	Confidence float64          `json:"confidence"`
	Tier       models.MatchTier `json:"tier"`
	// Entities holds only what this turn extracted.
	Entities  models.Entities `json:"entities"`
	Augmented bool            `json:"augmented"`
}

// Engine holds one conversation. Turns must not overlap; use Sessions to
// serve several conversations concurrently.
type Engine struct {
	catalog    *models.Catalog
	normalizer intent.TextNormalizer
	matcher    Matcher
	extractor  Extractor
	chooser    Chooser
	logger     logger.Logger
	recorder   Recorder

	threshold   float64
	historySize int
	fallbacks   []string
	rules       []AugmentationRule

	ctx   *conversation
	store *entity.Store
}

// Option configures an Engine.
type Option func(*Engine) error

// WithNormalizer sets the normalizer used to build the default matcher.
func WithNormalizer(n intent.TextNormalizer) Option {
	return func(e *Engine) error {
		e.normalizer = n
		return nil
	}
}

// WithMatcher replaces the catalog matcher, for example to share one index
// across engines.
func WithMatcher(m Matcher) Option {
	return func(e *Engine) error {
		e.matcher = m
		return nil
	}
}

// WithExtractor enables entity extraction and response augmentation.
func WithExtractor(x Extractor) Option {
	return func(e *Engine) error {
		e.extractor = x
		return nil
	}
}

// WithEntities enables extraction with the built-in entity patterns.
func WithEntities() Option {
	return func(e *Engine) error {
		x, err := entity.NewExtractor()
		if err != nil {
			return err
		}
		e.extractor = x
		return nil
	}
}

func WithChooser(c Chooser) Option {
	return func(e *Engine) error {
		if c == nil {
			return fmt.Errorf("chooser must not be nil")
		}
		e.chooser = c
		return nil
	}
}

func WithLogger(log logger.Logger) Option {
	return func(e *Engine) error {
		e.logger = log
		return nil
	}
}

func WithRecorder(r Recorder) Option {
	return func(e *Engine) error {
		e.recorder = r
		return nil
	}
}

// WithThreshold sets the keyword threshold of the default matcher.
func WithThreshold(t float64) Option {
	return func(e *Engine) error {
		e.threshold = t
		return nil
	}
}

// WithHistorySize bounds PreviousIntents.
func WithHistorySize(n int) Option {
	return func(e *Engine) error {
		if n < 0 {
			return fmt.Errorf("history size must not be negative, got %d", n)
		}
		e.historySize = n
		return nil
	}
}

// WithFallbacks replaces DefaultFallbacks.
func WithFallbacks(replies ...string) Option {
	return func(e *Engine) error {
		if len(replies) == 0 {
			return fmt.Errorf("at least one fallback reply is required")
		}
		e.fallbacks = append([]string(nil), replies...)
		return nil
	}
}

// WithAugmentationRules replaces DefaultAugmentationRules. An empty list
// disables augmentation.
func WithAugmentationRules(rules ...AugmentationRule) Option {
	return func(e *Engine) error {
		e.rules = append([]AugmentationRule(nil), rules...)
		return nil
	}
}

// New validates cat and builds an engine over it. Invalid catalogs fail with
// a data error from internal/common/errors.
func New(cat *models.Catalog, opts ...Option) (*Engine, error) {
	if err := catalog.Validate(cat); err != nil {
		return nil, err
	}

	e := &Engine{
		catalog:     cat,
		chooser:     NewRandomChooser(time.Now().UnixNano()),
		logger:      logger.NewNoOpLogger(),
		threshold:   intent.DefaultThreshold,
		historySize: DefaultHistorySize,
		fallbacks:   DefaultFallbacks,
		rules:       DefaultAugmentationRules(),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	if e.matcher == nil {
		if e.normalizer == nil {
			n, err := nlp.New()
			if err != nil {
				return nil, err
			}
			e.normalizer = n
		}
		m, err := intent.NewMatcher(cat, e.normalizer,
			intent.WithThreshold(e.threshold),
			intent.WithLogger(e.logger),
		)
		if err != nil {
			return nil, err
		}
		e.matcher = m
	}

	e.ctx = newConversation(e.historySize)
	e.store = entity.NewStore()
	return e, nil
}

// Fork returns an engine with the same catalog, matcher and settings but an
// empty context and entity store.
func (e *Engine) Fork() *Engine {
	f := *e
	f.ctx = newConversation(e.historySize)
	f.store = entity.NewStore()
	return &f
}

// GetResponse runs one turn and returns the reply.
func (e *Engine) GetResponse(input string) string {
	return e.Respond(input).Reply
}

// Respond runs one turn and reports how the reply was produced.
func (e *Engine) Respond(input string) Turn {
	start := time.Now()

	var found models.Entities
	if e.extractor != nil {
		found = e.extractor.Extract(input)
		e.store.Merge(found)
	}

	res := e.matcher.FindIntent(input)
	turn := Turn{Tier: res.Tier, Entities: found}

	if res.Matched() {
		e.ctx.advance(res.Intent.Tag)
		turn.Intent = res.Intent.Tag
		turn.Confidence = res.Confidence
		turn.Reply = pick(e.chooser, res.Intent.Responses)
	} else {
		turn.Tier = models.TierNone
		turn.Reply = pick(e.chooser, e.fallbacks)
	}

	if e.extractor != nil {
		if extra, ok := augment(e.rules, found, e.ctx.current); ok {
			turn.Reply += extra
			turn.Augmented = true
		}
	}

	elapsed := time.Since(start)
	e.logger.Debug("Dialogue turn", map[string]interface{}{
		"intent":     turn.Intent,
		"tier":       string(turn.Tier),
		"confidence": turn.Confidence,
		"entities":   len(found),
		"augmented":  turn.Augmented,
		"elapsed":    elapsed.String(),
	})
	if e.recorder != nil {
		e.recorder.ObserveTurn(turn.Tier, turn.Intent, turn.Augmented, elapsed)
		if len(found) > 0 {
			e.recorder.ObserveEntities(entityTypes(found))
		}
	}
	return turn
}

// ResetContext forgets the current and previous intents. Stored entities are kept.
func (e *Engine) ResetContext() {
	e.ctx.reset()
}

// Context returns a snapshot of the conversation memory.
func (e *Engine) Context() Context {
	return e.ctx.snapshot()
}

// Entities returns a snapshot of every entity seen so far.
func (e *Engine) Entities() models.Entities {
	return e.store.Snapshot()
}

// ClearEntities empties the entity store.
func (e *Engine) ClearEntities() {
	e.store.Clear()
}

// Catalog returns the catalog the engine matches against.
func (e *Engine) Catalog() *models.Catalog {
	return e.catalog
}

// EntitiesEnabled reports whether an extractor is configured.
func (e *Engine) EntitiesEnabled() bool {
	return e.extractor != nil
}

func pick(c Chooser, candidates []string) string {
	return candidates[c.Intn(len(candidates))]
}

func entityTypes(found models.Entities) []string {
	types := make([]string, 0, len(found))
	for t := range found {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

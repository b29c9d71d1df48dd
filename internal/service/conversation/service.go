package conversation

import (
	"math/rand/v2"
	"sync"

	"github.com/talkeasy/backend/internal/analysis/intent"
	"github.com/talkeasy/backend/internal/model/topic"
)

// DefaultTopicCount is the size of the starter panel shown next to the chat.
const DefaultTopicCount = 8

var fallbackTemplates = []string{
	"That's interesting! Here's another topic to consider: ",
	"Great point! You might also want to discuss: ",
	"I see where you're coming from. Here's another conversation starter: ",
	"That's a good conversation direction! You could also try: ",
}

// FallbackTemplates returns the lead-ins used when no keyword rule matches.
// Each reply is one of these followed by a general topic.
func FallbackTemplates() []string {
	return append([]string(nil), fallbackTemplates...)
}

// Service samples conversation starters and produces scripted replies.
// The corpus is read-only; the random source is the only shared state.
type Service struct {
	corpus topic.Store

	mu  sync.Mutex
	rng *rand.Rand
}

// Option customises a Service.
type Option func(*Service)

// WithRand replaces the random source.
func WithRand(rng *rand.Rand) Option {
	return func(s *Service) {
		if rng != nil {
			s.rng = rng
		}
	}
}

// WithSeed makes sampling reproducible.
func WithSeed(seed uint64) Option {
	return WithRand(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

// NewService creates a service over corpus.
func NewService(corpus topic.Store, opts ...Option) *Service {
	s := &Service{
		corpus: corpus,
		rng:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Corpus exposes the underlying topic store.
func (s *Service) Corpus() topic.Store {
	return s.corpus
}

// Topics returns n distinct starters. Every category contributes one topic
// first (in enumeration order) before the remaining slots are filled at
// random. n is capped at the corpus size; n <= 0 yields an empty slice.
func (s *Service) Topics(n int) []string {
	if n <= 0 {
		return []string{}
	}
	if size := s.corpus.Size(); n > size {
		n = size
	}

	categories := s.corpus.Categories()
	pools := make([][]string, len(categories))
	for i, category := range categories {
		pools[i] = s.corpus.Topics(category)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]string, 0, n)
	for i := range pools {
		if len(result) >= n {
			break
		}
		if len(pools[i]) == 0 {
			continue
		}
		result = append(result, s.takeLocked(&pools[i]))
	}

	// Only pools with remaining topics are drawn from, so every draw is
	// unique and the loop runs at most n times.
	for len(result) < n {
		open := make([]int, 0, len(pools))
		for i, pool := range pools {
			if len(pool) > 0 {
				open = append(open, i)
			}
		}
		if len(open) == 0 {
			break
		}
		pick := open[s.rng.IntN(len(open))]
		result = append(result, s.takeLocked(&pools[pick]))
	}

	return result
}

// takeLocked removes and returns a random element of pool.
func (s *Service) takeLocked(pool *[]string) string {
	items := *pool
	idx := s.rng.IntN(len(items))
	picked := items[idx]
	last := len(items) - 1
	items[idx] = items[last]
	*pool = items[:last]
	return picked
}

// Reply answers free text with the first matching keyword rule, or with a
// fallback template wrapping a general topic. It never fails.
func (s *Service) Reply(text string) string {
	rule, ok := intent.Match(text)
	if ok && rule.Fixed() {
		return rule.Reply
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if ok {
		if picked, found := s.pickLocked(rule.Category); found {
			return picked
		}
	}

	template := fallbackTemplates[s.rng.IntN(len(fallbackTemplates))]
	general, _ := s.pickLocked(topic.General)
	return template + general
}

// Suggest returns one random topic from category.
func (s *Service) Suggest(category topic.Category) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pickLocked(category)
}

func (s *Service) pickLocked(category topic.Category) (string, bool) {
	topics := s.corpus.Topics(category)
	if len(topics) == 0 {
		return "", false
	}
	return topics[s.rng.IntN(len(topics))], true
}

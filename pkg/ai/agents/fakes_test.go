package agents

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"prime-research/internal/entity"
	"prime-research/internal/pkg/logger"
	"prime-research/pkg/ai/reasoning"
	"prime-research/pkg/loader"
	"prime-research/pkg/search"
	"prime-research/pkg/vectorindex"
)

type wordEmbedder struct{}

func (wordEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, text := range texts {
		v := make([]float32, 27)
		v[26] = 1
		for _, r := range strings.ToLower(text) {
			if r >= 'a' && r <= 'z' {
				v[r-'a']++
			}
		}
		out = append(out, v)
	}
	return out, nil
}

func newTestIndex() *vectorindex.Index {
	return vectorindex.New(wordEmbedder{}, vectorindex.NewMemoryStore(), vectorindex.DefaultBatchSize, logger.NewNopLogger(), nil)
}

type structuredCall struct {
	Prompt string
	Schema string
}

// fakeReasoner answers structured calls with Decode(reply) so the tests go
// through the same recovery path as production.
type fakeReasoner struct {
	text       string
	textErr    error
	replies    []string
	replyErr   error
	textCalls  []string
	structured []structuredCall
}

func (f *fakeReasoner) GenerateText(_ context.Context, prompt, _ string) (string, error) {
	f.textCalls = append(f.textCalls, prompt)
	return f.text, f.textErr
}

func (f *fakeReasoner) GenerateStructured(_ context.Context, prompt string, schema string) (reasoning.Decoded, error) {
	f.structured = append(f.structured, structuredCall{Prompt: prompt, Schema: schema})
	if f.replyErr != nil {
		return reasoning.Decoded{Kind: reasoning.Unparseable}, f.replyErr
	}
	if len(f.replies) == 0 {
		return reasoning.Decode(""), nil
	}
	reply := f.replies[0]
	if len(f.replies) > 1 {
		f.replies = f.replies[1:]
	}
	return reasoning.Decode(reply), nil
}

type fakeStore struct {
	mu        sync.Mutex
	sessions  map[string]string
	nodes     map[string]entity.GraphNode
	edges     []entity.GraphEdge
	failNodes map[string]bool
	createErr error
	nextID    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		sessions:  map[string]string{},
		nodes:     map[string]entity.GraphNode{},
		failNodes: map[string]bool{},
	}
}

func (s *fakeStore) CreateSession(_ context.Context, topic string, _ int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return "", s.createErr
	}
	s.nextID++
	id := "session-" + string(rune('0'+s.nextID))
	s.sessions[id] = ""
	return id, nil
}

func (s *fakeStore) UpdateSessionSummary(_ context.Context, id, summary string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; ok {
		s.sessions[id] = summary
	}
	return nil
}

func (s *fakeStore) UpsertNode(_ context.Context, node entity.GraphNode) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failNodes[node.Id] {
		return false, errors.New("constraint failed")
	}
	if _, ok := s.nodes[node.Id]; ok {
		return false, nil
	}
	s.nodes[node.Id] = node
	return true, nil
}

func (s *fakeStore) InsertEdge(_ context.Context, src, tgt, rel string, meta map[string]interface{}) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := "edge-" + string(rune('a'+len(s.edges)))
	s.edges = append(s.edges, entity.GraphEdge{Id: id, SourceId: src, TargetId: tgt, Relation: rel, Metadata: meta})
	return id, nil
}

func (s *fakeStore) ExistingNodeIDs(_ context.Context, ids []string) (map[string]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[string]bool{}
	for _, id := range ids {
		if _, ok := s.nodes[id]; ok {
			out[id] = true
		}
	}
	return out, nil
}

type fakeSearcher struct {
	results    []search.Result
	err        error
	maxResults int
}

func (f *fakeSearcher) Search(_ context.Context, _ string, maxResults int) ([]search.Result, error) {
	f.maxResults = maxResults
	return f.results, f.err
}

// mapLoader serves documents from a map; unknown sources fail.
type mapLoader map[string]loader.Document

func (m mapLoader) Load(_ context.Context, source string) (loader.Document, error) {
	doc, ok := m[source]
	if !ok {
		return loader.Document{}, errors.New("not found: " + source)
	}
	return doc, nil
}

type recordingSleeper struct {
	waits []time.Duration
}

func (r *recordingSleeper) Sleep(_ context.Context, d time.Duration) error {
	r.waits = append(r.waits, d)
	return nil
}

func testDeps(reasoner Reasoner, index Index, store KnowledgeStore, sleeper *recordingSleeper) Deps {
	return Deps{
		Reasoner: reasoner,
		Index:    index,
		Store:    store,
		Searcher: &fakeSearcher{},
		Web:      mapLoader{},
		Files:    mapLoader{},
		Logger:   logger.NewNopLogger(),
		Settings: DefaultSettings(),
		Sleep:    sleeper.Sleep,
	}
}

func entityNode(id string) entity.GraphNode {
	return entity.GraphNode{Id: id, Label: id, Type: "Concept"}
}

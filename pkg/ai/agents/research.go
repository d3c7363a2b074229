package agents

import (
	"context"

	"prime-research/internal/pkg/logger"
	"prime-research/pkg/ai/pipeline"
	"prime-research/pkg/loader"
	"prime-research/pkg/search"
	"prime-research/pkg/utils"
	"prime-research/pkg/vectorindex"

	"github.com/google/uuid"
)

const researchModule = "RESEARCH"

// Researcher gathers raw documents from web search, explicit URLs and local
// files, chunks them and indexes every chunk in one Add call.
type Researcher struct {
	searcher search.Searcher
	web      Loader
	files    Loader
	index    Index
	settings Settings
	logger   logger.ILogger
}

func NewResearcher(d Deps) *Researcher {
	return &Researcher{
		searcher: d.Searcher,
		web:      d.Web,
		files:    d.Files,
		index:    d.Index,
		settings: d.Settings,
		logger:   d.Logger,
	}
}

func (r *Researcher) Run(ctx context.Context, state pipeline.State) (pipeline.State, error) {
	r.logger.Info(researchModule, "Starting research phase", map[string]interface{}{"topic": state.Topic})

	var raw []loader.Document
	raw = append(raw, r.searchWeb(ctx, state.Topic, state.Depth)...)
	for _, u := range state.URLs {
		if u == "" {
			continue
		}
		if doc, ok := r.load(ctx, r.web, u, ""); ok {
			raw = append(raw, doc)
		}
	}
	for _, f := range state.Files {
		if f == "" {
			continue
		}
		if doc, ok := r.load(ctx, r.files, f, ""); ok {
			raw = append(raw, doc)
		}
	}

	documents := make([]pipeline.DocumentRef, 0, len(raw))
	chunks := make([]pipeline.Chunk, 0)
	var indexDocs []vectorindex.Document

	for _, doc := range raw {
		pieces := utils.SplitText(utils.CleanText(doc.Text), r.settings.ChunkSize, r.settings.ChunkOverlap)
		if len(pieces) == 0 {
			r.logger.Debug(researchModule, "Document has no text after cleaning", map[string]interface{}{"source": doc.Source})
			continue
		}
		for i, piece := range pieces {
			id := uuid.NewString()
			chunks = append(chunks, pipeline.Chunk{ID: id, Text: piece, Source: doc.Source, Title: doc.Title, Index: i})
			indexDocs = append(indexDocs, vectorindex.Document{
				ID:      id,
				Content: piece,
				Metadata: map[string]interface{}{
					"source":      doc.Source,
					"title":       doc.Title,
					"chunk_index": i,
				},
			})
		}
		documents = append(documents, pipeline.DocumentRef{Source: doc.Source, Title: doc.Title})
	}

	indexed := 0
	if len(indexDocs) > 0 {
		indexed = r.index.Add(ctx, indexDocs)
	}

	state.Documents = documents
	state.Chunks = chunks
	r.logger.Info(researchModule, "Research complete", map[string]interface{}{
		"documents": len(documents),
		"chunks":    len(chunks),
		"indexed":   indexed,
	})
	return state, nil
}

func (r *Researcher) searchWeb(ctx context.Context, topic string, depth int) []loader.Document {
	if depth <= 0 || r.searcher == nil {
		return nil
	}
	results, err := r.searcher.Search(ctx, topic, depth*r.settings.ResultsPerDepth)
	if err != nil {
		r.logger.Warn(researchModule, "Web search failed", map[string]interface{}{"topic": topic, "error": err})
		return nil
	}

	var docs []loader.Document
	for _, res := range results {
		if res.URL == "" {
			continue
		}
		title := res.Title
		if title == "" {
			title = topic
		}
		if doc, ok := r.load(ctx, r.web, res.URL, title); ok {
			docs = append(docs, doc)
		}
	}
	return docs
}

// load fetches one source; failures are logged and skipped. An empty title
// keeps the loader's title, falling back to the source.
func (r *Researcher) load(ctx context.Context, l Loader, source, title string) (loader.Document, bool) {
	if l == nil {
		return loader.Document{}, false
	}
	doc, err := l.Load(ctx, source)
	if err != nil {
		r.logger.Warn(researchModule, "Failed to load source", map[string]interface{}{"source": source, "error": err})
		return loader.Document{}, false
	}
	if doc.Text == "" {
		return loader.Document{}, false
	}
	doc.Source = source
	switch {
	case title != "":
		doc.Title = title
	case doc.Title == "":
		doc.Title = source
	}
	return doc, true
}

package agents

import (
	"context"

	"prime-research/internal/entity"
	"prime-research/internal/pkg/logger"
	"prime-research/pkg/ai/pipeline"
	"prime-research/pkg/ai/prompt"
)

const graphModule = "KNOWLEDGE_GRAPH"

const defaultNodeType = "Concept"

// GraphBuilder extracts concepts and relations from the generated content
// and writes them to the knowledge store. Nodes are inserted idempotently.
// An edge is written only when both endpoints are extracted in this run or
// already stored; other edges are dropped with a warning.
type GraphBuilder struct {
	reasoner Reasoner
	store    KnowledgeStore
	logger   logger.ILogger
}

func NewGraphBuilder(reasoner Reasoner, store KnowledgeStore, log logger.ILogger) *GraphBuilder {
	return &GraphBuilder{reasoner: reasoner, store: store, logger: log}
}

func (g *GraphBuilder) Run(ctx context.Context, state pipeline.State) (pipeline.State, error) {
	state.Graph = pipeline.GraphData{Nodes: []pipeline.GraphNode{}, Edges: []pipeline.GraphEdge{}}

	material := generatedContext(state)
	if material == "" {
		g.logger.Info(graphModule, "No generated content, skipping graph extraction", nil)
		return state, nil
	}

	decoded, err := g.reasoner.GenerateStructured(ctx, prompt.KnowledgeGraph(material), prompt.KnowledgeGraphSchema)
	if err != nil {
		g.logger.Warn(graphModule, "Graph extraction failed", map[string]interface{}{"error": err})
		return state, nil
	}
	obj, ok := decoded.Object()
	if !ok {
		g.logger.Warn(graphModule, "Graph extraction unparseable", map[string]interface{}{"kind": decoded.Kind.String()})
		return state, nil
	}

	nodes := parseNodes(obj["nodes"])
	known := make(map[string]bool, len(nodes))
	meta := map[string]interface{}{}
	if state.SessionID != "" {
		meta["session_id"] = state.SessionID
	}

	inserted := 0
	for _, n := range nodes {
		added, err := g.store.UpsertNode(ctx, entity.GraphNode{Id: n.ID, Label: n.Label, Type: n.Type, Metadata: meta})
		if err != nil {
			g.logger.Warn(graphModule, "Failed to insert node", map[string]interface{}{"node": n.ID, "error": err})
			continue
		}
		known[n.ID] = true
		state.Graph.Nodes = append(state.Graph.Nodes, n)
		if added {
			inserted++
		}
	}

	edges := parseEdges(obj["edges"])
	g.resolveStoredEndpoints(ctx, edges, known)

	for _, e := range edges {
		if !known[e.Source] || !known[e.Target] {
			g.logger.Warn(graphModule, "Dropping edge with unknown endpoint", map[string]interface{}{
				"source":   e.Source,
				"target":   e.Target,
				"relation": e.Relation,
			})
			continue
		}
		id, err := g.store.InsertEdge(ctx, e.Source, e.Target, e.Relation, meta)
		if err != nil {
			g.logger.Warn(graphModule, "Failed to insert edge", map[string]interface{}{
				"source": e.Source,
				"target": e.Target,
				"error":  err,
			})
			continue
		}
		e.ID = id
		state.Graph.Edges = append(state.Graph.Edges, e)
	}

	g.logger.Info(graphModule, "Knowledge graph stored", map[string]interface{}{
		"nodes":     len(state.Graph.Nodes),
		"new_nodes": inserted,
		"edges":     len(state.Graph.Edges),
	})
	return state, nil
}

// resolveStoredEndpoints marks endpoints that are not in this extraction but
// already exist in the store.
func (g *GraphBuilder) resolveStoredEndpoints(ctx context.Context, edges []pipeline.GraphEdge, known map[string]bool) {
	var unknown []string
	seen := map[string]bool{}
	for _, e := range edges {
		for _, id := range []string{e.Source, e.Target} {
			if !known[id] && !seen[id] {
				seen[id] = true
				unknown = append(unknown, id)
			}
		}
	}
	if len(unknown) == 0 {
		return
	}

	existing, err := g.store.ExistingNodeIDs(ctx, unknown)
	if err != nil {
		g.logger.Warn(graphModule, "Failed to look up stored nodes", map[string]interface{}{"error": err})
		return
	}
	for id := range existing {
		known[id] = true
	}
}

func parseNodes(v interface{}) []pipeline.GraphNode {
	nodes := []pipeline.GraphNode{}
	seen := map[string]bool{}
	for _, item := range objects(v) {
		id, ok := stringField(item, "id")
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		label, ok := stringField(item, "label")
		if !ok {
			label = id
		}
		kind, ok := stringField(item, "type")
		if !ok {
			kind = defaultNodeType
		}
		nodes = append(nodes, pipeline.GraphNode{ID: id, Label: label, Type: kind})
	}
	return nodes
}

func parseEdges(v interface{}) []pipeline.GraphEdge {
	var edges []pipeline.GraphEdge
	for _, item := range objects(v) {
		source, okS := stringField(item, "source")
		target, okT := stringField(item, "target")
		relation, okR := stringField(item, "relation")
		if !okS || !okT || !okR {
			continue
		}
		edges = append(edges, pipeline.GraphEdge{Source: source, Target: target, Relation: relation})
	}
	return edges
}

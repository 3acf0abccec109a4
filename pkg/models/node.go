package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Capability node types understood by the engine. The editor writes these
// string tags into the persisted node JSON.
const (
	NodeTypeTrigger    = "trigger"
	NodeTypeWebScraper = "web-scraper"
	NodeTypeBrowser    = "browser" // legacy alias for web-scraper
	NodeTypeAIAgent    = "ai-agent"
	NodeTypeDrive      = "google-drive"
	NodeTypeNotion     = "notion"
	NodeTypeSlack      = "slack"
	NodeTypeEmail      = "email"
	NodeTypeSendEmail  = "send-email" // legacy alias for email
)

// Node is a single step in a workflow graph. Data carries the type-specific
// configuration (URL, prompt, webhook target, file reference).
type Node struct {
	ID   string         `json:"id"   validate:"required"`
	Type string         `json:"type" validate:"required"`
	Data map[string]any `json:"data"`
}

// Edge is a directed connection between two nodes.
type Edge struct {
	ID     string `json:"id,omitempty"`
	Source string `json:"source" validate:"required"`
	Target string `json:"target" validate:"required"`
}

// Graph is the decoded form of a workflow's node and edge JSON.
type Graph struct {
	Nodes []Node
	Edges []Edge
}

// ErrNoTrigger indicates a graph has no trigger node to start traversal from.
var ErrNoTrigger = errors.New("no trigger node found")

// ParseGraph decodes the workflow's serialized node and edge sets. Empty
// strings are tolerated and decode to an empty graph, matching what the
// editor writes for a freshly created workflow.
func ParseGraph(nodesJSON, edgesJSON string) (*Graph, error) {
	graph := &Graph{}

	if strings.TrimSpace(nodesJSON) != "" {
		if err := json.Unmarshal([]byte(nodesJSON), &graph.Nodes); err != nil {
			return nil, fmt.Errorf("failed to decode workflow nodes: %w", err)
		}
	}

	if strings.TrimSpace(edgesJSON) != "" {
		if err := json.Unmarshal([]byte(edgesJSON), &graph.Edges); err != nil {
			return nil, fmt.Errorf("failed to decode workflow edges: %w", err)
		}
	}

	return graph, nil
}

// Trigger returns the graph's unique trigger node.
func (g *Graph) Trigger() (Node, error) {
	for _, node := range g.Nodes {
		if node.Type == NodeTypeTrigger {
			return node, nil
		}
	}

	return Node{}, ErrNoTrigger
}

// NodeByID looks up a node by its identifier.
func (g *Graph) NodeByID(id string) (Node, bool) {
	for _, node := range g.Nodes {
		if node.ID == id {
			return node, true
		}
	}

	return Node{}, false
}

// FirstEdgeFrom returns the first edge whose source is the given node.
// Traversal is single-path: when a node has several outgoing edges only the
// first one in stored order is consulted.
func (g *Graph) FirstEdgeFrom(nodeID string) (Edge, bool) {
	for _, edge := range g.Edges {
		if edge.Source == nodeID {
			return edge, true
		}
	}

	return Edge{}, false
}

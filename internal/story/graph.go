package story

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/anki0476/rigveda-explorer/internal/domain"
)

//go:embed content/story.json
var defaultStory []byte

var ErrInvalidGraph = errors.New("invalid story graph")

type graphDocument struct {
	Start string             `json:"start"`
	Nodes []domain.StoryNode `json:"nodes"`
}

// Graph is the immutable narrative graph, keyed by node id
type Graph struct {
	start string
	nodes map[string]domain.StoryNode
	order []string
}

// DanglingReference is a choice whose next chapter does not exist in the graph
type DanglingReference struct {
	NodeID   string
	ChoiceID string
	Target   string
}

func NewGraph(start string, nodes []domain.StoryNode) (*Graph, error) {
	g := &Graph{
		start: start,
		nodes: make(map[string]domain.StoryNode, len(nodes)),
		order: make([]string, 0, len(nodes)),
	}

	for _, node := range nodes {
		if node.ID == "" {
			return nil, fmt.Errorf("%w: node without id", ErrInvalidGraph)
		}
		if _, ok := g.nodes[node.ID]; ok {
			return nil, fmt.Errorf("%w: duplicate node %s", ErrInvalidGraph, node.ID)
		}

		seen := make(map[string]struct{}, len(node.Choices))
		for _, choice := range node.Choices {
			if choice.ID == "" {
				return nil, fmt.Errorf("%w: node %s has a choice without id", ErrInvalidGraph, node.ID)
			}
			if _, ok := seen[choice.ID]; ok {
				return nil, fmt.Errorf("%w: node %s has duplicate choice %s", ErrInvalidGraph, node.ID, choice.ID)
			}
			if !domain.ValidXPAward(choice.Reward.XP) {
				return nil, fmt.Errorf("%w: choice %s/%s has xp %d out of range", ErrInvalidGraph, node.ID, choice.ID, choice.Reward.XP)
			}
			seen[choice.ID] = struct{}{}
		}

		node.Choices = append([]domain.Choice(nil), node.Choices...)
		g.nodes[node.ID] = node
		g.order = append(g.order, node.ID)
	}

	if _, ok := g.nodes[start]; !ok {
		return nil, fmt.Errorf("%w: start node %q is missing", ErrInvalidGraph, start)
	}

	return g, nil
}

func LoadGraph(data []byte) (*Graph, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()

	var doc graphDocument
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: failed to decode: %w", ErrInvalidGraph, err)
	}
	if doc.Start == "" {
		doc.Start = domain.StartChapterID
	}

	return NewGraph(doc.Start, doc.Nodes)
}

// DefaultGraph returns the story bundled with the binary
func DefaultGraph() *Graph {
	g, err := LoadGraph(defaultStory)
	if err != nil {
		panic(err)
	}
	return g
}

func (g *Graph) Start() string {
	return g.start
}

func (g *Graph) Node(id string) (domain.StoryNode, bool) {
	node, ok := g.nodes[id]
	if !ok {
		return domain.StoryNode{}, false
	}
	node.Choices = append([]domain.Choice(nil), node.Choices...)
	return node, true
}

func (g *Graph) Len() int {
	return len(g.nodes)
}

// DanglingReferences lists choices pointing at nodes missing from the graph, in load order
func (g *Graph) DanglingReferences() []DanglingReference {
	var dangling []DanglingReference
	for _, id := range g.order {
		for _, choice := range g.nodes[id].Choices {
			if _, ok := g.nodes[choice.NextChapterID]; !ok {
				dangling = append(dangling, DanglingReference{
					NodeID:   id,
					ChoiceID: choice.ID,
					Target:   choice.NextChapterID,
				})
			}
		}
	}
	return dangling
}

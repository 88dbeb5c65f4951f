package jj

import (
	"fmt"
	"strings"

	"github.com/MyCarrier-DevOps/vcs-prompt/internal/domain"
)

// node is one commit of the ancestry window. Parents are arena indexes.
type node struct {
	id            domain.CommitID
	parents       []int
	immutableHead bool
}

// graph is an arena of commits keyed by id.
type graph struct {
	nodes []node
	index map[domain.CommitID]int
}

func parseGraph(out string) (*graph, error) {
	g := &graph{index: map[domain.CommitID]int{}}
	var rawParents [][]string

	for _, line := range strings.Split(out, "\n") {
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 3 || fields[0] == "" {
			return nil, fmt.Errorf("unexpected log output %q", line)
		}
		id := domain.CommitID(fields[0])
		if _, dup := g.index[id]; dup {
			continue
		}
		g.index[id] = len(g.nodes)
		g.nodes = append(g.nodes, node{id: id, immutableHead: fields[2] == "1"})
		rawParents = append(rawParents, strings.Fields(fields[1]))
	}

	// Parents outside the window get a node without parents of their own.
	for i, ps := range rawParents {
		for _, p := range ps {
			pid := domain.CommitID(p)
			idx, ok := g.index[pid]
			if !ok {
				idx = len(g.nodes)
				g.index[pid] = idx
				g.nodes = append(g.nodes, node{id: pid})
			}
			g.nodes[i].parents = append(g.nodes[i].parents, idx)
		}
	}
	return g, nil
}

func (g *graph) parents(id domain.CommitID) []domain.CommitID {
	idx, ok := g.index[id]
	if !ok {
		return nil
	}
	n := g.nodes[idx]
	out := make([]domain.CommitID, 0, len(n.parents))
	for _, p := range n.parents {
		out = append(out, g.nodes[p].id)
	}
	return out
}

func (g *graph) immutableHead(id domain.CommitID) bool {
	idx, ok := g.index[id]
	return ok && g.nodes[idx].immutableHead
}

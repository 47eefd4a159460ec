// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package election

import (
	"math/big"
)

// candidateNode is algorithm-internal candidate state. The index is
// the ingestion position, which is the tie-break authority.
type candidateNode struct {
	id            string
	index         int
	elected       bool
	electedRound  int
	approvalStake *big.Rat
	// backers are the edges pointing at this candidate.
	backers []*edge
}

// voter is algorithm-internal voter state. Candidates participate as
// self-voters backing themselves with their self-stake, as validators
// do on-chain.
type voter struct {
	who         string
	isNominator bool
	stake       *big.Int
	stakeRat    *big.Rat
	// load tracks how used up the voter's fairness budget is
	// (sequential Phragmén only).
	load *big.Rat
	// electedCount is the number of the voter's targets elected so
	// far (PhragMMS only).
	electedCount int
	edges        []*edge
}

// edge is one voter→candidate approval.
type edge struct {
	voter     *voter
	candidate *candidateNode
	// load is the share of the voter's load attributed to this
	// candidate at its election (sequential Phragmén only).
	load *big.Rat
	// weight is the rational stake allocation along this edge,
	// filled in once winners are fixed and balanced.
	weight *big.Rat
}

// graph is the prepared algorithm input: candidates in ingestion
// order and voters with resolved edges.
type graph struct {
	candidates []*candidateNode
	byID       map[string]*candidateNode
	voters     []*voter
}

// buildGraph prepares algorithm input from a validated dataset:
// nominator targets are deduplicated, voters with no targets or zero
// stake are dropped (they cannot influence scores or allocations),
// and every candidate with positive self-stake becomes a self-voter.
func buildGraph(dataset *Dataset) *graph {
	g := &graph{
		candidates: make([]*candidateNode, 0, len(dataset.Candidates)),
		byID:       make(map[string]*candidateNode, len(dataset.Candidates)),
	}

	for i := range dataset.Candidates {
		node := &candidateNode{
			id:            dataset.Candidates[i].AccountID,
			index:         i,
			electedRound:  -1,
			approvalStake: new(big.Rat),
		}
		g.candidates = append(g.candidates, node)
		g.byID[node.id] = node
	}

	for i := range dataset.Nominators {
		nominator := &dataset.Nominators[i]
		if nominator.Stake.Sign() == 0 || len(nominator.Targets) == 0 {
			continue
		}
		v := &voter{
			who:         nominator.AccountID,
			isNominator: true,
			stake:       new(big.Int).Set(&nominator.Stake.Int),
			stakeRat:    nominator.Stake.Rat(),
			load:        new(big.Rat),
		}
		seen := make(map[string]struct{}, len(nominator.Targets))
		for _, target := range nominator.Targets {
			if _, duplicate := seen[target]; duplicate {
				continue
			}
			seen[target] = struct{}{}
			g.addEdge(v, g.byID[target])
		}
		if len(v.edges) > 0 {
			g.voters = append(g.voters, v)
		}
	}

	for i := range dataset.Candidates {
		candidate := &dataset.Candidates[i]
		if candidate.Stake.Sign() == 0 {
			continue
		}
		v := &voter{
			who:      candidate.AccountID,
			stake:    new(big.Int).Set(&candidate.Stake.Int),
			stakeRat: candidate.Stake.Rat(),
			load:     new(big.Rat),
		}
		g.addEdge(v, g.byID[candidate.AccountID])
		g.voters = append(g.voters, v)
	}

	return g
}

func (g *graph) addEdge(v *voter, node *candidateNode) {
	e := &edge{
		voter:     v,
		candidate: node,
		load:      new(big.Rat),
		weight:    new(big.Rat),
	}
	v.edges = append(v.edges, e)
	node.backers = append(node.backers, e)
	node.approvalStake.Add(node.approvalStake, v.stakeRat)
}

// winners returns the elected candidates in selection order.
func (g *graph) winners() []*candidateNode {
	elected := make([]*candidateNode, 0)
	for _, candidate := range g.candidates {
		if candidate.elected {
			elected = append(elected, candidate)
		}
	}
	for i := 1; i < len(elected); i++ {
		for j := i; j > 0 && elected[j].electedRound < elected[j-1].electedRound; j-- {
			elected[j], elected[j-1] = elected[j-1], elected[j]
		}
	}
	return elected
}

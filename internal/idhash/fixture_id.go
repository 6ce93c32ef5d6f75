package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"team-form-lab/internal/domain"
)

// ComputeFixtureID computes a deterministic fixture id using SHA256.
// Formula: SHA256(date|min(teamA,teamB)|max(teamA,teamB)|seq)
// The team pair is unordered, so both perspectives of a fixture hash equally.
// seq disambiguates repeated fixtures between the same teams on the same date.
// Returns hex-encoded hash (64 characters).
func ComputeFixtureID(date time.Time, teamA, teamB string, seq int) string {
	if teamB < teamA {
		teamA, teamB = teamB, teamA
	}

	data := fmt.Sprintf("%s|%s|%s|%d",
		date.Format(time.DateOnly),
		teamA,
		teamB,
		seq,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

// AssignFixtureIDs sets MatchID on every row.
// Rows are matched to fixtures by (date, team pair, scores, neutral) seen from
// the pair's first team, so the two perspectives of a fixture pair up however
// the rows are ordered. Each distinct fixture between two teams on a date takes
// the next seq. Fixtures identical on every field may trade ids.
func AssignFixtureIDs(rows []*domain.TeamMatch) {
	type pairKey struct {
		date   string
		first  string
		second string
	}
	type fixtureKey struct {
		pairKey
		firstScore  int
		secondScore int
		neutral     bool
	}

	nextSeq := make(map[pairKey]int)
	seqs := make(map[fixtureKey][]int)
	occurrences := make(map[fixtureKey]*[2]int)

	for _, r := range rows {
		k := fixtureKey{
			pairKey:     pairKey{date: r.Date.Format(time.DateOnly), first: r.Team, second: r.Opponent},
			firstScore:  r.TeamScore,
			secondScore: r.OpponentScore,
			neutral:     r.Neutral,
		}
		side := 0
		if r.Opponent < r.Team {
			k.first, k.second = r.Opponent, r.Team
			k.firstScore, k.secondScore = r.OpponentScore, r.TeamScore
			side = 1
		}

		occ := occurrences[k]
		if occ == nil {
			occ = &[2]int{}
			occurrences[k] = occ
		}
		n := occ[side]
		occ[side]++

		if n == len(seqs[k]) {
			seqs[k] = append(seqs[k], nextSeq[k.pairKey])
			nextSeq[k.pairKey]++
		}
		r.MatchID = ComputeFixtureID(r.Date, r.Team, r.Opponent, seqs[k][n])
	}
}

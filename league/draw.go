package league

import "math/rand"

// Team is one drawn team: a fixed leader plus randomly assigned members.
type Team struct {
	Leader  string   `json:"leader"`
	Members []string `json:"members"`
}

// DrawTeams shuffles members with Fisher-Yates and deals an equal share
// to each leader's team. Members beyond len(members)/len(leaders) per
// team come back as the leftover, so callers see exactly who was not
// placed.
func DrawTeams(leaders, members []string, rng *rand.Rand) (teams []Team, leftover []string) {
	if len(leaders) == 0 {
		return nil, nil
	}

	shuffled := shuffle(members, rng)
	share := len(shuffled) / len(leaders)

	teams = make([]Team, 0, len(leaders))
	idx := 0
	for _, leader := range leaders {
		team := Team{Leader: leader, Members: []string{}}
		for len(team.Members) < share {
			team.Members = append(team.Members, shuffled[idx])
			idx++
		}
		teams = append(teams, team)
	}
	return teams, shuffled[idx:]
}

// DrawGroups shuffles names and chunks them into groups of the given
// size. Names that do not fill a whole group come back as the
// remainder.
func DrawGroups(names []string, size int, rng *rand.Rand) (groups [][]string, remainder []string) {
	if size <= 0 {
		return nil, nil
	}

	shuffled := shuffle(names, rng)
	full := len(shuffled) / size

	groups = make([][]string, 0, full)
	for i := 0; i < full*size; i += size {
		groups = append(groups, shuffled[i:i+size])
	}
	remainder = shuffled[full*size:]
	return groups, remainder
}

func shuffle(in []string, rng *rand.Rand) []string {
	out := make([]string, len(in))
	copy(out, in)
	rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

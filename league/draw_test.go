package league_test

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alleyclub/club-server/league"
)

func TestDrawTeams_PartitionsWithoutLoss(t *testing.T) {
	leaders := []string{"리더1", "리더2", "리더3"}
	members := []string{"가", "나", "다", "라", "마", "바", "사"}

	rng := rand.New(rand.NewSource(7))
	teams, leftover := league.DrawTeams(leaders, members, rng)
	require.Len(t, teams, 3)

	// 7 members over 3 teams: 2 each, 1 left over.
	var placed []string
	for i, team := range teams {
		assert.Equal(t, leaders[i], team.Leader)
		assert.Len(t, team.Members, 2)
		placed = append(placed, team.Members...)
	}
	assert.Len(t, leftover, 1)

	placed = append(placed, leftover...)
	sort.Strings(placed)
	want := append([]string(nil), members...)
	sort.Strings(want)
	assert.Equal(t, want, placed, "every member placed exactly once")
}

func TestDrawTeams_SameSeedSameDraw(t *testing.T) {
	leaders := []string{"리더1", "리더2"}
	members := []string{"가", "나", "다", "라"}

	a, _ := league.DrawTeams(leaders, members, rand.New(rand.NewSource(99)))
	b, _ := league.DrawTeams(leaders, members, rand.New(rand.NewSource(99)))
	assert.Equal(t, a, b)
}

func TestDrawTeams_NoLeaders(t *testing.T) {
	teams, leftover := league.DrawTeams(nil, []string{"가"}, rand.New(rand.NewSource(1)))
	assert.Nil(t, teams)
	assert.Nil(t, leftover)
}

func TestDrawGroups(t *testing.T) {
	names := []string{"가", "나", "다", "라", "마", "바", "사"}

	rng := rand.New(rand.NewSource(7))
	groups, remainder := league.DrawGroups(names, 3, rng)
	require.Len(t, groups, 2)
	assert.Len(t, remainder, 1)

	var all []string
	for _, g := range groups {
		assert.Len(t, g, 3)
		all = append(all, g...)
	}
	all = append(all, remainder...)
	sort.Strings(all)
	want := append([]string(nil), names...)
	sort.Strings(want)
	assert.Equal(t, want, all)
}

func TestDrawGroups_BadSize(t *testing.T) {
	groups, remainder := league.DrawGroups([]string{"가"}, 0, rand.New(rand.NewSource(1)))
	assert.Nil(t, groups)
	assert.Nil(t, remainder)
}

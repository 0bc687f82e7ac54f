package league_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alleyclub/club-server/league"
)

func TestBuildRanking_Order(t *testing.T) {
	names := map[int64]string{1: "김철수", 2: "이영희", 3: "박민수", 4: "최지훈"}
	valid := map[int64]int{1: 3, 2: 2, 3: 3}
	regular := map[int64]int{1: 1, 2: 2, 3: 1}

	rows := league.BuildRanking(valid, regular, names)

	require.Len(t, rows, 3, "zero-participation member excluded")
	// id 1 and 3 tie on total 4 and valid 3 and regular 1; 김철수
	// sorts before 박민수 in Korean collation.
	assert.Equal(t, int64(1), rows[0].MemberID)
	assert.Equal(t, int64(3), rows[1].MemberID)
	assert.Equal(t, int64(2), rows[2].MemberID)
	assert.Equal(t, 4, rows[0].TotalCount)
}

func TestBuildRanking_ValidBeatsRegularOnTie(t *testing.T) {
	names := map[int64]string{1: "가", 2: "나"}
	rows := league.BuildRanking(
		map[int64]int{1: 3, 2: 1},
		map[int64]int{1: 1, 2: 3},
		names)

	require.Len(t, rows, 2)
	assert.Equal(t, int64(1), rows[0].MemberID, "more valid bungs wins the tie")
}

func TestSortRanking_Deterministic(t *testing.T) {
	names := make(map[int64]string)
	valid := make(map[int64]int)
	regular := make(map[int64]int)
	letters := []string{"가", "나", "다", "라", "마", "바", "사", "아", "자", "차"}
	for i, l := range letters {
		id := int64(i + 1)
		names[id] = l
		valid[id] = i % 3
		regular[id] = (i + 1) % 2
	}

	// Map iteration order varies run to run; the output must not.
	first := league.BuildRanking(valid, regular, names)
	for i := 0; i < 20; i++ {
		again := league.BuildRanking(valid, regular, names)
		assert.Equal(t, first, again)
	}

	// Shuffling pre-built rows and re-sorting lands on the same order.
	rng := rand.New(rand.NewSource(42))
	shuffled := make([]league.RankingRow, len(first))
	copy(shuffled, first)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	league.SortRanking(shuffled)
	assert.Equal(t, first, shuffled)
}

package api

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/alleyclub/club-server/league"
)

// DrawTeams deals the posted members into one team per leader.
// POST /api/draw/teams {leaders:[], members:[]}
func (h *Handler) DrawTeams(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Leaders []string `json:"leaders"`
		Members []string `json:"members"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalid(w, "잘못된 요청 본문입니다.")
		return
	}

	leaders := cleanNames(req.Leaders)
	members := cleanNames(req.Members)
	if len(leaders) == 0 {
		writeInvalid(w, "leaders가 필요합니다.")
		return
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	teams, leftover := league.DrawTeams(leaders, members, rng)

	writeJSON(w, http.StatusOK, map[string]any{
		"ok":       true,
		"teams":    teams,
		"leftover": leftover,
	})
}

// DrawGroups chunks the posted names into random groups of a given
// size.
// POST /api/draw/groups {names:[], size}
func (h *Handler) DrawGroups(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Names []string `json:"names"`
		Size  int      `json:"size"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalid(w, "잘못된 요청 본문입니다.")
		return
	}
	if req.Size <= 0 {
		writeInvalid(w, "size는 1 이상이어야 합니다.")
		return
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	groups, remainder := league.DrawGroups(cleanNames(req.Names), req.Size, rng)
	if groups == nil {
		groups = [][]string{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok":        true,
		"groups":    groups,
		"remainder": remainder,
	})
}

func cleanNames(in []string) []string {
	out := make([]string, 0, len(in))
	for _, n := range in {
		n = strings.TrimSpace(n)
		if n != "" {
			out = append(out, n)
		}
	}
	return out
}

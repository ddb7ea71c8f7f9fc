package summarize

import "sort"

const (
	maxTeams            = 20
	maxGames            = 10
	maxInjuryTeams      = 10
	maxPlayersPerTeam   = 10
	maxGenericKeys      = 10
	maxGenericListProbe = 5
)

func reduceTeams(payload map[string]any) map[string]any {
	teams := asList(payload["teams"])
	out := make([]any, 0, min(len(teams), maxTeams))
	for _, t := range teams {
		if len(out) == maxTeams {
			break
		}
		if m := asMap(t); m != nil {
			out = append(out, pick(m, "id", "name", "market", "alias", "conference", "division"))
		}
	}
	return map[string]any{"teams": out, "total_teams": len(teams)}
}

func reduceLeague(payload map[string]any) map[string]any {
	out := map[string]any{}
	if league := asMap(payload["league"]); league != nil {
		out["league"] = pick(league, "name", "alias")
	}
	confs := make([]any, 0)
	for _, c := range asList(payload["conferences"]) {
		conf := asMap(c)
		if conf == nil {
			continue
		}
		rc := pick(conf, "name", "alias")
		if divs := asList(conf["divisions"]); divs != nil {
			rd := make([]any, 0, len(divs))
			for _, d := range divs {
				if div := asMap(d); div != nil {
					r := pick(div, "name", "alias")
					if teams := leagueTeams(div["teams"]); teams != nil {
						r["teams"] = teams
					}
					rd = append(rd, r)
				}
			}
			rc["divisions"] = rd
		}
		if teams := leagueTeams(conf["teams"]); teams != nil {
			rc["teams"] = teams
		}
		confs = append(confs, rc)
	}
	out["conferences"] = confs
	return out
}

func leagueTeams(v any) []any {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]any, 0, len(list))
	for _, t := range list {
		if m := asMap(t); m != nil {
			out = append(out, pick(m, "name", "market", "alias"))
		}
	}
	return out
}

// scheduleGames returns every game in a schedule document, either listed
// directly or nested under weeks.
func scheduleGames(payload map[string]any) []any {
	root := payload
	if sched := asMap(payload["schedule"]); sched != nil {
		root = sched
	}
	if games := asList(root["games"]); games != nil {
		return games
	}
	var games []any
	for _, w := range asList(root["weeks"]) {
		if week := asMap(w); week != nil {
			games = append(games, asList(week["games"])...)
		}
	}
	return games
}

func reduceSchedule(payload map[string]any) map[string]any {
	games := scheduleGames(payload)
	out := make([]any, 0, min(len(games), maxGames))
	for _, g := range games {
		if len(out) == maxGames {
			break
		}
		game := asMap(g)
		if game == nil {
			continue
		}
		r := pick(game, "id", "status", "scheduled")
		r["home_team"] = side(game, "home_team", "home")
		r["away_team"] = side(game, "away_team", "away")
		out = append(out, r)
	}
	return map[string]any{"games": out, "total_games": len(games)}
}

func side(game map[string]any, keys ...string) map[string]any {
	for _, k := range keys {
		if m := asMap(game[k]); m != nil {
			return pick(m, "name", "alias")
		}
	}
	return map[string]any{}
}

func reduceInjuries(payload map[string]any) map[string]any {
	out := map[string]any{}
	week := payload["week"]
	teams := asList(payload["injuries"])
	if wm := asMap(week); wm != nil {
		out["week"] = pick(wm, "id", "sequence", "title")
		if teams == nil {
			teams = asList(wm["teams"])
		}
	} else if week != nil {
		out["week"] = week
	}

	rt := make([]any, 0, min(len(teams), maxInjuryTeams))
	for _, t := range teams {
		if len(rt) == maxInjuryTeams {
			break
		}
		team := asMap(t)
		if team == nil {
			continue
		}
		r := pick(team, "name", "market", "alias")
		players := asList(team["players"])
		rp := make([]any, 0, min(len(players), maxPlayersPerTeam))
		for _, p := range players {
			if len(rp) == maxPlayersPerTeam {
				break
			}
			if player := asMap(p); player != nil {
				rp = append(rp, reducePlayer(player))
			}
		}
		r["players"] = rp
		rt = append(rt, r)
	}
	out["teams"] = rt
	return out
}

func reducePlayer(player map[string]any) map[string]any {
	r := pick(player, "name", "position", "status", "injury")
	first := asMap(firstOf(asList(player["injuries"])))
	if first == nil {
		return r
	}
	if _, ok := r["status"]; !ok {
		if v, ok := first["status"]; ok {
			r["status"] = v
		}
	}
	if _, ok := r["injury"]; !ok {
		for _, k := range []string{"desc", "primary"} {
			if v, ok := first[k]; ok {
				r["injury"] = v
				break
			}
		}
	}
	return r
}

func firstOf(l []any) any {
	if len(l) == 0 {
		return nil
	}
	return l[0]
}

// reduceGeneric describes the payload's structure without copying its data.
func reduceGeneric(payload map[string]any) map[string]any {
	keys := sortedKeys(payload)
	if len(keys) > maxGenericKeys {
		keys = keys[:maxGenericKeys]
	}
	lists := map[string]any{}
	for _, k := range keys {
		l, ok := payload[k].([]any)
		if !ok {
			continue
		}
		probe := map[string]any{"length": len(l)}
		if first := asMap(firstOf(l)); first != nil {
			fields := sortedKeys(first)
			if len(fields) > maxGenericListProbe {
				fields = fields[:maxGenericListProbe]
			}
			probe["fields"] = fields
		}
		lists[k] = probe
	}
	return map[string]any{"keys": keys, "total_keys": len(payload), "lists": lists}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

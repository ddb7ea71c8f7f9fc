package summarize_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/okian/gridiron/internal/domain/summarize"
	. "github.com/smartystreets/goconvey/convey"
)

func teamsPayload(n int) map[string]any {
	teams := make([]any, n)
	for i := range teams {
		teams[i] = map[string]any{
			"id":         fmt.Sprintf("team-%d", i),
			"name":       fmt.Sprintf("Team %d", i),
			"market":     "City",
			"alias":      fmt.Sprintf("T%d", i),
			"conference": "AFC",
			"division":   "East",
			"venue":      map[string]any{"name": "Stadium", "capacity": 70000},
			"franchise":  map[string]any{"founded": 1960},
		}
	}
	return map[string]any{"teams": teams}
}

func gamesList(n int) []any {
	games := make([]any, n)
	for i := range games {
		games[i] = map[string]any{
			"id":        fmt.Sprintf("game-%d", i),
			"status":    "closed",
			"scheduled": "2023-09-07T20:20:00Z",
			"home":      map[string]any{"name": "Chiefs", "alias": "KC", "id": "h"},
			"away":      map[string]any{"name": "Lions", "alias": "DET", "id": "a"},
			"venue":     map[string]any{"name": "Arrowhead"},
			"broadcast": map[string]any{"network": "NBC"},
		}
	}
	return games
}

func TestDetect(t *testing.T) {
	Convey("Given payloads of every known shape", t, func() {
		So(summarize.Detect(map[string]any{"teams": []any{}}), ShouldEqual, summarize.ShapeTeams)
		So(summarize.Detect(map[string]any{"conferences": []any{}, "teams": "x"}), ShouldEqual, summarize.ShapeLeague)
		So(summarize.Detect(map[string]any{"schedule": map[string]any{}}), ShouldEqual, summarize.ShapeSchedule)
		So(summarize.Detect(map[string]any{"weeks": []any{}}), ShouldEqual, summarize.ShapeSchedule)
		So(summarize.Detect(map[string]any{"week": 1, "injuries": []any{}}), ShouldEqual, summarize.ShapeInjuries)
		So(summarize.Detect(map[string]any{"week": map[string]any{"teams": []any{}}}), ShouldEqual, summarize.ShapeInjuries)
		So(summarize.Detect(map[string]any{"player": "x"}), ShouldEqual, summarize.ShapeGeneric)
		So(summarize.Detect(nil), ShouldEqual, summarize.ShapeGeneric)

		Convey("Teams wins over conferences when both are lists", func() {
			So(summarize.Detect(map[string]any{"teams": []any{}, "conferences": []any{}}), ShouldEqual, summarize.ShapeTeams)
		})
	})
}

func TestSummarizeShapes(t *testing.T) {
	Convey("Given a default summarizer", t, func() {
		s := summarize.New()
		ctx := context.Background()

		Convey("When summarizing 30 teams", func() {
			sum := s.Summarize(ctx, summarize.Bundle{Payload: teamsPayload(30)})

			Convey("Then exactly 20 teams keep only the six permitted fields", func() {
				So(sum.Shape, ShouldEqual, summarize.ShapeTeams)
				teams := sum.Data["teams"].([]any)
				So(teams, ShouldHaveLength, 20)
				for _, tm := range teams {
					m := tm.(map[string]any)
					So(m, ShouldHaveLength, 6)
					So(m, ShouldNotContainKey, "venue")
				}
				So(sum.Data["total_teams"], ShouldEqual, 30)
				So(json.Valid([]byte(sum.Text)), ShouldBeTrue)
			})
		})

		Convey("When summarizing a schedule with 15 games", func() {
			sum := s.Summarize(ctx, summarize.Bundle{Payload: map[string]any{
				"schedule": map[string]any{"games": gamesList(15)},
			}})

			Convey("Then exactly 10 reduced games remain", func() {
				So(sum.Shape, ShouldEqual, summarize.ShapeSchedule)
				games := sum.Data["games"].([]any)
				So(games, ShouldHaveLength, 10)
				g := games[0].(map[string]any)
				So(g["home_team"], ShouldResemble, map[string]any{"name": "Chiefs", "alias": "KC"})
				So(g["away_team"], ShouldResemble, map[string]any{"name": "Lions", "alias": "DET"})
				So(g, ShouldNotContainKey, "venue")
				So(sum.Data["total_games"], ShouldEqual, 15)
			})
		})

		Convey("When summarizing a season document with weeks", func() {
			sum := s.Summarize(ctx, summarize.Bundle{Payload: map[string]any{
				"year": 2023,
				"weeks": []any{
					map[string]any{"sequence": 1, "games": gamesList(8)},
					map[string]any{"sequence": 2, "games": gamesList(8)},
				},
			}})

			Convey("Then games are flattened across weeks and capped", func() {
				So(sum.Shape, ShouldEqual, summarize.ShapeSchedule)
				So(sum.Data["games"], ShouldHaveLength, 10)
				So(sum.Data["total_games"], ShouldEqual, 16)
			})
		})

		Convey("When summarizing the league hierarchy", func() {
			sum := s.Summarize(ctx, summarize.Bundle{Payload: map[string]any{
				"league": map[string]any{"id": "l", "name": "National Football League", "alias": "NFL"},
				"conferences": []any{map[string]any{
					"id": "c", "name": "American Football Conference", "alias": "AFC",
					"divisions": []any{map[string]any{
						"id": "d", "name": "AFC West", "alias": "AFC_WEST",
						"teams": []any{map[string]any{"id": "t", "name": "Chiefs", "market": "Kansas City", "alias": "KC", "venue": "x"}},
					}},
				}},
			}})

			Convey("Then only names and aliases survive", func() {
				So(sum.Shape, ShouldEqual, summarize.ShapeLeague)
				So(sum.Data["league"], ShouldResemble, map[string]any{"name": "National Football League", "alias": "NFL"})
				conf := sum.Data["conferences"].([]any)[0].(map[string]any)
				So(conf, ShouldNotContainKey, "id")
				div := conf["divisions"].([]any)[0].(map[string]any)
				So(div["teams"], ShouldResemble, []any{map[string]any{"name": "Chiefs", "market": "Kansas City", "alias": "KC"}})
			})
		})

		Convey("When summarizing weekly injuries", func() {
			teams := make([]any, 12)
			for i := range teams {
				players := make([]any, 14)
				for j := range players {
					players[j] = map[string]any{
						"id": "p", "name": fmt.Sprintf("Player %d", j), "position": "WR", "jersey": "11",
						"injuries": []any{map[string]any{"status": "Questionable", "desc": "Ankle", "practice": map[string]any{"status": "Limited"}}},
					}
				}
				teams[i] = map[string]any{"id": "t", "name": "Chiefs", "market": "Kansas City", "alias": "KC", "players": players}
			}
			sum := s.Summarize(ctx, summarize.Bundle{Payload: map[string]any{
				"season": map[string]any{"year": 2023},
				"week":   map[string]any{"id": "w", "sequence": 1, "title": "1", "teams": teams},
			}})

			Convey("Then at most 10 teams with 10 players each are kept", func() {
				So(sum.Shape, ShouldEqual, summarize.ShapeInjuries)
				got := sum.Data["teams"].([]any)
				So(got, ShouldHaveLength, 10)
				players := got[0].(map[string]any)["players"].([]any)
				So(players, ShouldHaveLength, 10)
				So(players[0], ShouldResemble, map[string]any{
					"name": "Player 0", "position": "WR", "status": "Questionable", "injury": "Ankle",
				})
			})
		})

		Convey("When summarizing an unrecognized payload", func() {
			payload := map[string]any{}
			for i := 0; i < 14; i++ {
				payload[fmt.Sprintf("k%02d", i)] = i
			}
			payload["k00"] = []any{map[string]any{"f": 1, "e": 2, "d": 3, "c": 4, "b": 5, "a": 6}}
			sum := s.Summarize(ctx, summarize.Bundle{Payload: payload})

			Convey("Then only a structural probe is produced", func() {
				So(sum.Shape, ShouldEqual, summarize.ShapeGeneric)
				So(sum.Data["keys"], ShouldHaveLength, 10)
				So(sum.Data["total_keys"], ShouldEqual, 14)
				probe := sum.Data["lists"].(map[string]any)["k00"].(map[string]any)
				So(probe["length"], ShouldEqual, 1)
				So(probe["fields"], ShouldResemble, []string{"a", "b", "c", "d", "e"})
				So(sum.Text, ShouldNotContainSubstring, "k13")
			})
		})

		Convey("When the bundle carries a fetch failure", func() {
			sum := s.Summarize(ctx, summarize.Failure(errors.New("Resource not found")))

			Convey("Then the context holds only the error", func() {
				So(sum.Shape, ShouldEqual, summarize.ShapeError)
				So(sum.Text, ShouldEqual, `{"error":"Resource not found"}`)
			})
		})

		Convey("When the payload cannot be encoded", func() {
			sum := s.Summarize(ctx, summarize.Bundle{Payload: map[string]any{
				"teams": []any{map[string]any{"name": math.Inf(1)}},
			}})

			Convey("Then a fallback summary is returned instead of an error", func() {
				So(sum.Shape, ShouldEqual, summarize.ShapeFallback)
				So(sum.Text, ShouldContainSubstring, summarize.FallbackMarker)
			})
		})
	})
}

func TestSummarizeTruncation(t *testing.T) {
	Convey("Given a summarizer with a small ceiling", t, func() {
		s := summarize.New(summarize.WithMaxChars(200))
		ctx := context.Background()

		Convey("When the reduced payload is larger than the ceiling", func() {
			sum := s.Summarize(ctx, summarize.Bundle{Payload: teamsPayload(30)})

			Convey("Then the text fits and ends with a single marker", func() {
				So(sum.Truncated, ShouldBeTrue)
				So(len(sum.Text), ShouldBeLessThanOrEqualTo, 200)
				So(strings.HasSuffix(sum.Text, summarize.TruncationMarker), ShouldBeTrue)
				So(strings.Count(sum.Text, summarize.TruncationMarker), ShouldEqual, 1)
			})
		})

		Convey("When the cut falls inside a multi-byte character", func() {
			name := strings.Repeat("é", 200)
			sum := s.Summarize(ctx, summarize.Bundle{Payload: map[string]any{
				"teams": []any{map[string]any{"name": name}},
			}})

			Convey("Then the result is still valid UTF-8", func() {
				So(sum.Truncated, ShouldBeTrue)
				So(utf8.ValidString(sum.Text), ShouldBeTrue)
				So(len(sum.Text), ShouldBeLessThanOrEqualTo, 200)
			})
		})

		Convey("When the payload is small", func() {
			sum := s.Summarize(ctx, summarize.Bundle{Payload: map[string]any{"teams": []any{}}})

			Convey("Then nothing is cut", func() {
				So(sum.Truncated, ShouldBeFalse)
				So(sum.Text, ShouldNotContainSubstring, summarize.TruncationMarker)
			})
		})
	})

	Convey("Given ceilings outside the accepted range", t, func() {
		So(summarize.New(summarize.WithMaxChars(0)).MaxChars(), ShouldEqual, summarize.DefaultMaxChars)
		So(summarize.New(summarize.WithMaxChars(10)).MaxChars(), ShouldEqual, summarize.MinMaxChars)
	})
}

package ranking_test

import (
	"errors"
	"math/rand"
	"sort"
	"testing"
	"time"

	"github.com/0xJagger/poc-geo-tier-list/internal/domain/model"
	"github.com/0xJagger/poc-geo-tier-list/internal/domain/ranking"
	"github.com/0xJagger/poc-geo-tier-list/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func abc() []model.Item {
	return []model.Item{
		{ID: "a", Name: "A", Glyph: "🅰"},
		{ID: "b", Name: "B", Glyph: "🅱"},
		{ID: "c", Name: "C", Glyph: "©"},
	}
}

func mustInsert(s *ranking.Session, id string) {
	ok, err := s.InsertRank(id)
	So(err, ShouldBeNil)
	So(ok, ShouldBeTrue)
}

func TestSession_WorkedExample(t *testing.T) {
	Convey("Given items a, b, c", t, func() {
		s := ranking.NewSession(abc())

		Convey("When a is ranked", func() {
			mustInsert(s, "a")

			Convey("Then it takes the floor score", func() {
				v, ok := s.Score("a")
				So(ok, ShouldBeTrue)
				So(v, ShouldEqual, 1.0)
				So(s.Order(), ShouldResemble, []string{"a"})
			})

			Convey("And when b is ranked it ties a and sorts after it", func() {
				mustInsert(s, "b")
				v, _ := s.Score("b")
				So(v, ShouldEqual, 1.0)
				So(s.Order(), ShouldResemble, []string{"a", "b"})

				Convey("And a live score change reorders", func() {
					_, err := s.SetScore("b", 90)
					So(err, ShouldBeNil)
					So(s.Order(), ShouldResemble, []string{"b", "a"})

					Convey("And reset empties everything", func() {
						s.Reset()
						So(s.Order(), ShouldBeEmpty)
						So(s.Ranked(), ShouldBeEmpty)
						So(s.Scores(), ShouldBeEmpty)
						So(s.RankedCount(), ShouldEqual, 0)
					})
				})
			})
		})
	})
}

func TestSession_InsertRank(t *testing.T) {
	Convey("Given a session with scored items", t, func() {
		s := ranking.NewSession(abc())
		mustInsert(s, "a")
		mustInsert(s, "b")
		_, err := s.SetScore("a", 70)
		So(err, ShouldBeNil)
		_, err = s.SetScore("b", 30)
		So(err, ShouldBeNil)

		Convey("When a new item joins", func() {
			mustInsert(s, "c")

			Convey("Then it ties the lowest score", func() {
				v, _ := s.Score("c")
				So(v, ShouldEqual, 30.0)
				So(s.Order(), ShouldResemble, []string{"a", "b", "c"})
			})
		})

		Convey("When an already ranked item is inserted", func() {
			beforeOrder := s.Order()
			beforeScores := s.Scores()
			ok, err := s.InsertRank("a")

			Convey("Then nothing changes", func() {
				So(err, ShouldBeNil)
				So(ok, ShouldBeFalse)
				So(s.Order(), ShouldResemble, beforeOrder)
				So(s.Scores(), ShouldResemble, beforeScores)
				So(s.Ranked(), ShouldResemble, []string{"a", "b"})
			})
		})

		Convey("When an unknown item is inserted", func() {
			_, err := s.InsertRank("zz")

			Convey("Then it is rejected", func() {
				So(errors.Is(err, ranking.ErrUnknownItem), ShouldBeTrue)
				So(s.RankedCount(), ShouldEqual, 2)
			})
		})
	})
}

func TestSession_RemoveRank(t *testing.T) {
	Convey("Given two ranked items", t, func() {
		s := ranking.NewSession(abc())
		mustInsert(s, "a")
		mustInsert(s, "b")

		Convey("When one is removed", func() {
			ok, err := s.RemoveRank("a")

			Convey("Then its score goes with it", func() {
				So(err, ShouldBeNil)
				So(ok, ShouldBeTrue)
				_, has := s.Score("a")
				So(has, ShouldBeFalse)
				So(s.Order(), ShouldResemble, []string{"b"})
			})

			Convey("And re-inserting it assigns a fresh join score", func() {
				_, err := s.SetScore("b", 64)
				So(err, ShouldBeNil)
				mustInsert(s, "a")
				v, _ := s.Score("a")
				So(v, ShouldEqual, 64.0)
			})
		})

		Convey("When an unranked item is removed", func() {
			ok, err := s.RemoveRank("c")

			Convey("Then it is a no-op", func() {
				So(err, ShouldBeNil)
				So(ok, ShouldBeFalse)
				So(s.Order(), ShouldResemble, []string{"a", "b"})
			})
		})
	})
}

func TestSession_SetScore(t *testing.T) {
	Convey("Given a permissive session", t, func() {
		s := ranking.NewSession(abc())
		mustInsert(s, "a")

		Convey("When scoring an unranked item", func() {
			_, err := s.SetScore("b", 40)

			Convey("Then it is refused", func() {
				So(errors.Is(err, ranking.ErrNotRanked), ShouldBeTrue)
				_, has := s.Score("b")
				So(has, ShouldBeFalse)
			})
		})

		Convey("When scoring out of range", func() {
			v, err := s.SetScore("a", 140)

			Convey("Then the value is stored as-is", func() {
				So(err, ShouldBeNil)
				So(v, ShouldEqual, 140.0)
			})
		})
	})

	Convey("Given a clamping session", t, func() {
		s := ranking.NewSession(abc(), ranking.WithPolicy(scoring.NewPolicy(scoring.WithMode(scoring.ModeClamp))))
		mustInsert(s, "a")

		Convey("When scoring out of range", func() {
			v, err := s.SetScore("a", 140)

			Convey("Then the value is clamped", func() {
				So(err, ShouldBeNil)
				So(v, ShouldEqual, 100.0)
				stored, _ := s.Score("a")
				So(stored, ShouldEqual, 100.0)
			})
		})
	})

	Convey("Given a rejecting session", t, func() {
		s := ranking.NewSession(abc(), ranking.WithPolicy(scoring.NewPolicy(scoring.WithMode(scoring.ModeReject))))
		mustInsert(s, "a")

		Convey("When scoring out of range", func() {
			_, err := s.SetScore("a", 0)

			Convey("Then the previous score is kept", func() {
				So(errors.Is(err, scoring.ErrScoreOutOfRange), ShouldBeTrue)
				stored, _ := s.Score("a")
				So(stored, ShouldEqual, 1.0)
			})
		})
	})
}

func TestSession_Adjustment(t *testing.T) {
	Convey("Given three ranked items in live order", t, func() {
		s := ranking.NewSession(abc())
		mustInsert(s, "a")
		mustInsert(s, "b")
		mustInsert(s, "c")
		_, _ = s.SetScore("a", 80)
		_, _ = s.SetScore("b", 50)
		_, _ = s.SetScore("c", 20)
		So(s.Order(), ShouldResemble, []string{"a", "b", "c"})

		Convey("When c is being adjusted", func() {
			prev, err := s.BeginAdjustment("c")
			So(err, ShouldBeNil)
			So(prev, ShouldEqual, "")
			So(s.Frozen(), ShouldBeTrue)
			So(s.Active(), ShouldEqual, "c")

			Convey("Then score changes never move the order", func() {
				for _, v := range []float64{30, 60, 99, 100, 1, 95} {
					_, err := s.SetScore("c", v)
					So(err, ShouldBeNil)
					So(s.Order(), ShouldResemble, []string{"a", "b", "c"})
				}

				Convey("And ending the adjustment re-sorts immediately", func() {
					So(s.EndAdjustment(), ShouldBeTrue)
					So(s.Frozen(), ShouldBeFalse)
					So(s.Active(), ShouldEqual, "")
					So(s.Order(), ShouldResemble, []string{"c", "a", "b"})
				})
			})

			Convey("Then removing c drops it from the frozen order", func() {
				_, err := s.RemoveRank("c")
				So(err, ShouldBeNil)
				So(s.Frozen(), ShouldBeTrue)
				So(s.Order(), ShouldResemble, []string{"a", "b"})
			})

			Convey("Then an item inserted mid-gesture still appears", func() {
				s2 := ranking.NewSession(append(abc(), model.Item{ID: "d"}))
				mustInsert(s2, "a")
				_, _ = s2.BeginAdjustment("a")
				mustInsert(s2, "d")
				So(s2.Order(), ShouldResemble, []string{"a", "d"})
			})

			Convey("Then beginning another adjustment ends the first", func() {
				_, _ = s.SetScore("c", 90)
				prev, err := s.BeginAdjustment("b")
				So(err, ShouldBeNil)
				So(prev, ShouldEqual, "c")
				So(s.Active(), ShouldEqual, "b")
				So(s.Order(), ShouldResemble, []string{"c", "a", "b"})

				_, _ = s.SetScore("b", 100)
				So(s.Order(), ShouldResemble, []string{"c", "a", "b"})
			})

			Convey("Then reset also clears the adjustment", func() {
				s.Reset()
				So(s.Frozen(), ShouldBeFalse)
				So(s.Active(), ShouldEqual, "")
				So(s.EndAdjustment(), ShouldBeFalse)
			})
		})

		Convey("When adjusting an unranked item", func() {
			s.Reset()
			_, err := s.BeginAdjustment("a")

			Convey("Then it is refused", func() {
				So(errors.Is(err, ranking.ErrNotRanked), ShouldBeTrue)
				So(s.Frozen(), ShouldBeFalse)
			})
		})

		Convey("When ending without an adjustment", func() {
			Convey("Then it reports nothing to end", func() {
				So(s.EndAdjustment(), ShouldBeFalse)
			})
		})
	})
}

func TestSession_RecomputeHook(t *testing.T) {
	Convey("Given a session with a recompute hook", t, func() {
		calls := 0
		s := ranking.NewSession(abc(), ranking.WithRecomputeHook(func(time.Duration) { calls++ }))

		Convey("When mutating in live and frozen mode", func() {
			// insert and the live score change recompute, the frozen one does
			// not, and ending the adjustment recomputes once more.
			mustInsert(s, "a")
			_, _ = s.SetScore("a", 10)
			_, _ = s.BeginAdjustment("a")
			_, _ = s.SetScore("a", 20)
			s.EndAdjustment()

			Convey("Then only live recomputations are reported", func() {
				So(calls, ShouldEqual, 3)
			})
		})
	})
}

func TestSession_RandomSequences(t *testing.T) {
	Convey("Given random mutation sequences", t, func() {
		items := make([]model.Item, 12)
		for i := range items {
			items[i] = model.Item{ID: string(rune('a' + i))}
		}
		rng := rand.New(rand.NewSource(7))
		s := ranking.NewSession(items)

		Convey("Then the state invariants hold after every operation", func() {
			for step := 0; step < 2000; step++ {
				id := items[rng.Intn(len(items))].ID
				switch rng.Intn(6) {
				case 0, 1:
					_, err := s.InsertRank(id)
					So(err, ShouldBeNil)
				case 2:
					_, err := s.RemoveRank(id)
					So(err, ShouldBeNil)
				case 3:
					if s.IsRanked(id) {
						_, err := s.SetScore(id, 1+rng.Float64()*99)
						So(err, ShouldBeNil)
					}
				case 4:
					if s.IsRanked(id) {
						_, err := s.BeginAdjustment(id)
						So(err, ShouldBeNil)
					}
				case 5:
					s.EndAdjustment()
				}

				scores := s.Scores()
				ranked := s.Ranked()
				So(len(scores), ShouldEqual, len(ranked))
				for _, r := range ranked {
					_, ok := scores[r]
					So(ok, ShouldBeTrue)
				}

				order := s.Order()
				sortedOrder := append([]string(nil), order...)
				sortedRanked := append([]string(nil), ranked...)
				sort.Strings(sortedOrder)
				sort.Strings(sortedRanked)
				So(sortedOrder, ShouldResemble, sortedRanked)

				if !s.Frozen() {
					for i := 1; i < len(order); i++ {
						So(scores[order[i-1]], ShouldBeGreaterThanOrEqualTo, scores[order[i]])
					}
				}
			}
		})
	})
}

package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	service "github.com/0xJagger/poc-geo-tier-list/internal/app"
	"github.com/0xJagger/poc-geo-tier-list/internal/catalog"
	"github.com/0xJagger/poc-geo-tier-list/internal/domain/model"
	"github.com/0xJagger/poc-geo-tier-list/internal/domain/ranking"
	"github.com/0xJagger/poc-geo-tier-list/internal/domain/scoring"
	"github.com/0xJagger/poc-geo-tier-list/internal/domain/types"
	"github.com/0xJagger/poc-geo-tier-list/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func testCatalog() catalog.Catalog {
	return catalog.Catalog{
		List: model.RankList{ID: "list", Name: "Test list", RankType: "tier"},
		Items: []model.Item{
			{ID: "a", Name: "Alpha", Glyph: "🅰️"},
			{ID: "b", Name: "Bravo", Glyph: "🅱️"},
			{ID: "c", Name: "Charlie", Glyph: "©️"},
		},
	}
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("rel-%d", n)
	}
}

func ids(r types.Ranking) []string {
	out := make([]string, 0, len(r.Entries))
	for _, e := range r.Entries {
		out = append(out, e.ItemID)
	}
	return out
}

func TestService_Items(t *testing.T) {
	Convey("Given a new service", t, func() {
		ctx := context.Background()
		svc := service.New(testCatalog())

		Convey("Then every item is unranked at the default score", func() {
			items := svc.Items(ctx)
			So(items, ShouldHaveLength, 3)
			for _, it := range items {
				So(it.Ranked, ShouldBeFalse)
				So(it.Score, ShouldEqual, scoring.DefaultScore)
			}
			So(items[0].Glyph, ShouldEqual, "🅰️")
		})

		Convey("When an item is ranked", func() {
			_, err := svc.InsertRank(ctx, "b")
			So(err, ShouldBeNil)

			Convey("Then its view reflects the ranking", func() {
				items := svc.Items(ctx)
				So(items[1].Ranked, ShouldBeTrue)
				So(items[1].Score, ShouldEqual, scoring.FloorScore)
				So(items[0].Ranked, ShouldBeFalse)
			})
		})
	})
}

func TestService_Ranking(t *testing.T) {
	Convey("Given a service", t, func() {
		ctx := context.Background()
		svc := service.New(testCatalog())

		Convey("When following the worked example", func() {
			_, _ = svc.InsertRank(ctx, "a")
			So(ids(svc.Ranking(ctx)), ShouldResemble, []string{"a"})

			_, _ = svc.InsertRank(ctx, "b")
			So(ids(svc.Ranking(ctx)), ShouldResemble, []string{"a", "b"})

			_, err := svc.SetScore(ctx, "b", 90)
			So(err, ShouldBeNil)

			Convey("Then the order follows scores with positions and names", func() {
				r := svc.Ranking(ctx)
				So(ids(r), ShouldResemble, []string{"b", "a"})
				So(r.Entries[0].Position, ShouldEqual, 1)
				So(r.Entries[0].Name, ShouldEqual, "Bravo")
				So(r.Entries[0].Score, ShouldEqual, 90.0)
				So(r.Frozen, ShouldBeFalse)
			})

			Convey("And reset empties everything", func() {
				svc.Reset(ctx)
				So(svc.Ranking(ctx).Entries, ShouldBeEmpty)
				So(svc.GraphStats(ctx).Relations, ShouldEqual, 0)
			})
		})

		Convey("When adjusting an item", func() {
			_, _ = svc.InsertRank(ctx, "a")
			_, _ = svc.InsertRank(ctx, "b")
			prev, err := svc.BeginAdjustment(ctx, "b")
			So(err, ShouldBeNil)
			So(prev, ShouldBeEmpty)
			_, _ = svc.SetScore(ctx, "b", 99)

			Convey("Then the order holds until the adjustment ends", func() {
				r := svc.Ranking(ctx)
				So(r.Frozen, ShouldBeTrue)
				So(r.Active, ShouldEqual, "b")
				So(ids(r), ShouldResemble, []string{"a", "b"})

				So(svc.EndAdjustment(ctx), ShouldBeTrue)
				So(ids(svc.Ranking(ctx)), ShouldResemble, []string{"b", "a"})
				So(svc.EndAdjustment(ctx), ShouldBeFalse)
			})
		})

		Convey("When operating on unknown or unranked items", func() {
			_, errInsert := svc.InsertRank(ctx, "zz")
			_, errScore := svc.SetScore(ctx, "a", 10)
			_, errBegin := svc.BeginAdjustment(ctx, "a")

			Convey("Then the session errors surface", func() {
				So(errors.Is(errInsert, ranking.ErrUnknownItem), ShouldBeTrue)
				So(errors.Is(errScore, ranking.ErrNotRanked), ShouldBeTrue)
				So(errors.Is(errBegin, ranking.ErrNotRanked), ShouldBeTrue)
			})
		})
	})

	Convey("Given a service rejecting out-of-range scores", t, func() {
		ctx := context.Background()
		svc := service.New(testCatalog(), service.WithScorePolicy(scoring.NewPolicy(scoring.WithMode(scoring.ModeReject))))
		_, _ = svc.InsertRank(ctx, "a")

		Convey("When setting a score above the range", func() {
			_, err := svc.SetScore(ctx, "a", 150)

			Convey("Then it is refused and the score kept", func() {
				So(errors.Is(err, scoring.ErrScoreOutOfRange), ShouldBeTrue)
				So(svc.Ranking(ctx).Entries[0].Score, ShouldEqual, scoring.FloorScore)
			})
		})
	})
}

func TestService_Graphs(t *testing.T) {
	Convey("Given a service with deterministic relation ids", t, func() {
		ctx := context.Background()
		svc := service.New(testCatalog(), service.WithIDGenerator(sequentialIDs()))
		_, _ = svc.InsertRank(ctx, "c")
		_, _ = svc.InsertRank(ctx, "a")
		_, _ = svc.SetScore(ctx, "a", 64.5)

		Convey("When building the graphs", func() {
			kg := svc.Graph(ctx)
			pg := svc.PropertyGraph(ctx)
			stats := svc.GraphStats(ctx)

			Convey("Then counts agree across representations", func() {
				So(kg.Entities, ShouldHaveLength, 4)
				So(kg.Relations, ShouldHaveLength, 2)
				So(pg.Entities, ShouldHaveLength, 4)
				So(pg.Relations, ShouldHaveLength, 2)
				So(stats, ShouldResemble, types.GraphStats{Entities: 4, Relations: 2, Ranked: 2, Total: 3})
			})

			Convey("And relations follow ranking order with exact scores", func() {
				So(kg.Relations[0].ID, ShouldEqual, "rel-1")
				So(kg.Relations[0].To, ShouldEqual, "c")
				So(kg.Relations[1].Score, ShouldEqual, 64.5)
				So(pg.Relations[1].Properties["score"], ShouldEqual, 64.5)
			})
		})
	})
}

func TestService_GetStats(t *testing.T) {
	Convey("Given a service that is not started", t, func() {
		svc := service.New(testCatalog())
		_, _ = svc.InsertRank(context.Background(), "a")

		Convey("Then stats describe the session", func() {
			stats := svc.GetStats()
			So(stats["started"], ShouldEqual, false)
			So(stats["totalItems"], ShouldEqual, 3)
			So(stats["rankedItems"], ShouldEqual, 1)
			So(stats["scoreMode"], ShouldEqual, "permissive")
			So(stats["preparation"], ShouldEqual, "idle")
			So(stats, ShouldNotContainKey, "queueLength")
		})
	})
}

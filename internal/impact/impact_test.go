package impact_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"

	"github.com/frahmantamala/hardware-marketplace/internal"
	"github.com/frahmantamala/hardware-marketplace/internal/impact"
	"github.com/frahmantamala/hardware-marketplace/internal/transport"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type stubReader struct {
	items []impact.Item
	err   error
}

func (s stubReader) Items(context.Context) ([]impact.Item, error) {
	return s.items, s.err
}

func item(dept, category, status string) impact.Item {
	return impact.Item{Department: dept, Category: category, Status: status}
}

var _ = Describe("Score", func() {
	It("adds up two servers and a switch", func() {
		got := impact.Score([]impact.Item{
			item("IT", "Server", "available"),
			item("IT", "Server", "claimed"),
			item("IT", "Networking", "shipped"),
		})

		Expect(got.CO2SavedKg).To(Equal(2900.0))
		Expect(got.TreesEquivalent).To(Equal(131.8))
		Expect(got.MilesNotDriven).To(Equal(7250.0))
		Expect(got.PandasProtected).To(Equal(0.0725))
		Expect(got.SmartphonesCharged).To(Equal(241667.0))
		Expect(got.DaysOfElectricity).To(Equal(96.7))
	})

	It("scores nothing as zero", func() {
		Expect(impact.Score(nil)).To(Equal(impact.Impact{}))
	})

	It("falls back to the default footprint for unknown categories", func() {
		Expect(impact.FootprintKg("Mainframe")).To(Equal(float64(impact.DefaultFootprintKg)))
		Expect(impact.ForCategory("Storage").CO2SavedKg).To(Equal(800.0))
	})
})

var _ = DescribeTable("BadgeFor",
	func(posted int, want string) {
		b := impact.BadgeFor(posted)
		if want == "" {
			Expect(b).To(BeNil())
			return
		}
		Expect(b).NotTo(BeNil())
		Expect(b.Name).To(Equal(want))
	},
	Entry("nothing posted", 0, ""),
	Entry("first item", 1, "Eco Starter"),
	Entry("just below warrior", 4, "Eco Starter"),
	Entry("warrior", 5, "Green Warrior"),
	Entry("champion", 10, "Sustainability Champion"),
	Entry("hero", 20, "Planet Hero"),
	Entry("well past hero", 57, "Planet Hero"),
)

var _ = Describe("RankDepartments", func() {
	It("ranks by CO2 saved and counts claimed items", func() {
		stats := impact.RankDepartments([]impact.Item{
			item("Finance", "Networking", "available"),
			item("IT", "Server", "approved"),
			item("IT", "Storage", "shipped"),
			item("Finance", "Networking", "claimed"),
			item("HR", "Storage", "expired"),
		})

		Expect(stats).To(HaveLen(3))
		Expect(stats[0].Department).To(Equal("IT"))
		Expect(stats[0].TotalCO2SavedKg).To(Equal(2100.0))
		Expect(stats[0].ItemsClaimed).To(Equal(2))
		Expect(stats[0].Rank).To(Equal(1))
		Expect(stats[1].Department).To(Equal("HR"))
		Expect(stats[1].ItemsClaimed).To(BeZero())
		Expect(stats[2].Department).To(Equal("Finance"))
		Expect(stats[2].ItemsPosted).To(Equal(2))
		Expect(stats[2].ItemsClaimed).To(Equal(1))
		Expect(stats[2].Rank).To(Equal(3))
		Expect(stats[2].Badge.Name).To(Equal("Eco Starter"))
	})

	It("breaks CO2 ties by items posted", func() {
		stats := impact.RankDepartments([]impact.Item{
			item("Ops", "Server", "available"),
			item("Legal", "Storage", "available"),
			item("Legal", "GPU", "available"),
		})
		Expect(stats[0].TotalCO2SavedKg).To(Equal(stats[1].TotalCO2SavedKg))
		Expect(stats[0].Department).To(Equal("Legal"))
		Expect(stats[0].Rank).To(Equal(1))
		Expect(stats[1].Department).To(Equal("Ops"))
	})

	It("keeps first-seen order for full ties", func() {
		stats := impact.RankDepartments([]impact.Item{
			item("Ops", "Networking", "available"),
			item("Legal", "Networking", "available"),
		})
		Expect(stats[0].Department).To(Equal("Ops"))
		Expect(stats[1].Department).To(Equal("Legal"))
		Expect(stats[1].Rank).To(Equal(2))
	})

	It("returns an empty, non-nil board", func() {
		stats := impact.RankDepartments(nil)
		Expect(stats).NotTo(BeNil())
		Expect(stats).To(BeEmpty())
	})
})

var _ = Describe("Handler", func() {
	serve := func(reader impact.StatsReader, path string, fn func(*impact.Handler) http.HandlerFunc) *httptest.ResponseRecorder {
		h := impact.NewHandler(transport.NewBaseHandler(quietLogger), impact.NewService(reader, quietLogger))
		rec := httptest.NewRecorder()
		fn(h)(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	It("serves the leaderboard", func() {
		rec := serve(stubReader{items: []impact.Item{item("IT", "Server", "available")}}, "/api/v1/leaderboard",
			func(h *impact.Handler) http.HandlerFunc { return h.GetLeaderboard })
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring(`"totalCO2SavedKg":1300`))
	})

	It("serves an empty leaderboard as an empty array", func() {
		rec := serve(stubReader{}, "/api/v1/leaderboard",
			func(h *impact.Handler) http.HandlerFunc { return h.GetLeaderboard })
		Expect(rec.Body.String()).To(MatchJSON(`[]`))
	})

	It("reports reader failures as internal errors", func() {
		rec := serve(stubReader{err: errors.New("db down")}, "/api/v1/impact",
			func(h *impact.Handler) http.HandlerFunc { return h.GetTotals })
		Expect(rec.Code).To(Equal(http.StatusInternalServerError))
		Expect(rec.Body.String()).NotTo(ContainSubstring("db down"))
	})

	It("wraps failures in an AppError", func() {
		_, err := impact.NewService(stubReader{err: errors.New("db down")}, quietLogger).Totals(context.Background())
		_, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
	})
})

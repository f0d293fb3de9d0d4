package report_test

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/vsinha/workforce/pkg/application/dto"
	"github.com/vsinha/workforce/pkg/application/services/optimizer"
	"github.com/vsinha/workforce/pkg/application/services/report"
	"github.com/vsinha/workforce/pkg/domain/entities"
)

const canonicalReport = `Workforce optimization results:

Week 1:
-- Minimum headcount: 5
-- Optimal headcount: 5
-- Cost: $1400.00
-- Decision: hire 5 workers

Week 2:
-- Minimum headcount: 7
-- Optimal headcount: 8
-- Cost: $1300.00
-- Decision: hire 3 workers

Week 3:
-- Minimum headcount: 8
-- Optimal headcount: 8
-- Cost: $0.00
-- Decision: maintain current headcount

Week 4:
-- Minimum headcount: 4
-- Optimal headcount: 6
-- Cost: $600.00
-- Decision: lay off 2 workers

Week 5:
-- Minimum headcount: 6
-- Optimal headcount: 6
-- Cost: $0.00
-- Decision: maintain current headcount

Total optimization cost: $3300.00
`

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

var _ = Describe("Report", func() {
	var (
		problem *entities.Problem
		result  *dto.PlanResult
	)

	BeforeEach(func() {
		var err error
		problem, err = entities.NewProblem(5, []entities.Headcount{5, 7, 8, 4, 6}, decimal.NewFromInt(300),
			entities.HiringCost{Fixed: decimal.NewFromInt(400), PerHead: decimal.NewFromInt(200)})
		Expect(err).NotTo(HaveOccurred())

		result = &dto.PlanResult{
			RunID:      uuid.New(),
			TotalCost:  decimal.NewFromInt(3300),
			Trace:      []entities.Headcount{5, 8, 8, 6, 6},
			Stats:      dto.SolveStats{Strategy: "top-down"},
			ComputedAt: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
		}
	})

	Describe("Build", func() {
		It("derives one line per week from the trace", func() {
			plan, err := report.Build("canonical", problem, result)
			Expect(err).NotTo(HaveOccurred())

			Expect(plan.ID).To(Equal(result.RunID))
			Expect(plan.Name).To(Equal("canonical"))
			Expect(plan.Strategy).To(Equal("top-down"))
			Expect(plan.Weeks).To(HaveLen(5))
			Expect(plan.Trace()).To(Equal(result.Trace))
			Expect(plan.Minimums()).To(Equal(problem.Minimums))
			Expect(plan.TotalCost.StringFixed(2)).To(Equal("3300.00"))
		})

		It("labels hires, layoffs and unchanged weeks", func() {
			plan, err := report.Build("canonical", problem, result)
			Expect(err).NotTo(HaveOccurred())

			Expect(plan.Weeks[0].Action).To(Equal(entities.Hire))
			Expect(plan.Weeks[0].Decision()).To(Equal("hire 5 workers"))
			Expect(plan.Weeks[1].Decision()).To(Equal("hire 3 workers"))
			Expect(plan.Weeks[2].Action).To(Equal(entities.Maintain))
			Expect(plan.Weeks[3].Action).To(Equal(entities.LayOff))
			Expect(plan.Weeks[3].Decision()).To(Equal("lay off 2 workers"))
			Expect(plan.Weeks[3].Previous).To(Equal(entities.Headcount(8)))
		})

		It("rejects a trace that does not cover the horizon", func() {
			result.Trace = result.Trace[:3]
			_, err := report.Build("short", problem, result)
			Expect(err).To(MatchError("trace has 3 weeks, problem has 5"))
		})
	})

	Describe("WriteText", func() {
		It("renders the canonical scenario", func() {
			plan, err := report.Build("canonical", problem, result)
			Expect(err).NotTo(HaveOccurred())

			var buf bytes.Buffer
			Expect(report.WriteText(&buf, plan)).To(Succeed())
			Expect(buf.String()).To(Equal(canonicalReport))
		})

		It("surfaces writer failures", func() {
			plan, err := report.Build("canonical", problem, result)
			Expect(err).NotTo(HaveOccurred())

			err = report.WriteText(failingWriter{}, plan)
			Expect(err).To(MatchError(ContainSubstring("disk full")))
		})
	})

	It("reproduces the optimizer's total from its trace alone", func() {
		opt, err := optimizer.NewOptimizer(problem)
		Expect(err).NotTo(HaveOccurred())
		computed, err := opt.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())

		plan, err := report.Build("computed", problem, computed)
		Expect(err).NotTo(HaveOccurred())
		Expect(plan.TotalCost.Equal(computed.TotalCost)).To(BeTrue())
		for i, week := range plan.Weeks {
			Expect(week.Cost.Equal(computed.WeekCosts[i])).To(BeTrue())
		}
	})
})

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	"github.com/vsinha/workforce/pkg/application/services/optimizer"
	"github.com/vsinha/workforce/pkg/application/services/report"
	"github.com/vsinha/workforce/pkg/domain/entities"
)

func main() {
	ctx := context.Background()

	// Twelve weeks of a warehouse ramping into a holiday peak
	minimums := []entities.Headcount{12, 12, 14, 15, 18, 22, 30, 34, 35, 28, 16, 12}
	problem, err := entities.NewProblem(len(minimums), minimums,
		decimal.NewFromInt(650),
		entities.HiringCost{Fixed: decimal.NewFromInt(1800), PerHead: decimal.NewFromInt(450)})
	if err != nil {
		fmt.Printf("❌ Invalid problem: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("🚀 Planning holiday season staffing...")
	fmt.Printf("Weeks: %d | Peak minimum: %d\n", problem.Weeks, problem.MaxMinimum())
	fmt.Printf("Excess cost: %s per idle worker | Hiring: %s + %s per worker\n",
		report.FormatMoney(problem.ExcessCost), report.FormatMoney(problem.Hiring.Fixed), report.FormatMoney(problem.Hiring.PerHead))
	fmt.Println()

	// Both strategies must agree on cost and plan
	for _, config := range []optimizer.EngineConfig{
		{Strategy: optimizer.TopDown},
		{Strategy: optimizer.BottomUp, Parallelism: 4},
	} {
		opt, err := optimizer.NewOptimizerWithConfig(problem, config)
		if err != nil {
			fmt.Printf("❌ Optimizer setup failed: %v\n", err)
			os.Exit(1)
		}

		result, err := opt.Run(ctx)
		if err != nil {
			fmt.Printf("❌ Optimization failed: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("📊 %s: total %s, %d subproblems, %d memo hits, %v\n",
			result.Stats.Strategy, report.FormatMoney(result.TotalCost),
			result.Stats.MemoEntries, result.Stats.MemoHits, result.Stats.Duration)

		if config.Strategy == optimizer.BottomUp {
			continue
		}

		plan, err := report.Build("holiday-season", problem, result)
		if err != nil {
			fmt.Printf("❌ Report failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println()
		if err := report.WriteText(os.Stdout, plan); err != nil {
			fmt.Printf("❌ Writing report failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println()
	}

	fmt.Println("✅ Staffing plan complete!")
}

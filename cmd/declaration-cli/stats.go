package main

import (
	"context"
	"strconv"
	"strings"

	"github.com/goliatone/go-declaration/pkg/schema"
	"github.com/goliatone/go-declaration/pkg/storage"
)

// moneyTotals sums money answers per page: pages whose code mentions
// "deduction" count as deductions, every other page as income.
func moneyTotals(decl *schema.Declaration) storage.StatisticsFunc {
	return func(ctx context.Context, snapshot storage.Snapshot) (storage.Statistics, error) {
		var stats storage.Statistics
		for _, page := range decl.Pages {
			if err := ctx.Err(); err != nil {
				return storage.Statistics{}, err
			}
			total, found := 0.0, false
			for _, q := range page.Questions {
				for _, code := range moneyCodes(q) {
					for _, value := range snapshot.Answers[code] {
						amount, err := strconv.ParseFloat(strings.ReplaceAll(strings.ReplaceAll(value, " ", ""), ",", "."), 64)
						if err != nil {
							continue
						}
						total += amount
						found = true
					}
				}
			}
			if !found {
				continue
			}
			name := page.Title
			if name == "" {
				name = page.Code
			}
			amount := storage.Amount{Name: name, Value: total}
			if strings.Contains(strings.ToLower(page.Code), "deduction") {
				stats.Deductions = append(stats.Deductions, amount)
			} else {
				stats.Incomes = append(stats.Incomes, amount)
			}
		}
		return stats, nil
	}
}

func moneyCodes(q *schema.Question) []string {
	var out []string
	stack := []*schema.Question{q}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur.Kind == schema.KindMoney || cur.Kind == schema.KindMoneyInteger {
			out = append(out, cur.Code)
		}
		stack = append(stack, cur.Answers...)
	}
	return out
}

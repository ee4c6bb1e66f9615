package main

import (
	"github.com/gilbertoneto04/betmanagerpro/schema"
	"github.com/pkg/errors"
)

type NResult struct {
	N int64 //or int ,or some else
}

type FResult struct {
	F float64
}

// InsightsReport is the admin overview: request and inventory totals
type InsightsReport struct {
	TasksByStatus    map[string]int64 `json:"tasksByStatus"`
	AccountsByStatus map[string]int64 `json:"accountsByStatus"`
	PackQuantity     int64            `json:"packQuantity"`
	PackDelivered    int64            `json:"packDelivered"`
	PackSpend        float64          `json:"packSpend"`
	OpenWithdrawals  int64            `json:"openWithdrawals"`
}

// buildInsights computes the aggregates with plain SQL sums and counts
func (svc *dashSvc) buildInsights() (*InsightsReport, error) {
	report := InsightsReport{
		TasksByStatus:    map[string]int64{},
		AccountsByStatus: map[string]int64{},
	}

	type statusCount struct {
		Status string
		N      int64
	}

	var taskCounts []statusCount
	if err := svc.db.Table("tasks").
		Select("status, count(*) as n").
		Group("status").Scan(&taskCounts).Error; err != nil {
		return nil, errors.Wrap(err, "failed to count tasks")
	}
	for _, row := range taskCounts {
		report.TasksByStatus[row.Status] = row.N
	}

	var accountCounts []statusCount
	if err := svc.db.Table("accounts").
		Where("deleted_at IS NULL").
		Select("status, count(*) as n").
		Group("status").Scan(&accountCounts).Error; err != nil {
		return nil, errors.Wrap(err, "failed to count accounts")
	}
	for _, row := range accountCounts {
		report.AccountsByStatus[row.Status] = row.N
	}

	var n NResult
	svc.db.Table("packs").Select("coalesce(sum(quantity), 0) as n").Scan(&n)
	report.PackQuantity = n.N
	svc.db.Table("packs").Select("coalesce(sum(delivered), 0) as n").Scan(&n)
	report.PackDelivered = n.N

	var f FResult
	svc.db.Table("packs").Select("coalesce(sum(price), 0) as f").Scan(&f)
	report.PackSpend = f.F

	svc.db.Table("tasks").
		Where("type = ? and status in ?", schema.TypeWithdrawal,
			[]schema.TaskStatus{schema.TaskPending, schema.TaskRequested}).
		Select("count(*) as n").Scan(&n)
	report.OpenWithdrawals = n.N

	return &report, nil
}

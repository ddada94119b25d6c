package model

import "github.com/shopspring/decimal"

// 项目状态
const (
	ProjectPending   = "pending"
	ProjectOngoing   = "ongoing"
	ProjectCompleted = "completed"
	ProjectRejected  = "rejected"
)

// Client 客户子文档
type Client struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// ReceivedAmount 已收款子文档
type ReceivedAmount struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Date        string          `json:"date"`
}

// PaymentScheduleEntry 收款计划条目
type PaymentScheduleEntry struct {
	Amount  decimal.Decimal `json:"amount"`
	DueDate string          `json:"due_date"`
	Paid    bool            `json:"paid"`
}

// Project 项目聚合
type Project struct {
	ID              string                 `json:"id"`
	Name            string                 `json:"name"`
	Status          string                 `json:"status"`
	PackageCost     decimal.Decimal        `json:"package_cost"`
	Clients         []Client               `json:"clients"`
	Shoots          []Shoot                `json:"shoots"`
	Deliverables    []Deliverable          `json:"deliverables"`
	ReceivedAmounts []ReceivedAmount       `json:"received_amounts"`
	PaymentSchedule []PaymentScheduleEntry `json:"payment_schedule"`
}

// Received 已收款合计
func (p Project) Received() decimal.Decimal {
	total := decimal.Zero
	for _, r := range p.ReceivedAmounts {
		total = total.Add(r.Amount)
	}
	return total
}

// Outstanding 待收款，套餐价减去已收款
func (p Project) Outstanding() decimal.Decimal {
	return p.PackageCost.Sub(p.Received())
}

// CanTransition 项目状态迁移，pending可进入ongoing或rejected，ongoing可完成
func (p Project) CanTransition(next string) bool {
	switch p.Status {
	case ProjectPending:
		return next == ProjectOngoing || next == ProjectRejected
	case ProjectOngoing:
		return next == ProjectCompleted
	}
	return false
}

// Interactive 已拒绝或已完成的项目页签不可操作
func (p Project) Interactive() bool {
	return p.Status == ProjectPending || p.Status == ProjectOngoing
}

// ProjectCreate 项目登记表单
type ProjectCreate struct {
	Name        string   `json:"name" validate:"required"`
	PackageCost string   `json:"package_cost" validate:"omitempty,numeric"`
	Clients     []Client `json:"clients" validate:"min=1,dive"`
}

// PaymentCreate 收款登记表单
type PaymentCreate struct {
	ProjectID   string `json:"project_id" validate:"required"`
	Amount      string `json:"amount" validate:"required,numeric"`
	Description string `json:"description,omitempty"`
	Date        string `json:"date,omitempty"`
}

package model

import "github.com/shopspring/decimal"

// 工资单状态
const (
	PayrollPending  = "pending"
	PayrollComplete = "complete"
)

// PayrollRecord 员工月度工资单
type PayrollRecord struct {
	ID         string          `json:"id"`
	MemberID   string          `json:"member_id"`
	Month      string          `json:"month"`
	AmountDue  decimal.Decimal `json:"amount_due"`
	AmountPaid decimal.Decimal `json:"amount_paid"`
	Status     string          `json:"status"`
	Notes      string          `json:"notes"`
}

// Settled 是否结清
func (p PayrollRecord) Settled() bool {
	return p.Status == PayrollComplete || p.AmountPaid.GreaterThanOrEqual(p.AmountDue)
}

// LedgerItem 自由职业者账单条目
type LedgerItem struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Date        string          `json:"date"`
}

// LedgerPayment 自由职业者付款条目
type LedgerPayment struct {
	ID     string          `json:"id"`
	Amount decimal.Decimal `json:"amount"`
	Date   string          `json:"date"`
}

// FreelancerLedger 自由职业者台账，余额等于账单合计减付款合计
type FreelancerLedger struct {
	MemberID string          `json:"member_id"`
	Items    []LedgerItem    `json:"items"`
	Payments []LedgerPayment `json:"payments"`
}

// Billed 账单合计
func (f FreelancerLedger) Billed() decimal.Decimal {
	total := decimal.Zero
	for _, it := range f.Items {
		total = total.Add(it.Amount)
	}
	return total
}

// Paid 付款合计
func (f FreelancerLedger) Paid() decimal.Decimal {
	total := decimal.Zero
	for _, p := range f.Payments {
		total = total.Add(p.Amount)
	}
	return total
}

// Balance 待结余额
func (f FreelancerLedger) Balance() decimal.Decimal {
	return f.Billed().Sub(f.Paid())
}

// Expense 报销/支出
type Expense struct {
	ID          string          `json:"id"`
	ProjectID   string          `json:"project_id,omitempty"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Date        string          `json:"date"`
}

// Upload 附件上传结果
type Upload struct {
	URL        string `json:"url"`
	UploadType string `json:"uploadType"`
}

package store

import (
	"github.com/shopspring/decimal"

	"github.com/firsthash/console/errors"
	"github.com/firsthash/console/model"
)

var (
	// ErrProjectNotFound 项目不存在
	ErrProjectNotFound = errors.New("项目不存在")
	// ErrBadTransition 非法的项目状态迁移
	ErrBadTransition = errors.New("非法的项目状态迁移")
	// ErrRecordNotFound 记录不存在
	ErrRecordNotFound = errors.New("记录不存在")
)

// UpdateProjectStatus 乐观迁移项目状态，pending→ongoing|rejected，ongoing→completed
func (s *Store) UpdateProjectStatus(projectID, next string) error {
	s.mu.Lock()
	i := indexOfProject(s.projects, projectID)
	if i < 0 {
		s.mu.Unlock()
		return ErrProjectNotFound
	}
	project := s.projects[i]
	s.mu.Unlock()

	if !project.CanTransition(next) {
		return ErrBadTransition
	}
	return s.run(mutation{
		entity: "project",
		id:     projectID,
		apply: func() func() {
			j := indexOfProject(s.projects, projectID)
			if j < 0 {
				return func() {}
			}
			prev := s.projects[j].Status
			s.projects[j].Status = next
			return func() {
				if k := indexOfProject(s.projects, projectID); k >= 0 {
					s.projects[k].Status = prev
				}
			}
		},
		call: func() error {
			return s.cli.UpdateProjectStatus(projectID, next, nil)
		},
	})
}

// CreatePayment 乐观登记收款
func (s *Store) CreatePayment(form model.PaymentCreate) error {
	amount, err := decimal.NewFromString(form.Amount)
	if err != nil {
		return errors.NewErrorf("金额无法解析: %s", form.Amount)
	}
	s.mu.Lock()
	if indexOfProject(s.projects, form.ProjectID) < 0 {
		s.mu.Unlock()
		return ErrProjectNotFound
	}
	s.mu.Unlock()
	entry := model.ReceivedAmount{
		Amount:      amount,
		Description: form.Description,
		Date:        form.Date,
	}
	return s.run(mutation{
		entity: "payment",
		id:     form.ProjectID,
		apply: func() func() {
			j := indexOfProject(s.projects, form.ProjectID)
			if j < 0 {
				return func() {}
			}
			s.projects[j].ReceivedAmounts = append(s.projects[j].ReceivedAmounts, entry)
			return func() {
				if k := indexOfProject(s.projects, form.ProjectID); k >= 0 {
					amounts := s.projects[k].ReceivedAmounts
					if len(amounts) > 0 {
						s.projects[k].ReceivedAmounts = amounts[:len(amounts)-1]
					}
				}
			}
		},
		call: func() error {
			return s.cli.SavePayment(form.ProjectID, form, nil)
		},
	})
}

// CreateExpense 乐观登记支出
func (s *Store) CreateExpense(expense model.Expense) (string, error) {
	temp := tempID()
	expense.ID = temp
	var created model.Expense
	err := s.run(mutation{
		entity: "expense",
		id:     temp,
		apply: func() func() {
			s.expenses = append(s.expenses, expense)
			return func() {
				if i := indexOfExpense(s.expenses, temp); i >= 0 {
					s.expenses = append(s.expenses[:i], s.expenses[i+1:]...)
				}
			}
		},
		call: func() error {
			body := expense
			body.ID = ""
			return s.cli.SaveExpense(body, &created)
		},
		reconcile: func() {
			if i := indexOfExpense(s.expenses, temp); i >= 0 && created.ID != "" {
				s.expenses[i] = created
			}
		},
	})
	if err != nil {
		return "", err
	}
	if created.ID != "" {
		return created.ID, nil
	}
	return temp, nil
}

// UpdateExpense 乐观更新支出
func (s *Store) UpdateExpense(updated model.Expense) error {
	s.mu.Lock()
	if indexOfExpense(s.expenses, updated.ID) < 0 {
		s.mu.Unlock()
		return ErrRecordNotFound
	}
	s.mu.Unlock()

	return s.run(mutation{
		entity: "expense",
		id:     updated.ID,
		apply: func() func() {
			j := indexOfExpense(s.expenses, updated.ID)
			if j < 0 {
				return func() {}
			}
			prev := s.expenses[j]
			s.expenses[j] = updated
			return func() {
				if k := indexOfExpense(s.expenses, updated.ID); k >= 0 {
					s.expenses[k] = prev
				}
			}
		},
		call: func() error {
			return s.cli.UpdateExpenseById(updated.ID, updated, nil)
		},
	})
}

// DeleteExpense 乐观删除支出
func (s *Store) DeleteExpense(id string) error {
	return s.run(mutation{
		entity: "expense",
		id:     id,
		apply: func() func() {
			i := indexOfExpense(s.expenses, id)
			if i < 0 {
				return func() {}
			}
			prev := make([]model.Expense, len(s.expenses))
			copy(prev, s.expenses)
			s.expenses = append(s.expenses[:i], s.expenses[i+1:]...)
			return func() {
				s.expenses = prev
			}
		},
		call: func() error {
			return s.cli.DelExpenseById(id, nil)
		},
	})
}

// CreateSalary 乐观新建工资单
func (s *Store) CreateSalary(memberID string, record model.PayrollRecord) (string, error) {
	temp := tempID()
	record.ID = temp
	record.MemberID = memberID
	if record.Status == "" {
		record.Status = model.PayrollPending
	}
	var created model.PayrollRecord
	err := s.run(mutation{
		entity: "salary",
		id:     temp,
		apply: func() func() {
			s.salaries[memberID] = append(s.salaries[memberID], record)
			return func() {
				records := s.salaries[memberID]
				for i, r := range records {
					if r.ID == temp {
						s.salaries[memberID] = append(records[:i], records[i+1:]...)
						break
					}
				}
			}
		},
		call: func() error {
			body := record
			body.ID = ""
			return s.cli.SaveSalary(memberID, body, &created)
		},
		reconcile: func() {
			records := s.salaries[memberID]
			for i, r := range records {
				if r.ID == temp && created.ID != "" {
					records[i] = created
					break
				}
			}
		},
	})
	if err != nil {
		return "", err
	}
	if created.ID != "" {
		return created.ID, nil
	}
	return temp, nil
}

// UpdateSalary 乐观更新工资单的金额/状态/备注
func (s *Store) UpdateSalary(memberID string, updated model.PayrollRecord) error {
	s.mu.Lock()
	records := s.salaries[memberID]
	idx := -1
	for i, r := range records {
		if r.ID == updated.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return ErrRecordNotFound
	}
	s.mu.Unlock()

	updated.MemberID = memberID
	return s.run(mutation{
		entity: "salary",
		id:     updated.ID,
		apply: func() func() {
			prev, ok := s.findSalary(memberID, updated.ID)
			if !ok {
				return func() {}
			}
			s.replaceSalary(memberID, updated)
			return func() {
				s.replaceSalary(memberID, prev)
			}
		},
		call: func() error {
			return s.cli.UpdateSalaryById(memberID, updated.ID, updated, nil)
		},
	})
}

// AddFreelancerItem 乐观登记自由职业者账单条目
func (s *Store) AddFreelancerItem(memberID string, item model.LedgerItem) error {
	temp := tempID()
	item.ID = temp
	var created model.LedgerItem
	return s.run(mutation{
		entity: "freelancer",
		id:     memberID,
		apply: func() func() {
			ledger := s.ledgers[memberID]
			ledger.MemberID = memberID
			ledger.Items = append(ledger.Items, item)
			s.ledgers[memberID] = ledger
			return func() {
				ledger := s.ledgers[memberID]
				for i, it := range ledger.Items {
					if it.ID == temp {
						ledger.Items = append(ledger.Items[:i], ledger.Items[i+1:]...)
						break
					}
				}
				s.ledgers[memberID] = ledger
			}
		},
		call: func() error {
			body := item
			body.ID = ""
			return s.cli.SaveFreelancerItem(memberID, body, &created)
		},
		reconcile: func() {
			ledger := s.ledgers[memberID]
			for i, it := range ledger.Items {
				if it.ID == temp && created.ID != "" {
					ledger.Items[i] = created
					break
				}
			}
			s.ledgers[memberID] = ledger
		},
	})
}

// AddFreelancerPayment 乐观登记自由职业者付款
func (s *Store) AddFreelancerPayment(memberID string, payment model.LedgerPayment) error {
	temp := tempID()
	payment.ID = temp
	var created model.LedgerPayment
	return s.run(mutation{
		entity: "freelancer",
		id:     memberID,
		apply: func() func() {
			ledger := s.ledgers[memberID]
			ledger.MemberID = memberID
			ledger.Payments = append(ledger.Payments, payment)
			s.ledgers[memberID] = ledger
			return func() {
				ledger := s.ledgers[memberID]
				for i, p := range ledger.Payments {
					if p.ID == temp {
						ledger.Payments = append(ledger.Payments[:i], ledger.Payments[i+1:]...)
						break
					}
				}
				s.ledgers[memberID] = ledger
			}
		},
		call: func() error {
			body := payment
			body.ID = ""
			return s.cli.SaveFreelancerPayment(memberID, body, &created)
		},
		reconcile: func() {
			ledger := s.ledgers[memberID]
			for i, p := range ledger.Payments {
				if p.ID == temp && created.ID != "" {
					ledger.Payments[i] = created
					break
				}
			}
			s.ledgers[memberID] = ledger
		},
	})
}

func (s *Store) findSalary(memberID, id string) (model.PayrollRecord, bool) {
	for _, r := range s.salaries[memberID] {
		if r.ID == id {
			return r, true
		}
	}
	return model.PayrollRecord{}, false
}

func (s *Store) replaceSalary(memberID string, record model.PayrollRecord) {
	records := s.salaries[memberID]
	for i, r := range records {
		if r.ID == record.ID {
			records[i] = record
			return
		}
	}
}

func indexOfProject(projects []model.Project, id string) int {
	for i, p := range projects {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func indexOfExpense(expenses []model.Expense, id string) int {
	for i, e := range expenses {
		if e.ID == id {
			return i
		}
	}
	return -1
}

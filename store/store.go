// Package store 页面状态的内存存储与乐观同步引擎
// 单把大锁对应浏览器端的单线程事件循环：变更的本地生效是同步的，网络调用是挂起点
package store

import (
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/firsthash/console/api"
	"github.com/firsthash/console/dispatch"
	"github.com/firsthash/console/logger"
	"github.com/firsthash/console/logic"
	"github.com/firsthash/console/model"
	"github.com/firsthash/console/tasktree"
	"github.com/firsthash/console/util/json"
)

// 操作者角色
const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleEmployee = "employee"
)

// Actor 当前操作者
type Actor struct {
	ID   string
	Role string
}

// Options 存储选项
type Options struct {
	// AllowRefinalize 允许completed↔finalize双向切换(源系统两个页面行为不一致，默认取单向)
	AllowRefinalize bool
	// Events 外部命令总线，空则内建
	Events *dispatch.Dispatcher
}

// Store 内存状态存储
type Store struct {
	mu   sync.Mutex
	cli  api.Client
	opts Options

	members      []model.Member
	roles        []model.Role
	projects     []model.Project
	tasks        []model.Task
	deliverables []model.Deliverable
	shoots       []model.Shoot
	expenses     []model.Expense
	salaries     map[string][]model.PayrollRecord
	ledgers      map[string]model.FreelancerLedger

	// pending 有排队或在途变更的实体id，刷新时跳过覆盖
	pending map[string]int

	queueMu   sync.Mutex
	queueTail map[string]chan struct{}

	events *dispatch.Dispatcher
	cron   *cron.Cron
}

func New(cli api.Client, opts Options) *Store {
	events := opts.Events
	if events == nil {
		events = dispatch.NewDispatcher(time.Second, 16)
	}
	return &Store{
		cli:       cli,
		opts:      opts,
		salaries:  map[string][]model.PayrollRecord{},
		ledgers:   map[string]model.FreelancerLedger{},
		pending:   map[string]int{},
		queueTail: map[string]chan struct{}{},
		events:    events,
	}
}

// Events 命令总线
func (s *Store) Events() *dispatch.Dispatcher {
	return s.events
}

// Refresh 全量拉取集合并重建缓存，有在途变更的实体保留本地版本
func (s *Store) Refresh() error {
	var (
		members      []model.Member
		roles        []model.Role
		projects     []model.Project
		tasks        []model.Task
		deliverables []model.Deliverable
		shoots       []model.Shoot
		expenses     []model.Expense
	)
	if err := s.cli.FindMemberQuery(nil, &members); err != nil {
		return err
	}
	if err := s.cli.FindRoleQuery(nil, &roles); err != nil {
		return err
	}
	if err := s.cli.FindProjectQuery(nil, &projects); err != nil {
		return err
	}
	if err := s.cli.FindTaskQuery(nil, &tasks); err != nil {
		return err
	}
	if err := s.cli.FindDeliverableQuery(nil, &deliverables); err != nil {
		return err
	}
	if err := s.cli.FindEventQuery(nil, &shoots); err != nil {
		return err
	}
	if err := s.cli.FindExpenseQuery(nil, &expenses); err != nil {
		return err
	}

	s.mu.Lock()
	s.members = members
	s.roles = roles
	s.deliverables = deliverables
	s.projects = s.mergeProjects(projects)
	s.tasks = s.mergeTasks(tasks)
	s.shoots = s.mergeShoots(shoots)
	s.expenses = s.mergeExpenses(expenses)
	logic.MemberLogic.Load(s.members)
	logic.RoleLogic.Load(s.roles)
	logic.ProjectLogic.Load(s.projects)
	logic.TaskLogic.Load(s.tasks)
	s.mu.Unlock()

	s.events.Dispatch(dispatch.Command{Kind: dispatch.KindRefreshed})
	return nil
}

// LoadSalaries 拉取某员工的工资单
func (s *Store) LoadSalaries(memberID string) error {
	var records []model.PayrollRecord
	if err := s.cli.FindSalaryQuery(memberID, nil, &records); err != nil {
		return err
	}
	s.mu.Lock()
	s.salaries[memberID] = records
	s.mu.Unlock()
	return nil
}

// LoadFreelancerLedger 拉取自由职业者台账
func (s *Store) LoadFreelancerLedger(memberID string) error {
	var ledger model.FreelancerLedger
	if err := s.cli.FindFreelancerLedger(memberID, &ledger); err != nil {
		return err
	}
	ledger.MemberID = memberID
	s.mu.Lock()
	s.ledgers[memberID] = ledger
	s.mu.Unlock()
	return nil
}

// StartAutoRefresh 按cron表达式定时全量刷新，表达式为空不启用
func (s *Store) StartAutoRefresh(spec string) error {
	if spec == "" {
		return nil
	}
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		if err := s.Refresh(); err != nil {
			logger.Errorf(nil, logger.REFRESHERROR, err.Error())
		}
	})
	if err != nil {
		return err
	}
	s.mu.Lock()
	if s.cron != nil {
		s.cron.Stop()
	}
	s.cron = c
	s.mu.Unlock()
	c.Start()
	return nil
}

// StopAutoRefresh 停止定时刷新
func (s *Store) StopAutoRefresh() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		s.cron.Stop()
		s.cron = nil
	}
}

// Members 成员列表拷贝
func (s *Store) Members() []model.Member {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Member, len(s.members))
	copy(out, s.members)
	return out
}

// Roles 角色列表拷贝
func (s *Store) Roles() []model.Role {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Role, len(s.roles))
	copy(out, s.roles)
	return out
}

// Projects 项目列表深拷贝
func (s *Store) Projects() []model.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Project
	if err := json.CopyByJson(&out, s.projects); err != nil {
		return nil
	}
	return out
}

// Project 按id查项目
func (s *Store) Project(id string) (model.Project, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.projects {
		if p.ID == id {
			var out model.Project
			if err := json.CopyByJson(&out, p); err != nil {
				break
			}
			return out, true
		}
	}
	return model.Project{}, false
}

// Tasks 任务列表拷贝
func (s *Store) Tasks() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyTasks(s.tasks)
}

// Task 按id查任务
func (s *Store) Task(id string) (model.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOfTask(s.tasks, id)
	if i < 0 {
		return model.Task{}, false
	}
	return s.tasks[i], true
}

// TaskForest 当前任务的arena森林
func (s *Store) TaskForest() *tasktree.Forest {
	return tasktree.BuildForest(s.Tasks())
}

// Shoots 拍摄场次深拷贝
func (s *Store) Shoots() []model.Shoot {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Shoot
	if err := json.CopyByJson(&out, s.shoots); err != nil {
		return nil
	}
	return out
}

// Deliverables 交付物列表拷贝
func (s *Store) Deliverables() []model.Deliverable {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Deliverable
	if err := json.CopyByJson(&out, s.deliverables); err != nil {
		return nil
	}
	return out
}

// Expenses 支出列表拷贝
func (s *Store) Expenses() []model.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Expense, len(s.expenses))
	copy(out, s.expenses)
	return out
}

// Salaries 某员工工资单拷贝
func (s *Store) Salaries(memberID string) []model.PayrollRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	records := s.salaries[memberID]
	out := make([]model.PayrollRecord, len(records))
	copy(out, records)
	return out
}

// Ledger 自由职业者台账深拷贝
func (s *Store) Ledger(memberID string) (model.FreelancerLedger, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ledger, ok := s.ledgers[memberID]
	if !ok {
		return model.FreelancerLedger{}, false
	}
	var out model.FreelancerLedger
	if err := json.CopyByJson(&out, ledger); err != nil {
		return model.FreelancerLedger{}, false
	}
	return out, true
}

func (s *Store) mergeTasks(fresh []model.Task) []model.Task {
	if len(s.pending) == 0 {
		return fresh
	}
	out := make([]model.Task, 0, len(fresh))
	seen := map[string]struct{}{}
	for _, t := range fresh {
		if _, ok := s.pending[t.ID]; ok {
			if i := indexOfTask(s.tasks, t.ID); i >= 0 {
				t = s.tasks[i]
			}
		}
		seen[t.ID] = struct{}{}
		out = append(out, t)
	}
	// 在途创建的临时任务后端还不知道，保留
	for _, t := range s.tasks {
		if _, ok := s.pending[t.ID]; !ok {
			continue
		}
		if _, ok := seen[t.ID]; !ok {
			out = append(out, t)
		}
	}
	return out
}

func (s *Store) mergeProjects(fresh []model.Project) []model.Project {
	if len(s.pending) == 0 {
		return fresh
	}
	for i, p := range fresh {
		if _, ok := s.pending[p.ID]; !ok {
			continue
		}
		for _, old := range s.projects {
			if old.ID == p.ID {
				fresh[i] = old
				break
			}
		}
	}
	return fresh
}

func (s *Store) mergeShoots(fresh []model.Shoot) []model.Shoot {
	if len(s.pending) == 0 {
		return fresh
	}
	for i, sh := range fresh {
		if _, ok := s.pending[sh.ID]; !ok {
			continue
		}
		for _, old := range s.shoots {
			if old.ID == sh.ID {
				fresh[i] = old
				break
			}
		}
	}
	return fresh
}

func (s *Store) mergeExpenses(fresh []model.Expense) []model.Expense {
	if len(s.pending) == 0 {
		return fresh
	}
	for i, e := range fresh {
		if _, ok := s.pending[e.ID]; !ok {
			continue
		}
		for _, old := range s.expenses {
			if old.ID == e.ID {
				fresh[i] = old
				break
			}
		}
	}
	return fresh
}

func copyTasks(tasks []model.Task) []model.Task {
	out := make([]model.Task, len(tasks))
	copy(out, tasks)
	for i := range out {
		ids := make(model.StringList, len(out[i].AssigneeIDs))
		copy(ids, out[i].AssigneeIDs)
		out[i].AssigneeIDs = ids
	}
	return out
}

func indexOfTask(tasks []model.Task, id string) int {
	for i, t := range tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

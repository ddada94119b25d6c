package store

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/firsthash/console/api"
	"github.com/firsthash/console/errors"
	"github.com/firsthash/console/logic"
	"github.com/firsthash/console/model"
	"github.com/firsthash/console/util/json"
)

// stubAPI 只实现用到的方法，其余方法走内嵌接口(调用即panic，测试不应触达)
type stubAPI struct {
	api.Client
	saveTask         func(data, result interface{}) error
	updateTask       func(id string, data, result interface{}) error
	delTask          func(id string, result interface{}) error
	replaceAssignees func(id string, ids []string, result interface{}) error
	updateShoot      func(id string, data, result interface{}) error
	updateStatus     func(id, status string, result interface{}) error
	savePayment      func(projectId string, data, result interface{}) error
	delExpense       func(id string, result interface{}) error
	delRole          func(id string, result interface{}) error
	uploadFile       func(file io.Reader, filename, uploadType string, result interface{}) error
}

func (s *stubAPI) SaveTask(data, result interface{}) error {
	return s.saveTask(data, result)
}
func (s *stubAPI) UpdateTaskById(id string, data, result interface{}) error {
	return s.updateTask(id, data, result)
}
func (s *stubAPI) DelTaskById(id string, result interface{}) error {
	return s.delTask(id, result)
}
func (s *stubAPI) ReplaceTaskAssignees(id string, ids []string, result interface{}) error {
	return s.replaceAssignees(id, ids, result)
}
func (s *stubAPI) UpdateShootAssignments(id string, data, result interface{}) error {
	return s.updateShoot(id, data, result)
}
func (s *stubAPI) UpdateProjectStatus(id string, status string, result interface{}) error {
	return s.updateStatus(id, status, result)
}
func (s *stubAPI) SavePayment(projectId string, data, result interface{}) error {
	return s.savePayment(projectId, data, result)
}
func (s *stubAPI) DelExpenseById(id string, result interface{}) error {
	return s.delExpense(id, result)
}
func (s *stubAPI) DelRoleById(id string, result interface{}) error {
	return s.delRole(id, result)
}
func (s *stubAPI) UploadFile(file io.Reader, filename, uploadType string, result interface{}) error {
	return s.uploadFile(file, filename, uploadType, result)
}

func snapshot(t *testing.T, v interface{}) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

// 乐观创建失败后列表逐字节恢复
func TestCreateTaskRollback(t *testing.T) {
	cli := &stubAPI{
		saveTask: func(data, result interface{}) error {
			return errors.NewAPIError(500, "", "server exploded")
		},
	}
	s := New(cli, Options{})
	s.tasks = []model.Task{{ID: "t1", Title: "edit highlight reel", Status: model.TaskToDo}}
	before := snapshot(t, s.tasks)

	_, err := s.CreateTask(model.TaskCreate{Title: "color grade"})
	if err == nil {
		t.Fatal("应失败")
	}
	if got := snapshot(t, s.tasks); got != before {
		t.Fatalf("回滚不精确:\n%s\n%s", before, got)
	}
}

// 成功后临时id换成后端id
func TestCreateTaskReconcile(t *testing.T) {
	cli := &stubAPI{
		saveTask: func(data, result interface{}) error {
			*(result.(*model.Task)) = model.Task{ID: "t99", Title: "color grade", Status: model.TaskToDo}
			return nil
		},
	}
	s := New(cli, Options{})
	id, err := s.CreateTask(model.TaskCreate{Title: "color grade"})
	if err != nil {
		t.Fatal(err)
	}
	if id != "t99" {
		t.Fatal("应返回后端id", id)
	}
	tasks := s.Tasks()
	if len(tasks) != 1 || tasks[0].ID != "t99" || IsTempID(tasks[0].ID) {
		t.Fatal("临时id未对账", tasks)
	}
}

func TestUpdateTaskRollback(t *testing.T) {
	cli := &stubAPI{
		updateTask: func(id string, data, result interface{}) error {
			return errors.NewAPIError(409, "", "conflict")
		},
	}
	s := New(cli, Options{})
	s.tasks = []model.Task{{ID: "t1", Title: "old title", Status: model.TaskToDo}}
	before := snapshot(t, s.tasks)

	err := s.UpdateTask(model.Task{ID: "t1", Title: "new title", Status: model.TaskInProgress})
	if err == nil {
		t.Fatal("应失败")
	}
	if got := snapshot(t, s.tasks); got != before {
		t.Fatal("更新失败未回滚")
	}
}

// 删除本地级联子树，失败则整棵恢复
func TestDeleteTaskCascade(t *testing.T) {
	fail := true
	cli := &stubAPI{
		delTask: func(id string, result interface{}) error {
			if fail {
				return errors.NewAPIError(500, "", "boom")
			}
			return nil
		},
	}
	s := New(cli, Options{})
	s.tasks = []model.Task{
		{ID: "a", Status: model.TaskToDo},
		{ID: "b", ParentTaskID: "a", Status: model.TaskToDo},
		{ID: "c", ParentTaskID: "b", Status: model.TaskToDo},
		{ID: "d", Status: model.TaskToDo},
	}

	if err := s.DeleteTask("a"); err == nil {
		t.Fatal("应失败")
	}
	if len(s.Tasks()) != 4 {
		t.Fatal("失败后应恢复全部", s.Tasks())
	}

	fail = false
	if err := s.DeleteTask("a"); err != nil {
		t.Fatal(err)
	}
	tasks := s.Tasks()
	if len(tasks) != 1 || tasks[0].ID != "d" {
		t.Fatal("级联删除不对", tasks)
	}
}

// 删除失败回滚后列表顺序与删除前逐字节一致(根排序和分页依赖列表顺序)
func TestDeleteTaskRollbackOrder(t *testing.T) {
	cli := &stubAPI{
		delTask: func(id string, result interface{}) error {
			return errors.NewAPIError(500, "", "boom")
		},
	}
	s := New(cli, Options{})
	s.tasks = []model.Task{
		{ID: "a", Status: model.TaskToDo},
		{ID: "b", ParentTaskID: "a", Status: model.TaskToDo},
		{ID: "d", Status: model.TaskToDo},
	}
	before := snapshot(t, s.tasks)

	if err := s.DeleteTask("a"); err == nil {
		t.Fatal("应失败")
	}
	if got := snapshot(t, s.tasks); got != before {
		t.Fatalf("回滚后顺序不一致:\n%s\n%s", before, got)
	}
}

func TestDeleteExpenseRollbackOrder(t *testing.T) {
	cli := &stubAPI{
		delExpense: func(id string, result interface{}) error {
			return errors.NewAPIError(500, "", "boom")
		},
	}
	s := New(cli, Options{})
	s.expenses = []model.Expense{{ID: "e1"}, {ID: "e2"}, {ID: "e3"}}
	before := snapshot(t, s.expenses)

	if err := s.DeleteExpense("e2"); err == nil {
		t.Fatal("应失败")
	}
	if got := snapshot(t, s.expenses); got != before {
		t.Fatalf("回滚后顺序不一致:\n%s\n%s", before, got)
	}
}

func TestDeleteRoleRollbackOrder(t *testing.T) {
	cli := &stubAPI{
		delRole: func(id string, result interface{}) error {
			return errors.NewAPIError(500, "", "boom")
		},
	}
	s := New(cli, Options{})
	s.roles = []model.Role{
		{ID: "r1", Name: "Photographer", CompanyID: "c1"},
		{ID: "r2", Name: "Editor", CompanyID: "c1"},
		{ID: "r3", Name: "Drone Operator", CompanyID: "c1"},
	}
	logic.RoleLogic.Load(s.roles)
	before := snapshot(t, s.roles)

	if err := s.DeleteRole("r2"); err == nil {
		t.Fatal("应失败")
	}
	if got := snapshot(t, s.roles); got != before {
		t.Fatalf("回滚后顺序不一致:\n%s\n%s", before, got)
	}
}

// 场景：finalize任务管理员切换只能到completed，completed后不再提供切换
func TestToggleFinalize(t *testing.T) {
	var sent string
	cli := &stubAPI{
		updateTask: func(id string, data, result interface{}) error {
			sent = data.(model.Task).Status
			return nil
		},
	}
	s := New(cli, Options{})
	s.tasks = []model.Task{{ID: "t1", Title: "wedding album", Status: model.TaskFinalize}}
	admin := Actor{ID: "u1", Role: RoleAdmin}

	if !s.CanToggleFinalize(admin, s.tasks[0]) {
		t.Fatal("finalize状态应提供切换")
	}
	if err := s.ToggleFinalize(admin, "t1"); err != nil {
		t.Fatal(err)
	}
	if sent != model.TaskCompleted {
		t.Fatal("只能切到completed", sent)
	}
	got, _ := s.Task("t1")
	if got.Status != model.TaskCompleted {
		t.Fatal("本地状态未生效", got.Status)
	}
	// completed后切换入口消失，再切报错
	if s.CanToggleFinalize(admin, got) {
		t.Fatal("completed后不应提供切换")
	}
	if err := s.ToggleFinalize(admin, "t1"); err != ErrToggleUnavailable {
		t.Fatal("应拒绝", err)
	}
}

func TestToggleFinalizeAdminOnly(t *testing.T) {
	s := New(&stubAPI{}, Options{})
	s.tasks = []model.Task{{ID: "t1", Status: model.TaskFinalize}}
	employee := Actor{ID: "u2", Role: RoleEmployee}
	if s.CanToggleFinalize(employee, s.tasks[0]) {
		t.Fatal("非管理员不应看到切换")
	}
	if err := s.ToggleFinalize(employee, "t1"); err != ErrAdminOnly {
		t.Fatal("应拒绝非管理员", err)
	}
}

// 宽松模式下completed可重新定稿(源系统第二个页面的行为)
func TestToggleRefinalize(t *testing.T) {
	cli := &stubAPI{
		updateTask: func(id string, data, result interface{}) error { return nil },
	}
	s := New(cli, Options{AllowRefinalize: true})
	s.tasks = []model.Task{{ID: "t1", Status: model.TaskCompleted}}
	admin := Actor{ID: "u1", Role: RoleAdmin}
	if !s.CanToggleFinalize(admin, s.tasks[0]) {
		t.Fatal("宽松模式completed应可切换")
	}
	if err := s.ToggleFinalize(admin, "t1"); err != nil {
		t.Fatal(err)
	}
	got, _ := s.Task("t1")
	if got.Status != model.TaskFinalize {
		t.Fatal("应回到finalize", got.Status)
	}
}

func TestCommitShootAssignmentRollback(t *testing.T) {
	fail := true
	var sent model.AssignmentUpdate
	cli := &stubAPI{
		updateShoot: func(id string, data, result interface{}) error {
			if fail {
				return errors.NewAPIError(500, "", "boom")
			}
			sent = data.(model.AssignmentUpdate)
			return nil
		},
	}
	s := New(cli, Options{})
	s.shoots = []model.Shoot{{
		ID: "s1",
		Services: map[string]model.WorkUnit{
			"Photographer": {Required: 2, Assigned: model.StringList{"m1"}},
		},
	}}

	if err := s.CommitShootAssignment("s1", "Photographer", []string{"m1", "m2"}); err == nil {
		t.Fatal("应失败")
	}
	unit := s.Shoots()[0].Services["Photographer"]
	if len(unit.Assigned) != 1 || unit.Assigned[0] != "m1" {
		t.Fatal("失败后应回滚", unit.Assigned)
	}

	fail = false
	if err := s.CommitShootAssignment("s1", "Photographer", []string{"m1", "m2"}); err != nil {
		t.Fatal(err)
	}
	if sent.ServiceName != "Photographer" || len(sent.AssigneeIDs) != 2 {
		t.Fatal("提交体不对", sent)
	}
	unit = s.Shoots()[0].Services["Photographer"]
	if len(unit.Assigned) != 2 {
		t.Fatal("成功后应生效", unit.Assigned)
	}
}

func TestProjectStatusTransition(t *testing.T) {
	cli := &stubAPI{
		updateStatus: func(id, status string, result interface{}) error { return nil },
	}
	s := New(cli, Options{})
	s.projects = []model.Project{{ID: "p1", Status: model.ProjectPending}}

	if err := s.UpdateProjectStatus("p1", model.ProjectCompleted); err != ErrBadTransition {
		t.Fatal("pending不可直接完成", err)
	}
	if err := s.UpdateProjectStatus("p1", model.ProjectOngoing); err != nil {
		t.Fatal(err)
	}
	p, _ := s.Project("p1")
	if p.Status != model.ProjectOngoing {
		t.Fatal("状态未生效", p.Status)
	}
}

// 同一实体的两次快速变更经队列串行，网络阶段不交错
func TestPerEntitySerialization(t *testing.T) {
	firstInFlight := make(chan struct{})
	releaseFirst := make(chan struct{})
	var order []string
	cli := &stubAPI{
		updateTask: func(id string, data, result interface{}) error {
			title := data.(model.Task).Title
			if title == "first" {
				close(firstInFlight)
				<-releaseFirst
			}
			order = append(order, title)
			return nil
		},
	}
	s := New(cli, Options{})
	s.tasks = []model.Task{{ID: "t1", Title: "orig", Status: model.TaskToDo}}

	done1 := make(chan error, 1)
	done2 := make(chan error, 1)
	go func() {
		done1 <- s.UpdateTask(model.Task{ID: "t1", Title: "first", Status: model.TaskToDo})
	}()
	<-firstInFlight
	go func() {
		done2 <- s.UpdateTask(model.Task{ID: "t1", Title: "second", Status: model.TaskToDo})
	}()

	// 第二个变更必须等第一个完成
	select {
	case <-done2:
		t.Fatal("第二个变更不应先完成")
	case <-time.After(50 * time.Millisecond):
	}
	close(releaseFirst)
	if err := <-done1; err != nil {
		t.Fatal(err)
	}
	if err := <-done2; err != nil {
		t.Fatal(err)
	}
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatal("网络阶段交错", order)
	}
	got, _ := s.Task("t1")
	if got.Title != "second" {
		t.Fatal("最终状态应为第二次变更", got.Title)
	}
}

func TestCreatePaymentRollback(t *testing.T) {
	cli := &stubAPI{
		savePayment: func(projectId string, data, result interface{}) error {
			return errors.NewAPIError(500, "", "boom")
		},
	}
	s := New(cli, Options{})
	s.projects = []model.Project{{ID: "p1", Status: model.ProjectOngoing}}
	before := snapshot(t, s.projects)

	err := s.CreatePayment(model.PaymentCreate{ProjectID: "p1", Amount: "15000"})
	if err == nil {
		t.Fatal("应失败")
	}
	if got := snapshot(t, s.projects); got != before {
		t.Fatal("收款失败未回滚")
	}
}

// 未知项目的收款在发请求前即被拒绝
func TestCreatePaymentUnknownProject(t *testing.T) {
	called := false
	cli := &stubAPI{
		savePayment: func(projectId string, data, result interface{}) error {
			called = true
			return nil
		},
	}
	s := New(cli, Options{})
	if err := s.CreatePayment(model.PaymentCreate{ProjectID: "nope", Amount: "100"}); err != ErrProjectNotFound {
		t.Fatal("应拒绝未知项目", err)
	}
	if called {
		t.Fatal("不应发起请求")
	}
}

// 语音上传失败时任务不受影响
func TestAttachVoiceNoteUploadError(t *testing.T) {
	cli := &stubAPI{
		uploadFile: func(file io.Reader, filename, uploadType string, result interface{}) error {
			return errors.NewAPIError(500, "", "storage down")
		},
	}
	s := New(cli, Options{})
	s.tasks = []model.Task{{ID: "t1", Status: model.TaskToDo}}
	before := snapshot(t, s.tasks)

	if err := s.AttachVoiceNote("t1", strings.NewReader("audio"), "note.webm"); err == nil {
		t.Fatal("应失败")
	}
	if got := snapshot(t, s.tasks); got != before {
		t.Fatal("上传失败不应改动任务")
	}
}

package api

import (
	"io"
	"net/url"
)

// TokenSource 外部身份源，每次请求都重新取token，不做跨请求缓存
type TokenSource interface {
	Token() (string, error)
}

// TokenFunc 函数适配器
type TokenFunc func() (string, error)

func (f TokenFunc) Token() (string, error) {
	return f()
}

// Client 后端接口客户端
type Client interface {
	Get(u url.URL, headers map[string]string, result interface{}) error
	Post(u url.URL, headers map[string]string, data, result interface{}) error
	Put(u url.URL, headers map[string]string, data, result interface{}) error
	Patch(u url.URL, headers map[string]string, data, result interface{}) error
	Delete(u url.URL, headers map[string]string, result interface{}) error

	FindMemberQuery(query, result interface{}) error
	FindMemberById(id string, result interface{}) error

	FindRoleQuery(query, result interface{}) error
	SaveRole(data, result interface{}) error
	DelRoleById(id string, result interface{}) error

	FindProjectQuery(query, result interface{}) error
	FindProjectById(id string, result interface{}) error
	SaveProject(data, result interface{}) error
	UpdateProjectById(id string, data, result interface{}) error
	UpdateProjectStatus(id string, status string, result interface{}) error
	SavePayment(projectId string, data, result interface{}) error

	FindTaskQuery(query, result interface{}) error
	FindTaskById(id string, result interface{}) error
	SaveTask(data, result interface{}) error
	UpdateTaskById(id string, data, result interface{}) error
	DelTaskById(id string, result interface{}) error
	ReplaceTaskAssignees(id string, assigneeIds []string, result interface{}) error

	FindDeliverableQuery(query, result interface{}) error

	FindEventQuery(query, result interface{}) error
	UpdateShootAssignments(id string, data, result interface{}) error

	FindExpenseQuery(query, result interface{}) error
	SaveExpense(data, result interface{}) error
	UpdateExpenseById(id string, data, result interface{}) error
	DelExpenseById(id string, result interface{}) error

	FindSalaryQuery(memberId string, query, result interface{}) error
	SaveSalary(memberId string, data, result interface{}) error
	UpdateSalaryById(memberId, id string, data, result interface{}) error

	FindFreelancerLedger(memberId string, result interface{}) error
	SaveFreelancerItem(memberId string, data, result interface{}) error
	SaveFreelancerPayment(memberId string, data, result interface{}) error

	UploadFile(file io.Reader, filename, uploadType string, result interface{}) error
}

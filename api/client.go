package api

import (
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-resty/resty/v2"

	"github.com/firsthash/console/errors"
	"github.com/firsthash/console/util/json"
)

// ErrUnauthenticated 未取到token，动作在任何网络调用前中止
var ErrUnauthenticated = errors.New("未登录或登录已过期")

// Config 接口配置
type Config struct {
	Schema  string
	Host    string
	Prefix  string
	Timeout time.Duration
}

type client struct {
	cfg      Config
	tokens   TokenSource
	headers  map[string]string
	validate *validator.Validate
}

func NewClient(tokens TokenSource, cfg Config) Client {
	if cfg.Schema == "" {
		cfg.Schema = "https"
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "api"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = time.Minute
	}
	return &client{
		cfg:    cfg,
		tokens: tokens,
		headers: map[string]string{
			"Content-Type": "application/json",
		},
		validate: validator.New(),
	}
}

// bearer 每次调用重新取token，空token视为未认证
func (p *client) bearer() (string, error) {
	if p.tokens == nil {
		return "", ErrUnauthenticated
	}
	token, err := p.tokens.Token()
	if err != nil || token == "" {
		return "", ErrUnauthenticated
	}
	return "Bearer " + token, nil
}

func (p *client) request(headers map[string]string) (*resty.Request, error) {
	auth, err := p.bearer()
	if err != nil {
		return nil, err
	}
	if headers == nil {
		headers = map[string]string{}
	}
	for k, v := range p.headers {
		if _, ok := headers[k]; !ok {
			headers[k] = v
		}
	}
	headers["Authorization"] = auth
	return resty.New().SetTimeout(p.cfg.Timeout).R().SetHeaders(headers), nil
}

// checkStatus 2xx为成功，否则带上后端消息返回APIError
func checkStatus(resp *resty.Response) error {
	if resp.StatusCode() >= 200 && resp.StatusCode() <= 204 {
		return nil
	}
	var body struct {
		Key     string `json:"error"`
		Message string `json:"message"`
	}
	if !json.UnmarshalLenient(resp.Body(), &body) || body.Message == "" {
		body.Message = strings.TrimSpace(resp.String())
	}
	return errors.NewAPIError(resp.StatusCode(), body.Key, body.Message)
}

func (p *client) Get(u url.URL, headers map[string]string, result interface{}) error {
	r, err := p.request(headers)
	if err != nil {
		return err
	}
	resp, err := r.SetResult(result).Get(u.String())
	if err != nil {
		return err
	}
	return checkStatus(resp)
}

func (p *client) Post(u url.URL, headers map[string]string, data, result interface{}) error {
	if err := p.validateData(data); err != nil {
		return err
	}
	r, err := p.request(headers)
	if err != nil {
		return err
	}
	resp, err := r.SetBody(data).SetResult(result).Post(u.String())
	if err != nil {
		return err
	}
	return checkStatus(resp)
}

func (p *client) Put(u url.URL, headers map[string]string, data, result interface{}) error {
	if err := p.validateData(data); err != nil {
		return err
	}
	r, err := p.request(headers)
	if err != nil {
		return err
	}
	resp, err := r.SetBody(data).SetResult(result).Put(u.String())
	if err != nil {
		return err
	}
	return checkStatus(resp)
}

func (p *client) Patch(u url.URL, headers map[string]string, data, result interface{}) error {
	if err := p.validateData(data); err != nil {
		return err
	}
	r, err := p.request(headers)
	if err != nil {
		return err
	}
	resp, err := r.SetBody(data).SetResult(result).Patch(u.String())
	if err != nil {
		return err
	}
	return checkStatus(resp)
}

func (p *client) Delete(u url.URL, headers map[string]string, result interface{}) error {
	r, err := p.request(headers)
	if err != nil {
		return err
	}
	resp, err := r.SetResult(result).Delete(u.String())
	if err != nil {
		return err
	}
	return checkStatus(resp)
}

// validateData 表单载荷在发出前校验，非结构体载荷直接放行
func (p *client) validateData(data interface{}) error {
	if data == nil {
		return nil
	}
	err := p.validate.Struct(data)
	if err == nil {
		return nil
	}
	if _, ok := err.(*validator.InvalidValidationError); ok {
		return nil
	}
	return err
}

func (p *client) url(format string, args ...interface{}) url.URL {
	host := p.cfg.Host
	if host == "" {
		host = "localhost:8080"
	}
	return url.URL{
		Scheme: p.cfg.Schema,
		Host:   host,
		Path:   fmt.Sprintf("%s/%s", p.cfg.Prefix, fmt.Sprintf(format, args...)),
	}
}

// queryURL query编码为JSON后放入query参数，供Find*Query系列使用
func (p *client) queryURL(pathStr string, query interface{}) (url.URL, error) {
	u := p.url("%s", pathStr)
	if query == nil {
		return u, nil
	}
	b, err := json.Marshal(query)
	if err != nil {
		return u, err
	}
	v := url.Values{}
	v.Set("query", string(b))
	u.RawQuery = v.Encode()
	return u, nil
}

func (p *client) FindMemberQuery(query, result interface{}) error {
	u, err := p.queryURL("members", query)
	if err != nil {
		return err
	}
	return p.Get(u, nil, result)
}

func (p *client) FindMemberById(id string, result interface{}) error {
	return p.Get(p.url("members/%s", id), nil, result)
}

func (p *client) FindRoleQuery(query, result interface{}) error {
	u, err := p.queryURL("roles", query)
	if err != nil {
		return err
	}
	return p.Get(u, nil, result)
}

func (p *client) SaveRole(data, result interface{}) error {
	return p.Post(p.url("roles"), nil, data, result)
}

func (p *client) DelRoleById(id string, result interface{}) error {
	return p.Delete(p.url("roles/%s", id), nil, result)
}

func (p *client) FindProjectQuery(query, result interface{}) error {
	u, err := p.queryURL("projects", query)
	if err != nil {
		return err
	}
	return p.Get(u, nil, result)
}

func (p *client) FindProjectById(id string, result interface{}) error {
	return p.Get(p.url("projects/%s", id), nil, result)
}

func (p *client) SaveProject(data, result interface{}) error {
	return p.Post(p.url("projects"), nil, data, result)
}

func (p *client) UpdateProjectById(id string, data, result interface{}) error {
	return p.Put(p.url("projects/%s", id), nil, data, result)
}

func (p *client) UpdateProjectStatus(id string, status string, result interface{}) error {
	return p.Put(p.url("projects/%s/status", id), nil, map[string]string{"status": status}, result)
}

func (p *client) SavePayment(projectId string, data, result interface{}) error {
	return p.Post(p.url("projects/%s/payments", projectId), nil, data, result)
}

func (p *client) FindTaskQuery(query, result interface{}) error {
	u, err := p.queryURL("tasks", query)
	if err != nil {
		return err
	}
	return p.Get(u, nil, result)
}

func (p *client) FindTaskById(id string, result interface{}) error {
	return p.Get(p.url("tasks/%s", id), nil, result)
}

func (p *client) SaveTask(data, result interface{}) error {
	return p.Post(p.url("tasks"), nil, data, result)
}

func (p *client) UpdateTaskById(id string, data, result interface{}) error {
	return p.Put(p.url("tasks/%s", id), nil, data, result)
}

func (p *client) DelTaskById(id string, result interface{}) error {
	return p.Delete(p.url("tasks/%s", id), nil, result)
}

func (p *client) ReplaceTaskAssignees(id string, assigneeIds []string, result interface{}) error {
	if assigneeIds == nil {
		assigneeIds = []string{}
	}
	return p.Put(p.url("tasks/%s/assignees", id), nil, map[string]interface{}{"assignee_ids": assigneeIds}, result)
}

func (p *client) FindDeliverableQuery(query, result interface{}) error {
	u, err := p.queryURL("deliverables", query)
	if err != nil {
		return err
	}
	return p.Get(u, nil, result)
}

func (p *client) FindEventQuery(query, result interface{}) error {
	u, err := p.queryURL("events", query)
	if err != nil {
		return err
	}
	return p.Get(u, nil, result)
}

func (p *client) UpdateShootAssignments(id string, data, result interface{}) error {
	return p.Put(p.url("shoots/%s/assignments", id), nil, data, result)
}

func (p *client) FindExpenseQuery(query, result interface{}) error {
	u, err := p.queryURL("expenses", query)
	if err != nil {
		return err
	}
	return p.Get(u, nil, result)
}

func (p *client) SaveExpense(data, result interface{}) error {
	return p.Post(p.url("expenses"), nil, data, result)
}

func (p *client) UpdateExpenseById(id string, data, result interface{}) error {
	return p.Put(p.url("expenses/%s", id), nil, data, result)
}

func (p *client) DelExpenseById(id string, result interface{}) error {
	return p.Delete(p.url("expenses/%s", id), nil, result)
}

func (p *client) FindSalaryQuery(memberId string, query, result interface{}) error {
	u, err := p.queryURL(fmt.Sprintf("members/%s/salaries", memberId), query)
	if err != nil {
		return err
	}
	return p.Get(u, nil, result)
}

func (p *client) SaveSalary(memberId string, data, result interface{}) error {
	return p.Post(p.url("members/%s/salaries", memberId), nil, data, result)
}

func (p *client) UpdateSalaryById(memberId, id string, data, result interface{}) error {
	return p.Put(p.url("members/%s/salaries/%s", memberId, id), nil, data, result)
}

func (p *client) FindFreelancerLedger(memberId string, result interface{}) error {
	return p.Get(p.url("members/freelancers/%s", memberId), nil, result)
}

func (p *client) SaveFreelancerItem(memberId string, data, result interface{}) error {
	return p.Post(p.url("members/freelancers/%s/items", memberId), nil, data, result)
}

func (p *client) SaveFreelancerPayment(memberId string, data, result interface{}) error {
	return p.Post(p.url("members/freelancers/%s/payments", memberId), nil, data, result)
}

// UploadFile 附件上传，multipart字段file与uploadType
func (p *client) UploadFile(file io.Reader, filename, uploadType string, result interface{}) error {
	auth, err := p.bearer()
	if err != nil {
		return err
	}
	u := p.url("uploads")
	resp, err := resty.New().SetTimeout(p.cfg.Timeout).R().
		SetHeader("Authorization", auth).
		SetFileReader("file", filename, file).
		SetFormData(map[string]string{"uploadType": uploadType}).
		SetResult(result).
		Post(u.String())
	if err != nil {
		return err
	}
	return checkStatus(resp)
}

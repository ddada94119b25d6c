package model

import (
	"strings"

	"github.com/firsthash/console/logger"
	"github.com/firsthash/console/util/json"
)

// 角色职能编码
const (
	CapabilityOnProduction   = 1
	CapabilityPostProduction = 2
	CapabilityPreProduction  = 3
)

// CompanyGlobal 全局公司哨兵id，该公司下的角色跨租户可用且不可删除
const CompanyGlobal = "*"

// UnassignedID 未分配伪成员id
const UnassignedID = "__unassigned__"

// Role 角色
type Role struct {
	ID         string `json:"id"`
	Name       string `json:"role_name"`
	Capability int    `json:"capability"`
	CompanyID  string `json:"company_id"`
}

// IsGlobal 是否全局角色
func (r Role) IsGlobal() bool {
	return r.CompanyID == CompanyGlobal
}

// Deletable 全局角色不可删除
func (r Role) Deletable() bool {
	return !r.IsGlobal()
}

// CapabilityLabel 职能编码文案
func (r Role) CapabilityLabel() string {
	switch r.Capability {
	case CapabilityOnProduction:
		return "on-production"
	case CapabilityPostProduction:
		return "post-production"
	case CapabilityPreProduction:
		return "pre-production"
	default:
		return ""
	}
}

// RoleList 成员角色列表，兼容内嵌数组和JSON编码字符串两种返回形态
// 解析失败时置空并记录日志，不向上抛错
type RoleList []Role

func (l *RoleList) UnmarshalJSON(data []byte) error {
	*l = nil
	s := strings.TrimSpace(string(data))
	if s == "" || s == "null" {
		return nil
	}
	if strings.HasPrefix(s, "[") {
		var roles []Role
		if err := json.Unmarshal(data, &roles); err != nil {
			logger.Warnf(nil, logger.ROLESPARSEERROR, err.Error())
			return nil
		}
		*l = roles
		return nil
	}
	var encoded string
	if err := json.Unmarshal(data, &encoded); err != nil {
		logger.Warnf(nil, logger.ROLESPARSEERROR, err.Error())
		return nil
	}
	var roles []Role
	if err := json.Unmarshal([]byte(encoded), &roles); err != nil {
		logger.Warnf(nil, logger.ROLESPARSEERROR, err.Error())
		return nil
	}
	*l = roles
	return nil
}

// Member 成员
type Member struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Roles RoleList `json:"roles"`
}

// PrimaryRole 首个角色名，无角色返回空串
func (m Member) PrimaryRole() string {
	if len(m.Roles) == 0 {
		return ""
	}
	return m.Roles[0].Name
}

// RoleNames 角色名拼接，用于选择器搜索
func (m Member) RoleNames() string {
	names := make([]string, 0, len(m.Roles))
	for _, r := range m.Roles {
		names = append(names, r.Name)
	}
	return strings.Join(names, " ")
}

// IsUnassigned 是否未分配伪成员
func (m Member) IsUnassigned() bool {
	return m.ID == UnassignedID
}

// Unassigned 未分配伪成员
func Unassigned() Member {
	return Member{ID: UnassignedID, Name: "Unassigned"}
}

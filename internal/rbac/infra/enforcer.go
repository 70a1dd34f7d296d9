package infra

import (
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

const modelText = `[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

const (
	RoleEmployee = "EMPLOYEE"
	RoleHR       = "HR"
	RoleAdmin    = "ADMIN"
)

// DefaultPolicies grants each role its own permissions; inheritance through
// DefaultGroupings supplies the rest.
var DefaultPolicies = [][]string{
	{RoleEmployee, "leave", "create"},
	{RoleEmployee, "leave", "read_own"},
	{RoleEmployee, "attendance", "read_own"},
	{RoleEmployee, "dashboard", "read_own"},
	{RoleEmployee, "chat", "use"},

	{RoleHR, "leave", "read"},
	{RoleHR, "leave", "decide"},
	{RoleHR, "leave", "update"},
	{RoleHR, "credential", "manage"},
	{RoleHR, "notification", "test"},
	{RoleHR, "user", "read"},
	{RoleHR, "attendance", "mark"},
	{RoleHR, "attendance", "read"},
	{RoleHR, "dashboard", "read"},

	{RoleAdmin, "leave", "delete"},
	{RoleAdmin, "user", "manage"},
	{RoleAdmin, "attendance", "delete"},
}

var DefaultGroupings = [][]string{
	{RoleHR, RoleEmployee},
	{RoleAdmin, RoleHR},
}

// NewEnforcer builds an in-memory enforcer seeded with the default role policy.
func NewEnforcer() (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}

	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}

	if _, err := e.AddPolicies(DefaultPolicies); err != nil {
		return nil, err
	}
	if _, err := e.AddGroupingPolicies(DefaultGroupings); err != nil {
		return nil, err
	}
	return e, nil
}

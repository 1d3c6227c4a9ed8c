package auth

import "strings"

// Role is a member of the closed role vocabulary.
type Role string

// Roles.
const (
	RoleAdmin          Role = "ADMIN"
	RoleUser           Role = "USER"
	RoleDeveloper      Role = "DEVELOPER"
	RoleArchitect      Role = "ARCHITECT"
	RoleOperator       Role = "OPERATOR"
	RoleTester         Role = "TESTER"
	RoleAuditor        Role = "AUDITOR"
	RoleService        Role = "SERVICE"
	RoleGeneralManager Role = "GENERAL_MANAGER"
	RoleManager        Role = "MANAGER"
	RoleCustomer       Role = "CUSTOMER"
)

var roles = []Role{
	RoleAdmin, RoleUser, RoleDeveloper, RoleArchitect, RoleOperator, RoleTester,
	RoleAuditor, RoleService, RoleGeneralManager, RoleManager, RoleCustomer,
}

// Permission is a member of the closed permission vocabulary.
type Permission string

// Permissions.
const (
	PermAgentRead            Permission = "AGENT_READ"
	PermAgentWrite           Permission = "AGENT_WRITE"
	PermAgentExecute         Permission = "AGENT_EXECUTE"
	PermAgentDelete          Permission = "AGENT_DELETE"
	PermAgentAdmin           Permission = "AGENT_ADMIN"
	PermServiceRead          Permission = "SERVICE_READ"
	PermServiceWrite         Permission = "SERVICE_WRITE"
	PermServiceIntegration   Permission = "SERVICE_INTEGRATION"
	PermConfigManage         Permission = "CONFIG_MANAGE"
	PermSecretsManage        Permission = "SECRETS_MANAGE"
	PermAuditRead            Permission = "AUDIT_READ"
	PermAuditManage          Permission = "AUDIT_MANAGE"
	PermSecurityValidate     Permission = "SECURITY_VALIDATE"
	PermPerformanceTest      Permission = "PERFORMANCE_TEST"
	PermDomainAccess         Permission = "DOMAIN_ACCESS"
	PermDatastoreAccess      Permission = "DATASTORE_ACCESS"
	PermQualityAssess        Permission = "QUALITY_ASSESS"
	PermTestingGuide         Permission = "TESTING_GUIDE"
	PermCollaborationProcess Permission = "COLLABORATION_PROCESS"
	PermServiceMap           Permission = "SERVICE_MAP"
	PermFallbackSelect       Permission = "FALLBACK_SELECT"
)

var permissions = []Permission{
	PermAgentRead, PermAgentWrite, PermAgentExecute, PermAgentDelete, PermAgentAdmin,
	PermServiceRead, PermServiceWrite, PermServiceIntegration,
	PermConfigManage, PermSecretsManage, PermAuditRead, PermAuditManage,
	PermSecurityValidate, PermPerformanceTest, PermDomainAccess, PermDatastoreAccess,
	PermQualityAssess, PermTestingGuide, PermCollaborationProcess, PermServiceMap,
	PermFallbackSelect,
}

var (
	roleIndex       = index(roles)
	permissionIndex = index(permissions)
)

func index[T ~string](vals []T) map[string]T {
	m := make(map[string]T, len(vals))
	for _, v := range vals {
		m[string(v)] = v
	}
	return m
}

// ParseRole looks up a role by its exact name.
func ParseRole(name string) (Role, bool) {
	r, ok := roleIndex[name]
	return r, ok
}

// ParsePermission looks up a permission by its exact name.
func ParsePermission(name string) (Permission, bool) {
	p, ok := permissionIndex[name]
	return p, ok
}

// Roles returns the full role vocabulary.
func Roles() []Role { return append([]Role(nil), roles...) }

// Permissions returns the full permission vocabulary.
func Permissions() []Permission { return append([]Permission(nil), permissions...) }

// RoleNames converts roles to their wire names.
func RoleNames(rs ...Role) []string { return names(rs) }

// PermissionNames converts permissions to their wire names.
func PermissionNames(ps ...Permission) []string { return names(ps) }

func names[T ~string](vals []T) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = string(v)
	}
	return out
}

// knownRoles keeps the trimmed names that parse as roles, in order.
func knownRoles(in []string) []string {
	out := make([]string, 0, len(in))
	for _, n := range in {
		if r, ok := ParseRole(strings.TrimSpace(n)); ok {
			out = append(out, string(r))
		}
	}
	return out
}

// knownPermissions keeps the trimmed names that parse as permissions, in order.
func knownPermissions(in []string) []string {
	out := make([]string, 0, len(in))
	for _, n := range in {
		if p, ok := ParsePermission(strings.TrimSpace(n)); ok {
			out = append(out, string(p))
		}
	}
	return out
}

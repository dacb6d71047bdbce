package authcore

import "sort"

// RoleSuperAdmin receives every registered permission unconditionally,
// bypassing the role table.
const RoleSuperAdmin = "SUPER_ADMIN"

// DefaultRoles is the static role-to-permission table used when the
// builder is not given one.
func DefaultRoles() map[string][]string {
	return map[string][]string{
		"ADMIN":  {"read", "write", "delete", "manage_users"},
		"EDITOR": {"read", "write"},
		"VIEWER": {"read"},
	}
}

// roleTable resolves permissions for roles. Frozen after Build.
type roleTable struct {
	roles map[string][]string
	all   []string
}

func newRoleTable(roles map[string][]string) *roleTable {
	table := &roleTable{roles: make(map[string][]string, len(roles))}

	seen := make(map[string]struct{})
	for name, perms := range roles {
		copied := make([]string, len(perms))
		copy(copied, perms)
		table.roles[name] = copied
		for _, p := range perms {
			seen[p] = struct{}{}
		}
	}

	table.all = make([]string, 0, len(seen))
	for p := range seen {
		table.all = append(table.all, p)
	}
	sort.Strings(table.all)

	return table
}

// permissionsFor returns the permission list for role. SUPER_ADMIN gets
// the union of every registered permission; unknown roles get none.
func (t *roleTable) permissionsFor(role string) []string {
	if role == RoleSuperAdmin {
		out := make([]string, len(t.all))
		copy(out, t.all)
		return out
	}

	perms, ok := t.roles[role]
	if !ok {
		return nil
	}
	out := make([]string, len(perms))
	copy(out, perms)
	return out
}

func (t *roleTable) known(role string) bool {
	if role == RoleSuperAdmin {
		return true
	}
	_, ok := t.roles[role]
	return ok
}

package member

import (
	"context"
	"strings"

	"github.com/trezcool/kazi/core"
)

// Permissions is a set of capabilities, resolved once from a member's role.
type Permissions uint

const (
	PermAssignTasks Permissions = 1 << iota
	PermRateTasks
	PermViewMemberTasks
	PermRateHR
	PermViewDashboard
	PermViewAnyHistory
	PermManageMembers
	PermManageTracks

	permHead = PermAssignTasks | PermRateTasks | PermViewMemberTasks | PermRateHR |
		PermViewDashboard | PermViewAnyHistory | PermManageMembers | PermManageTracks
)

var permNames = []struct {
	perm Permissions
	name string
}{
	{PermAssignTasks, "assign tasks"},
	{PermRateTasks, "rate tasks"},
	{PermViewMemberTasks, "view member tasks"},
	{PermRateHR, "rate HR"},
	{PermViewDashboard, "view dashboard"},
	{PermViewAnyHistory, "view any history"},
	{PermManageMembers, "manage members"},
	{PermManageTracks, "manage tracks"},
}

// PermissionsFor returns the capabilities granted to role.
func PermissionsFor(role string) Permissions {
	if role == RoleHead {
		return permHead
	}
	return 0
}

func (p Permissions) Has(perm Permissions) bool { return p&perm == perm }

func (p Permissions) String() string {
	names := make([]string, 0, len(permNames))
	for _, pn := range permNames {
		if p.Has(pn.perm) {
			names = append(names, pn.name)
		}
	}
	return strings.Join(names, ", ")
}

// Actor is the authenticated member on whose behalf an operation runs.
type Actor struct {
	Member
	Permissions Permissions
}

func NewActor(m Member) Actor {
	return Actor{Member: m, Permissions: PermissionsFor(m.Role)}
}

// Can reports whether the actor holds perm.
func (a Actor) Can(perm Permissions) bool { return a.Permissions.Has(perm) }

// Require returns a forbidden error unless the actor holds perm.
func (a Actor) Require(perm Permissions) error {
	if a.Can(perm) {
		return nil
	}
	return core.NewForbiddenError("permission denied: requires " + perm.String())
}

type actorCtxKey struct{}

// NewContext returns a copy of ctx carrying actor.
func NewContext(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorCtxKey{}, actor)
}

// ActorFromContext returns the actor stored in ctx, if any.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorCtxKey{}).(Actor)
	return actor, ok
}

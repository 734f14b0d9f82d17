package auth

import (
	"fmt"
	"go-club-app/internal/logger"

	"github.com/casbin/casbin/v2"
)

// Role names used in policies and role assignments.
const (
	RoleAnonymous = "anonymous"
	RoleMember    = "member"
	RoleAdmin     = "admin"
)

// DefaultPolicies are the route permissions every installation starts with.
// Whether a member may read a gated article is not decided here; routes only
// say who may reach a handler.
var DefaultPolicies = [][]string{
	{RoleAnonymous, "/", "GET"},
	{RoleAnonymous, "/articles", "GET"},
	{RoleAnonymous, "/articles/:slug", "GET"},
	{RoleAnonymous, "/club/join", "GET"},
	{RoleAnonymous, "/club/books", "GET"},
	{RoleAnonymous, "/club/books/:slug", "GET"},
	{RoleAnonymous, "/club/books/:slug/file", "GET"},
	{RoleAnonymous, "/auth/login", "GET"},
	{RoleAnonymous, "/auth/callback", "GET"},
	{RoleAnonymous, "/auth/logout", "GET"},
	{RoleAnonymous, "/api/*", "OPTIONS"}, // CORS preflight

	{RoleMember, "/api/token", "GET"},
	{RoleMember, "/api/books/:slug/progress", "GET"},
	{RoleMember, "/api/books/:slug/progress", "PUT"},

	{RoleAdmin, "/admin/articles", "GET"},
	{RoleAdmin, "/admin/articles/new", "GET"},
	{RoleAdmin, "/admin/articles/:slug/edit", "GET"},
	{RoleAdmin, "/admin/articles/save", "POST"},
	{RoleAdmin, "/admin/articles/:slug/delete", "POST"},
	{RoleAdmin, "/admin/books", "POST"},
	{RoleAdmin, "/admin/members/subscription", "POST"},
}

// SeedDefaultPolicies ensures that the application has a baseline set of authorization rules.
// It checks if each default policy exists before adding it, making the operation idempotent
// and safe to run on every application start.
func SeedDefaultPolicies(e casbin.IEnforcer, log logger.Logger) {
	log.Info("Seeding default authorization policies...")

	for _, p := range DefaultPolicies {
		if has, _ := e.HasPolicy(p); !has {
			if _, err := e.AddPolicy(p); err != nil {
				log.Error(err, fmt.Sprintf("Failed to add policy %v", p))
			}
		}
	}

	// member inherits anonymous, admin inherits member.
	for _, link := range [][2]string{{RoleMember, RoleAnonymous}, {RoleAdmin, RoleMember}} {
		if has, _ := e.HasRoleForUser(link[0], link[1]); !has {
			if _, err := e.AddRoleForUser(link[0], link[1]); err != nil {
				log.Error(err, fmt.Sprintf("Failed to add role '%s' -> '%s'", link[0], link[1]))
			}
		}
	}
	log.Info("Policy seeding complete.")
}

// SeedAdmins grants the admin role to the configured OIDC subjects.
func SeedAdmins(e casbin.IEnforcer, subjects []string, log logger.Logger) {
	for _, sub := range subjects {
		if sub == "" {
			continue
		}
		if has, _ := e.HasRoleForUser(sub, RoleAdmin); has {
			continue
		}
		if _, err := e.AddRoleForUser(sub, RoleAdmin); err != nil {
			log.Error(err, fmt.Sprintf("Failed to grant admin to '%s'", sub))
			continue
		}
		log.Info(fmt.Sprintf("Granted admin role to '%s'", sub))
	}
}

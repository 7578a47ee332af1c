package api

import (
    "crypto/subtle"
    "net/http"
    "strings"
)

type Principal struct {
	Tenant string
	Role   string // admin, dispatcher, viewer
}

// getPrincipal reads tenant and role from headers. When an admin key is
// configured, the admin role additionally requires a matching X-Admin-Key.
func (s *Server) getPrincipal(r *http.Request) Principal {
    tenant := strings.TrimSpace(r.Header.Get("X-Tenant-Id"))
    role := strings.ToLower(strings.TrimSpace(r.Header.Get("X-Role")))
    if tenant == "" {
        tenant = "t_demo"
    }
    if role == "" {
        role = "admin"
    }
    if role == "admin" && s.Cfg.Server.AdminKey != "" {
        key := r.Header.Get("X-Admin-Key")
        if subtle.ConstantTimeCompare([]byte(key), []byte(s.Cfg.Server.AdminKey)) != 1 {
            role = "dispatcher"
        }
    }
    return Principal{Tenant: tenant, Role: role}
}

// IsAdmin reports whether the principal has the admin role.
func (p Principal) IsAdmin() bool { return p.Role == "admin" }

// CanPlan reports whether the principal may run optimizations.
func (p Principal) CanPlan() bool { return p.IsAdmin() || p.Role == "dispatcher" }

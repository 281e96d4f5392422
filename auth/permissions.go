package auth

import "github.com/samber/lo"

const (
	PermRequest = "tpa.request"
	PermAccept  = "tpa.accept"
	PermDeny    = "tpa.deny"
	PermCancel  = "tpa.cancel"
)

// DefaultPermissions is granted to every new session.
func DefaultPermissions() []string {
	return []string{PermRequest, PermAccept, PermDeny, PermCancel}
}

func HasPermission(granted []string, permission string) bool {
	return lo.Contains(granted, permission)
}

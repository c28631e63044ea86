// internal/workers/commands/unlink-application/config.go
package unlinkapplication

type Config struct {
	// ModeratorPermission is the permission bit required to unlink.
	ModeratorPermission int64
	PermissionName      string
}

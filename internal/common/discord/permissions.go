package discord

import "github.com/bwmarrin/discordgo"

var permissionNames = map[string]int64{
	"Administrator":   discordgo.PermissionAdministrator,
	"ModerateMembers": discordgo.PermissionModerateMembers,
	"ManageGuild":     discordgo.PermissionManageServer,
	"ManageRoles":     discordgo.PermissionManageRoles,
	"ManageMessages":  discordgo.PermissionManageMessages,
	"KickMembers":     discordgo.PermissionKickMembers,
	"BanMembers":      discordgo.PermissionBanMembers,
}

// PermissionByName maps a permission flag name to its bit.
func PermissionByName(name string) (int64, bool) {
	perm, ok := permissionNames[name]
	return perm, ok
}

// PermissionAdministrator is exported so handlers need not import discordgo.
const PermissionAdministrator = discordgo.PermissionAdministrator

// effectivePermissions expands the administrator bit to every permission.
func effectivePermissions(perms int64) int64 {
	if perms&discordgo.PermissionAdministrator != 0 {
		return ^int64(0)
	}
	return perms
}

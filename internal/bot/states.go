package bot

// State is the position of a user in a workflow
type State int

const (
	StateIdle State = iota

	// Upload workflow
	StateAwaitingEpisodeInfo
	StateAwaitingChannelSelection
	StateAwaitingMedia

	// Channel management
	StateAwaitingChannelReference
	StateAwaitingRightsConfirmation
	StateAwaitingChannelName
	StateAwaitingChannelToDelete

	// Admin management
	StateAwaitingNewAdminID
	StateSelectingAdmin
	StateAdminActionMenu
	StateViewingAdminChannels
	StateAwaitingChannelToggle

	// Template management
	StateAwaitingTemplateName
	StateAwaitingTemplateBody
	StateSelectingTemplate
	StateTemplateActionMenu
	StateAwaitingNewTemplateBody
	StateAwaitingChannelAssignment
)

var stateNames = map[State]string{
	StateIdle:                       "idle",
	StateAwaitingEpisodeInfo:        "awaiting_episode_info",
	StateAwaitingChannelSelection:   "awaiting_channel_selection",
	StateAwaitingMedia:              "awaiting_media",
	StateAwaitingChannelReference:   "awaiting_channel_reference",
	StateAwaitingRightsConfirmation: "awaiting_rights_confirmation",
	StateAwaitingChannelName:        "awaiting_channel_name",
	StateAwaitingChannelToDelete:    "awaiting_channel_to_delete",
	StateAwaitingNewAdminID:         "awaiting_new_admin_id",
	StateSelectingAdmin:             "selecting_admin",
	StateAdminActionMenu:            "admin_action_menu",
	StateViewingAdminChannels:       "viewing_admin_channels",
	StateAwaitingChannelToggle:      "awaiting_channel_toggle",
	StateAwaitingTemplateName:       "awaiting_template_name",
	StateAwaitingTemplateBody:       "awaiting_template_body",
	StateSelectingTemplate:          "selecting_template",
	StateTemplateActionMenu:         "template_action_menu",
	StateAwaitingNewTemplateBody:    "awaiting_new_template_body",
	StateAwaitingChannelAssignment:  "awaiting_channel_assignment",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Role is the privilege level of a user
type Role int

const (
	RoleNone Role = iota
	RoleAdmin
	RoleSuper
)

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleSuper:
		return "super"
	default:
		return "none"
	}
}

// RequiredRole is the minimum role allowed to act in the state
func (s State) RequiredRole() Role {
	switch s {
	case StateIdle:
		return RoleNone
	case StateAwaitingEpisodeInfo, StateAwaitingChannelSelection, StateAwaitingMedia:
		return RoleAdmin
	default:
		return RoleSuper
	}
}

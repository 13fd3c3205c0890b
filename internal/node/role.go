package node

import (
	"uwbdistance-go/drivers/dw1000/mac"
	"uwbdistance-go/internal/control"
	"uwbdistance-go/internal/radio"
	"uwbdistance-go/types"
)

// ControllerFor returns the scheduler of role, or nil for a node without a
// role, which only answers other nodes.
func ControllerFor(role types.Role, p control.Periods) control.Controller {
	switch role {
	case types.RoleAnchor:
		return control.NewAnchor(p.Anchor)
	case types.RoleTag:
		return control.NewTag(p.TagFast, p.TagSlow)
	}
	return nil
}

// AddressFor returns the short address of role.
func AddressFor(role types.Role) mac.ShortAddress {
	if role == types.RoleAnchor {
		return radio.AnchorAddress
	}
	return radio.TagAddress
}

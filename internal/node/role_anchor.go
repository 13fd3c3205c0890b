//go:build anchor && !tag

package node

import "uwbdistance-go/types"

// CompiledRole is selected with the anchor or tag build tag.
const CompiledRole = types.RoleAnchor

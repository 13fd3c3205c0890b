//go:build !anchor && !tag

package node

import "uwbdistance-go/types"

// CompiledRole is selected with the anchor or tag build tag. Without either
// the node runs no scheduler and only answers pings and requests.
const CompiledRole = types.RoleNone

//go:build anchor && tag

package node

// Refuse to build with both role tags.
var _ = anchorAndTagBuildTagsAreMutuallyExclusive

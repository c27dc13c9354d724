// Package value provides the value tree: named, typed settings organized in
// nested groups.
//
// A Group owns an ordered list of entries, each either a Setting or another
// Container. Every entry has at most one parent ("base"); its key path is
// the dot-joined names from the root down to the entry:
//
//	root := value.NewRoot("features")
//	hud := value.NewGroup("hud")
//	root.Attach(hud)
//	scale := hud.Float("scale", 1.0, 0.5, 3.0)
//	scale.Key() // "features.hud.scale"
//
// # Settings
//
// Value[T] holds the current value of one setting. Writes are validated for
// the setting's Kind, may be adjusted or refused by interceptors, and notify
// observers only when the stored value actually changes. Reads are atomic.
//
// # Containers
//
// Types that embed a Group become containers in their own right by
// constructing the group with Embed. A container may carry settings that
// belong to it without being listed among its entries (a toggle's enabled
// flag, a mode group's active mode); carried settings are reported by
// CollectSettingsRecursively immediately before the container's contents.
//
// # Records
//
// Export and Group.Import convert a subtree to and from Record values, the
// format-neutral shape persisted by the config loader.
//
// # Thread Safety
//
// Setting values may be read and written from any goroutine. Tree structure
// (Attach, Detach, Carry) is expected to be built from a single goroutine
// during setup.
package value

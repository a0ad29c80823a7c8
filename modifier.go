package fbtile

import "sync/atomic"

// Family identifies the external subsystem namespace a tiling
// identifier comes from.
type Family uint8

const (
	// FamilyDRM is the Linux DRM format-modifier namespace.
	FamilyDRM Family = iota

	// FamilyUnknown marks an unrecognized subsystem.
	FamilyUnknown
)

// String returns a string representation of the family.
func (f Family) String() string {
	switch f {
	case FamilyDRM:
		return "DRM"
	default:
		return "Unknown"
	}
}

// DRM format modifiers understood by fbtile (values from drm_fourcc.h;
// the Intel modifiers are fourcc_mod_code(INTEL, n)).
const (
	DRMFormatModLinear uint64 = 0

	I915FormatModXTiled  uint64 = 1<<56 | 1
	I915FormatModYTiled  uint64 = 1<<56 | 2
	I915FormatModYfTiled uint64 = 1<<56 | 3
)

var familyWarned atomic.Bool

// LayoutFromModifier maps an external subsystem's tiling identifier to
// the equivalent fbtile layout. Unrecognized modifiers map to
// LayoutUnknown, never to a known layout by guesswork.
func LayoutFromModifier(family Family, modifier uint64) Layout {
	layout := LayoutUnknown

	switch family {
	case FamilyDRM:
		switch modifier {
		case DRMFormatModLinear:
			layout = LayoutNone
		case I915FormatModXTiled:
			layout = LayoutIntelXGen9
		case I915FormatModYTiled:
			layout = LayoutIntelYGen9
		case I915FormatModYfTiled:
			layout = LayoutIntelYF
		}
	default:
		warnOnce(&familyWarned, "unknown tiling family",
			"family", uint8(family), "modifier", modifier)
	}

	Logger().Debug("mapped tiling modifier",
		"family", family.String(), "modifier", modifier, "layout", layout.String())
	return layout
}

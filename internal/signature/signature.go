// Package signature recognizes physical buttons from the fields of decoded
// input events.
package signature

import (
	"errors"
	"fmt"

	"gamemode/internal/input"
)

var (
	// ErrDuplicateName is returned when a signature name is already in the catalog
	ErrDuplicateName = errors.New("duplicate signature name")

	// ErrEmptyName is returned when a signature has no name
	ErrEmptyName = errors.New("signature name is empty")

	// ErrUnknownFormat is returned for an unsupported persistence format
	ErrUnknownFormat = errors.New("unknown signature file format")
)

// Standard button names.
const (
	Left       = "Left"
	Right      = "Right"
	Middle     = "Middle"
	XButton1   = "XButton1"
	XButton2   = "XButton2"
	WheelUp    = "WheelUp"
	WheelDown  = "WheelDown"
	WheelLeft  = "WheelLeft"
	WheelRight = "WheelRight"
)

const (
	fullMask = 0xFFFFFFFF
	highWord = 0xFFFF0000
	signBit  = 0x80000000
)

// Signature is a named pattern over an event's kind, message, payload and
// extra info. A zero Kind or Message matches any value; a zero mask ignores
// the field. A signature with every match field zero is a wildcard.
type Signature struct {
	Name string

	Kind    input.Kind
	Message uint32

	Payload     uint32
	PayloadMask uint32

	ExtraInfo     uint64
	ExtraInfoMask uint64
}

// Matches reports whether ev satisfies every field of the signature.
func (s Signature) Matches(ev input.Event) bool {
	if s.Kind != input.KindUnknown && ev.Kind != s.Kind {
		return false
	}
	if s.Message != 0 && ev.Message != s.Message {
		return false
	}
	if ev.Payload&s.PayloadMask != s.Payload {
		return false
	}
	return ev.ExtraInfo&s.ExtraInfoMask == s.ExtraInfo
}

// IsWildcard reports whether the signature matches every event.
func (s Signature) IsWildcard() bool {
	return s.Kind == input.KindUnknown && s.Message == 0 && s.PayloadMask == 0 && s.ExtraInfoMask == 0
}

func (s Signature) String() string {
	if s.IsWildcard() {
		return fmt.Sprintf("%s(*)", s.Name)
	}
	return fmt.Sprintf("%s(%s msg=0x%X data=0x%08X/0x%08X extra=0x%X/0x%X)",
		s.Name, s.Kind, s.Message, s.Payload, s.PayloadMask, s.ExtraInfo, s.ExtraInfoMask)
}

// normalize clears stored bits the masks ignore so Matches can compare directly.
func (s Signature) normalize() Signature {
	s.Payload &= s.PayloadMask
	s.ExtraInfo &= s.ExtraInfoMask
	return s
}

// Exact builds a signature that matches only events with ev's kind, message,
// payload and extra info.
func Exact(name string, ev input.Event) Signature {
	return Signature{
		Name:          name,
		Kind:          ev.Kind,
		Message:       ev.Message,
		Payload:       ev.Payload,
		PayloadMask:   fullMask,
		ExtraInfo:     ev.ExtraInfo,
		ExtraInfoMask: ^uint64(0),
	}
}

// Wildcard builds a catch-all signature.
func Wildcard(name string) Signature {
	return Signature{Name: name}
}

// Standard returns the seeded signatures for the buttons every mouse reports
// the same way. Primary buttons must carry zero extra info, since vendor
// drivers tag side buttons as primary clicks. XButton1 and XButton2 match on
// the button index alone.
func Standard() []Signature {
	button := func(name string, msg, payload, mask uint32, extraMask uint64) Signature {
		return Signature{
			Name:          name,
			Kind:          input.KindMouseButtonDown,
			Message:       msg,
			Payload:       payload,
			PayloadMask:   mask,
			ExtraInfoMask: extraMask,
		}
	}
	wheel := func(name string, msg, sign uint32) Signature {
		return Signature{Name: name, Kind: input.KindMouseWheel, Message: msg, Payload: sign, PayloadMask: signBit}
	}
	return []Signature{
		button(Left, input.WM_LBUTTONDOWN, 0, fullMask, ^uint64(0)),
		button(Right, input.WM_RBUTTONDOWN, 0, fullMask, ^uint64(0)),
		button(Middle, input.WM_MBUTTONDOWN, 0, fullMask, ^uint64(0)),
		button(XButton1, input.WM_XBUTTONDOWN, input.XBUTTON1<<16, highWord, 0),
		button(XButton2, input.WM_XBUTTONDOWN, input.XBUTTON2<<16, highWord, 0),
		wheel(WheelUp, input.WM_MOUSEWHEEL, 0),
		wheel(WheelDown, input.WM_MOUSEWHEEL, signBit),
		wheel(WheelRight, input.WM_MOUSEHWHEEL, 0),
		wheel(WheelLeft, input.WM_MOUSEHWHEEL, signBit),
	}
}

// IsStandard reports whether name is one of the fixed standard button names.
func IsStandard(name string) bool {
	switch name {
	case Left, Right, Middle, XButton1, XButton2, WheelUp, WheelDown, WheelLeft, WheelRight:
		return true
	}
	return false
}

// Vendor driver extra-info values observed on side buttons that arrive as
// ordinary left/right clicks.
const (
	VendorExtraPrimary   = 0x01000000
	VendorExtraSecondary = 0x70000000
)

// VendorPresets returns side-button candidates for mice whose driver reports
// the side buttons as primary clicks tagged in the extra info.
func VendorPresets() []Signature {
	preset := func(name string, msg uint32, extra uint64) Signature {
		return Signature{
			Name:          name,
			Kind:          input.KindMouseButtonDown,
			Message:       msg,
			PayloadMask:   fullMask,
			ExtraInfo:     extra,
			ExtraInfoMask: ^uint64(0),
		}
	}
	return []Signature{
		preset("VendorSideLeftA", input.WM_LBUTTONDOWN, VendorExtraPrimary),
		preset("VendorSideLeftB", input.WM_LBUTTONDOWN, VendorExtraSecondary),
		preset("VendorSideRightA", input.WM_RBUTTONDOWN, VendorExtraPrimary),
		preset("VendorSideRightB", input.WM_RBUTTONDOWN, VendorExtraSecondary),
	}
}

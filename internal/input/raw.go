package input

import (
	"encoding/binary"
	"fmt"
	"math/bits"
)

// RawHeaderSize is sizeof(RAWINPUTHEADER) for the running process: two
// DWORDs followed by a HANDLE and a WPARAM.
const RawHeaderSize = 8 + 2*bits.UintSize/8

// RawHeader mirrors RAWINPUTHEADER.
type RawHeader struct {
	Type   uint32
	Size   uint32
	Device uintptr
	WParam uintptr
}

// RawPayload is the decoded union part of a RAWINPUT record: RawMouse,
// RawKeyboard, RawHID, or RawUnknown.
type RawPayload interface {
	rawPayload()
}

// RawMouse mirrors RAWMOUSE.
type RawMouse struct {
	Flags            uint16
	ButtonFlags      uint16
	ButtonData       uint16
	RawButtons       uint32
	LastX, LastY     int32
	ExtraInformation uint32
}

// RawKeyboard mirrors RAWKEYBOARD.
type RawKeyboard struct {
	MakeCode         uint16
	Flags            uint16
	VKey             uint16
	Message          uint32
	ExtraInformation uint32
}

// RawHID carries the size and count of the HID reports that follow it.
type RawHID struct {
	SizeHID uint32
	Count   uint32
}

// RawUnknown is a record type this package has no layout for.
type RawUnknown struct {
	Type uint32
}

func (RawMouse) rawPayload()    {}
func (RawKeyboard) rawPayload() {}
func (RawHID) rawPayload()      {}
func (RawUnknown) rawPayload()  {}

// RawInput is a RAWINPUT record split into its header and typed payload.
type RawInput struct {
	Header  RawHeader
	Payload RawPayload
}

const (
	rawMouseSize    = 24
	rawKeyboardSize = 16
	rawHIDSize      = 8
)

// ParseRawInput decodes a buffer filled by GetRawInputData(RID_INPUT).
func ParseRawInput(buf []byte) (RawInput, error) {
	var out RawInput
	if len(buf) < RawHeaderSize {
		return out, fmt.Errorf("%w: %d bytes, header needs %d", ErrShortRecord, len(buf), RawHeaderSize)
	}

	le := binary.LittleEndian
	out.Header.Type = le.Uint32(buf[0:])
	out.Header.Size = le.Uint32(buf[4:])
	if bits.UintSize == 64 {
		out.Header.Device = uintptr(le.Uint64(buf[8:]))
		out.Header.WParam = uintptr(le.Uint64(buf[16:]))
	} else {
		out.Header.Device = uintptr(le.Uint32(buf[8:]))
		out.Header.WParam = uintptr(le.Uint32(buf[12:]))
	}

	body := buf[RawHeaderSize:]
	switch out.Header.Type {
	case RIM_TYPEMOUSE:
		if len(body) < rawMouseSize {
			return out, fmt.Errorf("%w: mouse body %d bytes", ErrShortRecord, len(body))
		}
		// usFlags, 2 bytes padding, then the ulButtons union.
		out.Payload = RawMouse{
			Flags:            le.Uint16(body[0:]),
			ButtonFlags:      le.Uint16(body[4:]),
			ButtonData:       le.Uint16(body[6:]),
			RawButtons:       le.Uint32(body[8:]),
			LastX:            int32(le.Uint32(body[12:])),
			LastY:            int32(le.Uint32(body[16:])),
			ExtraInformation: le.Uint32(body[20:]),
		}
	case RIM_TYPEKEYBOARD:
		if len(body) < rawKeyboardSize {
			return out, fmt.Errorf("%w: keyboard body %d bytes", ErrShortRecord, len(body))
		}
		out.Payload = RawKeyboard{
			MakeCode:         le.Uint16(body[0:]),
			Flags:            le.Uint16(body[2:]),
			VKey:             le.Uint16(body[6:]),
			Message:          le.Uint32(body[8:]),
			ExtraInformation: le.Uint32(body[12:]),
		}
	case RIM_TYPEHID:
		if len(body) < rawHIDSize {
			return out, fmt.Errorf("%w: hid body %d bytes", ErrShortRecord, len(body))
		}
		out.Payload = RawHID{
			SizeHID: le.Uint32(body[0:]),
			Count:   le.Uint32(body[4:]),
		}
	default:
		out.Payload = RawUnknown{Type: out.Header.Type}
	}
	return out, nil
}

// DecodeRawReport parses and decodes a GetRawInputData buffer. A record that
// fails to parse still yields a KindRawHID event carrying the header size, or
// the buffer length when the header itself is cut short. The parse error is
// returned alongside.
func DecodeRawReport(buf []byte, tick uint32) (Event, error) {
	raw, err := ParseRawInput(buf)
	if err != nil && len(buf) < RawHeaderSize {
		raw.Header.Size = uint32(len(buf))
	}
	return DecodeRaw(raw, tick), err
}

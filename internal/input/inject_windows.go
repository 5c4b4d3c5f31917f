//go:build windows

package input

import (
	"fmt"
	"math/bits"
	"unsafe"
)

const (
	INPUT_KEYBOARD  = 1
	KEYEVENTF_KEYUP = 0x0002
)

type keybdInput struct {
	WVk         uint16
	WScan       uint16
	DwFlags     uint32
	Time        uint32
	DwExtraInfo uintptr
}

// INPUT layout for the running process. The union is sized by MOUSEINPUT
// and aligned to a pointer: 40 bytes in total on 64-bit, 28 on 32-bit.
const (
	inputTypePad    = bits.UintSize/8 - 4
	inputUnionSize  = 16 + 2*bits.UintSize/8
	inputRecordSize = 4 + inputTypePad + inputUnionSize
)

// sendInputRecord is INPUT with its union carried as a byte blob.
type sendInputRecord struct {
	Type uint32
	_    [inputTypePad]byte
	Data [inputUnionSize]byte
}

var procSendInput = user32.NewProc("SendInput")

// SendInputPresser presses keys through SendInput and tags each record with
// InjectionTag so the hooks can recognize them.
type SendInputPresser struct{}

// NewPresser returns the platform Presser.
func NewPresser() *SendInputPresser { return &SendInputPresser{} }

func keyRecord(vk uint16, flags uint32) sendInputRecord {
	var in sendInputRecord
	in.Type = INPUT_KEYBOARD
	ki := (*keybdInput)(unsafe.Pointer(&in.Data[0]))
	ki.WVk = vk
	ki.DwFlags = flags
	ki.DwExtraInfo = InjectionTag
	return in
}

// Press sends vk down and up as a single SendInput batch.
func (p *SendInputPresser) Press(vk uint16) error {
	inputs := []sendInputRecord{keyRecord(vk, 0), keyRecord(vk, KEYEVENTF_KEYUP)}
	n, _, err := procSendInput.Call(
		uintptr(len(inputs)),
		uintptr(unsafe.Pointer(&inputs[0])),
		unsafe.Sizeof(inputs[0]),
	)
	if int(n) != len(inputs) {
		return fmt.Errorf("%w: SendInput accepted %d of %d: %v", ErrInjectionFailed, n, len(inputs), err)
	}
	return nil
}

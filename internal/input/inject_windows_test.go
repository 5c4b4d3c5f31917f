//go:build windows

package input

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
)

func TestSendInputRecordLayout(t *testing.T) {
	var in sendInputRecord
	assert.Equal(t, uintptr(inputRecordSize), unsafe.Sizeof(in))
	assert.Equal(t, unsafe.Sizeof(uintptr(0)), unsafe.Offsetof(in.Data))
	if unsafe.Sizeof(uintptr(0)) == 8 {
		assert.Equal(t, uintptr(40), unsafe.Sizeof(in))
	} else {
		assert.Equal(t, uintptr(28), unsafe.Sizeof(in))
	}
	assert.LessOrEqual(t, unsafe.Sizeof(keybdInput{}), uintptr(len(in.Data)))
}

func TestKeyRecordCarriesTag(t *testing.T) {
	in := keyRecord(VK_1, KEYEVENTF_KEYUP)
	ki := (*keybdInput)(unsafe.Pointer(&in.Data[0]))
	assert.Equal(t, uint32(INPUT_KEYBOARD), in.Type)
	assert.Equal(t, uint16(VK_1), ki.WVk)
	assert.Equal(t, uint32(KEYEVENTF_KEYUP), ki.DwFlags)
	assert.Equal(t, uintptr(InjectionTag), ki.DwExtraInfo)
}

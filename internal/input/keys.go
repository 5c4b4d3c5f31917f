package input

import "fmt"

// KeyName returns a readable name for a virtual key code, or "" when the
// code has no name in this table.
func KeyName(vk uint32) string {
	switch vk {
	case 0x10, 0xA0, 0xA1:
		return "SHIFT"
	case 0x11, 0xA2, 0xA3:
		return "CTRL"
	case 0x12, 0xA4, 0xA5:
		return "ALT"
	case VK_LWIN:
		return "LWIN"
	case VK_RWIN:
		return "RWIN"
	case 0x20:
		return "SPACE"
	case 0x0D:
		return "ENTER"
	case 0x1B:
		return "ESC"
	case 0x08:
		return "BACKSPACE"
	case VK_TAB:
		return "TAB"
	case 0x14:
		return "CAPSLOCK"
	case 0x21:
		return "PAGEUP"
	case 0x22:
		return "PAGEDOWN"
	case 0x23:
		return "END"
	case 0x24:
		return "HOME"
	case 0x25:
		return "LEFT"
	case 0x26:
		return "UP"
	case 0x27:
		return "RIGHT"
	case 0x28:
		return "DOWN"
	case 0x2C:
		return "PRINTSCREEN"
	case 0x2D:
		return "INSERT"
	case 0x2E:
		return "DELETE"
	case 0x13:
		return "PAUSE"
	case 0x91:
		return "SCROLLLOCK"
	}

	// Letters A-Z and digits 0-9
	if (vk >= 0x41 && vk <= 0x5A) || (vk >= 0x30 && vk <= 0x39) {
		return string(rune(vk))
	}

	// F1-F24
	if vk >= 0x70 && vk <= 0x87 {
		return fmt.Sprintf("F%d", vk-0x6F)
	}

	return ""
}

// KeyLabel is KeyName with a hex fallback for unnamed codes.
func KeyLabel(vk uint32) string {
	if name := KeyName(vk); name != "" {
		return name
	}
	return fmt.Sprintf("VK_0x%02X", vk)
}

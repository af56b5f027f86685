//go:build windows

package clip

import "golang.org/x/sys/windows"

var procGetClipboardSequenceNumber = windows.NewLazySystemDLL("user32.dll").NewProc("GetClipboardSequenceNumber")

// windowsBridge adds GetClipboardSequenceNumber to the native bridge.
type windowsBridge struct {
	nativeBridge
}

func newNative() (Bridge, error) {
	if err := initNative(); err != nil {
		return nil, err
	}
	return &windowsBridge{nativeBridge{name: "Windows Clipboard"}}, nil
}

// ChangeCount implements ChangeCounter.
func (b *windowsBridge) ChangeCount() int64 {
	n, _, _ := procGetClipboardSequenceNumber.Call()
	return int64(n)
}

//go:build darwin

package clip

// #cgo CFLAGS: -x objective-c
// #cgo LDFLAGS: -framework Cocoa
// #import <Cocoa/Cocoa.h>
//
// NSInteger mousepaste_changeCount() {
//     return [[NSPasteboard generalPasteboard] changeCount];
// }
import "C"

// darwinBridge adds NSPasteboard's changeCount to the native bridge.
type darwinBridge struct {
	nativeBridge
}

func newNative() (Bridge, error) {
	if err := initNative(); err != nil {
		return nil, err
	}
	return &darwinBridge{nativeBridge{name: "macOS NSPasteboard"}}, nil
}

// ChangeCount implements ChangeCounter.
func (b *darwinBridge) ChangeCount() int64 {
	return int64(C.mousepaste_changeCount())
}

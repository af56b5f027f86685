package clip

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/atotto/clipboard"
)

// Stderr fragments with which the paste utilities report an empty clipboard
// or one that holds no text. They exit non-zero in that case.
var emptyClipboardMessages = []string{
	"target STRING not available", // xclip
	"target UTF8_STRING not available",
	"Nothing is copied", // wl-paste
	"No selection",
	"No suitable type of content copied",
}

// commandBridge uses the platform's clipboard utilities (pbcopy/pbpaste,
// xclip, xsel, wl-copy/wl-paste) via github.com/atotto/clipboard.
type commandBridge struct{}

func newCommand() (Bridge, error) {
	if clipboard.Unsupported {
		return nil, fmt.Errorf("%w: no clipboard utility found", ErrUnavailable)
	}
	return commandBridge{}, nil
}

func (commandBridge) Name() string { return "clipboard utilities" }

func (commandBridge) Read() (string, error) {
	s, err := clipboard.ReadAll()
	if err != nil {
		if isEmptyClipboard(err) {
			return "", nil
		}
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return s, nil
}

func (commandBridge) Write(s string) error {
	if err := clipboard.WriteAll(s); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// isEmptyClipboard reports whether a failed paste command only meant that
// there was no text to paste.
func isEmptyClipboard(err error) bool {
	var ee *exec.ExitError
	if !errors.As(err, &ee) {
		return false
	}
	for _, msg := range emptyClipboardMessages {
		if strings.Contains(string(ee.Stderr), msg) {
			return true
		}
	}
	return false
}

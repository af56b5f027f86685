package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/VachaganGrigoryan/mac-mouse-paste/internal/clip"
	"github.com/VachaganGrigoryan/mac-mouse-paste/internal/inject"
	"github.com/VachaganGrigoryan/mac-mouse-paste/internal/logging"
)

// Protocol outcomes that leave all state untouched.
var (
	// ErrEmptyCapture means the synthetic copy produced only whitespace:
	// either nothing was selected or the target had not answered within
	// CopyWait. The two cases cannot be told apart.
	ErrEmptyCapture = errors.New("empty capture")
	// ErrSelectionPending means capture was skipped because a locked,
	// unpasted selection is already buffered.
	ErrSelectionPending = errors.New("selection pending")
	// ErrNothingToPaste means paste was triggered with an empty buffer.
	ErrNothingToPaste = errors.New("nothing to paste")
)

const (
	changePollInterval = 2 * time.Millisecond
	previewLen         = 120
)

// capture copies the foreground selection into the buffer and puts the
// clipboard back as it was.
func (e *Engine) capture() error {
	if e.buf.Blocked() {
		e.stats.skippedLocked.Add(1)
		return ErrSelectionPending
	}

	before, err := e.clip.Read()
	if err != nil {
		// Without the original contents there is nothing to restore, so
		// don't touch the clipboard at all.
		return fmt.Errorf("capture: read clipboard: %w", err)
	}

	cc, mark := e.changeCounter()
	if err := e.inj.SendCopy(); err != nil {
		return fmt.Errorf("capture: %w", err)
	}
	e.waitForCopy(cc, mark)

	copied, readErr := e.clip.Read()
	if err := e.clip.Write(before); err != nil {
		e.stats.setErr(fmt.Errorf("capture: restore clipboard: %w", err))
		e.log.Warn("capture: clipboard restore failed", "err", err)
	}
	if readErr != nil {
		return fmt.Errorf("capture: read selection: %w", readErr)
	}

	if !e.buf.Store(copied) {
		e.stats.emptyCaptures.Add(1)
		return ErrEmptyCapture
	}
	e.stats.captures.Add(1)
	e.log.Debug("selection captured", "runes", e.buf.Len(), "preview", logging.Preview(copied, previewLen))
	return nil
}

// paste delivers the buffered selection at p and empties the buffer,
// whether or not the target accepted it.
func (e *Engine) paste(p inject.Point) error {
	text, ok := e.buf.Get()
	if !ok {
		return ErrNothingToPaste
	}
	defer e.buf.Clear()

	before, err := e.clip.Read()
	if err != nil {
		return fmt.Errorf("paste: read clipboard: %w", err)
	}
	if err := e.clip.Write(text); err != nil {
		return fmt.Errorf("paste: stage selection: %w", err)
	}
	defer func() {
		if err := e.clip.Write(before); err != nil {
			e.stats.setErr(fmt.Errorf("paste: restore clipboard: %w", err))
			e.log.Warn("paste: clipboard restore failed", "err", err)
		}
	}()

	if err := e.inj.FocusClick(p); err != nil {
		return fmt.Errorf("paste: %w", err)
	}
	e.sleep(e.opts.FocusWait)
	if err := e.inj.SendPaste(); err != nil {
		return fmt.Errorf("paste: %w", err)
	}
	e.sleep(e.opts.PasteWait)

	e.stats.pastes.Add(1)
	e.log.Debug("selection pasted", "x", p.X, "y", p.Y, "preview", logging.Preview(text, previewLen))
	return nil
}

// changeCounter returns the bridge's change counter and its current value
// when polling is enabled and supported.
func (e *Engine) changeCounter() (clip.ChangeCounter, int64) {
	if !e.opts.PollChangeCount {
		return nil, 0
	}
	cc, ok := e.clip.(clip.ChangeCounter)
	if !ok {
		return nil, 0
	}
	return cc, cc.ChangeCount()
}

// waitForCopy gives the target time to answer the synthetic copy. With a
// change counter it returns as soon as the clipboard changes, but never
// waits longer than CopyWait.
func (e *Engine) waitForCopy(cc clip.ChangeCounter, mark int64) {
	if cc == nil {
		e.sleep(e.opts.CopyWait)
		return
	}
	deadline := time.Now().Add(e.opts.CopyWait)
	for time.Now().Before(deadline) {
		if cc.ChangeCount() != mark {
			return
		}
		e.sleep(changePollInterval)
	}
}

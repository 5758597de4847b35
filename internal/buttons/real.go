//go:build linux

package buttons

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealReader reads the buttons from the Linux GPIO character device.
type RealReader struct {
	chip *gpiocdev.Chip
	up   *gpiocdev.Line
	down *gpiocdev.Line
}

// NewRealReader requests the two button lines as pulled-up inputs; the
// buttons short to ground, so an active-low raw value means pressed.
func NewRealReader(chipName string, pinUp, pinDown int) (*RealReader, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	upLine, err := chip.RequestLine(pinUp, gpiocdev.AsInput, gpiocdev.WithPullUp)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request up pin %d: %w", pinUp, err)
	}

	downLine, err := chip.RequestLine(pinDown, gpiocdev.AsInput, gpiocdev.WithPullUp)
	if err != nil {
		upLine.Close()
		chip.Close()
		return nil, fmt.Errorf("request down pin %d: %w", pinDown, err)
	}

	return &RealReader{chip: chip, up: upLine, down: downLine}, nil
}

// Read returns the pressed state of both buttons.
func (r *RealReader) Read() (bool, bool, error) {
	upRaw, err := r.up.Value()
	if err != nil {
		return false, false, fmt.Errorf("read up pin: %w", err)
	}
	downRaw, err := r.down.Value()
	if err != nil {
		return false, false, fmt.Errorf("read down pin: %w", err)
	}
	// Active low: 0 = pressed.
	return upRaw == 0, downRaw == 0, nil
}

// Close releases GPIO resources.
func (r *RealReader) Close() error {
	var errs []error
	if r.up != nil {
		if err := r.up.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close up pin: %w", err))
		}
	}
	if r.down != nil {
		if err := r.down.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close down pin: %w", err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

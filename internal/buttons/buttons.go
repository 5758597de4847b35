// Package buttons reads the brightness override buttons with hardware
// abstraction. The real implementation uses the Linux GPIO character
// device; the fake allows testing without hardware.
package buttons

// Reader reads the two button states.
type Reader interface {
	// Read returns whether the brightness-up and brightness-down buttons
	// are currently held.
	Read() (up, down bool, err error)

	// Close releases GPIO resources.
	Close() error
}

// Default pin assignments (BCM numbering).
const (
	DefaultPinUp   = 5
	DefaultPinDown = 6
)

// Step is the brightness offset applied per poll while a button is held.
const Step = 0.01

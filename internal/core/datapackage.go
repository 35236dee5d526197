package core

// DataPackage tracks the payload a mirror is propagating: a total size,
// how much of it has arrived so far, and whether it has been marked
// invalid (reserved for future corruption modelling; never set by this
// implementation but kept so receivers can be future-proofed against it
// without a breaking field addition).
type DataPackage struct {
	Size     int64
	Received int64
	Invalid  bool
}

// NewDataPackage creates a package of the given size with nothing
// received yet.
func NewDataPackage(size int64) *DataPackage {
	return &DataPackage{Size: size}
}

// Complete reports whether the package has been fully received.
func (d *DataPackage) Complete() bool {
	return d != nil && !d.Invalid && d.Received >= d.Size
}

// Absorb credits up to `amount` bytes, capped by the remaining space, and
// returns the number of bytes actually absorbed.
func (d *DataPackage) Absorb(amount int64) int64 {
	if d == nil || amount <= 0 {
		return 0
	}
	remaining := d.Size - d.Received
	if remaining <= 0 {
		return 0
	}
	if amount > remaining {
		amount = remaining
	}
	d.Received += amount
	return amount
}

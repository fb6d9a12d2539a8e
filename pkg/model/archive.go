package model

// Accessory represents a switchable layout accessory (turnout, signal, light).
type Accessory struct {
	PersistedID int64
	Address     int
	Name        string
	Type        RailVehicleType
	State       int
}

// Layout represents a stored track layout.
type Layout struct {
	Name      string
	TrackType string
	Blocks    [][]byte // opaque block payloads, preserved as read
}

// Settings holds app-level flags carried by some archives.
type Settings struct {
	AutoStop  bool
	BoostMode bool
}

// UnknownBlock preserves a byte range the engine could not interpret. It is
// produced when the container is not a ZIP at all, or when an embedded XML
// document fails to parse.
type UnknownBlock struct {
	Offset int64
	Length int64
	Data   []byte
}

// Archive is the root container for one Z21 archive's data.
type Archive struct {
	Version       *int // schema version, nil when the archive does not carry one
	Locomotives   []*Locomotive
	Accessories   []*Accessory
	Layouts       []*Layout
	Settings      *Settings
	UnknownBlocks []UnknownBlock
}

// NewArchive returns an empty archive.
func NewArchive() *Archive {
	return &Archive{}
}

// FindLocomotive returns the first locomotive with the given address, or nil.
// Addresses are not guaranteed unique; duplicates resolve to the first match.
func (a *Archive) FindLocomotive(address int) *Locomotive {
	for _, loco := range a.Locomotives {
		if loco.Address == address {
			return loco
		}
	}
	return nil
}

// RemoveLocomotive removes the locomotive from the in-memory list. It does
// not touch persisted rows; deleting a persisted vehicle is an explicit
// engine operation.
func (a *Archive) RemoveLocomotive(loco *Locomotive) bool {
	for i, l := range a.Locomotives {
		if l == loco {
			a.Locomotives = append(a.Locomotives[:i], a.Locomotives[i+1:]...)
			return true
		}
	}
	return false
}

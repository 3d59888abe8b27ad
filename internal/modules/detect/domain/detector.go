package domain

// DetectorInfo identifies a detector plugin.
type DetectorInfo struct {
	Name         string
	Version      string
	Capabilities []string
}

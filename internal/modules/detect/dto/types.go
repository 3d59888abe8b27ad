package dto

type SignalOutput struct {
	FaceVisible      bool
	PostureDeviation float64
	HeadDeviation    float64
	EyesOpen         bool
}

type DetectorInfoOutput struct {
	Name         string
	Version      string
	Capabilities []string
}

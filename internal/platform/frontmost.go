package platform

// FrontmostProbe reports the identifier of the frontmost application.
type FrontmostProbe interface {
	CurrentAppID() (string, bool)
}

// NewFrontmostProbe returns a platform-specific frontmost application
// probe.
func NewFrontmostProbe() FrontmostProbe {
	return newFrontmostProbe()
}

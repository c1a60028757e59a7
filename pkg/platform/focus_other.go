//go:build !darwin

package platform

// IsAppActive always returns true on non-macOS platforms
func IsAppActive() bool {
	return true
}

// ActivateApp is a no-op on non-macOS platforms
func ActivateApp() {
}

// DisplayCount reports a single display where the windowing system
// offers no enumeration.
func DisplayCount() int {
	return 1
}

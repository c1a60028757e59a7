//go:build !darwin

package platform

// SetActivationPolicy is a no-op outside macOS.
func SetActivationPolicy() {
}

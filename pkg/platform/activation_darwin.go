//go:build darwin

package platform

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework Cocoa
#import <Cocoa/Cocoa.h>

int
SetActivationPolicy(void) {
    [NSApp setActivationPolicy:NSApplicationActivationPolicyAccessory];
    return 0;
}
*/
import "C"
import log "github.com/sirupsen/logrus"

// SetActivationPolicy hides the dock icon so the app lives in the menu
// bar only (macOS).
func SetActivationPolicy() {
	log.Debug("Setting activation policy to accessory")
	C.SetActivationPolicy()
}

package input

import "fmt"

// Backend names accepted by Open
const (
	BackendNative = "native"
	BackendLog    = "log"
)

// Open creates the injector for a backend name
func Open(backend, deviceName string) (Injector, error) {
	switch backend {
	case BackendNative, "":
		inj, err := NewNativeInjector(deviceName)
		if err != nil {
			return nil, err
		}
		return inj, nil
	case BackendLog:
		return NewLogInjector(), nil
	default:
		return nil, fmt.Errorf("unknown input backend %q", backend)
	}
}

package devices

// Result is the outcome of resolving one device summary.
// Exactly one of Device (on success) or Err is meaningful.
type Result struct {
	Device Device
	Err    error
}

// OK reports whether the device was resolved.
func (r Result) OK() bool {
	return r.Err == nil
}

// Successful keeps the resolved devices, preserving order.
func Successful(results []Result) []Device {
	devices := make([]Device, 0, len(results))
	for _, r := range results {
		if r.OK() {
			devices = append(devices, r.Device)
		}
	}
	return devices
}

//go:build !linux

package system

// BackgroundPriority is a no-op outside Linux. I/O priority classes are a
// Linux scheduler concept; elsewhere the fill just runs at normal
// priority.
func BackgroundPriority() error {
	return nil
}

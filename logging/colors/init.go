package colors

// init probes the console for ANSI support. This is a no-op on Unix systems.
func init() {
	EnableColor()
}

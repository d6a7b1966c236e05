package layerswitch

// Remapper sends layer change commands to the keyboard remapper.
type Remapper interface {
	Send(layer string) error
}

// FocusObserver reports the focused application, "" when there is none or
// the window manager cannot be reached.
type FocusObserver interface {
	CurrentApplication() string
}

package layerswitch

import "codeberg.org/miketth/kanatafocus/pkg/allowlist"

const DefaultLayer = "main"

// Decide picks the layer kanata should be on. ok is false when no decision
// can be made: nothing is focused, or the current layer is not in the
// allow-list and must not be switched away from. A nil allow-list permits
// every layer; a nil layer set recognizes none.
func Decide(current, focused string, allow, layers allowlist.Set) (layer string, ok bool) {
	if focused == "" {
		return "", false
	}

	if allow != nil && !allow.Has(current) {
		return "", false
	}

	if layers.Has(focused) {
		return focused, true
	}

	return DefaultLayer, true
}

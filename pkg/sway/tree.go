package sway

import (
	swayipc "github.com/joshuarubin/go-sway"
)

// findFocused returns the first focused node, searching tiled children
// before floating ones, or nil.
func findFocused(n *swayipc.Node) *swayipc.Node {
	if n == nil {
		return nil
	}
	if n.Focused {
		return n
	}
	for _, child := range n.Nodes {
		if f := findFocused(child); f != nil {
			return f
		}
	}
	for _, child := range n.FloatingNodes {
		if f := findFocused(child); f != nil {
			return f
		}
	}
	return nil
}

// application returns the Wayland app_id, or the X11 class for XWayland
// windows. Empty when neither is set.
func application(n *swayipc.Node) string {
	if n.AppID != nil && *n.AppID != "" {
		return *n.AppID
	}
	if n.WindowProperties != nil {
		return n.WindowProperties.Class
	}
	return ""
}

package hyprland

type activeWindow struct {
	Address      string `json:"address"`
	Class        string `json:"class"`
	Title        string `json:"title"`
	InitialClass string `json:"initialClass"`
}

func (w activeWindow) application() string {
	if w.Class != "" {
		return w.Class
	}
	return w.InitialClass
}

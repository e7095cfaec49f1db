package dto

// NavigationItem is one destination of the shell.
type NavigationItem struct {
	Label string `json:"label"`
	Path  string `json:"path"`
	Icon  string `json:"icon,omitempty"`
}

// NavigationAction is an action invoked from the shell.
type NavigationAction struct {
	Label    string `json:"label"`
	Method   string `json:"method"`
	Endpoint string `json:"endpoint"`
	Redirect string `json:"redirect"`
}

// NavigationResponse lists destinations plus the sign-out action.
type NavigationResponse struct {
	Items   []NavigationItem `json:"items"`
	SignOut NavigationAction `json:"sign_out"`
}

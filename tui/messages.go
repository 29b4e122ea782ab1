package tui

// ResponseMsg carries an agent reply back into the Bubble Tea loop.
type ResponseMsg struct {
	Query    string
	Response string
	Err      error
}

package notify

func chimeCommand() (string, []string) {
	return "afplay", []string{"/System/Library/Sounds/Glass.aiff"}
}

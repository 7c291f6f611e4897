package notify

func chimeCommand() (string, []string) {
	return "powershell", []string{"-NoProfile", "-NonInteractive", "-Command", "[console]::beep(880,200)"}
}
